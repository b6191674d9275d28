package handler

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/layover-backend-go/internal/models"
	"github.com/jengzang/layover-backend-go/internal/routing"
	"github.com/jengzang/layover-backend-go/internal/service"
	"github.com/jengzang/layover-backend-go/pkg/response"
)

// LayoverHandler handles HTTP requests for hub and activity planning
type LayoverHandler struct {
	service *service.LayoverService
}

// NewLayoverHandler creates a new layover handler
func NewLayoverHandler(service *service.LayoverService) *LayoverHandler {
	return &LayoverHandler{service: service}
}

// HubRankRequest is the body of POST /api/v1/hubs/rank
type HubRankRequest struct {
	Origin       string  `json:"origin" binding:"required"`
	Destination  string  `json:"destination" binding:"required"`
	LayoverHours float64 `json:"layover_hours"`
	ArrivalHour  int     `json:"arrival_hour"`
	VisaValid    bool    `json:"visa_valid"`
	Query        string  `json:"query"`
}

// TripBody is the body of the activity ranking and planning endpoints.
// When visa_valid is omitted and a passport is given, the hub's visa policy
// decides.
type TripBody struct {
	HubID        string  `json:"hub_id" binding:"required"`
	Origin       string  `json:"origin"`
	Destination  string  `json:"destination"`
	LayoverHours float64 `json:"layover_hours"`
	ArrivalHour  int     `json:"arrival_hour"`
	DayOfWeek    string  `json:"day_of_week"`
	VisaValid    *bool   `json:"visa_valid"`
	Passport     string  `json:"passport"`
	Query        string  `json:"query"`
	Refine       string  `json:"refine"`
}

// HubProvisionRequest is the body of PUT /api/v1/admin/hubs/:id
type HubProvisionRequest struct {
	Profile models.AirportProfile `json:"profile"`
	Meta    *models.HubMeta       `json:"meta,omitempty"`
}

// ListHubs handles GET /api/v1/hubs
func (h *LayoverHandler) ListHubs(c *gin.Context) {
	metas := h.service.Hubs(c.Request.Context())
	list := make([]models.HubMeta, 0, len(metas))
	for _, m := range metas {
		list = append(list, m)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })

	response.Success(c, gin.H{
		"hubs":  list,
		"total": len(list),
	})
}

// RankHubs handles POST /api/v1/hubs/rank
func (h *LayoverHandler) RankHubs(c *gin.Context) {
	var req HubRankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	hubs, err := h.service.RankHubs(c.Request.Context(), routing.HubQuery{
		Origin:       req.Origin,
		Destination:  req.Destination,
		LayoverHours: req.LayoverHours,
		ArrivalHour:  req.ArrivalHour,
		VisaValid:    req.VisaValid,
		Query:        req.Query,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, gin.H{
		"hubs":  hubs,
		"total": len(hubs),
	})
}

// RankActivities handles POST /api/v1/activities/rank
func (h *LayoverHandler) RankActivities(c *gin.Context) {
	req, ok := h.bindTrip(c)
	if !ok {
		return
	}

	ranked, err := h.service.RankActivities(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, gin.H{
		"activities": ranked,
		"total":      len(ranked),
		"risk":       h.service.PlanRisk(ranked, req.LayoverHours, req.VisaValid),
		"visa_valid": req.VisaValid,
	})
}

// Plan handles POST /api/v1/plans
func (h *LayoverHandler) Plan(c *gin.Context) {
	req, ok := h.bindTrip(c)
	if !ok {
		return
	}

	plan, err := h.service.Plan(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, plan)
}

// VisaStatus handles GET /api/v1/hubs/:id/visa?passport=
func (h *LayoverHandler) VisaStatus(c *gin.Context) {
	passport := strings.TrimSpace(c.Query("passport"))
	if passport == "" {
		response.BadRequest(c, "passport is required")
		return
	}
	response.Success(c, h.service.VisaStatus(c.Request.Context(), c.Param("id"), passport))
}

// ProvisionHub handles PUT /api/v1/admin/hubs/:id
func (h *LayoverHandler) ProvisionHub(c *gin.Context) {
	var req HubProvisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	id := models.NormalizeHubID(c.Param("id"))
	if err := h.service.ProvisionHub(c.Request.Context(), id, &req.Profile, req.Meta); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{
		"hub_id":     id,
		"activities": len(req.Profile.Activities),
	})
}

// RemoveHub handles DELETE /api/v1/admin/hubs/:id
func (h *LayoverHandler) RemoveHub(c *gin.Context) {
	id := models.NormalizeHubID(c.Param("id"))
	if err := h.service.RemoveHub(c.Request.Context(), id); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"hub_id": id})
}

func (h *LayoverHandler) bindTrip(c *gin.Context) (models.TripRequest, bool) {
	var body TripBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err)
		return models.TripRequest{}, false
	}

	day := time.Now().Weekday()
	if body.DayOfWeek != "" {
		d, ok := models.ParseWeekday(body.DayOfWeek)
		if !ok {
			response.BadRequest(c, "invalid day_of_week: "+body.DayOfWeek)
			return models.TripRequest{}, false
		}
		day = d
	}

	req := models.TripRequest{
		Origin:       body.Origin,
		Destination:  body.Destination,
		HubID:        body.HubID,
		LayoverHours: body.LayoverHours,
		ArrivalHour:  body.ArrivalHour,
		DayOfWeek:    day,
		Query:        body.Query,
		Refine:       models.ParseRefineMode(body.Refine),
	}
	switch {
	case body.VisaValid != nil:
		req.VisaValid = *body.VisaValid
	case body.Passport != "":
		req.VisaValid = h.service.VisaStatus(c.Request.Context(), body.HubID, body.Passport).Valid
	}
	return req, true
}

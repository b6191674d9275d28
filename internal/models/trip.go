package models

import (
	"math"
	"strings"
	"time"

	"github.com/jengzang/layover-backend-go/internal/apierr"
)

// RefineMode nudges a ranking toward a preference without retyping the query
type RefineMode string

const (
	RefineDefault     RefineMode = "DEFAULT"
	RefineOnlyAirside RefineMode = "ONLY_AIRSIDE"
	RefineMoreChill   RefineMode = "MORE_CHILL"
	RefineMoreCulture RefineMode = "MORE_CULTURE"
	RefineMaxSights   RefineMode = "MAX_SIGHTS"
	RefineCheaper     RefineMode = "CHEAPER"
)

var refineSuffixes = map[RefineMode]string{
	RefineOnlyAirside: "Prefer airside only, inside airport, no city trips.",
	RefineMoreChill:   "Prefer relaxing, quiet, lounge, spa, comfy.",
	RefineMoreCulture: "Prefer culture, museums, heritage, landmarks, history.",
	RefineMaxSights:   "Prefer sightseeing, viewpoints, iconic spots, photo locations.",
	RefineCheaper:     "Prefer cheap, free, budget friendly.",
}

// ParseRefineMode converts "more_chill" etc. to a RefineMode; unknown values map to DEFAULT
func ParseRefineMode(s string) RefineMode {
	m := RefineMode(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := refineSuffixes[m]; ok {
		return m
	}
	return RefineDefault
}

// Apply appends the refinement hint to a base query
func (m RefineMode) Apply(query string) string {
	q := strings.TrimSpace(query)
	suffix, ok := refineSuffixes[m]
	if !ok {
		return q
	}
	if q == "" {
		return suffix
	}
	return q + ". " + suffix
}

// TripRequest carries everything one ranking call needs. Built fresh per call.
type TripRequest struct {
	Origin       string       `json:"origin"`
	Destination  string       `json:"destination"`
	HubID        string       `json:"hub_id"`
	LayoverHours float64      `json:"layover_hours"`
	ArrivalHour  int          `json:"arrival_hour"` // 0-23
	DayOfWeek    time.Weekday `json:"day_of_week"`
	VisaValid    bool         `json:"visa_valid"`
	Query        string       `json:"query"`
	Refine       RefineMode   `json:"refine,omitempty"`
}

// Validate rejects parameters that would produce meaningless scores
func (r *TripRequest) Validate() error {
	if math.IsNaN(r.LayoverHours) || math.IsInf(r.LayoverHours, 0) {
		return apierr.InvalidInput("layover_hours must be a finite number")
	}
	if r.LayoverHours < 0 {
		return apierr.InvalidInput("layover_hours must be >= 0, got %v", r.LayoverHours)
	}
	if r.ArrivalHour < 0 || r.ArrivalHour > 23 {
		return apierr.InvalidInput("arrival_hour must be within 0-23, got %d", r.ArrivalHour)
	}
	if r.DayOfWeek < time.Sunday || r.DayOfWeek > time.Saturday {
		return apierr.InvalidInput("day_of_week out of range: %d", r.DayOfWeek)
	}
	return nil
}

// EffectiveQuery is the query with the refinement hint applied
func (r *TripRequest) EffectiveQuery() string {
	return r.Refine.Apply(r.Query)
}

// LandsideAllowed reports whether landside activities may be considered at all
func (r *TripRequest) LandsideAllowed() bool {
	return r.VisaValid && r.Refine != RefineOnlyAirside
}

// ParseWeekday accepts "Monday", "mon", "1" style values
func ParseWeekday(s string) (time.Weekday, bool) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return 0, false
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if v == name || v == name[:3] {
			return d, true
		}
	}
	if len(v) == 1 && v[0] >= '0' && v[0] <= '6' {
		return time.Weekday(v[0] - '0'), true
	}
	return 0, false
}

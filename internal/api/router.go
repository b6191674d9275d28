package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/layover-backend-go/internal/config"
	"github.com/jengzang/layover-backend-go/internal/handler"
	"github.com/jengzang/layover-backend-go/internal/logger"
	"github.com/jengzang/layover-backend-go/internal/middleware"
	"github.com/jengzang/layover-backend-go/internal/service"
	"github.com/jengzang/layover-backend-go/pkg/response"
)

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, svc *service.LayoverService, limiter *middleware.RateLimiter, log *logger.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.CORS(cfg.CORSOrigins))

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Layover Backend API is running",
			"scorer":  svc.ScorerName(),
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	h := handler.NewLayoverHandler(svc)

	// API 路由组
	api := r.Group("/api/v1")
	if limiter != nil {
		api.Use(middleware.RateLimit(limiter))
	}
	{
		hubs := api.Group("/hubs")
		{
			hubs.GET("", h.ListHubs)
			hubs.POST("/rank", h.RankHubs)
			hubs.GET("/:id/visa", h.VisaStatus)
		}

		api.POST("/activities/rank", h.RankActivities)
		api.POST("/plans", h.Plan)

		admin := api.Group("/admin", middleware.RequireRole(cfg.JWTSecret, middleware.RoleAdmin))
		{
			admin.PUT("/hubs/:id", h.ProvisionHub)
			admin.DELETE("/hubs/:id", h.RemoveHub)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "route not found")
	})

	return r
}

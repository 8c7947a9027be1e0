package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/community-cert-dashboard/internal/config"
	"github.com/community-cert-dashboard/internal/models"
	"github.com/community-cert-dashboard/internal/service"
)

// NewRouter creates and configures the Gin router
func NewRouter(services *service.Services, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type"},
		ExposeHeaders: []string{"Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}))

	// Handlers
	rosterHandler := NewRosterHandler(services, cfg, log)
	communityHandler := NewCommunityHandler(services, log)
	directoryHandler := NewDirectoryHandler(services, log)
	eventHandler := NewEventHandler(services, log)
	campaignHandler := NewCampaignHandler(services, log)
	userHandler := NewUserHandler(services, log)

	// Health check
	router.GET("/health", healthCheck)

	// API v1, bearer auth required throughout
	v1 := router.Group("/v1")
	v1.Use(authMiddleware(services.User, cfg.Auth.JWTSecret, log))
	{
		v1.GET("/me", userHandler.Me)

		roster := v1.Group("/roster")
		{
			roster.POST("", rosterHandler.Upload)
			roster.GET("/export", rosterHandler.Export)
		}

		v1.GET("/dashboard", communityHandler.Dashboard)

		communities := v1.Group("/communities")
		{
			communities.GET("/:code/report", communityHandler.Report)
			communities.POST("/:code/important", communityHandler.ToggleImportant)
			communities.PUT("/:code/follow-up", communityHandler.SetFollowUp)
		}

		directory := v1.Group("/directory")
		{
			directory.GET("", directoryHandler.Registry)
			directory.POST("", directoryHandler.Create)
			directory.DELETE("/:code", directoryHandler.Delete)
			directory.POST("/codes", directoryHandler.UploadCodes)
			directory.GET("/stats", directoryHandler.Stats)
		}

		events := v1.Group("/events")
		{
			events.GET("", eventHandler.List)
			events.POST("", eventHandler.Save)
			events.DELETE("/:id", eventHandler.Delete)
		}

		campaigns := v1.Group("/campaigns")
		{
			campaigns.GET("/templates", campaignHandler.Templates)
			campaigns.POST("/preview", campaignHandler.Preview)
			campaigns.POST("", campaignHandler.Queue)
			campaigns.GET("", campaignHandler.ListRecent)
		}

		admin := v1.Group("/admin/users")
		{
			admin.GET("", userHandler.List)
			admin.PUT("/:uid/role", userHandler.SetRole)
			admin.PUT("/:uid/communities", userHandler.SetAllowedCommunities)
		}
	}

	return router
}

// healthCheck returns the health status
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   "community-cert-dashboard",
	})
}

// dateRangeLayouts accepts full timestamps or bare dates in range queries.
var dateRangeLayouts = []string{time.RFC3339, "2006-01-02"}

// parseDateRange reads optional from/to query params into a DateRange.
// A bare date for "to" is widened to the end of that day.
func parseDateRange(c *gin.Context) (models.DateRange, error) {
	var dateRange models.DateRange

	if raw := c.Query("from"); raw != "" {
		t, err := parseRangeBound(raw)
		if err != nil {
			return dateRange, err
		}
		dateRange.From = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := parseRangeBound(raw)
		if err != nil {
			return dateRange, err
		}
		if len(raw) == len("2006-01-02") {
			t = t.Add(24*time.Hour - time.Millisecond)
		}
		dateRange.To = &t
	}
	return dateRange, nil
}

func parseRangeBound(raw string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateRangeLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

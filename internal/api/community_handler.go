package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/community-cert-dashboard/internal/service"
)

// CommunityHandler handles dashboard and community metadata endpoints
type CommunityHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewCommunityHandler creates a new CommunityHandler
func NewCommunityHandler(services *service.Services, log zerolog.Logger) *CommunityHandler {
	return &CommunityHandler{
		services: services,
		log:      log.With().Str("handler", "community").Logger(),
	}
}

// Dashboard handles GET /v1/dashboard
// Optional from/to query params bound the aggregation by enrollment date.
func (h *CommunityHandler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	profile := currentProfile(c)

	dateRange, err := parseDateRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from/to must be RFC3339 timestamps or YYYY-MM-DD dates"})
		return
	}

	dashboard, err := h.services.Community.Dashboard(ctx, profile, dateRange)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

// Report handles GET /v1/communities/:code/report
func (h *CommunityHandler) Report(c *gin.Context) {
	ctx := c.Request.Context()
	profile := currentProfile(c)
	code := c.Param("code")

	dateRange, err := parseDateRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from/to must be RFC3339 timestamps or YYYY-MM-DD dates"})
		return
	}

	report, err := h.services.Community.Report(ctx, profile, code, dateRange)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// ToggleImportant handles POST /v1/communities/:code/important
func (h *CommunityHandler) ToggleImportant(c *gin.Context) {
	ctx := c.Request.Context()
	profile := currentProfile(c)
	code := c.Param("code")

	if err := h.services.Community.ToggleImportant(ctx, profile, code); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": code, "message": "importance toggled"})
}

// SetFollowUp handles PUT /v1/communities/:code/follow-up
// A null or absent date clears the follow-up.
func (h *CommunityHandler) SetFollowUp(c *gin.Context) {
	ctx := c.Request.Context()
	profile := currentProfile(c)
	code := c.Param("code")

	var req struct {
		Date *string `json:"date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.services.Community.SetFollowUp(ctx, profile, code, req.Date); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": code, "follow_up_date": req.Date})
}

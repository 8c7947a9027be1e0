package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/community-cert-dashboard/internal/service"
)

// CampaignHandler handles email campaign endpoints
type CampaignHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewCampaignHandler creates a new CampaignHandler
func NewCampaignHandler(services *service.Services, log zerolog.Logger) *CampaignHandler {
	return &CampaignHandler{
		services: services,
		log:      log.With().Str("handler", "campaign").Logger(),
	}
}

// Templates handles GET /v1/campaigns/templates
func (h *CampaignHandler) Templates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"templates": h.services.Campaign.Templates()})
}

// Preview handles POST /v1/campaigns/preview
// Resolves the audience for a filter without queueing anything.
func (h *CampaignHandler) Preview(c *gin.Context) {
	ctx := c.Request.Context()
	profile := currentProfile(c)

	var filter service.AudienceFilter
	if err := c.ShouldBindJSON(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	preview, err := h.services.Campaign.PreviewAudience(ctx, profile, filter)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, preview)
}

// Queue handles POST /v1/campaigns
func (h *CampaignHandler) Queue(c *gin.Context) {
	ctx := c.Request.Context()
	profile := currentProfile(c)

	var req service.QueueCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	campaign, err := h.services.Campaign.Queue(ctx, profile, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Info().
		Str("campaign_id", campaign.ID).
		Int("recipients", campaign.RecipientCount).
		Msg("Campaign queued")

	c.JSON(http.StatusAccepted, campaign)
}

// ListRecent handles GET /v1/campaigns
func (h *CampaignHandler) ListRecent(c *gin.Context) {
	ctx := c.Request.Context()
	profile := currentProfile(c)

	campaigns, err := h.services.Campaign.ListRecent(ctx, profile)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":     len(campaigns),
		"campaigns": campaigns,
	})
}

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/community-cert-dashboard/internal/service"
)

// DirectoryHandler handles community-registry endpoints
type DirectoryHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewDirectoryHandler creates a new DirectoryHandler
func NewDirectoryHandler(services *service.Services, log zerolog.Logger) *DirectoryHandler {
	return &DirectoryHandler{
		services: services,
		log:      log.With().Str("handler", "directory").Logger(),
	}
}

// Registry handles GET /v1/directory
func (h *DirectoryHandler) Registry(c *gin.Context) {
	ctx := c.Request.Context()
	profile := currentProfile(c)

	registry, err := h.services.Directory.Registry(ctx, profile)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":       len(registry),
		"communities": registry,
	})
}

// Create handles POST /v1/directory
func (h *DirectoryHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()
	profile := currentProfile(c)

	var req struct {
		Code        string `json:"code"`
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code is required"})
		return
	}

	if err := h.services.Directory.CreateManaged(ctx, profile, req.Code, req.Name, req.Description); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"code": req.Code})
}

// Delete handles DELETE /v1/directory/:code
func (h *DirectoryHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	profile := currentProfile(c)
	code := c.Param("code")

	if err := h.services.Directory.DeleteManaged(ctx, profile, code); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": code, "message": "community removed"})
}

// UploadCodes handles POST /v1/directory/codes
// Accepts a one-column CSV of registered community codes and replaces the
// persisted list wholesale.
func (h *DirectoryHandler) UploadCodes(c *gin.Context) {
	ctx := c.Request.Context()
	profile := currentProfile(c)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file upload is required"})
		return
	}
	defer file.Close()

	codes, err := h.services.Directory.UploadRegisteredCodes(ctx, profile, file)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Info().Str("file", header.Filename).Int("codes", len(codes)).Msg("Registered codes replaced")

	c.JSON(http.StatusOK, gin.H{"count": len(codes), "codes": codes})
}

// Stats handles GET /v1/directory/stats
func (h *DirectoryHandler) Stats(c *gin.Context) {
	ctx := c.Request.Context()
	profile := currentProfile(c)

	dateRange, err := parseDateRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from/to must be RFC3339 timestamps or YYYY-MM-DD dates"})
		return
	}

	stats, err := h.services.Directory.ManagementStats(ctx, profile, dateRange)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

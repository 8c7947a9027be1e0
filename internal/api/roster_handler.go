package api

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/community-cert-dashboard/internal/config"
	"github.com/community-cert-dashboard/internal/service"
)

// RosterHandler handles roster upload and export endpoints
type RosterHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewRosterHandler creates a new RosterHandler
func NewRosterHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *RosterHandler {
	return &RosterHandler{
		services: services,
		cfg:      cfg,
		log:      log.With().Str("handler", "roster").Logger(),
	}
}

// Upload handles POST /v1/roster
// Accepts a multipart CSV file and ingests it atomically per file.
func (h *RosterHandler) Upload(c *gin.Context) {
	ctx := c.Request.Context()
	profile := currentProfile(c)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file upload is required"})
		return
	}
	defer file.Close()

	if header.Size > h.cfg.Upload.MaxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("file too large, max size is %d MB", h.cfg.Upload.MaxUploadSize/(1024*1024)),
		})
		return
	}
	if ext := strings.ToLower(filepath.Ext(header.Filename)); ext != ".csv" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "roster upload requires a CSV file"})
		return
	}

	result, err := h.services.Roster.Upload(ctx, profile, file)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Info().
		Str("file", header.Filename).
		Int64("size_bytes", header.Size).
		Int("written", result.Written).
		Msg("Roster upload accepted")

	c.JSON(http.StatusOK, result)
}

// Export handles GET /v1/roster/export
// Streams the caller's visible records as a CSV attachment.
func (h *RosterHandler) Export(c *gin.Context) {
	ctx := c.Request.Context()
	profile := currentProfile(c)

	opts := service.ExportOptions{
		CommunityCode: c.Query("community"),
		Filter:        c.DefaultQuery("filter", "all"),
	}
	if opts.Filter != "all" && opts.Filter != "certified" && opts.Filter != "subscribers" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "filter must be one of: all, certified, subscribers"})
		return
	}

	filename := fmt.Sprintf("roster_%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	count, err := h.services.Roster.Export(ctx, profile, c.Writer, opts)
	if err != nil {
		if count == 0 {
			respondError(c, h.log, err)
			return
		}
		// Rows already hit the wire; all we can do is log and cut the stream.
		h.log.Error().Err(err).Int("rows_written", count).Msg("Roster export failed mid-stream")
		c.Abort()
	}
}

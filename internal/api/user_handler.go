package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/community-cert-dashboard/internal/models"
	"github.com/community-cert-dashboard/internal/service"
)

// UserHandler handles profile and user-admin endpoints
type UserHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(services *service.Services, log zerolog.Logger) *UserHandler {
	return &UserHandler{
		services: services,
		log:      log.With().Str("handler", "user").Logger(),
	}
}

// Me handles GET /v1/me
func (h *UserHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, currentProfile(c))
}

// List handles GET /v1/admin/users
func (h *UserHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	profile := currentProfile(c)

	users, err := h.services.User.List(ctx, profile)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count": len(users),
		"users": users,
	})
}

// SetRole handles PUT /v1/admin/users/:uid/role
func (h *UserHandler) SetRole(c *gin.Context) {
	ctx := c.Request.Context()
	profile := currentProfile(c)
	uid := c.Param("uid")

	var req struct {
		Role models.UserRole `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.services.User.SetRole(ctx, profile, uid, req.Role); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"uid": uid, "role": req.Role})
}

// SetAllowedCommunities handles PUT /v1/admin/users/:uid/communities
func (h *UserHandler) SetAllowedCommunities(c *gin.Context) {
	ctx := c.Request.Context()
	profile := currentProfile(c)
	uid := c.Param("uid")

	var req struct {
		Communities []string `json:"communities"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Communities == nil {
		req.Communities = []string{}
	}

	if err := h.services.User.SetAllowedCommunities(ctx, profile, uid, req.Communities); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"uid": uid, "communities": req.Communities})
}

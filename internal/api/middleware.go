package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/community-cert-dashboard/internal/ingest"
	"github.com/community-cert-dashboard/internal/models"
	"github.com/community-cert-dashboard/internal/service"
)

// profileKey is the gin context key holding the authenticated profile.
const profileKey = "profile"

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Msg("Panic recovered")
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// loggingMiddleware logs requests
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("Request completed")
	}
}

// authMiddleware verifies the bearer token, resolves the caller's profile
// (creating a viewer profile on first sight) and stashes it in the context.
// Token minting belongs to the external identity provider; this service
// only verifies.
func authMiddleware(users service.UserService, secret string, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			log.Warn().Err(err).Msg("Rejected bearer token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token claims"})
			return
		}
		identity := service.Identity{
			UID:         claimString(claims, "sub"),
			Email:       claimString(claims, "email"),
			DisplayName: claimString(claims, "name"),
			PhotoURL:    claimString(claims, "picture"),
		}
		if identity.UID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token missing subject"})
			return
		}

		profile, err := users.Authenticate(c.Request.Context(), identity)
		if err != nil {
			log.Error().Err(err).Str("uid", identity.UID).Msg("Failed to resolve profile")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve profile"})
			return
		}

		c.Set(profileKey, profile)
		c.Next()
	}
}

func claimString(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}

// currentProfile returns the profile set by authMiddleware.
func currentProfile(c *gin.Context) *models.UserProfile {
	if v, ok := c.Get(profileKey); ok {
		if profile, ok := v.(*models.UserProfile); ok {
			return profile
		}
	}
	return nil
}

// respondError translates service and ingest errors to HTTP statuses.
func respondError(c *gin.Context, log zerolog.Logger, err error) {
	var validationErr *ingest.ValidationError
	switch {
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrInvalidRole):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": validationErr.Error(),
			"line":  validationErr.Line,
			"field": validationErr.Field,
		})
	case service.IsInvalidCampaign(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/rgoncalves/sensor-data-ingestion/internal/auth"
	"github.com/rgoncalves/sensor-data-ingestion/internal/models"
)

// RegisterTokenRoutes registers the development-only token mint.
//
// POST /auth/token
// - Issues a signed bearer token for testing
// - Refused outside the development environment
func RegisterTokenRoutes(r gin.IRoutes, settings auth.JWTSettings, environment string, log *logrus.Entry) {
	r.POST("/auth/token", func(c *gin.Context) {
		if environment != "development" {
			log.Warn("token mint attempted outside development environment")
			c.JSON(http.StatusForbidden, gin.H{"code": "FORBIDDEN", "message": "token endpoint is development-only"})
			return
		}

		var req models.TokenRequest
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Subject) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_BODY", "message": "subject required"})
			return
		}

		extra := map[string]string{}
		for k, v := range req.Claims {
			extra[k] = v
		}
		if req.Name != "" {
			extra["name"] = req.Name
		}

		token, expiresAt, err := auth.MintToken(settings, req.Subject, extra)
		if err != nil {
			log.WithError(err).Error("signing token failed")
			c.JSON(http.StatusInternalServerError, gin.H{"code": "INTERNAL_ERROR", "message": "internal server error"})
			return
		}

		c.JSON(http.StatusOK, models.TokenResponse{
			Token:     token,
			ExpiresAt: expiresAt.Format(time.RFC3339),
			TokenType: "Bearer",
		})
	})
}

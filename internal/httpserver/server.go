package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/rgoncalves/sensor-data-ingestion/internal/auth"
	"github.com/rgoncalves/sensor-data-ingestion/internal/config"
	"github.com/rgoncalves/sensor-data-ingestion/internal/handlers"
	"github.com/rgoncalves/sensor-data-ingestion/internal/ingest"
	"github.com/rgoncalves/sensor-data-ingestion/internal/metrics"
)

// ReadinessChecker reports whether a dependency can serve traffic.
type ReadinessChecker interface {
	Ready(ctx context.Context) error
}

// Deps are the collaborators the router hands to its handlers.
type Deps struct {
	Pipeline *ingest.Pipeline
	Metrics  *metrics.Metrics
	Broker   ReadinessChecker
	Registry ReadinessChecker
	Log      *logrus.Entry
}

// NewRouter wires public endpoints and the authenticated ingestion API.
// Public: /health, /ready, /metrics, /api/auth/token (development only)
// Authenticated: /api/telemetry (bearer identity + device API key)
func NewRouter(cfg config.Config, deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())

	// Liveness: confirms the process is running.
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC().Format(time.RFC3339)})
	})

	// Readiness: confirms the broker (and registry, when durable) are reachable.
	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		for _, dep := range []ReadinessChecker{deps.Broker, deps.Registry} {
			if dep == nil {
				continue
			}
			if err := dep.Ready(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	jwtSettings := auth.JWTSettings{
		Secret:     cfg.JWTSecret,
		Issuer:     cfg.JWTIssuer,
		Audience:   cfg.JWTAudience,
		Expiration: cfg.JWTExpiration,
	}

	api := r.Group("/api")
	handlers.RegisterTokenRoutes(api, jwtSettings, cfg.Environment, deps.Log)

	// The ingestion group enforces both identities: the calling party via
	// bearer token, the device via its API key header.
	ingestGroup := api.Group("/")
	ingestGroup.Use(auth.BearerMiddleware(jwtSettings))
	ingestGroup.Use(auth.DeviceKeyMiddleware())

	handlers.RegisterTelemetryRoutes(ingestGroup, deps.Pipeline, deps.Metrics, deps.Log)

	return r
}

package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sport-backend/internal/analyses"
	"sport-backend/internal/shared/config"
	"sport-backend/internal/shared/metrics"
	"sport-backend/internal/shared/server/middleware"
)

const (
	rateGroupDefault = "DEFAULT"
	rateGroupHealth  = "HEALTH"
)

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(cfg config.Config, handler *analyses.Handler) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api")
	api.Use(middleware.RateLimit(middleware.RateLimitConfig{
		DefaultGroup: rateGroupDefault,
		GroupFor: func(c *gin.Context) string {
			if c.Request.Method == http.MethodGet {
				return rateGroupHealth
			}
			return rateGroupDefault
		},
		Rules: map[string]middleware.RateLimitRule{
			rateGroupDefault: {Rate: 0.5, Burst: 5},
			rateGroupHealth:  {Rate: 2, Burst: 10},
		},
	}))
	handler.RegisterRoutes(api)

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}

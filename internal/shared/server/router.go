package server

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"enhancehub-backend/internal/account"
	googleauth "enhancehub-backend/internal/auth"
	"enhancehub-backend/internal/enhancements"
	"enhancehub-backend/internal/jobs"
	"enhancehub-backend/internal/resumes"
	"enhancehub-backend/internal/shared/config"
	"enhancehub-backend/internal/shared/metrics"
	"enhancehub-backend/internal/shared/server/middleware"
	"enhancehub-backend/internal/shared/server/respond"
	"enhancehub-backend/internal/usage"
	"enhancehub-backend/internal/users"
	"enhancehub-backend/internal/workspace"
)

// RouterDeps carries the handlers and probes the router wires up. Bootstrap
// fills it in; tests may pass a subset and the router skips nil entries.
type RouterDeps struct {
	Config config.Config

	Resumes      *resumes.Handler
	Jobs         *jobs.Handler
	Enhancements *enhancements.Handler
	Users        *users.Handler
	Usage        *usage.Handler
	Account      *account.Handler
	GoogleAuth   *googleauth.GoogleService

	DB    *sql.DB
	Files *workspace.Workspace
}

// NewRouter constructs the Gin engine with middleware and routes registered.
// Health and metrics sit outside the authenticated API group so probes and
// scrapers do not need identity headers.
func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
	)

	r.GET("/health", healthHandler(deps.DB, deps.Files))
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.Use(middleware.Auth(cfg.Env))
	api.Use(middleware.RateLimit(middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			"MUTATE": {Rate: 5, Burst: 10},
		},
		GroupFor: func(c *gin.Context) string {
			switch c.Request.Method {
			case http.MethodPost, http.MethodPatch, http.MethodDelete:
				return "MUTATE"
			}
			return ""
		},
	}))

	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	if deps.Users != nil {
		deps.Users.RegisterRoutes(api)
	}
	if deps.Resumes != nil {
		deps.Resumes.RegisterRoutes(api)
	}
	if deps.Jobs != nil {
		deps.Jobs.RegisterRoutes(api)
	}
	if deps.Enhancements != nil {
		deps.Enhancements.RegisterRoutes(api)
	}
	if deps.Usage != nil {
		deps.Usage.RegisterRoutes(api)
		if cfg.Env == "dev" {
			dev := api.Group("/dev")
			deps.Usage.RegisterDevRoutes(dev)
		}
	}
	if deps.Account != nil {
		deps.Account.RegisterRoutes(api)
	}

	return r
}

// healthHandler reports database and workspace reachability. A memory-backed
// deployment has no database handle and reports "memory" instead of failing.
func healthHandler(dbConn *sql.DB, files *workspace.Workspace) gin.HandlerFunc {
	return func(c *gin.Context) {
		checks := gin.H{}
		healthy := true

		if dbConn != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			err := dbConn.PingContext(ctx)
			cancel()
			if err != nil {
				checks["database"] = "down"
				healthy = false
			} else {
				checks["database"] = "ok"
			}
		} else {
			checks["database"] = "memory"
		}

		if files != nil {
			if err := files.Probe(); err != nil {
				checks["workspace"] = "down"
				healthy = false
			} else {
				checks["workspace"] = "ok"
			}
		}

		status := http.StatusOK
		if !healthy {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, gin.H{"ok": healthy, "checks": checks})
	}
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

package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/warelogic/ims-backend/api/responses"
	"github.com/warelogic/ims-backend/pkg/config"
	"github.com/warelogic/ims-backend/pkg/db"
	"github.com/warelogic/ims-backend/pkg/logger"
	"github.com/warelogic/ims-backend/pkg/redis"
)

const readinessTimeout = 2 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-IMS-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the database and, when configured, the cache. A nil
// pinger is skipped so the API stays ready when redis is not deployed.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, cacheP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-IMS-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := map[string]string{}
		healthy := true
		for name, p := range map[string]interface{ Ping(context.Context) error }{
			"database": dbP,
			"cache":    cacheP,
		} {
			if p == nil {
				continue
			}
			if err := p.Ping(ctx); err != nil {
				checks[name] = "unreachable"
				healthy = false
				if logg != nil {
					logg.Error(ctx, "readiness check failed", err)
				}
				continue
			}
			checks[name] = "ok"
		}

		status := "ready"
		code := http.StatusOK
		if !healthy {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		responses.WriteSuccessStatus(w, code, map[string]any{
			"status": status,
			"checks": checks,
		})
	}
}

package controllers

import (
	"net/http"

	"github.com/calebmorton/tradedocs-backend/api/responses"
	"github.com/calebmorton/tradedocs-backend/pkg/config"
	"github.com/calebmorton/tradedocs-backend/pkg/db"
	"github.com/calebmorton/tradedocs-backend/pkg/logger"
	"github.com/calebmorton/tradedocs-backend/pkg/redis"
)

const envHeader = "X-Tradedocs-Env"

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports readiness by pinging the datasources. A degraded
// dependency returns 503 with a per-dependency breakdown.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		checks := map[string]string{}
		healthy := true

		if dbP != nil {
			if err := dbP.Ping(r.Context()); err != nil {
				checks["database"] = err.Error()
				healthy = false
			} else {
				checks["database"] = "ok"
			}
		}
		if redisP != nil {
			if err := redisP.Ping(r.Context()); err != nil {
				checks["redis"] = err.Error()
				healthy = false
			} else {
				checks["redis"] = "ok"
			}
		}

		payload := map[string]any{"status": "ready", "checks": checks}
		if !healthy {
			payload["status"] = "degraded"
			if logg != nil {
				logg.Warn(r.Context(), "readiness check degraded")
			}
			responses.WriteSuccessStatus(w, http.StatusServiceUnavailable, payload)
			return
		}
		responses.WriteSuccess(w, payload)
	}
}

package controllers

import (
	"net/http"

	"github.com/tokopos/terminal-api/api/responses"
	"github.com/tokopos/terminal-api/pkg/config"
	pkgerrors "github.com/tokopos/terminal-api/pkg/errors"
	"github.com/tokopos/terminal-api/pkg/logger"
	"github.com/tokopos/terminal-api/pkg/redis"
	"github.com/tokopos/terminal-api/pkg/upstream"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-TokoPOS-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports readiness only when both Redis and the upstream POS
// backend answer. A terminal without either cannot open a register.
func HealthReady(cfg *config.Config, logg *logger.Logger, redisP redis.Pinger, upstreamP upstream.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-TokoPOS-Env", cfg.App.Env)

		checks := map[string]string{}
		healthy := true

		if redisP != nil {
			if err := redisP.Ping(r.Context()); err != nil {
				checks["redis"] = "down"
				healthy = false
			} else {
				checks["redis"] = "ok"
			}
		}
		if upstreamP != nil {
			if err := upstreamP.Ping(r.Context()); err != nil {
				checks["upstream"] = "down"
				healthy = false
			} else {
				checks["upstream"] = "ok"
			}
		}

		if !healthy {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeDependency, "dependencies unavailable").
					WithDetails(checks))
			return
		}

		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}

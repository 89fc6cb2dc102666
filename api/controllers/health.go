package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/foodcart/api/responses"
	"github.com/angelmondragon/foodcart/pkg/config"
	pkgerrors "github.com/angelmondragon/foodcart/pkg/errors"
	"github.com/angelmondragon/foodcart/pkg/logger"
	"github.com/angelmondragon/foodcart/pkg/redis"
)

const readinessTimeout = 2 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Foodcart-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready once the optional catalog cache answers a ping.
func HealthReady(cfg *config.Config, cache redis.Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Foodcart-Env", cfg.App.Env)

		checks := map[string]string{"redis": "disabled"}
		if cache != nil {
			ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
			defer cancel()
			if err := cache.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unavailable").
					WithDetails(map[string]string{"redis": "down"}))
				return
			}
			checks["redis"] = "ok"
		}

		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}

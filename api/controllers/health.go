package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/MoxiumTech/EcoReactAdmin-sub001/api/responses"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/config"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/db"
	pkgerrors "github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/errors"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/logger"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-EcoReact-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady verifies the datastores the order core depends on.
func HealthReady(cfg *config.Config, logg *logger.Logger, pingers ...db.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-EcoReact-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		for _, pinger := range pingers {
			if pinger == nil {
				continue
			}
			if err := pinger.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "dependency not ready"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}

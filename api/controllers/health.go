package controllers

import (
	"net/http"

	"github.com/justgold/justgold-backend/api/responses"
	"github.com/justgold/justgold-backend/pkg/cache"
	"github.com/justgold/justgold-backend/pkg/config"
	"github.com/justgold/justgold-backend/pkg/db"
	pkgerrors "github.com/justgold/justgold-backend/pkg/errors"
	"github.com/justgold/justgold-backend/pkg/logger"
)

const envHeader = "X-JustGold-Env"

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports dependency status. The database is required; the
// cache is advisory and only reported, never failing readiness.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, cacheP cache.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		checks := map[string]string{"db": "ok", "cache": "ok"}

		if dbP == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "database not wired"))
			return
		}
		if err := dbP.Ping(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unavailable"))
			return
		}

		if cacheP == nil {
			checks["cache"] = "disabled"
		} else if err := cacheP.Ping(r.Context()); err != nil {
			checks["cache"] = "unavailable"
			if logg != nil {
				logg.Warn(logg.WithField(r.Context(), "error", err.Error()), "cache ping failed")
			}
		}

		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}

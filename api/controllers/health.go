package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/keranjangku/keranjangku-backend/api/responses"
	pkgerrors "github.com/keranjangku/keranjangku-backend/pkg/errors"
	"github.com/keranjangku/keranjangku-backend/pkg/logger"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// HealthLive reports process liveness.
func HealthLive() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports readiness by pinging the hard dependencies.
func HealthReady(logg *logger.Logger, deps map[string]pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" unavailable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}

// ReadinessDeps bundles the dependency pingers for HealthReady.
func ReadinessDeps(db, cache, broker pinger) map[string]pinger {
	return map[string]pinger{
		"database": db,
		"redis":    cache,
		"pubsub":   broker,
	}
}

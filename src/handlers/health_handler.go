package handlers

import (
	"context"
	"net/http"
	"spendtracker/src/logger"
	"spendtracker/src/util"
	"time"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

func Health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			logger.FromContext(r.Context()).Error().Err(err).Msg("Health check failed")
			util.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"}, "Database connection failed")
			return
		}
		util.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"}, "")
	}
}

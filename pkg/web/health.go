package web

import (
	"context"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/erfanjahi0/pulsechat/pkg/db"
	"github.com/gorilla/mux"
)

// HealthController registers the health check routes for the web server.
func HealthController(_ context.Context, r *mux.Router) {
	r.HandleFunc("/livez", getLiveness).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/readyz", getReadiness).Methods(http.MethodGet, http.MethodHead)
}

func getLiveness(w http.ResponseWriter, _ *http.Request) {
	renderStatus(http.StatusOK)(w, nil)
}

func getReadiness(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dbx := db.FromContext(ctx)

	errs := make([]error, 0)
	if dbx == nil {
		errs = append(errs, fmt.Errorf("readiness check failed: no database"))
	} else if err := dbx.PingContext(ctx); err != nil {
		errs = append(errs, fmt.Errorf("readiness check failed: %w", err))
	}

	if len(errs) > 0 {
		log.FromContext(ctx).Warn("not ready", "errs", errs)
		renderStatus(http.StatusServiceUnavailable)(w, nil)
		return
	}

	renderStatus(http.StatusOK)(w, nil)
}

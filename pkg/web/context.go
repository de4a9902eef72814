package web

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/erfanjahi0/pulsechat/pkg/backend"
	"github.com/erfanjahi0/pulsechat/pkg/config"
	"github.com/erfanjahi0/pulsechat/pkg/db"
)

// NewContextHandler returns a new context middleware.
// This middleware adds the config, backend, database, and a request scoped
// logger to the request context.
func NewContextHandler(ctx context.Context) func(http.Handler) http.Handler {
	cfg := config.FromContext(ctx)
	be := backend.FromContext(ctx)
	logger := log.FromContext(ctx).WithPrefix("http")
	dbx := db.FromContext(ctx)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ctx = config.WithContext(ctx, cfg)
			ctx = backend.WithContext(ctx, be)
			ctx = db.WithContext(ctx, dbx)
			ctx = log.WithContext(ctx, logger.With(
				"method", r.Method,
				"path", r.URL.Path,
			))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

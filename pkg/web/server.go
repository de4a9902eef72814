package web

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// NewRouter returns a new HTTP router.
func NewRouter(ctx context.Context) http.Handler {
	logger := log.FromContext(ctx).WithPrefix("http")
	router := mux.NewRouter()

	// Health routes
	HealthController(ctx, router)

	// API routes
	api := router.PathPrefix("/v1").Subrouter()
	AccountController(ctx, api)
	HandleController(ctx, api)

	// Subrouters report their own misses.
	for _, r := range []*mux.Router{router, api} {
		r.NotFoundHandler = http.HandlerFunc(renderNotFound)
		r.MethodNotAllowedHandler = http.HandlerFunc(renderMethodNotAllowed)
	}

	// Context handler
	// Adds context to the request
	h := NewLoggingMiddleware(router, logger)
	h = NewContextHandler(ctx)(h)
	h = handlers.CompressHandler(h)
	h = handlers.RecoveryHandler()(h)

	return h
}

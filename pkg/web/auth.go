package web

import (
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/erfanjahi0/pulsechat/pkg/backend"
	"github.com/erfanjahi0/pulsechat/pkg/proto"
)

// withAccount authenticates the request with a bearer session token and adds
// the account to the request context.
func withAccount(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := log.FromContext(ctx).WithPrefix("http.auth")
		be := backend.FromContext(ctx)

		bearer, ok := parseBearer(r.Header.Get("Authorization"))
		if !ok {
			logger.Debug("no bearer token")
			renderError(w, r, proto.ErrUnauthorized)
			return
		}

		acc, err := be.AccountFromToken(ctx, bearer)
		if err != nil {
			logger.Debug("invalid session", "err", err)
			renderError(w, r, err)
			return
		}

		ctx = proto.WithAccountContext(ctx, acc)
		ctx = log.WithContext(ctx, log.FromContext(ctx).With("account", acc.ID()))
		next(w, r.WithContext(ctx))
	}
}

func parseBearer(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

package web

import (
	"context"
	"net/http"

	"github.com/erfanjahi0/pulsechat/pkg/backend"
	"github.com/erfanjahi0/pulsechat/pkg/proto"
	"github.com/gorilla/mux"
)

// AccountController registers the account and session routes.
func AccountController(_ context.Context, r *mux.Router) {
	r.HandleFunc("/accounts", postAccount).Methods(http.MethodPost)
	r.HandleFunc("/sessions", postSession).Methods(http.MethodPost)
	r.HandleFunc("/accounts/me", withAccount(getMe)).Methods(http.MethodGet)
}

func postAccount(w http.ResponseWriter, r *http.Request) {
	var req proto.CreateAccountRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	acc, err := backend.FromContext(ctx).CreateAccount(ctx, proto.AccountOptions{
		ID:          req.ID,
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Password:    req.Password,
		Handle:      req.Handle,
	})
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusCreated, proto.NewAccountResponse(acc))
}

func postSession(w http.ResponseWriter, r *http.Request) {
	var req proto.SessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	be := backend.FromContext(ctx)
	acc, err := be.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		renderError(w, r, err)
		return
	}

	token, expiresAt, err := be.IssueToken(ctx, acc)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusCreated, proto.SessionResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Account:   proto.NewAccountResponse(acc),
	})
}

func getMe(w http.ResponseWriter, r *http.Request) {
	acc := proto.AccountFromContext(r.Context())
	renderJSON(w, http.StatusOK, proto.NewAccountResponse(acc))
}

package web

import (
	"context"
	"net/http"

	"github.com/erfanjahi0/pulsechat/pkg/backend"
	"github.com/erfanjahi0/pulsechat/pkg/proto"
	"github.com/erfanjahi0/pulsechat/pkg/utils"
	"github.com/gorilla/mux"
)

// HandleController registers the handle reservation routes.
func HandleController(_ context.Context, r *mux.Router) {
	r.HandleFunc("/accounts/me/handle", withAccount(postHandle)).Methods(http.MethodPost)
	r.HandleFunc("/accounts/me/handle", withAccount(putHandle)).Methods(http.MethodPut)
	r.HandleFunc("/handles/{handle}", getHandle).Methods(http.MethodGet)
	r.HandleFunc("/handles/{handle}/availability", getAvailability).Methods(http.MethodGet)
}

func postHandle(w http.ResponseWriter, r *http.Request) {
	var req proto.HandleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	acc := proto.AccountFromContext(ctx)
	res, err := backend.FromContext(ctx).ReserveInitialHandle(ctx, acc.ID(), req.Handle)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusCreated, res)
}

func putHandle(w http.ResponseWriter, r *http.Request) {
	var req proto.HandleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	acc := proto.AccountFromContext(ctx)
	res, err := backend.FromContext(ctx).ReserveHandleChange(ctx, acc.ID(), req.Handle, req.OldHandle)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, res)
}

func getHandle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	handle := utils.NormalizeHandle(mux.Vars(r)["handle"])
	id, err := backend.FromContext(ctx).AccountIDByHandle(ctx, handle)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, proto.HandleLookupResponse{
		Handle:    handle,
		AccountID: id,
	})
}

func getAvailability(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	handle := utils.NormalizeHandle(mux.Vars(r)["handle"])
	accountID := r.URL.Query().Get("account_id")
	ok, err := backend.FromContext(ctx).IsHandleAvailable(ctx, handle, accountID)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, proto.AvailabilityResponse{
		Handle:    handle,
		Available: ok,
	})
}

package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/erfanjahi0/pulsechat/pkg/proto"
)

const maxBodyBytes = 1 << 20

func renderStatus(code int) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(code)
		io.WriteString(w, fmt.Sprintf("%d %s", code, http.StatusText(code))) //nolint:errcheck,gosec
	}
}

func renderJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("error encoding json", "err", err)
	}
}

func renderNotFound(w http.ResponseWriter, _ *http.Request) {
	renderJSON(w, http.StatusNotFound, proto.ErrorResponse{
		Code:    proto.CodeNotFound,
		Message: http.StatusText(http.StatusNotFound),
	})
}

func renderMethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	renderJSON(w, http.StatusMethodNotAllowed, proto.ErrorResponse{
		Code:    proto.CodeBadRequest,
		Message: http.StatusText(http.StatusMethodNotAllowed),
	})
}

func renderBadRequest(w http.ResponseWriter, msg string) {
	renderJSON(w, http.StatusBadRequest, proto.ErrorResponse{
		Code:    proto.CodeBadRequest,
		Message: msg,
	})
}

// renderError writes err as an API error response.
func renderError(w http.ResponseWriter, r *http.Request, err error) {
	res := proto.ErrorResponse{
		Code:    proto.ErrorCode(err),
		Message: err.Error(),
	}

	var status int
	switch res.Code {
	case proto.CodeInvalidHandle, proto.CodeInvalidAccount:
		status = http.StatusUnprocessableEntity
	case proto.CodeHandleTaken, proto.CodeAccountExists, proto.CodeAccountHasHandle, proto.CodeStaleHandle:
		status = http.StatusConflict
	case proto.CodeCooldownActive:
		status = http.StatusTooManyRequests
		var cerr *proto.CooldownError
		if errors.As(err, &cerr) {
			res.DaysRemaining = cerr.DaysRemaining
			res.RetryAfter = int64(math.Ceil(cerr.Remaining.Seconds()))
		}
	case proto.CodeStorageUnavailable, proto.CodeTransactionConflict:
		status = http.StatusServiceUnavailable
		res.RetryAfter = 1
	case proto.CodeUnauthorized, proto.CodeInvalidCredentials, proto.CodeTokenExpired:
		status = http.StatusUnauthorized
		w.Header().Set("WWW-Authenticate", `Bearer realm="pulse"`)
	case proto.CodeAccountNotFound, proto.CodeHandleNotFound:
		status = http.StatusNotFound
	default:
		log.FromContext(r.Context()).Error("internal error", "err", err)
		status = http.StatusInternalServerError
		res.Message = http.StatusText(status)
	}

	if res.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.FormatInt(res.RetryAfter, 10))
	}

	renderJSON(w, status, res)
}

// decodeJSON decodes the request body into v. It reports false and writes a
// bad request response on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		renderBadRequest(w, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

// Package v1handler serves the v1 subscription endpoints.
package v1handler

import (
	"context"
	"net/http"

	"domainwatch/internal/subscription"
	"domainwatch/pkg/logger"
	"domainwatch/pkg/serrors"

	"github.com/go-faster/jx"
	"go.uber.org/zap"
)

// Deps are the services the handlers delegate to.
type Deps struct {
	Subscriptions subscription.Service
}

// Handler implements the v1 endpoints.
type Handler struct {
	deps Deps
}

// New creates a Handler backed by deps.
func New(deps Deps) *Handler {
	return &Handler{deps: deps}
}

// Register adds the v1 routes, and the legacy script paths linked from
// emails already sent, to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	for _, method := range []string{http.MethodGet, http.MethodPost} {
		mux.HandleFunc(method+" /v1/confirm", h.Confirm)
		mux.HandleFunc(method+" /v1/unsubscribe", h.Unsubscribe)
		mux.HandleFunc(method+" /confirm.php", h.Confirm)
		mux.HandleFunc(method+" /unsubscribe.php", h.Unsubscribe)
	}
}

// StatusCode maps the kind of err to an HTTP status code.
func StatusCode(err error) int {
	switch serrors.KindOf(err) {
	case nil:
		return http.StatusOK
	case serrors.ErrBadRequest:
		return http.StatusBadRequest
	case serrors.ErrRecordNotFound:
		return http.StatusNotFound
	case serrors.ErrDuplicateRecord:
		return http.StatusConflict
	case serrors.ErrValidation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeResult(ctx context.Context, w http.ResponseWriter, res subscription.Result) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	res.Encode(e)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(StatusCode(res.Err()))
	if _, err := w.Write(e.Bytes()); err != nil {
		logger.Warn(ctx, "could not write response", zap.Error(err))
	}
}

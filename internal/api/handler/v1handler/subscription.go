package v1handler

import (
	"net/http"
	"strings"

	"domainwatch/internal/subscription"
	"domainwatch/pkg/controller"
	"domainwatch/pkg/serrors"
)

const msgMissingID = "Missing subscription id."

// subscriptionID reads the "id" query or form parameter.
func subscriptionID(r *http.Request) (string, bool) {
	id := strings.TrimSpace(r.FormValue("id"))

	return id, id != ""
}

func missingID() subscription.Result {
	return subscription.Failed(serrors.With(serrors.ErrBadRequest, "missing id"), msgMissingID)
}

// Confirm handles GET|POST /v1/confirm?id=<id>.
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	id, ok := subscriptionID(r)
	if !ok {
		h.writeResult(r.Context(), w, missingID())

		return
	}

	h.writeResult(r.Context(), w, h.deps.Subscriptions.Confirm(r.Context(), id, controller.ClientIP(r)))
}

// Unsubscribe handles GET|POST /v1/unsubscribe?id=<id>.
func (h *Handler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	id, ok := subscriptionID(r)
	if !ok {
		h.writeResult(r.Context(), w, missingID())

		return
	}

	h.writeResult(r.Context(), w, h.deps.Subscriptions.Unsubscribe(r.Context(), id, controller.ClientIP(r)))
}

package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"
)

// dayFormat is the wire format for calendar day query parameters.
const dayFormat = "2006-01-02"

func (h *Handler) listConfirmed(w http.ResponseWriter, r *http.Request) {
	day := time.Now()
	if raw := r.URL.Query().Get("day"); raw != "" {
		parsed, err := time.ParseInLocation(dayFormat, raw, time.Local)
		if err != nil {
			writeBadRequest(w, errors.Wrap(err, "parse day"))
			return
		}
		day = parsed
	}

	orders, err := h.confirmed.ListByDay(r.Context(), day)
	if err != nil {
		writeError(w, r, err)
		return
	}
	views := make([]confirmedOrderView, len(orders))
	for i := range orders {
		views[i] = confirmedView(&orders[i])
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": views})
}

// correctConfirmed adjusts a line item quantity on an already confirmed
// order. The recalculated order keeps the discount percentage it was
// confirmed with.
func (h *Handler) correctConfirmed(w http.ResponseWriter, r *http.Request) {
	index, err := pathIndex(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	var req changeQuantityRequest
	if err := readJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	res, err := h.orders.CorrectQuantity(r.Context(), r.PathValue("id"), index, req.Delta)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.events.Publish(r.Context(), res.Events...)
	writeJSON(w, http.StatusOK, confirmedView(res.Order))
}

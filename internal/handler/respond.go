package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/dhabalabs/pos-server/internal/domain/auth"
	"github.com/dhabalabs/pos-server/internal/domain/discount"
	"github.com/dhabalabs/pos-server/internal/domain/menu"
	"github.com/dhabalabs/pos-server/internal/domain/order"
)

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError maps a domain error onto the HTTP taxonomy. Internal failures
// are logged and returned as an opaque 500 so repository details never leak
// to clients.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		zctx.From(r.Context()).Error("Request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		msg = "internal server error"
	}
	writeJSON(w, status, errorResponse{Code: status, Message: msg})
}

func statusFor(err error) int {
	var (
		itemErr    *order.InvalidLineItemError
		limitErr   *order.DiscountExceedsLimitError
		splitErr   *order.PaymentSplitMismatchError
		confirmErr *order.ConfirmationFailedError
	)
	switch {
	case errors.Is(err, auth.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, menu.ErrNotFound),
		errors.Is(err, discount.ErrNoActiveRule):
		return http.StatusNotFound
	case errors.Is(err, order.ErrEmptyItems):
		return http.StatusBadRequest
	case errors.Is(err, order.ErrInvalidQuantity),
		errors.Is(err, order.ErrItemIndex),
		errors.Is(err, order.ErrInvalidPercentage),
		errors.As(err, &itemErr),
		errors.As(err, &limitErr),
		errors.As(err, &splitErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &confirmErr):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// readJSON decodes a request body, rejecting unknown fields so client typos
// surface as 400s instead of silently ignored input.
func readJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.Wrap(err, "decode request body")
	}
	return nil
}

func writeBadRequest(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, errorResponse{
		Code:    http.StatusBadRequest,
		Message: err.Error(),
	})
}

package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/dhabalabs/pos-server/internal/domain/discount"
)

func (h *Handler) getDiscountRule(w http.ResponseWriter, r *http.Request) {
	rule, err := h.rules.Active(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ruleView(rule))
}

type setRuleRequest struct {
	Percentage     decimal.Decimal `json:"percentage"`
	MinOrderAmount decimal.Decimal `json:"minOrderAmount"`
}

var hundred = decimal.NewFromInt(100)

func (h *Handler) setDiscountRule(w http.ResponseWriter, r *http.Request) {
	var req setRuleRequest
	if err := readJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	if req.Percentage.IsNegative() || req.Percentage.GreaterThan(hundred) {
		writeBadRequest(w, errors.New("percentage must be between 0 and 100"))
		return
	}
	if req.MinOrderAmount.IsNegative() {
		writeBadRequest(w, errors.New("minOrderAmount must not be negative"))
		return
	}

	rule, err := h.rules.Set(r.Context(), discount.Rule{
		Percentage:     req.Percentage,
		MinOrderAmount: req.MinOrderAmount,
		Active:         true,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ruleView(rule))
}

func (h *Handler) deleteDiscountRule(w http.ResponseWriter, r *http.Request) {
	if err := h.rules.Deactivate(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dhabalabs/pos-server/internal/domain/menu"
)

// listMenu returns the orderable catalog for worker devices. Items marked
// unavailable are hidden; admins manage them through the admin routes.
func (h *Handler) listMenu(w http.ResponseWriter, r *http.Request) {
	items, err := h.menu.ListAvailable(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	views := make([]menuItemView, len(items))
	for i, item := range items {
		views[i] = menuView(item)
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": views})
}

type menuItemRequest struct {
	Name      string          `json:"name"`
	Variant   string          `json:"variant"`
	Price     decimal.Decimal `json:"price"`
	Category  string          `json:"category"`
	Available *bool           `json:"available,omitempty"`
}

func (req menuItemRequest) toItem(id string) (*menu.Item, error) {
	variant := menu.Variant(req.Variant)
	if !variant.Valid() {
		return nil, errors.Errorf("unknown variant %q", req.Variant)
	}
	if req.Name == "" {
		return nil, errors.New("name is required")
	}
	if req.Price.IsNegative() {
		return nil, errors.New("price must not be negative")
	}
	available := true
	if req.Available != nil {
		available = *req.Available
	}
	return &menu.Item{
		ID:        id,
		Name:      req.Name,
		Variant:   variant,
		Price:     req.Price,
		Category:  req.Category,
		Available: available,
	}, nil
}

func (h *Handler) createMenuItem(w http.ResponseWriter, r *http.Request) {
	var req menuItemRequest
	if err := readJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	item, err := req.toItem(uuid.NewString())
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	if err := h.menu.Create(r.Context(), item); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, menuView(*item))
}

func (h *Handler) updateMenuItem(w http.ResponseWriter, r *http.Request) {
	var req menuItemRequest
	if err := readJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	item, err := req.toItem(r.PathValue("id"))
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	if err := h.menu.Update(r.Context(), item); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, menuView(*item))
}

func (h *Handler) deleteMenuItem(w http.ResponseWriter, r *http.Request) {
	if err := h.menu.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

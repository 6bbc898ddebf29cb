package handler

import (
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/dhabalabs/pos-server/internal/domain/menu"
	"github.com/dhabalabs/pos-server/internal/domain/order"
)

type lineItemInput struct {
	Name      string          `json:"name"`
	Variant   string          `json:"variant"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
}

func toLineItems(inputs []lineItemInput) []order.LineItem {
	items := make([]order.LineItem, len(inputs))
	for i, in := range inputs {
		items[i] = order.LineItem{
			Name:      in.Name,
			Variant:   menu.Variant(in.Variant),
			UnitPrice: in.UnitPrice,
			Quantity:  in.Quantity,
		}
	}
	return items
}

type createOrderRequest struct {
	Items          []lineItemInput  `json:"items"`
	ManualDiscount *decimal.Decimal `json:"manualDiscount,omitempty"`
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := readJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	manual := decimal.Zero
	if req.ManualDiscount != nil {
		manual = *req.ManualDiscount
	}

	res, err := h.orders.Create(r.Context(), toLineItems(req.Items), manual)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.events.Publish(r.Context(), res.Events...)
	writeJSON(w, http.StatusCreated, pendingView(res.Order))
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	views := make([]pendingOrderView, len(orders))
	for i := range orders {
		views[i] = pendingView(&orders[i])
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": views})
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	po, err := h.orders.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pendingView(po))
}

type addItemsRequest struct {
	Items []lineItemInput `json:"items"`
	// Dedupe drops items already present on the order, absorbing retried
	// submissions from flaky worker connections.
	Dedupe bool `json:"dedupe,omitempty"`
}

func (h *Handler) addItems(w http.ResponseWriter, r *http.Request) {
	var req addItemsRequest
	if err := readJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	res, err := h.orders.AddItems(r.Context(), r.PathValue("id"), toLineItems(req.Items), req.Dedupe)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.events.Publish(r.Context(), res.Events...)
	writeJSON(w, http.StatusOK, pendingView(res.Order))
}

type changeQuantityRequest struct {
	Delta int `json:"delta"`
}

// mutationResponse reports the outcome of a mutation that may have removed
// the whole order.
type mutationResponse struct {
	Deleted bool              `json:"deleted"`
	Order   *pendingOrderView `json:"order,omitempty"`
}

func (h *Handler) changeQuantity(w http.ResponseWriter, r *http.Request) {
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

	res, err := h.orders.SetItemQuantity(r.Context(), r.PathValue("id"), index, req.Delta)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.events.Publish(r.Context(), res.Events...)
	writeMutation(w, res)
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	index, err := pathIndex(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	res, err := h.orders.RemoveItem(r.Context(), r.PathValue("id"), index)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.events.Publish(r.Context(), res.Events...)
	writeMutation(w, res)
}

type setDiscountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (h *Handler) setManualDiscount(w http.ResponseWriter, r *http.Request) {
	var req setDiscountRequest
	if err := readJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	res, err := h.orders.SetManualDiscount(r.Context(), r.PathValue("id"), req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.events.Publish(r.Context(), res.Events...)
	writeJSON(w, http.StatusOK, pendingView(res.Order))
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	res, err := h.orders.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.events.Publish(r.Context(), res.Events...)
	writeJSON(w, http.StatusOK, mutationResponse{Deleted: true})
}

type confirmOrderRequest struct {
	PaymentMethod      string           `json:"paymentMethod"`
	IsPaid             bool             `json:"isPaid"`
	ManualDiscount     *decimal.Decimal `json:"manualDiscount,omitempty"`
	DiscountPercentage *decimal.Decimal `json:"discountPercentage,omitempty"`
	CashAmount         *decimal.Decimal `json:"cashAmount,omitempty"`
	OnlineAmount       *decimal.Decimal `json:"onlineAmount,omitempty"`
}

func (h *Handler) confirmOrder(w http.ResponseWriter, r *http.Request) {
	var req confirmOrderRequest
	if err := readJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	method := order.PaymentMethod(req.PaymentMethod)
	if !method.Valid() {
		writeBadRequest(w, errors.Errorf("unknown payment method %q", req.PaymentMethod))
		return
	}

	res, err := h.orders.Confirm(r.Context(), order.ConfirmRequest{
		OrderID:            r.PathValue("id"),
		PaymentMethod:      method,
		IsPaid:             req.IsPaid,
		ManualDiscount:     req.ManualDiscount,
		DiscountPercentage: req.DiscountPercentage,
		CashAmount:         req.CashAmount,
		OnlineAmount:       req.OnlineAmount,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.events.Publish(r.Context(), res.Events...)
	writeJSON(w, http.StatusOK, confirmedView(res.Order))
}

func writeMutation(w http.ResponseWriter, res *order.MutationResult) {
	if res.Deleted {
		writeJSON(w, http.StatusOK, mutationResponse{Deleted: true})
		return
	}
	view := pendingView(res.Order)
	writeJSON(w, http.StatusOK, mutationResponse{Order: &view})
}

func pathIndex(r *http.Request) (int, error) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		return 0, errors.Wrap(err, "parse item index")
	}
	return index, nil
}

// Package handler exposes the POS over HTTP. Worker routes authenticate with
// a provisioned device key, admin routes with a bearer token; both groups
// delegate all business logic to the domain services and only translate
// between JSON and domain types.
package handler

import (
	"net/http"

	"github.com/dhabalabs/pos-server/internal/domain/auth"
	"github.com/dhabalabs/pos-server/internal/domain/discount"
	"github.com/dhabalabs/pos-server/internal/domain/menu"
	"github.com/dhabalabs/pos-server/internal/domain/order"
	"github.com/dhabalabs/pos-server/internal/domain/report"
	"github.com/dhabalabs/pos-server/internal/events"
)

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// DeviceKeyPepper is the HMAC pepper device keys are hashed with.
	DeviceKeyPepper []byte
	// AdminPasswordHash is the bcrypt hash admin logins are checked against.
	AdminPasswordHash string
}

// Handler wires the HTTP surface to the domain layer.
type Handler struct {
	orders    *order.Service
	confirmed order.ConfirmedRepository
	menu      menu.Repository
	rules     discount.Repository
	reports   report.Repository
	devices   auth.DeviceRepository
	tokens    *auth.TokenIssuer
	events    events.Publisher

	pepper            []byte
	adminPasswordHash string
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	cfg Config,
	orders *order.Service,
	confirmed order.ConfirmedRepository,
	menuRepo menu.Repository,
	rules discount.Repository,
	reports report.Repository,
	devices auth.DeviceRepository,
	tokens *auth.TokenIssuer,
	publisher events.Publisher,
) *Handler {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Handler{
		orders:            orders,
		confirmed:         confirmed,
		menu:              menuRepo,
		rules:             rules,
		reports:           reports,
		devices:           devices,
		tokens:            tokens,
		events:            publisher,
		pepper:            cfg.DeviceKeyPepper,
		adminPasswordHash: cfg.AdminPasswordHash,
	}
}

// Routes returns the full route table. Method and path matching is done by
// the mux; handlers only read path values and bodies.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	// Worker surface, device key required.
	mux.Handle("POST /api/orders", h.requireDevice(h.createOrder))
	mux.Handle("GET /api/orders", h.requireDevice(h.listOrders))
	mux.Handle("GET /api/orders/{id}", h.requireDevice(h.getOrder))
	mux.Handle("POST /api/orders/{id}/items", h.requireDevice(h.addItems))
	mux.Handle("PATCH /api/orders/{id}/items/{index}", h.requireDevice(h.changeQuantity))
	mux.Handle("DELETE /api/orders/{id}/items/{index}", h.requireDevice(h.removeItem))
	mux.Handle("PUT /api/orders/{id}/discount", h.requireDevice(h.setManualDiscount))
	mux.Handle("DELETE /api/orders/{id}", h.requireDevice(h.deleteOrder))
	mux.Handle("POST /api/orders/{id}/confirm", h.requireDevice(h.confirmOrder))
	mux.Handle("GET /api/menu", h.requireDevice(h.listMenu))

	// Admin surface, bearer token required.
	mux.HandleFunc("POST /api/admin/login", h.adminLogin)
	mux.Handle("GET /api/confirmed", h.requireAdmin(h.listConfirmed))
	mux.Handle("PATCH /api/confirmed/{id}/items/{index}", h.requireAdmin(h.correctConfirmed))
	mux.Handle("GET /api/reports/daily", h.requireAdmin(h.dailyReport))
	mux.Handle("GET /api/reports/monthly", h.requireAdmin(h.monthlyReport))
	mux.Handle("GET /api/reports/top-items", h.requireAdmin(h.topItemsReport))
	mux.Handle("GET /api/discount-rule", h.requireAdmin(h.getDiscountRule))
	mux.Handle("PUT /api/discount-rule", h.requireAdmin(h.setDiscountRule))
	mux.Handle("DELETE /api/discount-rule", h.requireAdmin(h.deleteDiscountRule))
	mux.Handle("POST /api/menu", h.requireAdmin(h.createMenuItem))
	mux.Handle("PUT /api/menu/{id}", h.requireAdmin(h.updateMenuItem))
	mux.Handle("DELETE /api/menu/{id}", h.requireAdmin(h.deleteMenuItem))

	return mux
}

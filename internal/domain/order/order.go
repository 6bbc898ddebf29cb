// Package order implements the pending-order lifecycle: building an order
// item by item, keeping its discount and total amounts consistent on every
// mutation, and atomically promoting it to a confirmed, numbered order at
// payment time.
package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dhabalabs/pos-server/internal/domain/menu"
)

// LineItem is a single priced line of an order. LineTotal is always derived
// from UnitPrice and Quantity, never trusted from input.
type LineItem struct {
	Name      string          `json:"name"`
	Variant   menu.Variant    `json:"variant"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// SameProduct reports whether two line items refer to the same priced
// product, used for deduplicating retried submissions.
func (li LineItem) SameProduct(other LineItem) bool {
	return li.Name == other.Name &&
		li.Variant == other.Variant &&
		li.UnitPrice.Equal(other.UnitPrice)
}

// PendingOrder is an order awaiting payment confirmation. Its monetary fields
// are recomputed by Reconcile on every mutation; a pending order never
// persists with zero items.
type PendingOrder struct {
	ID                 string
	Items              []LineItem
	Subtotal           decimal.Decimal
	ManualDiscount     decimal.Decimal
	DiscountPercentage decimal.Decimal
	DiscountAmount     decimal.Decimal
	TotalAmount        decimal.Decimal
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// PaymentMethod enumerates how a confirmed order was paid.
type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentOnline PaymentMethod = "online"
	// PaymentCustom splits the total between cash and online amounts.
	PaymentCustom PaymentMethod = "custom"
)

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentOnline, PaymentCustom:
		return true
	}
	return false
}

// ConfirmedOrder is a paid, permanently numbered order. CreatedAt is
// inherited from the pending order so reporting reflects when the order was
// taken, not when it was paid.
type ConfirmedOrder struct {
	ID                 string
	OrderNumber        int
	Items              []LineItem
	Subtotal           decimal.Decimal
	ManualDiscount     decimal.Decimal
	DiscountPercentage decimal.Decimal
	DiscountAmount     decimal.Decimal
	TotalAmount        decimal.Decimal
	PaymentMethod      PaymentMethod
	CashAmount         decimal.Decimal
	OnlineAmount       decimal.Decimal
	IsPaid             bool
	CreatedAt          time.Time
	ConfirmedAt        time.Time
}

// PendingRepository defines persistence for pending orders. Update and
// Confirm serialize concurrent access per order via row locking in the
// backing store.
type PendingRepository interface {
	Create(ctx context.Context, po *PendingOrder) error
	Get(ctx context.Context, id string) (*PendingOrder, error)
	List(ctx context.Context) ([]PendingOrder, error)

	// Update locks the order row, applies fn to the loaded order, and
	// persists the result in the same transaction. When fn leaves the order
	// with zero items the row is deleted instead of updated. Returns
	// ErrOrderNotFound for an unknown id; any error from fn aborts the
	// transaction without persisting.
	Update(ctx context.Context, id string, fn func(po *PendingOrder) error) (*PendingOrder, error)

	// Delete removes the order. Returns ErrOrderNotFound for an unknown id.
	Delete(ctx context.Context, id string) error
}

// ConfirmedRepository defines persistence for confirmed orders.
type ConfirmedRepository interface {
	// Confirm atomically promotes the pending order with the given id:
	// it locks and loads the pending row, calls build to produce the
	// confirmed order, assigns the next per-day order number (scoped to the
	// pending order's creation day), inserts the confirmed order, and
	// deletes the pending row. Any failure rolls the whole transaction back.
	// Returns ErrOrderNotFound when no pending order exists; build errors
	// are propagated unwrapped.
	Confirm(ctx context.Context, id string, build func(po *PendingOrder) (*ConfirmedOrder, error)) (*ConfirmedOrder, error)

	Get(ctx context.Context, id string) (*ConfirmedOrder, error)
	ListByDay(ctx context.Context, day time.Time) ([]ConfirmedOrder, error)

	// Update locks and rewrites a confirmed order, for administrative
	// corrections. Returns ErrOrderNotFound for an unknown id.
	Update(ctx context.Context, id string, fn func(co *ConfirmedOrder) error) (*ConfirmedOrder, error)
}

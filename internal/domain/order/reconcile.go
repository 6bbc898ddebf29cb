package order

import (
	"github.com/shopspring/decimal"

	"github.com/dhabalabs/pos-server/internal/domain/discount"
)

var (
	hundred = decimal.NewFromInt(100)
	zero    = decimal.Zero
)

// Totals is the result of reconciling an order's items against the active
// discount rule and a manual discount.
type Totals struct {
	Subtotal           decimal.Decimal
	PercentageDiscount decimal.Decimal
	ManualDiscount     decimal.Decimal
	DiscountAmount     decimal.Decimal
	TotalAmount        decimal.Decimal
	// AppliedPercentage is the rule percentage when the subtotal met the
	// rule's threshold, zero otherwise.
	AppliedPercentage decimal.Decimal
}

// Reconcile derives consistent monetary totals for the given items. It is the
// single source of truth for an order's financial fields: the subtotal is
// always recomputed from unit price times quantity, the percentage discount
// applies only when the subtotal meets the rule's minimum, and the manual
// discount may never push the total below zero.
//
// rule may be nil when no discount rule is active. Amounts are in whole
// rupees; the percentage discount rounds half away from zero to the nearest
// rupee.
//
// Returns *InvalidLineItemError for a negative unit price or non-positive
// quantity, and *DiscountExceedsLimitError when manual exceeds what the order
// can absorb after the percentage discount.
func Reconcile(items []LineItem, rule *discount.Rule, manual decimal.Decimal) (Totals, error) {
	subtotal := zero
	for _, item := range items {
		if item.Quantity < 1 {
			return Totals{}, &InvalidLineItemError{Name: item.Name, Reason: "quantity must be at least 1"}
		}
		if item.UnitPrice.IsNegative() {
			return Totals{}, &InvalidLineItemError{Name: item.Name, Reason: "unit price must not be negative"}
		}
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	pctAmount := zero
	pct := zero
	if rule != nil && rule.Active && subtotal.GreaterThanOrEqual(rule.MinOrderAmount) {
		pct = rule.Percentage
		pctAmount = subtotal.Mul(pct).Div(hundred).Round(0)
		// A rule outside [0, 100] must never produce a discount outside
		// [0, subtotal]; the total stays non-negative whatever is stored.
		if pctAmount.IsNegative() {
			pctAmount = zero
		} else if pctAmount.GreaterThan(subtotal) {
			pctAmount = subtotal
		}
	}

	maxManual := subtotal.Sub(pctAmount)
	if maxManual.IsNegative() {
		maxManual = zero
	}

	if manual.IsNegative() {
		manual = zero
	}
	if manual.GreaterThan(maxManual) {
		return Totals{}, &DiscountExceedsLimitError{Requested: manual, Limit: maxManual}
	}

	discountAmount := pctAmount.Add(manual)

	return Totals{
		Subtotal:           subtotal,
		PercentageDiscount: pctAmount,
		ManualDiscount:     manual,
		DiscountAmount:     discountAmount,
		TotalAmount:        subtotal.Sub(discountAmount),
		AppliedPercentage:  pct,
	}, nil
}

// RecomputeLineTotals rewrites each item's LineTotal from its unit price and
// quantity, discarding whatever the caller supplied.
func RecomputeLineTotals(items []LineItem) {
	for i := range items {
		items[i].LineTotal = items[i].UnitPrice.Mul(decimal.NewFromInt(int64(items[i].Quantity)))
	}
}

// applyTotals copies reconciled totals onto a pending order.
func (po *PendingOrder) applyTotals(t Totals) {
	po.Subtotal = t.Subtotal
	po.ManualDiscount = t.ManualDiscount
	po.DiscountPercentage = t.AppliedPercentage
	po.DiscountAmount = t.DiscountAmount
	po.TotalAmount = t.TotalAmount
}

package order

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/dhabalabs/pos-server/internal/domain/discount"
)

// splitEpsilon is the largest tolerated difference between a custom payment
// split and the order total.
var splitEpsilon = decimal.RequireFromString("0.01")

// ConfirmRequest carries the checkout input for promoting a pending order.
// The override fields, when set, take precedence over the pending order's
// stored values to support last-moment discount changes at the counter.
type ConfirmRequest struct {
	OrderID       string
	PaymentMethod PaymentMethod
	IsPaid        bool

	ManualDiscount     *decimal.Decimal
	DiscountPercentage *decimal.Decimal

	// CashAmount and OnlineAmount split the total for PaymentCustom. Their
	// sum must equal the final total within splitEpsilon.
	CashAmount   *decimal.Decimal
	OnlineAmount *decimal.Decimal
}

// ConfirmResult is the outcome of a successful confirmation.
type ConfirmResult struct {
	Order  *ConfirmedOrder
	Events []Event
}

// Confirm atomically promotes a pending order into a confirmed, numbered
// order. The repository executes the whole promotion in one transaction:
// assigning the per-day order number, inserting the confirmed order, and
// deleting the pending row. On any failure the pending order is left intact
// and confirmable again; confirming an already-confirmed order reports
// ErrOrderNotFound, which is the at-most-once guarantee.
func (s *Service) Confirm(ctx context.Context, req ConfirmRequest) (*ConfirmResult, error) {
	if !req.PaymentMethod.Valid() {
		return nil, errors.Errorf("unknown payment method %q", req.PaymentMethod)
	}

	rule, err := s.activeRule(ctx)
	if err != nil {
		return nil, err
	}
	if req.DiscountPercentage != nil {
		// An override replaces the live rule and is stored on the confirmed
		// order, so it must satisfy the same bounds the admin endpoint
		// enforces when setting a rule.
		pct := *req.DiscountPercentage
		if pct.IsNegative() || pct.GreaterThan(hundred) {
			return nil, ErrInvalidPercentage
		}
		rule = &discount.Rule{Percentage: pct, Active: true}
	}

	co, err := s.confirmed.Confirm(ctx, req.OrderID, func(po *PendingOrder) (*ConfirmedOrder, error) {
		manual := po.ManualDiscount
		if req.ManualDiscount != nil {
			manual = *req.ManualDiscount
		}

		RecomputeLineTotals(po.Items)
		totals, err := Reconcile(po.Items, rule, manual)
		if err != nil {
			return nil, err
		}

		cash, online, err := paymentSplit(req, totals.TotalAmount)
		if err != nil {
			return nil, err
		}

		return &ConfirmedOrder{
			ID:                 po.ID,
			Items:              po.Items,
			Subtotal:           totals.Subtotal,
			ManualDiscount:     totals.ManualDiscount,
			DiscountPercentage: totals.AppliedPercentage,
			DiscountAmount:     totals.DiscountAmount,
			TotalAmount:        totals.TotalAmount,
			PaymentMethod:      req.PaymentMethod,
			CashAmount:         cash,
			OnlineAmount:       online,
			IsPaid:             req.IsPaid,
			CreatedAt:          po.CreatedAt,
			ConfirmedAt:        s.now(),
		}, nil
	})
	if err != nil {
		return nil, confirmError(req.OrderID, err)
	}

	return &ConfirmResult{Order: co, Events: []Event{confirmedEvent(co)}}, nil
}

// CorrectQuantity adjusts a line item quantity on an already confirmed order,
// an administrative flow that reuses the same reconciliation rules. The last
// remaining line item cannot be removed; a confirmed order always keeps at
// least one item.
func (s *Service) CorrectQuantity(ctx context.Context, id string, index, delta int) (*ConfirmResult, error) {
	co, err := s.confirmed.Update(ctx, id, func(co *ConfirmedOrder) error {
		if index < 0 || index >= len(co.Items) {
			return ErrItemIndex
		}
		newQty := co.Items[index].Quantity + delta
		if newQty <= 0 {
			if len(co.Items) == 1 {
				return ErrInvalidQuantity
			}
			co.Items = append(co.Items[:index], co.Items[index+1:]...)
		} else {
			co.Items[index].Quantity = newQty
		}

		// Reapply the percentage the order was confirmed with; the live rule
		// must not retroactively change a paid order.
		rule := &discount.Rule{Percentage: co.DiscountPercentage, Active: true}
		if co.DiscountPercentage.IsZero() {
			rule = nil
		}

		RecomputeLineTotals(co.Items)
		totals, err := Reconcile(co.Items, rule, co.ManualDiscount)
		if err != nil {
			var limitErr *DiscountExceedsLimitError
			if errors.As(err, &limitErr) {
				totals, err = Reconcile(co.Items, rule, limitErr.Limit)
			}
			if err != nil {
				return err
			}
		}
		co.Subtotal = totals.Subtotal
		co.ManualDiscount = totals.ManualDiscount
		co.DiscountAmount = totals.DiscountAmount
		co.TotalAmount = totals.TotalAmount
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &ConfirmResult{Order: co, Events: []Event{confirmedEvent(co)}}, nil
}

// paymentSplit attributes the final total to cash and online amounts
// according to the payment method.
func paymentSplit(req ConfirmRequest, total decimal.Decimal) (cash, online decimal.Decimal, err error) {
	switch req.PaymentMethod {
	case PaymentCash:
		return total, zero, nil
	case PaymentOnline:
		return zero, total, nil
	case PaymentCustom:
		if req.CashAmount != nil {
			cash = *req.CashAmount
		}
		if req.OnlineAmount != nil {
			online = *req.OnlineAmount
		}
		sum := cash.Add(online)
		if sum.Sub(total).Abs().GreaterThan(splitEpsilon) {
			return zero, zero, &PaymentSplitMismatchError{Want: total, Got: sum}
		}
		return cash, online, nil
	default:
		return zero, zero, errors.Errorf("unknown payment method %q", req.PaymentMethod)
	}
}

// confirmError classifies a confirmation failure: validation and not-found
// errors pass through untouched, anything else is a persistence failure
// wrapped as ConfirmationFailedError.
func confirmError(orderID string, err error) error {
	var (
		limitErr *DiscountExceedsLimitError
		splitErr *PaymentSplitMismatchError
		itemErr  *InvalidLineItemError
	)
	switch {
	case errors.Is(err, ErrOrderNotFound),
		errors.As(err, &limitErr),
		errors.As(err, &splitErr),
		errors.As(err, &itemErr):
		return err
	default:
		return &ConfirmationFailedError{OrderID: orderID, Cause: err}
	}
}

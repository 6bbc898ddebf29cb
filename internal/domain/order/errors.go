package order

import (
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors for order operations.
var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrEmptyItems        = errors.New("at least one item is required")
	ErrItemIndex         = errors.New("item index out of range")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrInvalidPercentage = errors.New("discount percentage must be between 0 and 100")
)

// InvalidLineItemError indicates a line item with a negative unit price or a
// non-positive quantity.
type InvalidLineItemError struct {
	Name   string
	Reason string
}

func (e *InvalidLineItemError) Error() string {
	return fmt.Sprintf("invalid line item %q: %s", e.Name, e.Reason)
}

// DiscountExceedsLimitError indicates a requested manual discount larger than
// the amount still coverable by the order. Limit is the maximum manual
// discount the order can absorb, so callers can choose to clamp or reject.
type DiscountExceedsLimitError struct {
	Requested decimal.Decimal
	Limit     decimal.Decimal
}

func (e *DiscountExceedsLimitError) Error() string {
	return fmt.Sprintf("manual discount %s exceeds limit %s", e.Requested, e.Limit)
}

// PaymentSplitMismatchError indicates custom payment amounts that do not add
// up to the order total.
type PaymentSplitMismatchError struct {
	Want decimal.Decimal
	Got  decimal.Decimal
}

func (e *PaymentSplitMismatchError) Error() string {
	return fmt.Sprintf("payment split %s does not match order total %s", e.Got, e.Want)
}

// ConfirmationFailedError wraps a persistence failure during order
// confirmation. The pending order is left intact and confirmable again.
type ConfirmationFailedError struct {
	OrderID string
	Cause   error
}

func (e *ConfirmationFailedError) Error() string {
	return fmt.Sprintf("confirming order %s: %v", e.OrderID, e.Cause)
}

func (e *ConfirmationFailedError) Unwrap() error { return e.Cause }

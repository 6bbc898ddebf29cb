// Package discount holds the promotional discount rule applied automatically
// to orders whose subtotal meets a minimum threshold. At most one rule is
// active at a time; the rule is always passed explicitly into order
// calculations, never read as ambient state.
package discount

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNoActiveRule is returned when no discount rule is currently active.
var ErrNoActiveRule = errors.New("no active discount rule")

// Rule is a percentage discount applied when an order's subtotal reaches
// MinOrderAmount.
type Rule struct {
	Percentage     decimal.Decimal
	MinOrderAmount decimal.Decimal
	Active         bool
	UpdatedAt      time.Time
}

// Repository provides access to the single active discount rule.
type Repository interface {
	// Active returns the currently active rule, or ErrNoActiveRule.
	Active(ctx context.Context) (*Rule, error)
	// Set replaces the active rule with the given one.
	Set(ctx context.Context, rule Rule) (*Rule, error)
	// Deactivate disables the active rule. Deactivating when no rule is
	// active is a no-op.
	Deactivate(ctx context.Context) error
}

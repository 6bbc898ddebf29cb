package order

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhabalabs/pos-server/internal/domain/discount"
	"github.com/dhabalabs/pos-server/internal/domain/menu"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func item(name string, price string, qty int) LineItem {
	return LineItem{
		Name:      name,
		Variant:   menu.VariantFull,
		UnitPrice: d(price),
		Quantity:  qty,
	}
}

func tenPercentOver50() *discount.Rule {
	return &discount.Rule{
		Percentage:     d("10"),
		MinOrderAmount: d("50"),
		Active:         true,
	}
}

func TestReconcile_NoDiscount(t *testing.T) {
	totals, err := Reconcile([]LineItem{item("Samosa", "20", 3)}, nil, decimal.Zero)

	require.NoError(t, err)
	assert.True(t, d("60").Equal(totals.Subtotal))
	assert.True(t, totals.DiscountAmount.IsZero())
	assert.True(t, d("60").Equal(totals.TotalAmount))
}

func TestReconcile_PercentageRule(t *testing.T) {
	totals, err := Reconcile([]LineItem{item("Samosa", "20", 3)}, tenPercentOver50(), decimal.Zero)

	require.NoError(t, err)
	assert.True(t, d("60").Equal(totals.Subtotal))
	assert.True(t, d("6").Equal(totals.PercentageDiscount))
	assert.True(t, d("54").Equal(totals.TotalAmount))
	assert.True(t, d("10").Equal(totals.AppliedPercentage))
}

func TestReconcile_PercentageBelowThreshold(t *testing.T) {
	totals, err := Reconcile([]LineItem{item("Samosa", "20", 2)}, tenPercentOver50(), decimal.Zero)

	require.NoError(t, err)
	assert.True(t, totals.PercentageDiscount.IsZero())
	assert.True(t, totals.AppliedPercentage.IsZero())
	assert.True(t, d("40").Equal(totals.TotalAmount))
}

func TestReconcile_PercentageRounding(t *testing.T) {
	// 55 * 10% = 5.5, rounds half away from zero to 6.
	totals, err := Reconcile([]LineItem{item("Chai", "11", 5)}, tenPercentOver50(), decimal.Zero)

	require.NoError(t, err)
	assert.True(t, d("6").Equal(totals.PercentageDiscount))
	assert.True(t, d("49").Equal(totals.TotalAmount))
}

func TestReconcile_ManualStacksOnPercentage(t *testing.T) {
	totals, err := Reconcile([]LineItem{item("Samosa", "20", 3)}, tenPercentOver50(), d("10"))

	require.NoError(t, err)
	assert.True(t, d("16").Equal(totals.DiscountAmount))
	assert.True(t, d("44").Equal(totals.TotalAmount))
}

func TestReconcile_ManualExceedsLimit(t *testing.T) {
	_, err := Reconcile([]LineItem{item("Samosa", "20", 3)}, tenPercentOver50(), d("100"))

	var limitErr *DiscountExceedsLimitError
	require.ErrorAs(t, err, &limitErr)
	assert.True(t, d("54").Equal(limitErr.Limit))
	assert.True(t, d("100").Equal(limitErr.Requested))
}

func TestReconcile_ManualAtExactLimit(t *testing.T) {
	totals, err := Reconcile([]LineItem{item("Samosa", "20", 3)}, tenPercentOver50(), d("54"))

	require.NoError(t, err)
	assert.True(t, totals.TotalAmount.IsZero())
}

func TestReconcile_NegativeManualTreatedAsZero(t *testing.T) {
	totals, err := Reconcile([]LineItem{item("Samosa", "20", 1)}, nil, d("-5"))

	require.NoError(t, err)
	assert.True(t, totals.ManualDiscount.IsZero())
	assert.True(t, d("20").Equal(totals.TotalAmount))
}

func TestReconcile_InactiveRuleIgnored(t *testing.T) {
	rule := tenPercentOver50()
	rule.Active = false

	totals, err := Reconcile([]LineItem{item("Samosa", "20", 3)}, rule, decimal.Zero)

	require.NoError(t, err)
	assert.True(t, totals.DiscountAmount.IsZero())
}

func TestReconcile_InvalidItems(t *testing.T) {
	tests := []struct {
		name string
		item LineItem
	}{
		{"zero quantity", item("Samosa", "20", 0)},
		{"negative quantity", item("Samosa", "20", -1)},
		{"negative price", item("Samosa", "-20", 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Reconcile([]LineItem{tt.item}, nil, decimal.Zero)

			var itemErr *InvalidLineItemError
			require.ErrorAs(t, err, &itemErr)
			assert.Equal(t, "Samosa", itemErr.Name)
		})
	}
}

func TestReconcile_TotalNeverNegative(t *testing.T) {
	// 100% discount rule with manual discount at the full remaining limit.
	rule := &discount.Rule{Percentage: d("100"), MinOrderAmount: decimal.Zero, Active: true}

	totals, err := Reconcile([]LineItem{item("Thali", "120", 2)}, rule, decimal.Zero)

	require.NoError(t, err)
	assert.False(t, totals.TotalAmount.IsNegative())
	assert.True(t, totals.TotalAmount.IsZero())
}

func TestReconcile_PercentageClampedToSubtotal(t *testing.T) {
	// A stored rule above 100% must not discount more than the order is worth.
	rule := &discount.Rule{Percentage: d("500"), MinOrderAmount: decimal.Zero, Active: true}

	totals, err := Reconcile([]LineItem{item("Samosa", "20", 3)}, rule, decimal.Zero)

	require.NoError(t, err)
	assert.True(t, d("60").Equal(totals.DiscountAmount))
	assert.True(t, totals.TotalAmount.IsZero())
}

func TestReconcile_NegativePercentageTreatedAsZero(t *testing.T) {
	rule := &discount.Rule{Percentage: d("-10"), MinOrderAmount: decimal.Zero, Active: true}

	totals, err := Reconcile([]LineItem{item("Samosa", "20", 3)}, rule, decimal.Zero)

	require.NoError(t, err)
	assert.True(t, totals.PercentageDiscount.IsZero())
	assert.True(t, d("60").Equal(totals.TotalAmount))
}

func TestRecomputeLineTotals_OverwritesClientValues(t *testing.T) {
	items := []LineItem{
		{Name: "Samosa", UnitPrice: d("20"), Quantity: 3, LineTotal: d("999")},
	}

	RecomputeLineTotals(items)

	assert.True(t, d("60").Equal(items[0].LineTotal))
}

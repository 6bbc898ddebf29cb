// Package report rolls confirmed paid orders up into sales summaries. It is
// strictly read-only: reporting consumes the orders the confirmation flow
// produces and never mutates them.
package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// DailySummary aggregates paid orders for one calendar day.
type DailySummary struct {
	Day       time.Time
	Orders    int
	Gross     decimal.Decimal
	Discounts decimal.Decimal
	Net       decimal.Decimal
}

// MonthlySummary aggregates paid orders for one calendar month.
type MonthlySummary struct {
	Month     time.Time
	Orders    int
	Gross     decimal.Decimal
	Discounts decimal.Decimal
	Net       decimal.Decimal
}

// TopItem is a best-selling dish over a reporting range, grouped by name and
// portion variant.
type TopItem struct {
	Name     string
	Variant  string
	Quantity int
	Revenue  decimal.Decimal
}

// Repository defines the read-only aggregation queries over confirmed orders.
// Only orders with isPaid set participate in any summary.
type Repository interface {
	Daily(ctx context.Context, from, to time.Time) ([]DailySummary, error)
	Monthly(ctx context.Context, year int) ([]MonthlySummary, error)
	TopItems(ctx context.Context, from, to time.Time, limit int) ([]TopItem, error)
}

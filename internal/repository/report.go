package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dhabalabs/pos-server/internal/domain/report"
)

const (
	dailyReportSQL = `SELECT order_day, COUNT(*), COALESCE(SUM(subtotal), 0),
			COALESCE(SUM(discount_amount), 0), COALESCE(SUM(total_amount), 0)
		FROM orders
		WHERE is_paid AND order_day BETWEEN $1 AND $2
		GROUP BY order_day
		ORDER BY order_day`

	monthlyReportSQL = `SELECT date_trunc('month', order_day)::date, COUNT(*),
			COALESCE(SUM(subtotal), 0), COALESCE(SUM(discount_amount), 0), COALESCE(SUM(total_amount), 0)
		FROM orders
		WHERE is_paid AND EXTRACT(YEAR FROM order_day) = $1
		GROUP BY 1
		ORDER BY 1`

	// Line items live in a JSONB column; expand them to group sales by dish.
	topItemsSQL = `SELECT item->>'name', item->>'variant',
			SUM((item->>'quantity')::int), SUM((item->>'quantity')::int * (item->>'unitPrice')::numeric)
		FROM orders, jsonb_array_elements(items) AS item
		WHERE is_paid AND order_day BETWEEN $1 AND $2
		GROUP BY 1, 2
		ORDER BY 3 DESC
		LIMIT $3`
)

var _ report.Repository = (*ReportRepository)(nil)

// ReportRepository implements report.Repository with read-only aggregation
// queries over confirmed orders.
type ReportRepository struct {
	pool *pgxpool.Pool
}

// NewReportRepository returns a ReportRepository that uses the given pool.
func NewReportRepository(pool *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{pool: pool}
}

// Daily returns per-day sales summaries for paid orders in [from, to].
func (r *ReportRepository) Daily(ctx context.Context, from, to time.Time) ([]report.DailySummary, error) {
	rows, err := r.pool.Query(ctx, dailyReportSQL, dayOf(from), dayOf(to))
	if err != nil {
		return nil, fmt.Errorf("daily sales report: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (report.DailySummary, error) {
		var s report.DailySummary
		err := row.Scan(&s.Day, &s.Orders, &s.Gross, &s.Discounts, &s.Net)
		return s, err
	})
}

// Monthly returns per-month sales summaries for paid orders in the given year.
func (r *ReportRepository) Monthly(ctx context.Context, year int) ([]report.MonthlySummary, error) {
	rows, err := r.pool.Query(ctx, monthlyReportSQL, year)
	if err != nil {
		return nil, fmt.Errorf("monthly sales report: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (report.MonthlySummary, error) {
		var s report.MonthlySummary
		err := row.Scan(&s.Month, &s.Orders, &s.Gross, &s.Discounts, &s.Net)
		return s, err
	})
}

// TopItems returns the best-selling dishes over [from, to], by quantity sold.
func (r *ReportRepository) TopItems(ctx context.Context, from, to time.Time, limit int) ([]report.TopItem, error) {
	rows, err := r.pool.Query(ctx, topItemsSQL, dayOf(from), dayOf(to), limit)
	if err != nil {
		return nil, fmt.Errorf("top items report: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (report.TopItem, error) {
		var t report.TopItem
		err := row.Scan(&t.Name, &t.Variant, &t.Quantity, &t.Revenue)
		return t, err
	})
}

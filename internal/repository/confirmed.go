package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dhabalabs/pos-server/internal/domain/order"
)

const (
	// nextOrderNumberSQL atomically increments and returns the per-day
	// counter. Executed inside the confirmation transaction, so two
	// confirmations racing on the same day serialize on the counter row and
	// can never observe the same number.
	nextOrderNumberSQL = `INSERT INTO order_day_counters (day, last_number) VALUES ($1, 1)
		ON CONFLICT (day) DO UPDATE SET last_number = order_day_counters.last_number + 1
		RETURNING last_number`

	insertConfirmedSQL = `INSERT INTO orders
		(id, order_day, order_number, items, subtotal, manual_discount, discount_percentage,
		 discount_amount, total_amount, payment_method, cash_amount, online_amount, is_paid,
		 created_at, confirmed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	confirmedColumns = `id, order_number, items, subtotal, manual_discount, discount_percentage,
		discount_amount, total_amount, payment_method, cash_amount, online_amount, is_paid,
		created_at, confirmed_at`

	getConfirmedSQL = `SELECT ` + confirmedColumns + ` FROM orders WHERE id = $1`

	listConfirmedByDaySQL = `SELECT ` + confirmedColumns + ` FROM orders
		WHERE order_day = $1 ORDER BY order_number`

	lockConfirmedSQL = `SELECT ` + confirmedColumns + ` FROM orders WHERE id = $1 FOR UPDATE`

	updateConfirmedSQL = `UPDATE orders SET
		items = $2, subtotal = $3, manual_discount = $4, discount_amount = $5, total_amount = $6
		WHERE id = $1`

	importConfirmedSQL = `INSERT INTO orders
		(id, order_day, order_number, items, subtotal, manual_discount, discount_percentage,
		 discount_amount, total_amount, payment_method, cash_amount, online_amount, is_paid,
		 created_at, confirmed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO NOTHING`

	syncDayCountersSQL = `INSERT INTO order_day_counters (day, last_number)
		SELECT order_day, MAX(order_number) FROM orders GROUP BY order_day
		ON CONFLICT (day) DO UPDATE SET
			last_number = GREATEST(order_day_counters.last_number, EXCLUDED.last_number)`
)

var _ order.ConfirmedRepository = (*ConfirmedOrderRepository)(nil)

// ConfirmedOrderRepository implements order.ConfirmedRepository backed by
// PostgreSQL.
type ConfirmedOrderRepository struct {
	pool *pgxpool.Pool
}

// NewConfirmedOrderRepository returns a ConfirmedOrderRepository that uses
// the given pool.
func NewConfirmedOrderRepository(pool *pgxpool.Pool) *ConfirmedOrderRepository {
	return &ConfirmedOrderRepository{pool: pool}
}

// Confirm promotes a pending order in a single transaction: lock the pending
// row, build the confirmed order, draw the next per-day number, insert, and
// delete the pending row. Rollback on any failure leaves the pending order
// untouched and confirmable again.
func (r *ConfirmedOrderRepository) Confirm(ctx context.Context, id string, build func(po *order.PendingOrder) (*order.ConfirmedOrder, error)) (*order.ConfirmedOrder, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning confirmation of order %q: %w", id, err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	rows, err := tx.Query(ctx, lockPendingSQL, id)
	if err != nil {
		return nil, fmt.Errorf("locking pending order %q: %w", id, err)
	}
	po, err := pgx.CollectExactlyOneRow(rows, scanPendingOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrOrderNotFound
		}
		return nil, fmt.Errorf("locking pending order %q: %w", id, err)
	}

	co, err := build(&po)
	if err != nil {
		return nil, err
	}

	// The number sequence is scoped to the day the order was taken, not the
	// day it is being paid.
	day := dayOf(co.CreatedAt)
	if err := tx.QueryRow(ctx, nextOrderNumberSQL, day).Scan(&co.OrderNumber); err != nil {
		return nil, fmt.Errorf("assigning order number for %q: %w", id, err)
	}

	itemsJSON, err := marshalItems(co.Items)
	if err != nil {
		return nil, err
	}
	_, err = tx.Exec(ctx, insertConfirmedSQL,
		co.ID, day, co.OrderNumber, itemsJSON, co.Subtotal, co.ManualDiscount,
		co.DiscountPercentage, co.DiscountAmount, co.TotalAmount, string(co.PaymentMethod),
		co.CashAmount, co.OnlineAmount, co.IsPaid, co.CreatedAt, co.ConfirmedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting confirmed order %q: %w", id, err)
	}

	tag, err := tx.Exec(ctx, deletePendingSQL, id)
	if err != nil {
		return nil, fmt.Errorf("deleting pending order %q: %w", id, err)
	}
	if tag.RowsAffected() != 1 {
		return nil, fmt.Errorf("deleting pending order %q: %w", id, order.ErrOrderNotFound)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing confirmation of order %q: %w", id, err)
	}
	return co, nil
}

// Get returns a confirmed order by id.
func (r *ConfirmedOrderRepository) Get(ctx context.Context, id string) (*order.ConfirmedOrder, error) {
	rows, err := r.pool.Query(ctx, getConfirmedSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting confirmed order %q: %w", id, err)
	}

	co, err := pgx.CollectExactlyOneRow(rows, scanConfirmedOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrOrderNotFound
		}
		return nil, fmt.Errorf("getting confirmed order %q: %w", id, err)
	}
	return &co, nil
}

// ListByDay returns the confirmed orders taken on the given calendar day,
// ordered by order number.
func (r *ConfirmedOrderRepository) ListByDay(ctx context.Context, day time.Time) ([]order.ConfirmedOrder, error) {
	rows, err := r.pool.Query(ctx, listConfirmedByDaySQL, dayOf(day))
	if err != nil {
		return nil, fmt.Errorf("listing confirmed orders: %w", err)
	}
	return pgx.CollectRows(rows, scanConfirmedOrder)
}

// Update locks and rewrites a confirmed order's items and monetary fields,
// for administrative corrections.
func (r *ConfirmedOrderRepository) Update(ctx context.Context, id string, fn func(co *order.ConfirmedOrder) error) (*order.ConfirmedOrder, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning update of confirmed order %q: %w", id, err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	rows, err := tx.Query(ctx, lockConfirmedSQL, id)
	if err != nil {
		return nil, fmt.Errorf("locking confirmed order %q: %w", id, err)
	}
	co, err := pgx.CollectExactlyOneRow(rows, scanConfirmedOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrOrderNotFound
		}
		return nil, fmt.Errorf("locking confirmed order %q: %w", id, err)
	}

	if err := fn(&co); err != nil {
		return nil, err
	}

	itemsJSON, err := marshalItems(co.Items)
	if err != nil {
		return nil, err
	}
	_, err = tx.Exec(ctx, updateConfirmedSQL,
		co.ID, itemsJSON, co.Subtotal, co.ManualDiscount, co.DiscountAmount, co.TotalAmount,
	)
	if err != nil {
		return nil, fmt.Errorf("updating confirmed order %q: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing update of confirmed order %q: %w", id, err)
	}
	return &co, nil
}

// Import inserts a historical confirmed order that already carries its
// number. Existing rows win: the bool result reports whether the row was
// actually inserted. Callers must run SyncDayCounters afterwards so the
// live number sequence does not collide with imported numbers.
func (r *ConfirmedOrderRepository) Import(ctx context.Context, co *order.ConfirmedOrder) (bool, error) {
	itemsJSON, err := marshalItems(co.Items)
	if err != nil {
		return false, err
	}
	tag, err := r.pool.Exec(ctx, importConfirmedSQL,
		co.ID, dayOf(co.CreatedAt), co.OrderNumber, itemsJSON, co.Subtotal, co.ManualDiscount,
		co.DiscountPercentage, co.DiscountAmount, co.TotalAmount, string(co.PaymentMethod),
		co.CashAmount, co.OnlineAmount, co.IsPaid, co.CreatedAt, co.ConfirmedAt,
	)
	if err != nil {
		return false, fmt.Errorf("importing order %q: %w", co.ID, err)
	}
	return tag.RowsAffected() == 1, nil
}

// SyncDayCounters raises each per-day counter to the highest order number
// present for that day.
func (r *ConfirmedOrderRepository) SyncDayCounters(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, syncDayCountersSQL); err != nil {
		return fmt.Errorf("syncing day counters: %w", err)
	}
	return nil
}

// dayOf renders the calendar-day key for the per-day number sequence. The
// day boundary follows the server's local time zone.
func dayOf(t time.Time) string {
	return t.Local().Format("2006-01-02")
}

func scanConfirmedOrder(row pgx.CollectableRow) (order.ConfirmedOrder, error) {
	var (
		co            order.ConfirmedOrder
		itemsJSON     []byte
		paymentMethod string
	)
	err := row.Scan(
		&co.ID, &co.OrderNumber, &itemsJSON, &co.Subtotal, &co.ManualDiscount,
		&co.DiscountPercentage, &co.DiscountAmount, &co.TotalAmount, &paymentMethod,
		&co.CashAmount, &co.OnlineAmount, &co.IsPaid, &co.CreatedAt, &co.ConfirmedAt,
	)
	if err != nil {
		return co, err
	}
	co.PaymentMethod = order.PaymentMethod(paymentMethod)
	if err := json.Unmarshal(itemsJSON, &co.Items); err != nil {
		return co, fmt.Errorf("unmarshaling items of order %q: %w", co.ID, err)
	}
	return co, nil
}

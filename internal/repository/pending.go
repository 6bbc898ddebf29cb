package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dhabalabs/pos-server/internal/domain/order"
)

const (
	createPendingSQL = `INSERT INTO pending_orders
		(id, items, subtotal, manual_discount, discount_percentage, discount_amount, total_amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	pendingColumns = `id, items, subtotal, manual_discount, discount_percentage, discount_amount, total_amount, created_at, updated_at`

	getPendingSQL = `SELECT ` + pendingColumns + ` FROM pending_orders WHERE id = $1`

	listPendingSQL = `SELECT ` + pendingColumns + ` FROM pending_orders ORDER BY created_at`

	lockPendingSQL = `SELECT ` + pendingColumns + ` FROM pending_orders WHERE id = $1 FOR UPDATE`

	updatePendingSQL = `UPDATE pending_orders SET
		items = $2, subtotal = $3, manual_discount = $4, discount_percentage = $5,
		discount_amount = $6, total_amount = $7, updated_at = $8
		WHERE id = $1`

	deletePendingSQL = `DELETE FROM pending_orders WHERE id = $1`
)

var _ order.PendingRepository = (*PendingOrderRepository)(nil)

// PendingOrderRepository implements order.PendingRepository backed by
// PostgreSQL.
type PendingOrderRepository struct {
	pool *pgxpool.Pool
}

// NewPendingOrderRepository returns a PendingOrderRepository that uses the
// given pool.
func NewPendingOrderRepository(pool *pgxpool.Pool) *PendingOrderRepository {
	return &PendingOrderRepository{pool: pool}
}

// Create persists a new pending order. Items are serialized to JSON for the
// JSONB column.
func (r *PendingOrderRepository) Create(ctx context.Context, po *order.PendingOrder) error {
	itemsJSON, err := marshalItems(po.Items)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, createPendingSQL,
		po.ID, itemsJSON, po.Subtotal, po.ManualDiscount, po.DiscountPercentage,
		po.DiscountAmount, po.TotalAmount, po.CreatedAt, po.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating pending order %q: %w", po.ID, err)
	}
	return nil
}

// Get returns a pending order by id.
func (r *PendingOrderRepository) Get(ctx context.Context, id string) (*order.PendingOrder, error) {
	rows, err := r.pool.Query(ctx, getPendingSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting pending order %q: %w", id, err)
	}

	po, err := pgx.CollectExactlyOneRow(rows, scanPendingOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrOrderNotFound
		}
		return nil, fmt.Errorf("getting pending order %q: %w", id, err)
	}
	return &po, nil
}

// List returns all pending orders, oldest first.
func (r *PendingOrderRepository) List(ctx context.Context) ([]order.PendingOrder, error) {
	rows, err := r.pool.Query(ctx, listPendingSQL)
	if err != nil {
		return nil, fmt.Errorf("listing pending orders: %w", err)
	}
	return pgx.CollectRows(rows, scanPendingOrder)
}

// Update locks the order row FOR UPDATE, applies fn, and persists the result
// in the same transaction. A zero-item outcome deletes the row instead, so no
// empty pending order can ever be observed.
func (r *PendingOrderRepository) Update(ctx context.Context, id string, fn func(po *order.PendingOrder) error) (*order.PendingOrder, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning update of pending order %q: %w", id, err)
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

	if err := fn(&po); err != nil {
		return nil, err
	}

	if len(po.Items) == 0 {
		if _, err := tx.Exec(ctx, deletePendingSQL, id); err != nil {
			return nil, fmt.Errorf("deleting emptied pending order %q: %w", id, err)
		}
	} else {
		itemsJSON, err := marshalItems(po.Items)
		if err != nil {
			return nil, err
		}
		_, err = tx.Exec(ctx, updatePendingSQL,
			po.ID, itemsJSON, po.Subtotal, po.ManualDiscount, po.DiscountPercentage,
			po.DiscountAmount, po.TotalAmount, po.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("updating pending order %q: %w", id, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing update of pending order %q: %w", id, err)
	}
	return &po, nil
}

// Delete removes a pending order unconditionally.
func (r *PendingOrderRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deletePendingSQL, id)
	if err != nil {
		return fmt.Errorf("deleting pending order %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrOrderNotFound
	}
	return nil
}

func scanPendingOrder(row pgx.CollectableRow) (order.PendingOrder, error) {
	var (
		po        order.PendingOrder
		itemsJSON []byte
	)
	err := row.Scan(
		&po.ID, &itemsJSON, &po.Subtotal, &po.ManualDiscount, &po.DiscountPercentage,
		&po.DiscountAmount, &po.TotalAmount, &po.CreatedAt, &po.UpdatedAt,
	)
	if err != nil {
		return po, err
	}
	if err := json.Unmarshal(itemsJSON, &po.Items); err != nil {
		return po, fmt.Errorf("unmarshaling items of order %q: %w", po.ID, err)
	}
	return po, nil
}

func marshalItems(items []order.LineItem) ([]byte, error) {
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("marshaling order items: %w", err)
	}
	return itemsJSON, nil
}

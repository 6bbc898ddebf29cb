package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dhabalabs/pos-server/internal/domain/menu"
)

const (
	menuColumns = `id, name, variant, price, category, available`

	listMenuSQL = `SELECT ` + menuColumns + ` FROM menu_items ORDER BY category, name, variant`

	listAvailableMenuSQL = `SELECT ` + menuColumns + ` FROM menu_items
		WHERE available = TRUE ORDER BY category, name, variant`

	getMenuItemSQL = `SELECT ` + menuColumns + ` FROM menu_items WHERE id = $1`

	insertMenuItemSQL = `INSERT INTO menu_items (id, name, variant, price, category, available)
		VALUES ($1, $2, $3, $4, $5, $6)`

	updateMenuItemSQL = `UPDATE menu_items SET
		name = $2, variant = $3, price = $4, category = $5, available = $6
		WHERE id = $1`

	deleteMenuItemSQL = `DELETE FROM menu_items WHERE id = $1`

	upsertMenuItemSQL = `INSERT INTO menu_items (id, name, variant, price, category, available)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (name, variant) DO UPDATE SET
			price = EXCLUDED.price,
			category = EXCLUDED.category,
			available = EXCLUDED.available`
)

var _ menu.Repository = (*MenuRepository)(nil)

// MenuRepository implements menu.Repository backed by PostgreSQL.
type MenuRepository struct {
	pool *pgxpool.Pool
}

// NewMenuRepository returns a MenuRepository that uses the given pool.
func NewMenuRepository(pool *pgxpool.Pool) *MenuRepository {
	return &MenuRepository{pool: pool}
}

func (r *MenuRepository) List(ctx context.Context) ([]menu.Item, error) {
	rows, err := r.pool.Query(ctx, listMenuSQL)
	if err != nil {
		return nil, fmt.Errorf("listing menu items: %w", err)
	}
	return pgx.CollectRows(rows, scanMenuItem)
}

func (r *MenuRepository) ListAvailable(ctx context.Context) ([]menu.Item, error) {
	rows, err := r.pool.Query(ctx, listAvailableMenuSQL)
	if err != nil {
		return nil, fmt.Errorf("listing available menu items: %w", err)
	}
	return pgx.CollectRows(rows, scanMenuItem)
}

func (r *MenuRepository) GetByID(ctx context.Context, id string) (*menu.Item, error) {
	rows, err := r.pool.Query(ctx, getMenuItemSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting menu item %q: %w", id, err)
	}

	item, err := pgx.CollectExactlyOneRow(rows, scanMenuItem)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, menu.ErrNotFound
		}
		return nil, fmt.Errorf("getting menu item %q: %w", id, err)
	}
	return &item, nil
}

func (r *MenuRepository) Create(ctx context.Context, item *menu.Item) error {
	_, err := r.pool.Exec(ctx, insertMenuItemSQL,
		item.ID, item.Name, string(item.Variant), item.Price, item.Category, item.Available,
	)
	if err != nil {
		return fmt.Errorf("creating menu item %q: %w", item.ID, err)
	}
	return nil
}

// Upsert inserts the item or refreshes the existing row sharing its name and
// variant. Used by the seed tool; idempotent across reruns.
func (r *MenuRepository) Upsert(ctx context.Context, item *menu.Item) error {
	_, err := r.pool.Exec(ctx, upsertMenuItemSQL,
		item.ID, item.Name, string(item.Variant), item.Price, item.Category, item.Available,
	)
	if err != nil {
		return fmt.Errorf("upserting menu item %q: %w", item.Name, err)
	}
	return nil
}

func (r *MenuRepository) Update(ctx context.Context, item *menu.Item) error {
	tag, err := r.pool.Exec(ctx, updateMenuItemSQL,
		item.ID, item.Name, string(item.Variant), item.Price, item.Category, item.Available,
	)
	if err != nil {
		return fmt.Errorf("updating menu item %q: %w", item.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return menu.ErrNotFound
	}
	return nil
}

func (r *MenuRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteMenuItemSQL, id)
	if err != nil {
		return fmt.Errorf("deleting menu item %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return menu.ErrNotFound
	}
	return nil
}

func scanMenuItem(row pgx.CollectableRow) (menu.Item, error) {
	var (
		item    menu.Item
		variant string
	)
	err := row.Scan(&item.ID, &item.Name, &variant, &item.Price, &item.Category, &item.Available)
	item.Variant = menu.Variant(variant)
	return item, err
}

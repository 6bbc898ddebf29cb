package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dhabalabs/pos-server/internal/domain/discount"
)

const (
	activeRuleSQL = `SELECT percentage, min_order_amount, active, updated_at
		FROM discount_rules WHERE active = TRUE`

	deactivateRulesSQL = `UPDATE discount_rules SET active = FALSE, updated_at = now() WHERE active = TRUE`

	insertRuleSQL = `INSERT INTO discount_rules (percentage, min_order_amount, active)
		VALUES ($1, $2, TRUE)
		RETURNING percentage, min_order_amount, active, updated_at`
)

var _ discount.Repository = (*DiscountRuleRepository)(nil)

// DiscountRuleRepository implements discount.Repository backed by PostgreSQL.
// A partial unique index on the table guarantees at most one active rule.
type DiscountRuleRepository struct {
	pool *pgxpool.Pool
}

// NewDiscountRuleRepository returns a DiscountRuleRepository that uses the
// given pool.
func NewDiscountRuleRepository(pool *pgxpool.Pool) *DiscountRuleRepository {
	return &DiscountRuleRepository{pool: pool}
}

// Active returns the currently active rule, or discount.ErrNoActiveRule.
func (r *DiscountRuleRepository) Active(ctx context.Context) (*discount.Rule, error) {
	rows, err := r.pool.Query(ctx, activeRuleSQL)
	if err != nil {
		return nil, fmt.Errorf("finding active discount rule: %w", err)
	}

	rule, err := pgx.CollectExactlyOneRow(rows, scanRule)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, discount.ErrNoActiveRule
		}
		return nil, fmt.Errorf("finding active discount rule: %w", err)
	}
	return &rule, nil
}

// Set replaces the active rule: the previous rule is deactivated and the new
// one inserted in a single transaction.
func (r *DiscountRuleRepository) Set(ctx context.Context, rule discount.Rule) (*discount.Rule, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning discount rule update: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(ctx, deactivateRulesSQL); err != nil {
		return nil, fmt.Errorf("deactivating previous discount rule: %w", err)
	}

	rows, err := tx.Query(ctx, insertRuleSQL, rule.Percentage, rule.MinOrderAmount)
	if err != nil {
		return nil, fmt.Errorf("inserting discount rule: %w", err)
	}
	inserted, err := pgx.CollectExactlyOneRow(rows, scanRule)
	if err != nil {
		return nil, fmt.Errorf("inserting discount rule: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing discount rule update: %w", err)
	}
	return &inserted, nil
}

// Deactivate disables the active rule, if any.
func (r *DiscountRuleRepository) Deactivate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, deactivateRulesSQL); err != nil {
		return fmt.Errorf("deactivating discount rule: %w", err)
	}
	return nil
}

func scanRule(row pgx.CollectableRow) (discount.Rule, error) {
	var rule discount.Rule
	err := row.Scan(&rule.Percentage, &rule.MinOrderAmount, &rule.Active, &rule.UpdatedAt)
	return rule, err
}

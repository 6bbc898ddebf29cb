package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dhabalabs/pos-server/internal/domain/discount"
)

// Service applies structural changes to pending orders. Every mutation
// recomputes the order's totals through Reconcile before persisting; no
// operation may persist an items change without a paired recalculation.
type Service struct {
	pending   PendingRepository
	confirmed ConfirmedRepository
	rules     discount.Repository
	now       func() time.Time
}

// NewService creates an order Service with the required dependencies.
func NewService(pending PendingRepository, confirmed ConfirmedRepository, rules discount.Repository) *Service {
	return &Service{
		pending:   pending,
		confirmed: confirmed,
		rules:     rules,
		now:       time.Now,
	}
}

// MutationResult is the outcome of a pending-order mutation. Order is nil
// when the mutation deleted the order. Events must be dispatched by the
// caller after a successful mutation.
type MutationResult struct {
	Order   *PendingOrder
	Deleted bool
	Events  []Event
}

// Create opens a new pending order with the given items.
func (s *Service) Create(ctx context.Context, items []LineItem, manualDiscount decimal.Decimal) (*MutationResult, error) {
	if len(items) == 0 {
		return nil, ErrEmptyItems
	}

	rule, err := s.activeRule(ctx)
	if err != nil {
		return nil, err
	}

	RecomputeLineTotals(items)
	totals, err := Reconcile(items, rule, manualDiscount)
	if err != nil {
		return nil, err
	}

	now := s.now()
	po := &PendingOrder{
		ID:        uuid.New().String(),
		Items:     items,
		CreatedAt: now,
		UpdatedAt: now,
	}
	po.applyTotals(totals)

	if err := s.pending.Create(ctx, po); err != nil {
		return nil, errors.Wrap(err, "create pending order")
	}

	return &MutationResult{Order: po, Events: []Event{updatedEvent(po)}}, nil
}

// AddItems appends items to an existing pending order. With dedupe set,
// incoming items matching an existing item on (name, variant, unit price) are
// skipped, so a retried submission does not double the order.
func (s *Service) AddItems(ctx context.Context, id string, items []LineItem, dedupe bool) (*MutationResult, error) {
	if len(items) == 0 {
		return nil, ErrEmptyItems
	}

	rule, err := s.activeRule(ctx)
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, id, func(po *PendingOrder) error {
		for _, item := range items {
			if dedupe && containsProduct(po.Items, item) {
				continue
			}
			po.Items = append(po.Items, item)
		}
		return s.reconcileClamped(po, rule)
	})
}

// SetItemQuantity adjusts the quantity of one line item by delta. A resulting
// quantity of zero or below removes the line item; removing the last line
// item deletes the whole order.
func (s *Service) SetItemQuantity(ctx context.Context, id string, index, delta int) (*MutationResult, error) {
	rule, err := s.activeRule(ctx)
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, id, func(po *PendingOrder) error {
		if index < 0 || index >= len(po.Items) {
			return ErrItemIndex
		}
		newQty := po.Items[index].Quantity + delta
		if newQty <= 0 {
			po.Items = append(po.Items[:index], po.Items[index+1:]...)
		} else {
			po.Items[index].Quantity = newQty
		}
		if len(po.Items) == 0 {
			return nil
		}
		return s.reconcileClamped(po, rule)
	})
}

// RemoveItem deletes the line item at index. Removing the only remaining item
// deletes the whole order instead of leaving an empty one.
func (s *Service) RemoveItem(ctx context.Context, id string, index int) (*MutationResult, error) {
	rule, err := s.activeRule(ctx)
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, id, func(po *PendingOrder) error {
		if index < 0 || index >= len(po.Items) {
			return ErrItemIndex
		}
		po.Items = append(po.Items[:index], po.Items[index+1:]...)
		if len(po.Items) == 0 {
			return nil
		}
		return s.reconcileClamped(po, rule)
	})
}

// SetManualDiscount replaces the order's manual discount. Unlike structural
// mutations, an amount the order cannot absorb is rejected with
// *DiscountExceedsLimitError and the stored order is left unchanged.
func (s *Service) SetManualDiscount(ctx context.Context, id string, amount decimal.Decimal) (*MutationResult, error) {
	rule, err := s.activeRule(ctx)
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, id, func(po *PendingOrder) error {
		RecomputeLineTotals(po.Items)
		totals, err := Reconcile(po.Items, rule, amount)
		if err != nil {
			return err
		}
		po.applyTotals(totals)
		po.UpdatedAt = s.now()
		return nil
	})
}

// Delete unconditionally removes a pending order.
func (s *Service) Delete(ctx context.Context, id string) (*MutationResult, error) {
	if err := s.pending.Delete(ctx, id); err != nil {
		return nil, err
	}
	return &MutationResult{Deleted: true, Events: []Event{deletedEvent(id)}}, nil
}

// Get returns a pending order by id.
func (s *Service) Get(ctx context.Context, id string) (*PendingOrder, error) {
	return s.pending.Get(ctx, id)
}

// List returns all pending orders.
func (s *Service) List(ctx context.Context) ([]PendingOrder, error) {
	return s.pending.List(ctx)
}

// mutate runs fn against the locked pending order and derives the mutation
// result. A zero-item outcome means the repository deleted the row.
func (s *Service) mutate(ctx context.Context, id string, fn func(po *PendingOrder) error) (*MutationResult, error) {
	po, err := s.pending.Update(ctx, id, fn)
	if err != nil {
		return nil, err
	}
	if len(po.Items) == 0 {
		return &MutationResult{Deleted: true, Events: []Event{deletedEvent(id)}}, nil
	}
	return &MutationResult{Order: po, Events: []Event{updatedEvent(po)}}, nil
}

// reconcileClamped recomputes totals after a structural change, clamping the
// stored manual discount down when shrunken items can no longer absorb it.
// Explicit discount changes go through Reconcile directly and are rejected
// instead.
func (s *Service) reconcileClamped(po *PendingOrder, rule *discount.Rule) error {
	RecomputeLineTotals(po.Items)
	totals, err := Reconcile(po.Items, rule, po.ManualDiscount)
	if err != nil {
		var limitErr *DiscountExceedsLimitError
		if errors.As(err, &limitErr) {
			totals, err = Reconcile(po.Items, rule, limitErr.Limit)
		}
		if err != nil {
			return err
		}
	}
	po.applyTotals(totals)
	po.UpdatedAt = s.now()
	return nil
}

// activeRule fetches the current discount rule, mapping "no rule" to nil.
func (s *Service) activeRule(ctx context.Context) (*discount.Rule, error) {
	rule, err := s.rules.Active(ctx)
	if err != nil {
		if errors.Is(err, discount.ErrNoActiveRule) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "load active discount rule")
	}
	return rule, nil
}

func containsProduct(items []LineItem, item LineItem) bool {
	for _, existing := range items {
		if existing.SameProduct(item) {
			return true
		}
	}
	return false
}

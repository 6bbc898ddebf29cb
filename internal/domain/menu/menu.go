// Package menu defines the restaurant menu catalog. Each catalog entry is a
// dish at a specific portion variant; Half and Full portions of the same dish
// are separate entries sharing a name.
package menu

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested menu item does not exist.
var ErrNotFound = errors.New("menu item not found")

// Variant is the portion size of a menu item.
type Variant string

const (
	VariantHalf  Variant = "half"
	VariantFull  Variant = "full"
	VariantFixed Variant = "fixed"
)

// Valid reports whether v is one of the known portion variants.
func (v Variant) Valid() bool {
	switch v {
	case VariantHalf, VariantFull, VariantFixed:
		return true
	}
	return false
}

// Item is a single orderable menu entry.
type Item struct {
	ID        string
	Name      string
	Variant   Variant
	Price     decimal.Decimal
	Category  string
	Available bool
}

// Repository defines persistence operations for the menu catalog.
type Repository interface {
	List(ctx context.Context) ([]Item, error)
	ListAvailable(ctx context.Context) ([]Item, error)
	GetByID(ctx context.Context, id string) (*Item, error)
	Create(ctx context.Context, item *Item) error
	Update(ctx context.Context, item *Item) error
	Delete(ctx context.Context, id string) error
}

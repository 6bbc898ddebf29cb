// Package events broadcasts order lifecycle notifications to interested
// listeners (worker UIs, reporting dashboards). Delivery is best-effort and
// at-most-once: a failed publish is logged and dropped, never retried, and
// never affects the mutation that produced the event.
package events

import (
	"context"

	"github.com/dhabalabs/pos-server/internal/domain/order"
)

// Publisher dispatches order events to a broadcast transport.
type Publisher interface {
	Publish(ctx context.Context, events ...order.Event)
}

// Nop is a Publisher that drops all events. Used in tests and when no
// broadcast transport is configured.
type Nop struct{}

func (Nop) Publish(context.Context, ...order.Event) {}

package order

// EventType identifies a broadcast notification kind.
type EventType string

const (
	EventOrderUpdated   EventType = "order-update"
	EventOrderDeleted   EventType = "order-deleted"
	EventOrderConfirmed EventType = "order-confirmed"
)

// Event is a notification produced by a successful mutation or confirmation.
// Events are returned to the caller rather than published directly, so the
// core stays testable without a live transport; delivery is best-effort and
// never tied to the persistence write.
type Event struct {
	Type      EventType
	OrderID   string
	Pending   *PendingOrder
	Confirmed *ConfirmedOrder
}

func updatedEvent(po *PendingOrder) Event {
	return Event{Type: EventOrderUpdated, OrderID: po.ID, Pending: po}
}

func deletedEvent(id string) Event {
	return Event{Type: EventOrderDeleted, OrderID: id}
}

func confirmedEvent(co *ConfirmedOrder) Event {
	return Event{Type: EventOrderConfirmed, OrderID: co.ID, Confirmed: co}
}

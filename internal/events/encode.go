package events

import (
	"github.com/go-faster/jx"

	"github.com/dhabalabs/pos-server/internal/domain/order"
)

// encodeEvent renders the wire form of an event:
// {"type": ..., "orderId": ..., "order": {...}}. The order object is present
// for updates and confirmations, absent for deletions.
func encodeEvent(ev order.Event) []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("type")
	e.Str(string(ev.Type))
	e.FieldStart("orderId")
	e.Str(ev.OrderID)
	switch {
	case ev.Pending != nil:
		e.FieldStart("order")
		encodePending(&e, ev.Pending)
	case ev.Confirmed != nil:
		e.FieldStart("order")
		encodeConfirmed(&e, ev.Confirmed)
	}
	e.ObjEnd()
	return e.Bytes()
}

func encodePending(e *jx.Encoder, po *order.PendingOrder) {
	e.ObjStart()
	e.FieldStart("orderId")
	e.Str(po.ID)
	e.FieldStart("items")
	encodeItems(e, po.Items)
	e.FieldStart("subtotal")
	e.Str(po.Subtotal.String())
	e.FieldStart("manualDiscount")
	e.Str(po.ManualDiscount.String())
	e.FieldStart("discountPercentage")
	e.Str(po.DiscountPercentage.String())
	e.FieldStart("discountAmount")
	e.Str(po.DiscountAmount.String())
	e.FieldStart("totalAmount")
	e.Str(po.TotalAmount.String())
	e.FieldStart("status")
	e.Str("pending")
	e.ObjEnd()
}

func encodeConfirmed(e *jx.Encoder, co *order.ConfirmedOrder) {
	e.ObjStart()
	e.FieldStart("orderId")
	e.Str(co.ID)
	e.FieldStart("orderNumber")
	e.Int(co.OrderNumber)
	e.FieldStart("items")
	encodeItems(e, co.Items)
	e.FieldStart("subtotal")
	e.Str(co.Subtotal.String())
	e.FieldStart("discountAmount")
	e.Str(co.DiscountAmount.String())
	e.FieldStart("totalAmount")
	e.Str(co.TotalAmount.String())
	e.FieldStart("paymentMethod")
	e.Str(string(co.PaymentMethod))
	e.FieldStart("isPaid")
	e.Bool(co.IsPaid)
	e.ObjEnd()
}

func encodeItems(e *jx.Encoder, items []order.LineItem) {
	e.ArrStart()
	for _, item := range items {
		e.ObjStart()
		e.FieldStart("name")
		e.Str(item.Name)
		e.FieldStart("variant")
		e.Str(string(item.Variant))
		e.FieldStart("unitPrice")
		e.Str(item.UnitPrice.String())
		e.FieldStart("quantity")
		e.Int(item.Quantity)
		e.FieldStart("lineTotal")
		e.Str(item.LineTotal.String())
		e.ObjEnd()
	}
	e.ArrEnd()
}

package handler

import (
	"github.com/shopspring/decimal"

	"github.com/dhabalabs/pos-server/internal/domain/discount"
	"github.com/dhabalabs/pos-server/internal/domain/menu"
	"github.com/dhabalabs/pos-server/internal/domain/order"
)

// View types are the JSON shapes returned to clients. Monetary fields render
// as decimal strings, matching the event payload format.

type lineItemView struct {
	Name      string          `json:"name"`
	Variant   string          `json:"variant"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

type pendingOrderView struct {
	OrderID            string          `json:"orderId"`
	Items              []lineItemView  `json:"items"`
	Subtotal           decimal.Decimal `json:"subtotal"`
	ManualDiscount     decimal.Decimal `json:"manualDiscount"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage"`
	DiscountAmount     decimal.Decimal `json:"discountAmount"`
	TotalAmount        decimal.Decimal `json:"totalAmount"`
	CreatedAt          string          `json:"createdAt"`
	UpdatedAt          string          `json:"updatedAt"`
}

type confirmedOrderView struct {
	OrderID            string          `json:"orderId"`
	OrderNumber        int             `json:"orderNumber"`
	Items              []lineItemView  `json:"items"`
	Subtotal           decimal.Decimal `json:"subtotal"`
	ManualDiscount     decimal.Decimal `json:"manualDiscount"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage"`
	DiscountAmount     decimal.Decimal `json:"discountAmount"`
	TotalAmount        decimal.Decimal `json:"totalAmount"`
	PaymentMethod      string          `json:"paymentMethod"`
	CashAmount         decimal.Decimal `json:"cashAmount"`
	OnlineAmount       decimal.Decimal `json:"onlineAmount"`
	IsPaid             bool            `json:"isPaid"`
	CreatedAt          string          `json:"createdAt"`
	ConfirmedAt        string          `json:"confirmedAt"`
}

type menuItemView struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Variant   string          `json:"variant"`
	Price     decimal.Decimal `json:"price"`
	Category  string          `json:"category"`
	Available bool            `json:"available"`
}

type discountRuleView struct {
	Percentage     decimal.Decimal `json:"percentage"`
	MinOrderAmount decimal.Decimal `json:"minOrderAmount"`
	Active         bool            `json:"active"`
	UpdatedAt      string          `json:"updatedAt"`
}

const timeFormat = "2006-01-02T15:04:05Z07:00"

func itemViews(items []order.LineItem) []lineItemView {
	views := make([]lineItemView, len(items))
	for i, item := range items {
		views[i] = lineItemView{
			Name:      item.Name,
			Variant:   string(item.Variant),
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal,
		}
	}
	return views
}

func pendingView(po *order.PendingOrder) pendingOrderView {
	return pendingOrderView{
		OrderID:            po.ID,
		Items:              itemViews(po.Items),
		Subtotal:           po.Subtotal,
		ManualDiscount:     po.ManualDiscount,
		DiscountPercentage: po.DiscountPercentage,
		DiscountAmount:     po.DiscountAmount,
		TotalAmount:        po.TotalAmount,
		CreatedAt:          po.CreatedAt.Format(timeFormat),
		UpdatedAt:          po.UpdatedAt.Format(timeFormat),
	}
}

func confirmedView(co *order.ConfirmedOrder) confirmedOrderView {
	return confirmedOrderView{
		OrderID:            co.ID,
		OrderNumber:        co.OrderNumber,
		Items:              itemViews(co.Items),
		Subtotal:           co.Subtotal,
		ManualDiscount:     co.ManualDiscount,
		DiscountPercentage: co.DiscountPercentage,
		DiscountAmount:     co.DiscountAmount,
		TotalAmount:        co.TotalAmount,
		PaymentMethod:      string(co.PaymentMethod),
		CashAmount:         co.CashAmount,
		OnlineAmount:       co.OnlineAmount,
		IsPaid:             co.IsPaid,
		CreatedAt:          co.CreatedAt.Format(timeFormat),
		ConfirmedAt:        co.ConfirmedAt.Format(timeFormat),
	}
}

func menuView(item menu.Item) menuItemView {
	return menuItemView{
		ID:        item.ID,
		Name:      item.Name,
		Variant:   string(item.Variant),
		Price:     item.Price,
		Category:  item.Category,
		Available: item.Available,
	}
}

func ruleView(rule *discount.Rule) discountRuleView {
	return discountRuleView{
		Percentage:     rule.Percentage,
		MinOrderAmount: rule.MinOrderAmount,
		Active:         rule.Active,
		UpdatedAt:      rule.UpdatedAt.Format(timeFormat),
	}
}

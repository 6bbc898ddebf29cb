//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"testing"
)

func createOrder(t *testing.T, items []lineItem) pendingOrder {
	t.Helper()

	resp := doDevice(t, http.MethodPost, "/api/orders", map[string]any{"items": items})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body := decodeJSON[errorResponse](t, resp)
		t.Fatalf("create order: status %d: %s", resp.StatusCode, body.Message)
	}
	return decodeJSON[pendingOrder](t, resp)
}

func standardItems() []lineItem {
	return []lineItem{
		{Name: "Paneer Thali", Variant: "full", UnitPrice: "20", Quantity: 2},
		{Name: "Lassi", Variant: "fixed", UnitPrice: "10", Quantity: 2},
	}
}

func TestOrderLifecycle(t *testing.T) {
	created := createOrder(t, standardItems())
	if created.Subtotal != "60" {
		t.Fatalf("subtotal: got %s, want 60", created.Subtotal)
	}

	// Add an item.
	resp := doDevice(t, http.MethodPost, "/api/orders/"+created.OrderID+"/items", map[string]any{
		"items": []lineItem{{Name: "Roti", Variant: "fixed", UnitPrice: "3", Quantity: 2}},
	})
	updated := decodeJSON[pendingOrder](t, resp)
	resp.Body.Close()
	if len(updated.Items) != 3 {
		t.Fatalf("items: got %d, want 3", len(updated.Items))
	}
	if updated.Subtotal != "66" {
		t.Fatalf("subtotal after add: got %s, want 66", updated.Subtotal)
	}

	// Drop a line item entirely.
	resp = doDevice(t, http.MethodDelete, "/api/orders/"+created.OrderID+"/items/2", nil)
	mutation := decodeJSON[mutationResult](t, resp)
	resp.Body.Close()
	if mutation.Deleted || mutation.Order == nil {
		t.Fatal("expected surviving order after item removal")
	}
	if mutation.Order.Subtotal != "60" {
		t.Fatalf("subtotal after removal: got %s, want 60", mutation.Order.Subtotal)
	}

	// Confirm with cash.
	resp = doDevice(t, http.MethodPost, "/api/orders/"+created.OrderID+"/confirm", map[string]any{
		"paymentMethod": "cash",
		"isPaid":        true,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("confirm: status %d", resp.StatusCode)
	}
	confirmed := decodeJSON[confirmedOrder](t, resp)
	resp.Body.Close()
	if confirmed.OrderNumber < 1 {
		t.Fatalf("order number: got %d, want >= 1", confirmed.OrderNumber)
	}
	if confirmed.CashAmount != confirmed.TotalAmount {
		t.Fatalf("cash amount %s != total %s", confirmed.CashAmount, confirmed.TotalAmount)
	}

	// The pending order is gone; confirming again reports not found.
	resp = doDevice(t, http.MethodPost, "/api/orders/"+created.OrderID+"/confirm", map[string]any{
		"paymentMethod": "cash",
		"isPaid":        true,
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("second confirm: status %d, want 404", resp.StatusCode)
	}
}

func TestOrderNumbers_Dense(t *testing.T) {
	var numbers []int
	for i := 0; i < 3; i++ {
		created := createOrder(t, standardItems())
		resp := doDevice(t, http.MethodPost, "/api/orders/"+created.OrderID+"/confirm", map[string]any{
			"paymentMethod": "online",
			"isPaid":        true,
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("confirm %d: status %d", i, resp.StatusCode)
		}
		confirmed := decodeJSON[confirmedOrder](t, resp)
		resp.Body.Close()
		numbers = append(numbers, confirmed.OrderNumber)
	}

	for i := 1; i < len(numbers); i++ {
		if numbers[i] != numbers[i-1]+1 {
			t.Fatalf("order numbers not dense: %v", numbers)
		}
	}
}

func TestManualDiscount_Clamped(t *testing.T) {
	created := createOrder(t, standardItems())

	resp := doDevice(t, http.MethodPut, "/api/orders/"+created.OrderID+"/discount", map[string]any{
		"amount": "100",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("oversized discount: status %d, want 422", resp.StatusCode)
	}
	body := decodeJSON[errorResponse](t, resp)
	if body.Message == "" {
		t.Error("expected error message")
	}
}

func TestConfirm_CustomSplitMismatch(t *testing.T) {
	created := createOrder(t, standardItems())

	resp := doDevice(t, http.MethodPost, "/api/orders/"+created.OrderID+"/confirm", map[string]any{
		"paymentMethod": "custom",
		"isPaid":        true,
		"cashAmount":    "10",
		"onlineAmount":  "10",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("split mismatch: status %d, want 422", resp.StatusCode)
	}

	// The pending order survives the rejected confirmation.
	check := doDevice(t, http.MethodGet, "/api/orders/"+created.OrderID, nil)
	defer check.Body.Close()
	if check.StatusCode != http.StatusOK {
		t.Fatalf("pending order lost after rejected confirm: status %d", check.StatusCode)
	}
}

func TestInvalidQuantity_Rejected(t *testing.T) {
	resp := doDevice(t, http.MethodPost, "/api/orders", map[string]any{
		"items": []lineItem{{Name: "Lassi", Variant: "fixed", UnitPrice: "10", Quantity: 0}},
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("zero quantity: status %d, want 422", resp.StatusCode)
	}
}

func TestOrderNotFound(t *testing.T) {
	for _, route := range []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodGet, "/api/orders/no-such-order", nil},
		{http.MethodDelete, "/api/orders/no-such-order", nil},
		{http.MethodPut, "/api/orders/no-such-order/discount", map[string]any{"amount": "1"}},
	} {
		t.Run(fmt.Sprintf("%s %s", route.method, route.path), func(t *testing.T) {
			resp := doDevice(t, route.method, route.path, route.body)
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusNotFound {
				t.Fatalf("status %d, want 404", resp.StatusCode)
			}
		})
	}
}

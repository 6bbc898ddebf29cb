//go:build integration

package integration

import (
	"net/http"
	"testing"
	"time"
)

func TestAdminLogin_WrongPassword(t *testing.T) {
	resp := doRaw(t, http.MethodPost, "/api/admin/login", map[string]string{
		"password": "not-the-password",
	}, nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", resp.StatusCode)
	}
}

func TestAdminRoutes_RejectDeviceKey(t *testing.T) {
	// A worker device key must not open admin routes.
	resp := doDevice(t, http.MethodGet, "/api/reports/daily", nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", resp.StatusCode)
	}
}

func TestDiscountRule_AppliesToOrders(t *testing.T) {
	resp := doAdmin(t, http.MethodPut, "/api/discount-rule", map[string]any{
		"percentage":     "10",
		"minOrderAmount": "50",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("set rule: status %d", resp.StatusCode)
	}
	resp.Body.Close()

	t.Cleanup(func() {
		resp := doAdmin(t, http.MethodDelete, "/api/discount-rule", nil)
		resp.Body.Close()
	})

	created := createOrder(t, standardItems())
	if created.DiscountAmount != "6" {
		t.Fatalf("discount: got %s, want 6", created.DiscountAmount)
	}
	if created.TotalAmount != "54" {
		t.Fatalf("total: got %s, want 54", created.TotalAmount)
	}
}

func TestConfirmedListing_And_Correction(t *testing.T) {
	created := createOrder(t, standardItems())
	resp := doDevice(t, http.MethodPost, "/api/orders/"+created.OrderID+"/confirm", map[string]any{
		"paymentMethod": "cash",
		"isPaid":        true,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("confirm: status %d", resp.StatusCode)
	}
	resp.Body.Close()

	day := time.Now().Format("2006-01-02")
	resp = doAdmin(t, http.MethodGet, "/api/confirmed?day="+day, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list confirmed: status %d", resp.StatusCode)
	}
	listing := decodeJSON[struct {
		Orders []confirmedOrder `json:"orders"`
	}](t, resp)
	resp.Body.Close()

	found := false
	for _, co := range listing.Orders {
		if co.OrderID == created.OrderID {
			found = true
		}
	}
	if !found {
		t.Fatalf("confirmed order %s not in day listing", created.OrderID)
	}

	// Correct a quantity on the confirmed order.
	resp = doAdmin(t, http.MethodPatch, "/api/confirmed/"+created.OrderID+"/items/0", map[string]any{
		"delta": -1,
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("correct: status %d", resp.StatusCode)
	}
	corrected := decodeJSON[confirmedOrder](t, resp)
	if corrected.Items[0].Quantity != 1 {
		t.Fatalf("quantity: got %d, want 1", corrected.Items[0].Quantity)
	}
	if corrected.Subtotal != "40" {
		t.Fatalf("subtotal: got %s, want 40", corrected.Subtotal)
	}
}

func TestReports(t *testing.T) {
	// Reports only need to respond coherently; exact figures depend on the
	// orders other tests confirmed.
	for _, path := range []string{
		"/api/reports/daily",
		"/api/reports/monthly",
		"/api/reports/top-items?limit=5",
	} {
		resp := doAdmin(t, http.MethodGet, path, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: status %d", path, resp.StatusCode)
		}
		resp.Body.Close()
	}
}

func TestMenuAdmin(t *testing.T) {
	resp := doAdmin(t, http.MethodPost, "/api/menu", map[string]any{
		"name":     "Integration Special",
		"variant":  "full",
		"price":    "42",
		"category": "specials",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: status %d", resp.StatusCode)
	}
	item := decodeJSON[menuItem](t, resp)
	resp.Body.Close()

	resp = doAdmin(t, http.MethodDelete, "/api/menu/"+item.ID, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete: status %d", resp.StatusCode)
	}
}

//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestRequestID_Generated(t *testing.T) {
	resp := doRaw(t, http.MethodGet, "/livez", nil, nil)
	defer resp.Body.Close()

	if resp.Header.Get("X-Request-ID") == "" {
		t.Fatal("X-Request-ID header not present")
	}
}

func TestRequestID_Echoed(t *testing.T) {
	resp := doRaw(t, http.MethodGet, "/livez", nil, func(req *http.Request) {
		req.Header.Set("X-Request-ID", "custom-request-id-12345")
	})
	defer resp.Body.Close()

	if got := resp.Header.Get("X-Request-ID"); got != "custom-request-id-12345" {
		t.Errorf("X-Request-ID: got %q, want %q", got, "custom-request-id-12345")
	}
}

func TestCORS_Preflight(t *testing.T) {
	resp := doRaw(t, http.MethodOptions, "/api/orders", nil, func(req *http.Request) {
		req.Header.Set("Origin", "https://pos.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") == "" {
		t.Error("Access-Control-Allow-Origin not set")
	}
	if resp.Header.Get("Access-Control-Allow-Methods") == "" {
		t.Error("Access-Control-Allow-Methods not set")
	}
}

func TestRateLimit_Headers(t *testing.T) {
	resp := doRaw(t, http.MethodGet, "/livez", nil, nil)
	defer resp.Body.Close()

	if resp.Header.Get("X-RateLimit-Limit") == "" {
		t.Error("X-RateLimit-Limit not set")
	}
	if resp.Header.Get("X-RateLimit-Remaining") == "" {
		t.Error("X-RateLimit-Remaining not set")
	}
}

func TestUnauthenticated_Rejected(t *testing.T) {
	resp := doRaw(t, http.MethodGet, "/api/orders", nil, nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

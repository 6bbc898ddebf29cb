//go:build integration

package integration

import (
	"net/http"
	"testing"
)

// The probes sit outside /api and require no device key or token.
func TestProbes_HealthyAndUnauthenticated(t *testing.T) {
	for _, endpoint := range []string{"/livez", "/readyz"} {
		t.Run(endpoint, func(t *testing.T) {
			resp := doRaw(t, http.MethodGet, endpoint, nil, nil)
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				t.Fatalf("%s: expected 200, got %d", endpoint, resp.StatusCode)
			}

			body := decodeJSON[healthResponse](t, resp)
			if body.Status != "ok" {
				t.Fatalf("%s: expected status ok, got %q", endpoint, body.Status)
			}
			if len(body.Checks) != 0 {
				t.Fatalf("%s: expected no failing checks, got %v", endpoint, body.Checks)
			}
		})
	}
}

package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func probeOnce(t *testing.T, endpoint http.HandlerFunc) (int, map[string]any) {
	t.Helper()

	rec := httptest.NewRecorder()
	endpoint(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestLiveEndpoint_NoChecks(t *testing.T) {
	h := New()

	code, body := probeOnce(t, h.LiveEndpoint)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
}

func TestReadyEndpoint_NotReadyUntilSet(t *testing.T) {
	h := New()

	code, body := probeOnce(t, h.ReadyEndpoint)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unhealthy", body["status"])

	h.SetReady(true)
	code, _ = probeOnce(t, h.ReadyEndpoint)
	assert.Equal(t, http.StatusOK, code)

	h.SetReady(false)
	code, _ = probeOnce(t, h.ReadyEndpoint)
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestCheck_FailureThreshold(t *testing.T) {
	c := newCheck("flaky", time.Second, func(context.Context) error {
		return errors.New("boom")
	})

	ctx := context.Background()
	for i := 0; i < failAfter-1; i++ {
		c.run(ctx)
		ok, _ := c.status()
		assert.True(t, ok, "should stay healthy before threshold")
	}
	c.run(ctx)
	ok, err := c.status()
	assert.False(t, ok)
	assert.EqualError(t, err, "boom")
}

func TestCheck_SingleSuccessRecovers(t *testing.T) {
	healthy := false
	c := newCheck("recovering", time.Second, func(context.Context) error {
		if healthy {
			return nil
		}
		return errors.New("down")
	})

	ctx := context.Background()
	for i := 0; i < failAfter; i++ {
		c.run(ctx)
	}
	ok, _ := c.status()
	require.False(t, ok)

	healthy = true
	c.run(ctx)
	ok, _ = c.status()
	assert.True(t, ok)
}

func TestReadyEndpoint_FailingCheck(t *testing.T) {
	h := New()
	h.AddReadinessCheck("db", time.Second, func(context.Context) error {
		return errors.New("connection refused")
	})
	h.SetReady(true)

	// Drive the check to its failure threshold directly.
	ctx := context.Background()
	for i := 0; i < failAfter; i++ {
		h.readiness[0].run(ctx)
	}

	code, body := probeOnce(t, h.ReadyEndpoint)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	checks := body["checks"].(map[string]any)
	assert.Equal(t, "connection refused", checks["db"])
	assert.False(t, h.IsReady())
}

func TestStartStop(t *testing.T) {
	h := New()
	ran := make(chan struct{}, 1)
	h.AddLivenessCheck("ping", time.Second, func(context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	})

	h.Start(context.Background(), 50*time.Millisecond)
	defer h.Stop()

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("check never ran")
	}

	h.Stop()
	h.Stop() // idempotent
}

func TestGoroutineCountCheck(t *testing.T) {
	assert.NoError(t, GoroutineCountCheck(1_000_000)(context.Background()))
	assert.Error(t, GoroutineCountCheck(0)(context.Background()))
}

// Package auth covers the two authentication paths of the POS: worker
// devices presenting a pre-provisioned device key, and admins presenting a
// short-lived bearer token obtained via password login.
package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"github.com/go-faster/errors"
)

// ErrUnauthorized is returned for any failed authentication attempt. The
// cause is deliberately not distinguished to the caller.
var ErrUnauthorized = errors.New("unauthorized")

// DeviceKey is a provisioned worker device credential. Only the HMAC-SHA256
// hash of the key is stored.
type DeviceKey struct {
	ID      string
	KeyHash string
	Name    string
	Active  bool
}

// DeviceRepository provides device key lookups.
type DeviceRepository interface {
	// FindByHash returns the active device key with the given hash, or an
	// error wrapping ErrUnauthorized when none exists.
	FindByHash(ctx context.Context, hash string) (*DeviceKey, error)
}

// HashDeviceKey computes the hex HMAC-SHA256 of a raw device key under the
// given pepper. The pepper keeps a leaked database from being enough to mint
// valid keys.
func HashDeviceKey(raw string, pepper []byte) string {
	mac := hmac.New(sha256.New, pepper)
	mac.Write([]byte(raw))
	return hex.EncodeToString(mac.Sum(nil))
}

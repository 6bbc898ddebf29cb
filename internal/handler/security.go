package handler

import (
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/dhabalabs/pos-server/internal/domain/auth"
)

// deviceKeyHeader carries the raw worker device key on every worker request.
const deviceKeyHeader = "X-Device-Key"

// requireDevice authenticates worker requests by computing the HMAC-SHA256 of
// the presented device key, looking the hash up in the repository, and
// performing a constant-time comparison to prevent timing attacks.
func (h *Handler) requireDevice(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(deviceKeyHeader)
		if raw == "" {
			writeError(w, r, auth.ErrUnauthorized)
			return
		}

		hexHash := auth.HashDeviceKey(raw, h.pepper)
		key, err := h.devices.FindByHash(r.Context(), hexHash)
		if err != nil {
			writeError(w, r, auth.ErrUnauthorized)
			return
		}

		// Constant-time comparison guards against timing side-channels even
		// though the lookup already succeeded; the stored hash could differ
		// from what we computed if the repository returns a stale row.
		computed, err := hex.DecodeString(hexHash)
		if err != nil {
			writeError(w, r, auth.ErrUnauthorized)
			return
		}
		stored, err := hex.DecodeString(key.KeyHash)
		if err != nil {
			writeError(w, r, auth.ErrUnauthorized)
			return
		}
		if subtle.ConstantTimeCompare(computed, stored) != 1 {
			writeError(w, r, auth.ErrUnauthorized)
			return
		}

		next(w, r)
	})
}

// requireAdmin authenticates admin requests via a bearer token issued by
// adminLogin.
func (h *Handler) requireAdmin(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, r, auth.ErrUnauthorized)
			return
		}

		if _, err := h.tokens.Verify(token); err != nil {
			zctx.From(r.Context()).Debug("Reject admin token", zap.Error(err))
			writeError(w, r, auth.ErrUnauthorized)
			return
		}

		next(w, r)
	})
}

type loginRequest struct {
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// adminLogin checks the admin password against the configured bcrypt hash and
// issues a short-lived bearer token.
func (h *Handler) adminLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	if err := auth.CheckPassword(h.adminPasswordHash, req.Password); err != nil {
		writeError(w, r, auth.ErrUnauthorized)
		return
	}

	token, err := h.tokens.Issue("admin")
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token})
}

package auth

import (
	"crypto/subtle"
	"net/http"
)

// TriggerAuthMiddleware gates scheduled-job endpoints behind a
// pre-shared scheduler secret carried as a bearer credential.
type TriggerAuthMiddleware struct {
	Secret []byte
}

// NewTriggerAuthMiddleware constructs trigger auth middleware.
func NewTriggerAuthMiddleware(secret []byte) *TriggerAuthMiddleware {
	return &TriggerAuthMiddleware{Secret: secret}
}

// Wrap enforces the scheduler secret before the job handler runs.
func (m *TriggerAuthMiddleware) Wrap(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(m.Secret) == 0 {
			http.Error(w, "trigger auth not configured", http.StatusUnauthorized)
			return
		}
		provided := extractBearer(r)
		if provided == "" {
			http.Error(w, "missing scheduler credential", http.StatusUnauthorized)
			return
		}
		if subtle.ConstantTimeCompare([]byte(provided), m.Secret) != 1 {
			http.Error(w, "invalid scheduler credential", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

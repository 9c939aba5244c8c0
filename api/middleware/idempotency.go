package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"github.com/taskhive/taskhive-backend/api/responses"
	pkgerrors "github.com/taskhive/taskhive-backend/pkg/errors"
	"github.com/taskhive/taskhive-backend/pkg/logger"
)

// IdempotencyStore claims a token for the TTL window, reporting whether the
// caller was first. The redis client satisfies this.
type IdempotencyStore interface {
	IdempotencyKey(ctx context.Context, token string, ttl time.Duration) (bool, error)
}

// Idempotency guards mutating admin routes against accidental replays. The
// client sends an Idempotency-Key header; a second request with the same key,
// actor and route inside the TTL window is rejected with CONFLICT before it
// reaches the approval engine.
func Idempotency(store IdempotencyStore, ttl time.Duration, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if store == nil || !mutating(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			token := buildToken(r, key)
			claimed, err := store.IdempotencyKey(r.Context(), token, ttl)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
				return
			}
			if !claimed {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeConflict, "duplicate request"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// buildToken scopes the key to the actor and route so distinct callers or
// endpoints reusing the same key never collide.
func buildToken(r *http.Request, key string) string {
	scope := strings.Join([]string{
		UserIDFromContext(r.Context()),
		r.Method,
		r.URL.Path,
		key,
	}, "|")
	sum := sha256.Sum256([]byte(scope))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

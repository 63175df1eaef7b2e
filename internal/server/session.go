package server

import (
	"context"
	"net/http"

	khttp "github.com/go-kratos/kratos/v2/transport/http"
	"github.com/google/uuid"
)

// The correlation key that pairs a stage request with its later commit
// or rollback rides on a session cookie. Callers that strip cookies fall
// back to one process-local identity and lose session isolation.

const sessionCookie = "SOSPESO_SESSION"

type sessionKey struct{}

var processIdentity = "proc-" + uuid.NewString()

// SessionFilter makes sure every request carries a session identifier,
// issuing a cookie on first contact, and exposes it on the request
// context.
func SessionFilter() khttp.FilterFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if c, err := r.Cookie(sessionCookie); err == nil {
				id = c.Value
			}
			if id == "" {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     sessionCookie,
					Value:    id,
					Path:     "/",
					HttpOnly: true,
				})
			}
			ctx := context.WithValue(r.Context(), sessionKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CorrelationKey returns the session identifier established by
// SessionFilter, or the process-local fallback identity when none is
// present. The key is extracted once here and passed explicitly from
// then on.
func CorrelationKey(ctx context.Context) string {
	if id, ok := ctx.Value(sessionKey{}).(string); ok && id != "" {
		return id
	}
	return processIdentity
}

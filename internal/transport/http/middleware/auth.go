package middleware

import (
	"context"
	"net/http"
	"strings"

	"perfeval/internal/domain/auth"
)

type ctxKey int

const ctxKeyCaller ctxKey = iota

// Auth parses an optional bearer token into an auth.Context. Requests
// without a valid token pass through anonymous; RequireAuth and
// RequirePermission decide where identity is mandatory.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := auth.ParseToken(secret, parts[1])
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			caller := auth.Context{
				UserID: claims.UserID,
				OrgID:  claims.OrgID,
				Roles:  auth.ParseRoles(claims.Roles),
			}
			ctx := context.WithValue(r.Context(), ctxKeyCaller, caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetCaller(ctx context.Context) (auth.Context, bool) {
	caller, ok := ctx.Value(ctxKeyCaller).(auth.Context)
	return caller, ok
}

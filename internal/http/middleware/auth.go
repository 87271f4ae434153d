package middleware

import (
	"context"
	"net/http"
	"strings"

	"placementhub/internal/common"
	"placementhub/internal/domain/admin"
	"placementhub/internal/domain/user"
	"placementhub/internal/http/response"
	"placementhub/internal/security"
)

type contextKey string

const ContextIdentityKey contextKey = "identity"

type AuthMiddleware struct {
	jwt *security.JWTProvider
}

func NewAuthMiddleware(jwt *security.JWTProvider) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt}
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Error(w, common.NewError(common.CodeUnauthorized, "missing authorization header", nil))
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			response.Error(w, common.NewError(common.CodeUnauthorized, "invalid authorization header", nil))
			return
		}
		claims, err := m.jwt.Parse(parts[1])
		if err != nil {
			response.Error(w, common.NewError(common.CodeUnauthorized, "invalid token", err))
			return
		}
		ctx := context.WithValue(r.Context(), ContextIdentityKey, claims.Identity())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin gates a handler on the admin directory. The directory is the
// only authority; there is no role claim in the token to shortcut it.
func RequireAdmin(directory admin.Directory) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				response.Error(w, common.NewError(common.CodeUnauthorized, "authentication required", nil))
				return
			}
			isAdmin, err := directory.IsAdmin(r.Context(), identity.Email)
			if err != nil {
				response.Error(w, err)
				return
			}
			if !isAdmin {
				response.Error(w, common.NewError(common.CodeForbidden, "admin access required", nil))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func IdentityFromContext(ctx context.Context) (user.Identity, bool) {
	identity, ok := ctx.Value(ContextIdentityKey).(user.Identity)
	return identity, ok
}

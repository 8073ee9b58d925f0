package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/HanTheDev/review-reply-gateway/internal/apperr"
	"github.com/HanTheDev/review-reply-gateway/internal/models"
)

type contextKey string

const UserContextKey contextKey = "user"

type Middleware struct {
	jwtSecret string
}

func NewMiddleware(jwtSecret string) *Middleware {
	return &Middleware{jwtSecret: jwtSecret}
}

func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			apperr.Write(w, apperr.New(apperr.ErrUnauthorized, apperr.MsgAuthRequired))
			return
		}

		claims, err := ValidateToken(strings.TrimSpace(token), m.jwtSecret)
		if err != nil {
			apperr.Write(w, apperr.New(apperr.ErrUnauthorized, apperr.MsgInvalidToken))
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole lets through only authenticated users holding one of roles.
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := GetUserFromContext(r.Context())
			if !ok {
				apperr.Write(w, apperr.New(apperr.ErrUnauthorized, apperr.MsgAuthRequired))
				return
			}
			for _, role := range roles {
				if claims.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			apperr.Write(w, apperr.New(apperr.ErrForbidden, apperr.MsgForbidden))
		})
	}
}

func GetUserFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(UserContextKey).(*Claims)
	return claims, ok
}

// WithUser stores claims in ctx the way Authenticate does.
func WithUser(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, UserContextKey, claims)
}

package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/BuzzLyutic/task-tracker-api/pkg/respond"
)

type ctxKey int

const claimsKey ctxKey = iota

// Middleware проверяет Bearer-токен и кладет клеймы в контекст запроса.
// Дальше контекстом пользуются только хэндлеры: в сервисы id владельца
// передается явным аргументом.
func Middleware(jwt *JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				respond.Error(w, r, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := jwt.ValidateAccessToken(token)
			if err != nil {
				respond.Error(w, r, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OwnerID возвращает проверенный id владельца из контекста запроса.
func OwnerID(r *http.Request) string {
	if claims, ok := r.Context().Value(claimsKey).(*Claims); ok {
		return claims.UserID
	}
	return ""
}

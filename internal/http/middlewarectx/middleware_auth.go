// Package middlewarectx содержит HTTP middleware для обработки и проверки bearer-токенов.
//
// AuthMiddleware проверяет наличие и валидность токена в заголовке Authorization,
// разбирает его через token.Maker и в случае успеха добавляет в контекст
// AuthContext с данными пользователя и арендатора для дальнейшего
// использования в обработчиках.
//
// В случае ошибки проверки возвращает HTTP 401 Unauthorized с сообщением об ошибке.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/ailab-portal/internal/http/response"
	"github.com/magabrotheeeer/ailab-portal/internal/lib/sl"
	"github.com/magabrotheeeer/ailab-portal/internal/lib/token"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// Auth — ключ для AuthContext в контексте запроса.
const Auth Key = "auth"

// TokenParser описывает интерфейс разбора bearer-токена.
type TokenParser interface {
	ParseToken(tokenStr string) (*token.AuthContext, error)
}

// AuthMiddleware возвращает HTTP middleware, который проверяет bearer-токен
// в заголовке Authorization.
//
// Если токен валиден, добавляет AuthContext в контекст запроса,
// иначе возвращает ошибку с HTTP статусом 401 Unauthorized.
func AuthMiddleware(parser TokenParser, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			const op = "middlewarectx.AuthMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Error("missing or invalid authorization header")
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid authorization header"))
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			auth, err := parser.ParseToken(tokenStr)
			if err != nil {
				log.Error("invalid or expired token", sl.Err(err))
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or expired token"))
				return
			}
			ctx := context.WithValue(r.Context(), Auth, auth)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AuthFromContext извлекает AuthContext из контекста запроса.
func AuthFromContext(ctx context.Context) (*token.AuthContext, bool) {
	auth, ok := ctx.Value(Auth).(*token.AuthContext)
	if !ok || auth == nil {
		return nil, false
	}
	return auth, true
}

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/gophtodo/internal/models"
	"github.com/iudanet/gophtodo/internal/server/handlers"
	"github.com/iudanet/gophtodo/internal/server/storage"
)

const msgAuthRequired = "authentication required"

// TokenVerifier проверяет токен сессии и возвращает ID пользователя
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// UserLookup находит пользователя по ID
type UserLookup interface {
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
}

// AuthMiddleware создает middleware для проверки bearer токена.
// Пользователь из токена должен существовать в хранилище, иначе 401.
// При любой ошибке запрос не доходит до следующего handler.
// exposeInternal - отдавать текст ошибки хранилища в теле 500 ответа.
func AuthMiddleware(logger *slog.Logger, tokens TokenVerifier, users UserLookup, exposeInternal bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			tokenString, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				logger.WarnContext(ctx, "missing or malformed Authorization header")
				handlers.WriteError(w, http.StatusUnauthorized, msgAuthRequired)
				return
			}

			userID, err := tokens.Verify(tokenString)
			if err != nil {
				logger.WarnContext(ctx, "invalid access token", slog.Any("error", err))
				handlers.WriteError(w, http.StatusUnauthorized, msgAuthRequired)
				return
			}

			user, err := users.GetUserByID(ctx, userID)
			if err != nil {
				if errors.Is(err, storage.ErrUserNotFound) {
					logger.WarnContext(ctx, "token owner not found", slog.String("user_id", userID))
					handlers.WriteError(w, http.StatusUnauthorized, msgAuthRequired)
					return
				}
				logger.ErrorContext(ctx, "failed to resolve token owner", slog.Any("error", err))
				message := "internal server error"
				if exposeInternal {
					message = err.Error()
				}
				handlers.WriteError(w, http.StatusInternalServerError, message)
				return
			}

			logger.DebugContext(ctx, "user authenticated", slog.String("user_id", user.ID))

			next.ServeHTTP(w, r.WithContext(handlers.WithUserID(ctx, user.ID)))
		})
	}
}

// bearerToken извлекает токен из "Bearer <token>", схема без учета регистра
func bearerToken(header string) (string, bool) {
	scheme, tokenString, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return "", false
	}

	return tokenString, true
}

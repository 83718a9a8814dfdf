package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/gophtodo/internal/models"
	"github.com/iudanet/gophtodo/internal/server/storage"
	"github.com/iudanet/gophtodo/internal/validation"
	"github.com/iudanet/gophtodo/pkg/api"
)

// Сообщения об ошибках аутентификации
const (
	msgEmailTaken         = "email already registered"
	msgInvalidCredentials = "invalid email or password"
)

// PasswordHasher хеширует и проверяет пароли
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) (bool, error)
}

// TokenIssuer выпускает токены сессии
type TokenIssuer interface {
	Issue(userID string) (string, time.Time, error)
}

// AuthHandler обрабатывает запросы авторизации
type AuthHandler struct {
	userStorage storage.UserStorage
	hasher      PasswordHasher
	tokens      TokenIssuer
	now         func() time.Time
	responder
}

// NewAuthHandler создает новый handler для авторизации
func NewAuthHandler(
	logger *slog.Logger,
	userStorage storage.UserStorage,
	hasher PasswordHasher,
	tokens TokenIssuer,
	exposeInternal bool,
) *AuthHandler {
	return &AuthHandler{
		userStorage: userStorage,
		hasher:      hasher,
		tokens:      tokens,
		now:         time.Now,
		responder:   responder{logger: logger, exposeInternal: exposeInternal},
	}
}

// Register обрабатывает POST /auth/register
// Регистрация нового пользователя, в ответе сразу выдается токен
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode register request", slog.Any("error", err))
		h.sendError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := validation.ValidateRegistration(req.Email, req.Password); err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	email := validation.NormalizeEmail(req.Email)

	// Предварительная проверка. Окончательно уникальность email гарантирует хранилище.
	_, err := h.userStorage.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		h.logger.WarnContext(ctx, "email already registered", slog.String("email", email))
		h.sendError(w, msgEmailTaken, http.StatusBadRequest)
		return
	case !errors.Is(err, storage.ErrUserNotFound):
		h.sendInternalError(ctx, w, "failed to check user", err)
		return
	}

	passwordHash, err := h.hasher.Hash(req.Password)
	if err != nil {
		h.sendInternalError(ctx, w, "failed to hash password", err)
		return
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         validation.NormalizeName(req.Name),
		PasswordHash: passwordHash,
		CreatedAt:    h.now().UTC(),
	}

	if err := h.userStorage.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			h.logger.WarnContext(ctx, "email already registered", slog.String("email", email))
			h.sendError(w, msgEmailTaken, http.StatusBadRequest)
			return
		}
		h.sendInternalError(ctx, w, "failed to create user", err)
		return
	}

	tokenString, _, err := h.tokens.Issue(user.ID)
	if err != nil {
		h.sendInternalError(ctx, w, "failed to issue token", err)
		return
	}

	h.logger.InfoContext(ctx, "user registered successfully",
		slog.String("user_id", user.ID))

	h.sendJSON(ctx, w, api.AuthResponse{User: toAPIUser(user), Token: tokenString}, http.StatusCreated)
}

// Login обрабатывает POST /auth/login
// Неизвестный email и неверный пароль неразличимы для клиента
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode login request", slog.Any("error", err))
		h.sendError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := validation.ValidateLogin(req.Email, req.Password); err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	email := validation.NormalizeEmail(req.Email)

	user, err := h.userStorage.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			h.logger.WarnContext(ctx, "login failed: user not found", slog.String("email", email))
			h.sendError(w, msgInvalidCredentials, http.StatusUnauthorized)
			return
		}
		h.sendInternalError(ctx, w, "failed to get user", err)
		return
	}

	ok, err := h.hasher.Verify(req.Password, user.PasswordHash)
	if err != nil {
		h.sendInternalError(ctx, w, "failed to verify password", err)
		return
	}
	if !ok {
		h.logger.WarnContext(ctx, "login failed: invalid password", slog.String("user_id", user.ID))
		h.sendError(w, msgInvalidCredentials, http.StatusUnauthorized)
		return
	}

	tokenString, _, err := h.tokens.Issue(user.ID)
	if err != nil {
		h.sendInternalError(ctx, w, "failed to issue token", err)
		return
	}

	h.logger.InfoContext(ctx, "user logged in successfully", slog.String("user_id", user.ID))

	h.sendJSON(ctx, w, api.AuthResponse{User: toAPIUser(user), Token: tokenString}, http.StatusOK)
}

func toAPIUser(user *models.User) api.User {
	return api.User{
		CreatedAt: user.CreatedAt,
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
	}
}

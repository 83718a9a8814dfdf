package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/gophtodo/internal/crypto"
	"github.com/iudanet/gophtodo/internal/server"
	"github.com/iudanet/gophtodo/internal/server/storage/sqlite"
	"github.com/iudanet/gophtodo/internal/server/token"
	"github.com/iudanet/gophtodo/pkg/api"
)

// TestNewClient проверяет создание нового клиента
func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:3001/api/")

	assert.Equal(t, "http://localhost:3001/api", client.baseURL)
	assert.Equal(t, 30*time.Second, client.httpClient.Timeout)
	assert.Empty(t, client.Token())
}

// TestClient_Login проверяет запрос и сохранение токена
func TestClient_Login(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Empty(t, r.Header.Get("Authorization"))

		var req api.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "alice@example.com", req.Email)

		_ = json.NewEncoder(w).Encode(api.AuthResponse{
			User:  api.User{ID: "user-1", Email: req.Email},
			Token: "token-123",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL + "/api")
	resp, err := client.Login(context.Background(), api.LoginRequest{Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "user-1", resp.User.ID)
	assert.Equal(t, "token-123", client.Token())
}

// TestClient_Errors проверяет разбор ошибок сервера
func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantMessage string
		status      int
	}{
		{
			name:        "json error",
			status:      http.StatusUnauthorized,
			body:        `{"error":"authentication required"}`,
			wantMessage: "authentication required",
		},
		{
			name:        "plain text error",
			status:      http.StatusBadGateway,
			body:        "bad gateway\n",
			wantMessage: "bad gateway",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL).ListTodos(context.Background())
			require.Error(t, err)
			assert.True(t, IsStatus(err, tt.status))

			var apiErr *Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
		})
	}
}

// TestClient_AgainstServer прогоняет полный сценарий против настоящего роутера
func TestClient_AgainstServer(t *testing.T) {
	ctx := context.Background()

	store, err := sqlite.New(ctx, ":memory:")
	require.NoError(t, err)
	defer func() {
		_ = store.Close()
	}()

	hasher, err := crypto.NewPasswordHasher(crypto.AlgorithmBcrypt, crypto.WithBcryptCost(4))
	require.NoError(t, err)

	srv := httptest.NewServer(server.NewRouter(server.RouterOptions{
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		Store:          store,
		Hasher:         hasher,
		Tokens:         token.NewService("client-test-secret", 0),
		AllowedOrigins: []string{"*"},
	}))
	defer srv.Close()

	client := NewClient(srv.URL + server.APIPrefix)

	_, err = client.ListTodos(ctx)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))

	reg, err := client.Register(ctx, api.RegisterRequest{Email: "alice@example.com", Password: "secret1", Name: "Alice"})
	require.NoError(t, err)
	assert.Equal(t, "Alice", reg.User.Name)

	todo, err := client.CreateTodo(ctx, "buy milk")
	require.NoError(t, err)
	assert.Equal(t, "buy milk", todo.Text)
	assert.False(t, todo.Completed)

	done := true
	updated, err := client.UpdateTodo(ctx, todo.ID, api.UpdateTodoRequest{Completed: &done})
	require.NoError(t, err)
	assert.True(t, updated.Completed)

	got, err := client.GetTodo(ctx, todo.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got)

	todos, err := client.ListTodos(ctx)
	require.NoError(t, err)
	require.Len(t, todos, 1)

	require.NoError(t, client.DeleteTodo(ctx, todo.ID))

	_, err = client.GetTodo(ctx, todo.ID)
	assert.True(t, IsStatus(err, http.StatusNotFound))

	// Новый клиент без токена, неверный пароль
	other := NewClient(srv.URL)
	_, err = other.Login(ctx, api.LoginRequest{Email: "alice@example.com", Password: "wrong-password"})
	assert.True(t, IsStatus(err, http.StatusUnauthorized))

	health, err := other.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ok", health.Status)
}

// Package api is a Go client for the gophtodo HTTP API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/iudanet/gophtodo/pkg/api"
)

// Error ответ сервера с кодом, отличным от 2xx
type Error struct {
	Message    string
	StatusCode int
}

func (e *Error) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
}

// IsStatus сообщает, что err - ошибка сервера с указанным кодом
func IsStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

// Client представляет HTTP клиент для взаимодействия с сервером
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	mu         sync.RWMutex
}

// NewClient создает новый API клиент.
// baseURL - адрес сервера вместе с префиксом, например http://localhost:3001/api
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetToken задает bearer токен для запросов к /todos
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Token возвращает текущий токен
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Register регистрирует нового пользователя и запоминает выданный токен
func (c *Client) Register(ctx context.Context, req api.RegisterRequest) (*api.AuthResponse, error) {
	var resp api.AuthResponse
	if err := c.doRequest(ctx, http.MethodPost, "/auth/register", req, &resp); err != nil {
		return nil, fmt.Errorf("register request failed: %w", err)
	}
	c.SetToken(resp.Token)
	return &resp, nil
}

// Login выполняет аутентификацию и запоминает выданный токен
func (c *Client) Login(ctx context.Context, req api.LoginRequest) (*api.AuthResponse, error) {
	var resp api.AuthResponse
	if err := c.doRequest(ctx, http.MethodPost, "/auth/login", req, &resp); err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	c.SetToken(resp.Token)
	return &resp, nil
}

// ListTodos возвращает задачи пользователя, новые первыми
func (c *Client) ListTodos(ctx context.Context) ([]api.Todo, error) {
	var todos []api.Todo
	if err := c.doRequest(ctx, http.MethodGet, "/todos", nil, &todos); err != nil {
		return nil, fmt.Errorf("list todos request failed: %w", err)
	}
	return todos, nil
}

// CreateTodo создает задачу
func (c *Client) CreateTodo(ctx context.Context, text string) (*api.Todo, error) {
	var todo api.Todo
	if err := c.doRequest(ctx, http.MethodPost, "/todos", api.CreateTodoRequest{Text: text}, &todo); err != nil {
		return nil, fmt.Errorf("create todo request failed: %w", err)
	}
	return &todo, nil
}

// GetTodo возвращает задачу по ID
func (c *Client) GetTodo(ctx context.Context, id string) (*api.Todo, error) {
	var todo api.Todo
	if err := c.doRequest(ctx, http.MethodGet, todoPath(id), nil, &todo); err != nil {
		return nil, fmt.Errorf("get todo request failed: %w", err)
	}
	return &todo, nil
}

// UpdateTodo частично обновляет задачу, nil поля не отправляются
func (c *Client) UpdateTodo(ctx context.Context, id string, req api.UpdateTodoRequest) (*api.Todo, error) {
	var todo api.Todo
	if err := c.doRequest(ctx, http.MethodPatch, todoPath(id), req, &todo); err != nil {
		return nil, fmt.Errorf("update todo request failed: %w", err)
	}
	return &todo, nil
}

// DeleteTodo удаляет задачу
func (c *Client) DeleteTodo(ctx context.Context, id string) error {
	if err := c.doRequest(ctx, http.MethodDelete, todoPath(id), nil, nil); err != nil {
		return fmt.Errorf("delete todo request failed: %w", err)
	}
	return nil
}

// Health проверяет доступность сервера
func (c *Client) Health(ctx context.Context) (*api.HealthResponse, error) {
	var resp api.HealthResponse
	if err := c.doRequest(ctx, http.MethodGet, "/health", nil, &resp); err != nil {
		return nil, fmt.Errorf("health request failed: %w", err)
	}
	return &resp, nil
}

func todoPath(id string) string {
	return "/todos/" + url.PathEscape(id)
}

// doRequest выполняет HTTP запрос
func (c *Client) doRequest(ctx context.Context, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &Error{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != "" {
			apiErr.Message = errResp.Error
		}
		return apiErr
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

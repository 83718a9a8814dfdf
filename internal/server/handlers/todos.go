package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/iudanet/gophtodo/internal/models"
	"github.com/iudanet/gophtodo/internal/server/storage"
	"github.com/iudanet/gophtodo/internal/validation"
	"github.com/iudanet/gophtodo/pkg/api"
)

const msgTodoNotFound = "todo not found"

// TodoHandler обрабатывает CRUD запросы к задачам.
// Все операции выполняются от имени пользователя из контекста (AuthMiddleware).
type TodoHandler struct {
	taskStorage storage.TaskStorage
	now         func() time.Time
	responder
}

// NewTodoHandler создает новый handler для задач
func NewTodoHandler(logger *slog.Logger, taskStorage storage.TaskStorage, exposeInternal bool) *TodoHandler {
	return &TodoHandler{
		taskStorage: taskStorage,
		now:         time.Now,
		responder:   responder{logger: logger, exposeInternal: exposeInternal},
	}
}

// List обрабатывает GET /todos
// Возвращает задачи пользователя, новые первыми
func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	tasks, err := h.taskStorage.ListTasks(ctx, userID)
	if err != nil {
		h.sendInternalError(ctx, w, "failed to list tasks", err)
		return
	}

	resp := make([]api.Todo, 0, len(tasks))
	for _, task := range tasks {
		resp = append(resp, toAPITodo(task))
	}

	h.sendJSON(ctx, w, resp, http.StatusOK)
}

// Create обрабатывает POST /todos
func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	var req api.CreateTodoRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode create todo request", slog.Any("error", err))
		h.sendError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	text, err := validation.ValidateTaskText(req.Text)
	if err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	task := &models.Task{
		ID:        uuid.New().String(),
		OwnerID:   userID,
		Text:      text,
		CreatedAt: h.now().UTC(),
	}

	if err := h.taskStorage.CreateTask(ctx, task); err != nil {
		h.sendInternalError(ctx, w, "failed to create task", err)
		return
	}

	h.logger.InfoContext(ctx, "task created",
		slog.String("user_id", userID),
		slog.String("task_id", task.ID))

	h.sendJSON(ctx, w, toAPITodo(task), http.StatusCreated)
}

// Get обрабатывает GET /todos/{id}
func (h *TodoHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, taskID, ok := h.callerAndTaskID(w, r)
	if !ok {
		return
	}

	task, err := h.taskStorage.GetTask(ctx, userID, taskID)
	if err != nil {
		h.sendStorageError(w, r, "failed to get task", err)
		return
	}

	h.sendJSON(ctx, w, toAPITodo(task), http.StatusOK)
}

// Update обрабатывает PUT и PATCH /todos/{id}
// text применяется только если это строка (пустая после trim игнорируется),
// completed - только если это boolean. Остальные поля игнорируются.
func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, taskID, ok := h.callerAndTaskID(w, r)
	if !ok {
		return
	}

	var body map[string]any
	if err := decodeJSON(r, &body); err != nil {
		h.logger.WarnContext(ctx, "failed to decode update todo request", slog.Any("error", err))
		h.sendError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	patch := patchFromBody(body)

	task, err := h.taskStorage.UpdateTask(ctx, userID, taskID, patch)
	if err != nil {
		h.sendStorageError(w, r, "failed to update task", err)
		return
	}

	h.logger.InfoContext(ctx, "task updated",
		slog.String("user_id", userID),
		slog.String("task_id", taskID))

	h.sendJSON(ctx, w, toAPITodo(task), http.StatusOK)
}

// Delete обрабатывает DELETE /todos/{id}
func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, taskID, ok := h.callerAndTaskID(w, r)
	if !ok {
		return
	}

	if err := h.taskStorage.DeleteTask(ctx, userID, taskID); err != nil {
		h.sendStorageError(w, r, "failed to delete task", err)
		return
	}

	h.logger.InfoContext(ctx, "task deleted",
		slog.String("user_id", userID),
		slog.String("task_id", taskID))

	h.sendJSON(ctx, w, api.MessageResponse{Message: "Todo deleted"}, http.StatusOK)
}

// callerID достает пользователя, установленного AuthMiddleware
func (h *TodoHandler) callerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		h.logger.ErrorContext(r.Context(), "user ID not found in context")
		h.sendError(w, "authentication required", http.StatusUnauthorized)
		return "", false
	}
	return userID, true
}

// callerAndTaskID дополнительно проверяет id задачи из пути.
// Некорректный id не может принадлежать пользователю, поэтому это 404.
func (h *TodoHandler) callerAndTaskID(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return "", "", false
	}

	taskID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(taskID); err != nil {
		h.sendError(w, msgTodoNotFound, http.StatusNotFound)
		return "", "", false
	}

	return userID, taskID, true
}

func (h *TodoHandler) sendStorageError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	if errors.Is(err, storage.ErrTaskNotFound) {
		h.sendError(w, msgTodoNotFound, http.StatusNotFound)
		return
	}
	h.sendInternalError(r.Context(), w, msg, err)
}

func patchFromBody(body map[string]any) models.TaskPatch {
	var patch models.TaskPatch

	if text, ok := body["text"].(string); ok {
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			patch.Text = &trimmed
		}
	}

	if completed, ok := body["completed"].(bool); ok {
		patch.Completed = &completed
	}

	return patch
}

func toAPITodo(task *models.Task) api.Todo {
	return api.Todo{
		CreatedAt: task.CreatedAt,
		ID:        task.ID,
		Text:      task.Text,
		Owner:     task.OwnerID,
		Completed: task.Completed,
	}
}

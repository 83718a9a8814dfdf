package storage

import (
	"context"

	"github.com/iudanet/gophtodo/internal/models"
)

//go:generate moq -out task_mock.go . TaskStorage

// TaskStorage defines interface for task persistence.
// Every read and write is scoped by owner: a task owned by another user
// behaves exactly like a missing one.
type TaskStorage interface {
	// CreateTask stores a new task
	CreateTask(ctx context.Context, task *models.Task) error

	// ListTasks returns all tasks of the owner, newest first
	// Returns empty slice if no tasks found
	ListTasks(ctx context.Context, ownerID string) ([]*models.Task, error)

	// GetTask retrieves a task by ID
	// Returns ErrTaskNotFound if task doesn't exist or is owned by someone else
	GetTask(ctx context.Context, ownerID, taskID string) (*models.Task, error)

	// UpdateTask applies patch to the task and returns the updated task
	// Returns ErrTaskNotFound if task doesn't exist or is owned by someone else
	UpdateTask(ctx context.Context, ownerID, taskID string, patch models.TaskPatch) (*models.Task, error)

	// DeleteTask permanently removes the task
	// Returns ErrTaskNotFound if task doesn't exist or is owned by someone else
	DeleteTask(ctx context.Context, ownerID, taskID string) error
}

// Storage объединяет хранилища, которые нужны серверу
type Storage interface {
	UserStorage
	TaskStorage

	// Ping проверяет доступность хранилища
	Ping(ctx context.Context) error

	// Close закрывает соединение с хранилищем
	Close() error
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/gophtodo/internal/models"
	"github.com/iudanet/gophtodo/internal/server/storage"
)

const taskColumns = `seq, id, owner_id, text, completed, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// CreateTask stores a new task and fills in its insertion sequence
func (s *Storage) CreateTask(ctx context.Context, task *models.Task) error {
	query := `
		INSERT INTO tasks (id, owner_id, text, completed, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING seq
	`

	err := s.db.QueryRowContext(ctx, query,
		task.ID, task.OwnerID, task.Text, task.Completed, task.CreatedAt.UTC(),
	).Scan(&task.Seq)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}

	return nil
}

// ListTasks returns all tasks of the owner, newest first
func (s *Storage) ListTasks(ctx context.Context, ownerID string) ([]*models.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE owner_id = $1
		ORDER BY created_at DESC, seq DESC
	`

	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	tasks := make([]*models.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return tasks, nil
}

// GetTask retrieves a task owned by ownerID
func (s *Storage) GetTask(ctx context.Context, ownerID, taskID string) (*models.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE id = $1 AND owner_id = $2
	`

	task, err := scanTask(s.db.QueryRowContext(ctx, query, taskID, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return task, nil
}

// UpdateTask applies patch in a single UPDATE ... RETURNING (last write wins)
func (s *Storage) UpdateTask(ctx context.Context, ownerID, taskID string, patch models.TaskPatch) (*models.Task, error) {
	query := `
		UPDATE tasks
		SET text = COALESCE($1, text),
		    completed = COALESCE($2, completed)
		WHERE id = $3 AND owner_id = $4
		RETURNING ` + taskColumns

	var text sql.NullString
	if patch.Text != nil {
		text = sql.NullString{String: *patch.Text, Valid: true}
	}

	var completed sql.NullBool
	if patch.Completed != nil {
		completed = sql.NullBool{Bool: *patch.Completed, Valid: true}
	}

	task, err := scanTask(s.db.QueryRowContext(ctx, query, text, completed, taskID, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return task, nil
}

// DeleteTask permanently removes the task
func (s *Storage) DeleteTask(ctx context.Context, ownerID, taskID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1 AND owner_id = $2`, taskID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return storage.ErrTaskNotFound
	}

	return nil
}

func scanTask(row rowScanner) (*models.Task, error) {
	task := &models.Task{}
	var seq int64
	if err := row.Scan(&seq, &task.ID, &task.OwnerID, &task.Text, &task.Completed, &task.CreatedAt); err != nil {
		return nil, err
	}
	task.Seq = uint64(seq)
	task.CreatedAt = task.CreatedAt.UTC()
	return task, nil
}

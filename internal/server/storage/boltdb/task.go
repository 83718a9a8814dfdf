package boltdb

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/gophtodo/internal/models"
	"github.com/iudanet/gophtodo/internal/server/storage"
)

// orderKey строит ключ индекса владельца: created_at, затем seq.
// Оба числа big-endian, у времени инвертирован знаковый бит,
// так что лексикографический порядок ключей совпадает с хронологическим.
func orderKey(task *models.Task) []byte {
	key := make([]byte, 16)
	binary.BigEndian.PutUint64(key[:8], uint64(task.CreatedAt.UnixNano())^(1<<63))
	binary.BigEndian.PutUint64(key[8:], task.Seq)
	return key
}

// CreateTask stores a new task and adds it to the owner index
func (s *Storage) CreateTask(ctx context.Context, task *models.Task) error {
	return s.update(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketUsers).Get([]byte(task.OwnerID)) == nil {
			return fmt.Errorf("owner %s: %w", task.OwnerID, storage.ErrUserNotFound)
		}

		tasks := tx.Bucket(bucketTasks)
		if tasks.Get([]byte(task.ID)) != nil {
			return fmt.Errorf("task id %s already taken", task.ID)
		}

		seq, err := tasks.NextSequence()
		if err != nil {
			return fmt.Errorf("failed to allocate sequence: %w", err)
		}

		stored := *task
		stored.Seq = seq
		stored.CreatedAt = task.CreatedAt.UTC()

		data, err := json.Marshal(&stored)
		if err != nil {
			return fmt.Errorf("failed to marshal task: %w", err)
		}

		if err := tasks.Put([]byte(stored.ID), data); err != nil {
			return fmt.Errorf("failed to save task: %w", err)
		}

		index, err := tx.Bucket(bucketOwnerTasks).CreateBucketIfNotExists([]byte(stored.OwnerID))
		if err != nil {
			return fmt.Errorf("failed to create owner index: %w", err)
		}
		if err := index.Put(orderKey(&stored), []byte(stored.ID)); err != nil {
			return fmt.Errorf("failed to index task: %w", err)
		}

		task.Seq = seq
		return nil
	})
}

// ListTasks walks the owner index backwards, newest first
func (s *Storage) ListTasks(ctx context.Context, ownerID string) ([]*models.Task, error) {
	tasks := make([]*models.Task, 0)

	err := s.view(func(tx *bbolt.Tx) error {
		index := tx.Bucket(bucketOwnerTasks).Bucket([]byte(ownerID))
		if index == nil {
			return nil
		}

		all := tx.Bucket(bucketTasks)

		// Обратный обход индекса: от новых к старым
		c := index.Cursor()
		for k, id := c.Last(); k != nil; k, id = c.Prev() {
			task, err := decodeTask(all.Get(id))
			if err != nil {
				return err
			}
			tasks = append(tasks, task)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, nil
}

// GetTask retrieves a task owned by ownerID
func (s *Storage) GetTask(ctx context.Context, ownerID, taskID string) (*models.Task, error) {
	var task *models.Task

	err := s.view(func(tx *bbolt.Tx) error {
		var err error
		task, err = getOwnedTask(tx, ownerID, taskID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return task, nil
}

// UpdateTask applies patch inside one write transaction
func (s *Storage) UpdateTask(ctx context.Context, ownerID, taskID string, patch models.TaskPatch) (*models.Task, error) {
	var task *models.Task

	err := s.update(func(tx *bbolt.Tx) error {
		var err error
		task, err = getOwnedTask(tx, ownerID, taskID)
		if err != nil {
			return err
		}

		if patch.IsEmpty() {
			return nil
		}
		patch.Apply(task)

		data, err := json.Marshal(task)
		if err != nil {
			return fmt.Errorf("failed to marshal task: %w", err)
		}
		return tx.Bucket(bucketTasks).Put([]byte(task.ID), data)
	})
	if err != nil {
		return nil, err
	}

	return task, nil
}

// DeleteTask permanently removes the task and its index entry
func (s *Storage) DeleteTask(ctx context.Context, ownerID, taskID string) error {
	return s.update(func(tx *bbolt.Tx) error {
		task, err := getOwnedTask(tx, ownerID, taskID)
		if err != nil {
			return err
		}

		if err := tx.Bucket(bucketTasks).Delete([]byte(task.ID)); err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}

		if index := tx.Bucket(bucketOwnerTasks).Bucket([]byte(ownerID)); index != nil {
			if err := index.Delete(orderKey(task)); err != nil {
				return fmt.Errorf("failed to delete task index: %w", err)
			}
		}
		return nil
	})
}

// getOwnedTask возвращает ErrTaskNotFound и для чужой задачи
func getOwnedTask(tx *bbolt.Tx, ownerID, taskID string) (*models.Task, error) {
	data := tx.Bucket(bucketTasks).Get([]byte(taskID))
	if data == nil {
		return nil, storage.ErrTaskNotFound
	}

	task, err := decodeTask(data)
	if err != nil {
		return nil, err
	}
	if task.OwnerID != ownerID {
		return nil, storage.ErrTaskNotFound
	}

	return task, nil
}

func decodeTask(data []byte) (*models.Task, error) {
	if data == nil {
		return nil, fmt.Errorf("dangling task index entry")
	}

	task := &models.Task{}
	if err := json.Unmarshal(data, task); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task: %w", err)
	}
	return task, nil
}

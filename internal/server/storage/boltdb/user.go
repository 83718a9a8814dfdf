package boltdb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/iudanet/gophtodo/internal/models"
	"github.com/iudanet/gophtodo/internal/server/storage"
)

// userRecord хранит пользователя вместе с хешем пароля
// (models.User не сериализует PasswordHash)
type userRecord struct {
	CreatedAt    time.Time `json:"created_at"`
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"password_hash"`
}

// CreateUser checks the email index and stores the user in one write transaction
func (s *Storage) CreateUser(ctx context.Context, user *models.User) error {
	data, err := json.Marshal(userRecord{
		CreatedAt:    user.CreatedAt.UTC(),
		ID:           user.ID,
		Email:        user.Email,
		Name:         user.Name,
		PasswordHash: user.PasswordHash,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	// Проверка email и запись выполняются в одной транзакции,
	// поэтому параллельные регистрации не создадут дубликат.
	return s.update(func(tx *bbolt.Tx) error {
		byEmail := tx.Bucket(bucketUsersByEmail)
		if byEmail.Get([]byte(user.Email)) != nil {
			return storage.ErrUserAlreadyExists
		}

		users := tx.Bucket(bucketUsers)
		if users.Get([]byte(user.ID)) != nil {
			return fmt.Errorf("user id %s already taken", user.ID)
		}

		if err := users.Put([]byte(user.ID), data); err != nil {
			return fmt.Errorf("failed to save user: %w", err)
		}
		if err := byEmail.Put([]byte(user.Email), []byte(user.ID)); err != nil {
			return fmt.Errorf("failed to index user email: %w", err)
		}
		return nil
	})
}

// GetUserByEmail retrieves user by email via the email index
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user *models.User

	err := s.view(func(tx *bbolt.Tx) error {
		id := tx.Bucket(bucketUsersByEmail).Get([]byte(email))
		if id == nil {
			return storage.ErrUserNotFound
		}

		var err error
		user, err = getUser(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// GetUserByID retrieves user by ID
func (s *Storage) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	var user *models.User

	err := s.view(func(tx *bbolt.Tx) error {
		var err error
		user, err = getUser(tx, []byte(userID))
		return err
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

func getUser(tx *bbolt.Tx, id []byte) (*models.User, error) {
	data := tx.Bucket(bucketUsers).Get(id)
	if data == nil {
		return nil, storage.ErrUserNotFound
	}

	var rec userRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}

	return &models.User{
		CreatedAt:    rec.CreatedAt,
		ID:           rec.ID,
		Email:        rec.Email,
		Name:         rec.Name,
		PasswordHash: rec.PasswordHash,
	}, nil
}

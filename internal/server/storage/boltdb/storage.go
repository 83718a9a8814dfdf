// Package boltdb implements server storage in a single bbolt file.
// Suited for single-node deployments without an external database.
package boltdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
	berrors "go.etcd.io/bbolt/errors"

	"github.com/iudanet/gophtodo/internal/server/storage"
)

var (
	// BoltDB bucket names
	bucketUsers        = []byte("users")          // user ID -> userRecord JSON
	bucketUsersByEmail = []byte("users_by_email") // email -> user ID
	bucketTasks        = []byte("tasks")          // task ID -> models.Task JSON
	bucketOwnerTasks   = []byte("owner_tasks")    // owner ID -> {orderKey -> task ID}
)

var _ storage.Storage = (*Storage)(nil)

// Storage represents BoltDB storage implementation for server
type Storage struct {
	db *bbolt.DB
}

// New creates a new BoltDB storage instance
// dbPath is the path to the BoltDB database file
func New(ctx context.Context, dbPath string) (*Storage, error) {
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	s := &Storage{db: db}

	if err := s.initBuckets(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	return s, nil
}

// Close closes the database file
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ping проверяет, что файл БД открыт
func (s *Storage) Ping(ctx context.Context) error {
	return s.view(func(tx *bbolt.Tx) error {
		return nil
	})
}

func (s *Storage) initBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketUsers, bucketUsersByEmail, bucketTasks, bucketOwnerTasks} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("failed to create %s bucket: %w", name, err)
			}
		}
		return nil
	})
}

func (s *Storage) view(fn func(tx *bbolt.Tx) error) error {
	return mapClosed(s.db.View(fn))
}

func (s *Storage) update(fn func(tx *bbolt.Tx) error) error {
	return mapClosed(s.db.Update(fn))
}

func mapClosed(err error) error {
	if errors.Is(err, berrors.ErrDatabaseNotOpen) {
		return storage.ErrStorageClosed
	}
	return err
}

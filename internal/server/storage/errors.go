package storage

import "errors"

// Common storage errors
var (
	// ErrUserNotFound indicates that user was not found in storage
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates that user with this email already exists
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrTaskNotFound indicates that task does not exist or belongs to another user
	ErrTaskNotFound = errors.New("task not found")

	// ErrStorageClosed indicates that storage was already closed
	ErrStorageClosed = errors.New("storage is closed")
)

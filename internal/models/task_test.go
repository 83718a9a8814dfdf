package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskPatch_IsEmpty(t *testing.T) {
	text := "x"
	done := false

	assert.True(t, TaskPatch{}.IsEmpty())
	assert.False(t, TaskPatch{Text: &text}.IsEmpty())
	assert.False(t, TaskPatch{Completed: &done}.IsEmpty())
}

func TestTaskPatch_Apply(t *testing.T) {
	text := "  renamed  "
	done := true

	tests := []struct {
		patch TaskPatch
		want  Task
		name  string
	}{
		{
			name:  "empty patch",
			patch: TaskPatch{},
			want:  Task{ID: "t1", Text: "original"},
		},
		{
			name:  "text is trimmed",
			patch: TaskPatch{Text: &text},
			want:  Task{ID: "t1", Text: "renamed"},
		},
		{
			name:  "completed only",
			patch: TaskPatch{Completed: &done},
			want:  Task{ID: "t1", Text: "original", Completed: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := Task{ID: "t1", Text: "original"}
			tt.patch.Apply(&task)
			assert.Equal(t, tt.want, task)
		})
	}
}

func TestUser_PasswordHashNotSerialized(t *testing.T) {
	user := User{
		ID:           "user-1",
		Email:        "alice@example.com",
		PasswordHash: "$argon2id$secret",
		CreatedAt:    time.Now(),
	}

	data, err := json.Marshal(user)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "argon2id")
	assert.NotContains(t, string(data), "password")
}

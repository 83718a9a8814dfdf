package models

import (
	"strings"
	"time"
)

// Task представляет задачу пользователя.
// Владелец задается при создании и больше не меняется.
type Task struct {
	CreatedAt time.Time `json:"created_at"` // время создания, неизменяемое
	ID        string    `json:"id"`         // UUID задачи
	OwnerID   string    `json:"owner_id"`   // ID пользователя-владельца
	Text      string    `json:"text"`       // текст задачи, непустой
	Seq       uint64    `json:"seq"`        // порядковый номер вставки (для стабильной сортировки)
	Completed bool      `json:"completed"`  // флаг выполнения
}

// TaskPatch описывает частичное обновление задачи.
// nil поле означает "не изменять".
type TaskPatch struct {
	Text      *string
	Completed *bool
}

// IsEmpty возвращает true, если патч ничего не меняет
func (p TaskPatch) IsEmpty() bool {
	return p.Text == nil && p.Completed == nil
}

// Apply применяет патч к задаче
func (p TaskPatch) Apply(task *Task) {
	if p.Text != nil {
		task.Text = strings.TrimSpace(*p.Text)
	}
	if p.Completed != nil {
		task.Completed = *p.Completed
	}
}

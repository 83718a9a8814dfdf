package api

import "time"

// CreateTodoRequest представляет запрос на создание задачи
type CreateTodoRequest struct {
	Text string `json:"text"`
}

// Todo - задача в том виде, в котором ее видит клиент
type Todo struct {
	CreatedAt time.Time `json:"createdAt"`
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Owner     string    `json:"owner"` // ID владельца
	Completed bool      `json:"completed"`
}

// UpdateTodoRequest частичное обновление задачи, nil поля не меняются
type UpdateTodoRequest struct {
	Text      *string `json:"text,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

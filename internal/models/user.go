package models

import "time"

// User представляет зарегистрированного пользователя
type User struct {
	CreatedAt    time.Time `json:"created_at"` // время регистрации
	ID           string    `json:"id"`         // UUID пользователя
	Email        string    `json:"email"`      // нормализованный email (trim + lowercase), уникальный
	Name         string    `json:"name"`       // отображаемое имя, может быть пустым
	PasswordHash string    `json:"-"`          // хеш пароля с солью, наружу не сериализуется
}

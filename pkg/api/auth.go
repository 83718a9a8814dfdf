package api

import "time"

// RegisterRequest представляет запрос на регистрацию нового пользователя
type RegisterRequest struct {
	Email    string `json:"email"`          // email, нормализуется на сервере
	Password string `json:"password"`       // пароль в открытом виде (только по TLS)
	Name     string `json:"name,omitempty"` // отображаемое имя, необязательно
}

// LoginRequest представляет запрос на аутентификацию
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// User - публичное представление пользователя, без хеша пароля
type User struct {
	CreatedAt time.Time `json:"createdAt"`
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
}

// AuthResponse возвращается при успешной регистрации и логине
type AuthResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"` // bearer token для заголовка Authorization
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error string `json:"error"` // описание ошибки
}

// MessageResponse - ответ без данных, только сообщение
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse представляет ответ health check
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// IndexResponse описывает корневой эндпоинт
type IndexResponse struct {
	Message string `json:"message"`
	Base    string `json:"base"`
	OK      bool   `json:"ok"`
}

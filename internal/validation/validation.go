package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// MinPasswordLen минимальная длина пароля при регистрации
const MinPasswordLen = 6

// ErrInvalidInput базовая ошибка валидации, все ошибки пакета оборачивают ее
var ErrInvalidInput = errors.New("invalid input")

// Error ошибка валидации с сообщением для клиента
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap позволяет проверять ошибку через errors.Is(err, ErrInvalidInput)
func (e *Error) Unwrap() error {
	return ErrInvalidInput
}

func newError(format string, args ...any) error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}

// NormalizeEmail приводит email к каноничному виду: trim + lowercase
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeName обрезает пробелы вокруг отображаемого имени
func NormalizeName(name string) string {
	return strings.TrimSpace(name)
}

// ValidateRegistration проверяет поля регистрации
// email не должен быть пустым после trim, пароль - не короче MinPasswordLen символов
func ValidateRegistration(email, password string) error {
	if NormalizeEmail(email) == "" {
		return newError("email is required")
	}

	if utf8.RuneCountInString(password) < MinPasswordLen {
		return newError("password must be at least %d characters", MinPasswordLen)
	}

	return nil
}

// ValidateLogin проверяет, что email и пароль переданы
func ValidateLogin(email, password string) error {
	if NormalizeEmail(email) == "" || password == "" {
		return newError("email and password are required")
	}
	return nil
}

// ValidateTaskText проверяет текст задачи и возвращает его без пробелов по краям
func ValidateTaskText(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", newError("text is required")
	}
	return trimmed, nil
}

// Package logging строит slog.Logger по настройкам из конфигурации.
package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Поддерживаемые форматы логов
const (
	FormatText = "text"
	FormatJSON = "json"
)

var (
	// ErrUnknownLevel возвращается для нераспознанного уровня логирования
	ErrUnknownLevel = errors.New("unknown log level")
	// ErrUnknownFormat возвращается для нераспознанного формата логов
	ErrUnknownFormat = errors.New("unknown log format")
)

// ParseLevel разбирает уровень: debug, info, warn, error (без учета регистра)
func ParseLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownLevel, level)
	}
	return l, nil
}

// ValidateFormat проверяет, что формат поддерживается
func ValidateFormat(format string) error {
	switch strings.ToLower(format) {
	case FormatText, FormatJSON:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// New создает логгер с текстовым или JSON обработчиком, пишущим в w
func New(level, format string, w io.Writer) (*slog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case FormatText:
		handler = slog.NewTextHandler(w, opts)
	case FormatJSON:
		handler = slog.NewJSONHandler(w, opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	return slog.New(handler), nil
}

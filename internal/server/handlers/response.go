package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/iudanet/gophtodo/pkg/api"
)

const internalErrorMessage = "internal server error"

// WriteJSON отправляет JSON ответ с указанным статусом
func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteError отправляет ошибку в формате {"error": message}
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	_ = WriteJSON(w, statusCode, api.ErrorResponse{Error: message})
}

// responder содержит общие для всех handlers методы ответа
type responder struct {
	logger *slog.Logger
	// exposeInternal - отдавать клиенту текст внутренних ошибок вместо общего сообщения
	exposeInternal bool
}

func (rs responder) sendJSON(ctx context.Context, w http.ResponseWriter, data any, statusCode int) {
	if err := WriteJSON(w, statusCode, data); err != nil {
		rs.logger.ErrorContext(ctx, "failed to encode JSON response", slog.Any("error", err))
	}
}

func (rs responder) sendError(w http.ResponseWriter, message string, statusCode int) {
	WriteError(w, statusCode, message)
}

// sendInternalError логирует err и отвечает 500
func (rs responder) sendInternalError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	rs.logger.ErrorContext(ctx, msg, slog.Any("error", err))

	message := internalErrorMessage
	if rs.exposeInternal {
		message = err.Error()
	}
	rs.sendError(w, message, http.StatusInternalServerError)
}

// decodeJSON читает тело запроса в v. Пустое тело считается пустым объектом.
func decodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

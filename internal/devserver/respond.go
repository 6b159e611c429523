package devserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/maynagashev/glutenfree/models"
)

// writeJSON отправляет тело в JSON с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Ошибка кодирования ответа", "error", err)
	}
}

// writeError отправляет ошибку в формате {message, code, details}.
func writeError(w http.ResponseWriter, status int, code, message string, details map[string]string) {
	writeJSON(w, status, models.ErrorResponse{Message: message, Code: code, Details: details})
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, models.MessageResponse{Success: true, Message: message})
}

// decodeBody разбирает JSON тела запроса. При ошибке ответ уже отправлен.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		slog.Debug("Неверное тело запроса", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusBadRequest, "bad_request", "Geçersiz istek gövdesi", nil)
		return false
	}
	return true
}

// idParam читает числовой параметр пути. При ошибке ответ уже отправлен.
func idParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "bad_request", "Geçersiz kimlik", nil)
		return 0, false
	}
	return id, true
}

// currentUser возвращает пользователя из контекста. При ошибке ответ уже отправлен.
func currentUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := userIDFromContext(r.Context())
	if !ok {
		slog.Error("В контексте нет пользователя", "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "internal", "Sunucu hatası", nil)
		return 0, false
	}
	return id, true
}

// validationError отвечает 422 с ошибками по полям.
func validationError(w http.ResponseWriter, details map[string]string) {
	writeError(w, http.StatusUnprocessableEntity, "validation_error", "Doğrulama hatası", details)
}

package utils

import (
	"errors"
	"net/http"

	"shiprate-backend/internal/domain"
	"shiprate-backend/pkg/logger"

	"github.com/goccy/go-json"
)

func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, domain.Response{Success: false, Error: message})
}

// WriteSuccess wraps a single item in the success envelope.
func WriteSuccess(w http.ResponseWriter, data interface{}) {
	WriteJSON(w, http.StatusOK, domain.Response{Success: true, Data: data})
}

// WriteList wraps a list in the {success, count, data} envelope.
func WriteList(w http.ResponseWriter, count int, data interface{}) {
	WriteJSON(w, http.StatusOK, domain.ListResponse{Success: true, Count: count, Data: data})
}

// StatusFor maps a domain error kind to an HTTP status.
func StatusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.KindInvalidInput, domain.KindValidationFailed:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// WriteDomainError writes err with the status of its kind. Errors that are not
// domain errors are logged and hidden behind a generic message.
func WriteDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		logger.WithContext(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
		WriteError(w, status, "internal server error")
		return
	}
	var de *domain.Error
	if errors.As(err, &de) {
		WriteError(w, status, de.Error())
		return
	}
	WriteError(w, status, err.Error())
}

package http

import (
	"encoding/json"
	"net/http"

	apperrors "k9harmony/pkg/errors"
)

// Envelope is the single response shape of the booking API.
type Envelope struct {
	Success bool                 `json:"success"`
	Data    any                  `json:"data,omitempty"`
	Error   *apperrors.ErrorBody `json:"error,omitempty"`
}

func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

func WriteError(w http.ResponseWriter, err error) error {
	appErr := apperrors.AsAppError(err)
	body := appErr.Body()
	return WriteJSON(w, appErr.StatusCode(), Envelope{
		Success: false,
		Error:   &body,
	})
}

func WriteSuccess(w http.ResponseWriter, data any) error {
	return WriteJSON(w, http.StatusOK, Envelope{Success: true, Data: data})
}

func WriteCreated(w http.ResponseWriter, data any) error {
	return WriteJSON(w, http.StatusCreated, Envelope{Success: true, Data: data})
}

func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// WriteRawError is used by middleware that runs before any handler and has no AppError at hand.
func WriteRawError(w http.ResponseWriter, statusCode int, code, message string) {
	_ = WriteJSON(w, statusCode, Envelope{
		Success: false,
		Error:   &apperrors.ErrorBody{Code: code, Message: message},
	})
}

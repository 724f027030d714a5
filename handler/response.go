package handlers

import (
	"encoding/json"
	"net/http"

	"blogapi/pkg/logger"
)

// Envelope is the uniform response wrapper shared by every JSON endpoint.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Total   *int   `json:"total,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Sugar.Errorf("Failed to encode response: %v", err)
	}
}

// WriteError writes a failure envelope. err is optional and only its message is exposed.
func WriteError(w http.ResponseWriter, status int, message string, err error) {
	env := Envelope{Success: false, Message: message}
	if err != nil {
		env.Error = err.Error()
	}
	WriteJSON(w, status, env)
}

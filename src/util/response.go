package util

import (
	"encoding/json"
	"net/http"
	"time"
)

// Response is the envelope of every JSON reply.
type Response struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

func WriteJSON(w http.ResponseWriter, status int, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Response{
		Success:   status < http.StatusBadRequest,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, nil, message)
}

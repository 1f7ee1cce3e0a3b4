package utils

import (
	"encoding/json"
	"log"
	"net/http"
	"time"
)

// RespondJSON writes a JSON response with the given status.
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// RespondError writes a timestamped error body.
func RespondError(w http.ResponseWriter, status int, detail string) {
	RespondJSON(w, status, map[string]string{
		"error":     http.StatusText(status),
		"detail":    detail,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

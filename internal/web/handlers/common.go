package handlers

import (
	"encoding/json"
	"net/http"
	"time"
)

// errInvalidRequestBody is a shared error message for invalid JSON request bodies.
const errInvalidRequestBody = "invalid request body"

// dateLayout is the wire format for photo taken-at dates.
const dateLayout = "2006-01-02"

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// parseTakenAt interprets a taken-at wire value: empty string clears the
// date, anything else must be a valid calendar date.
func parseTakenAt(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// formatTakenAt renders an optional taken-at date for responses.
func formatTakenAt(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

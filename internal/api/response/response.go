package response

import (
	"encoding/json"
	"net/http"
)

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}

// ListResponse wraps a page of items with the total row count, so callers
// can page with limit and offset.
type ListResponse struct {
	Items any   `json:"items"`
	Total int64 `json:"total"`
}

// WriteList writes a counted list response.
func WriteList(w http.ResponseWriter, status int, items any, total int64) {
	WriteJSON(w, status, ListResponse{Items: items, Total: total})
}

// Envelope is the response shape of the national-ID endpoints. Data is
// omitted on failures.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message"`
}

// WriteEnvelope writes a successful enveloped response.
func WriteEnvelope(w http.ResponseWriter, status int, data any, message string) {
	WriteJSON(w, status, Envelope{Success: true, Data: data, Message: message})
}

// WriteEnvelopeError writes a failed enveloped response with no data.
func WriteEnvelopeError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Envelope{Success: false, Message: message})
}

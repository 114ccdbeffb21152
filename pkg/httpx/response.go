package httpx

import (
	"encoding/json"
	"net/http"
)

// Envelope is the response shape every endpoint uses:
// {"success": bool, "message"?: string, "code"?: string, "data"?: {...}}.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
// It automatically sets the Content-Type and Cache-Control headers.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteData writes a success envelope carrying data.
func WriteData(w http.ResponseWriter, code int, data any) {
	WriteJSON(w, code, Envelope{Success: true, Data: data})
}

// WriteMessage writes a success envelope carrying a message and optional data.
func WriteMessage(w http.ResponseWriter, code int, message string, data any) {
	WriteJSON(w, code, Envelope{Success: true, Message: message, Data: data})
}

// WriteError writes a failure envelope.
func WriteError(w http.ResponseWriter, code int, message string) {
	WriteJSON(w, code, Envelope{Success: false, Message: message})
}

// WriteErrorCode writes a failure envelope with a machine-readable code,
// e.g. LIMIT_REACHED on the plan gate denial.
func WriteErrorCode(w http.ResponseWriter, status int, message, code string) {
	WriteJSON(w, status, Envelope{Success: false, Message: message, Code: code})
}

// NoCache sets the Cache-Control and Pragma headers to prevent caching.
// This is commonly required for sensitive responses like tokens.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}

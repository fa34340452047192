package response

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the body returned for all error statuses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	bytes, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(bytes)
}

// OK writes a 200 response with the given body.
func OK(w http.ResponseWriter, v any) {
	WriteJSON(w, http.StatusOK, v)
}

// BadRequest writes a 400 response with an error body.
func BadRequest(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: message})
}

// InternalServerError writes a 500 response with an error body.
func InternalServerError(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Error: message})
}

package utils

import (
	"encoding/json"
	"net/http"
)

// JSONResponse sends a JSON response with the given status and body.
func JSONResponse(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// JSONError sends the raw error text as a JSON error body.
func JSONError(w http.ResponseWriter, status int, err error) {
	JSONResponse(w, status, map[string]string{"error": err.Error()})
}

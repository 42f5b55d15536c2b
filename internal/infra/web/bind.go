package web

import (
	"encoding/json"
	"net/http"

	validatorv10 "github.com/go-playground/validator/v10"
)

var validate = validatorv10.New()

// decodeAndValidate binds the JSON body into out and runs struct validation.
// Returns false after writing a 400 response, so handlers can short-circuit.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, out interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "Invalid request body"})
		return false
	}
	if err := validate.Struct(out); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "Missing or invalid required fields"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

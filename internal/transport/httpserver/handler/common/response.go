package common

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// Request bodies here are a handful of short fields.
const maxBodyBytes = 64 << 10

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code, message string, details ...string) {
	writeJSON(w, status, errorEnvelope{Error: errorBody{Code: code, Message: message, Details: details}})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// WriteError renders the error envelope. Details carry every validator
// message when a single message is not enough.
func WriteError(w http.ResponseWriter, status int, code, message string, details ...string) {
	writeError(w, status, code, message, details...)
}

func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	writeJSON(w, status, payload)
}

func DecodeJSON(r *http.Request, dst interface{}) error {
	return decodeJSON(r, dst)
}

// DecodeOptionalJSON is DecodeJSON for endpoints whose body may be omitted;
// an empty body leaves dst untouched.
func DecodeOptionalJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	if err := decodeJSON(r, dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

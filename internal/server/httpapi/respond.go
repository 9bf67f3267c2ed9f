package httpapi

import (
	"encoding/json"
	"net/http"
)

// Envelope statuses.
const (
	statusSuccess = "success"
	statusFail    = "fail"
	statusError   = "error"
)

// Envelope wraps every API response.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
	Error   any    `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeSuccess(w http.ResponseWriter, code int, message string, data any) {
	writeJSON(w, code, Envelope{Status: statusSuccess, Message: message, Data: data})
}

func writeFail(w http.ResponseWriter, code int, message string, detail any) {
	writeJSON(w, code, Envelope{Status: statusFail, Message: message, Error: detail})
}

func writeError(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusInternalServerError, Envelope{Status: statusError, Message: message, Error: msgInternal})
}

package http

import (
	"encoding/json"
	"net/http"
)

// Result es el contrato de respuesta del dispatcher: siempre JSON bien
// formado con flag ok explícito, nunca un fallo a nivel de transporte.
type Result struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Mensajes fijos del contrato; los clientes hacen matching sobre ellos.
const (
	msgSuccess         = "Verification code sent successfully"
	msgUserDataMissing = "User data is required."
	msgInvalidFormat   = "Invalid request format."
	msgDocNotFound     = "User document not found."
	msgNoStoredCode    = "No verification code found."
	msgInternalError   = "An internal server error occurred."
)

// WriteJSON: respuesta JSON estándar
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Result{OK: false, Message: message})
}

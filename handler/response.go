package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// Envelope is the wire shape of every structured API response.
type Envelope struct {
	ClientError   bool        `json:"clientError"`
	InternalError bool        `json:"internalError"`
	Message       string      `json:"message,omitempty"`
	Data          interface{} `json:"data"`
}

// RedirectResponse tells the credential-entry views where to go next.
type RedirectResponse struct {
	Redirect string `json:"redirect"`
}

// SendError sends an error envelope. 5xx marks an internal error, everything
// else is the client's fault.
func SendError(w http.ResponseWriter, statusCode int, message string) {
	sendJSON(w, statusCode, Envelope{
		ClientError:   statusCode < http.StatusInternalServerError,
		InternalError: statusCode >= http.StatusInternalServerError,
		Message:       message,
	})
}

// SendData sends a success envelope with a payload.
func SendData(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	sendJSON(w, statusCode, Envelope{
		Message: message,
		Data:    data,
	})
}

// SendJSON sends a bare JSON body outside the envelope shape.
func SendJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	sendJSON(w, statusCode, body)
}

func sendJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/camden-git/agencybackend/validation"
)

// maxJSONBodyBytes bounds every JSON request body.
const maxJSONBodyBytes = 1 << 20

const (
	msgAuthRequired  = "Authentication required"
	msgInvalidInput  = "Invalid input"
	msgBodyTooLarge  = "Request body too large"
	msgInternalError = "Internal server error"
)

type dataEnvelope struct {
	Data interface{} `json:"data"`
}

type messageEnvelope struct {
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error   string             `json:"error"`
	Details []validation.Issue `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			logrus.WithError(err).Error("error encoding JSON response")
		}
	}
}

func writeData(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, dataEnvelope{Data: data})
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageEnvelope{Message: message})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorEnvelope{Error: message})
}

// writeInputError answers a failed decode. Validation problems become a 400
// with details; an oversized body becomes a 413.
func writeInputError(w http.ResponseWriter, log logrus.FieldLogger, err error) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, errorEnvelope{Error: msgInvalidInput, Details: verr.Issues})
		return
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
		return
	}

	log.WithError(err).Error("failed to read request body")
	writeError(w, http.StatusInternalServerError, msgInternalError)
}

// readBody reads the request body up to maxJSONBodyBytes.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBodyBytes))
}

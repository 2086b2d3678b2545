// Package httpserver is the worker's ops surface: liveness and
// readiness probes, Prometheus metrics, and cache administration.
// It carries no order traffic; orders enter and leave through Kafka.
package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fairyhunter13/kafka-order-processor/internal/domain"
)

type errorEnvelope struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders the error envelope. The code reuses the pipeline's
// failure vocabulary so HTTP responses and dead-letter headers agree.
func writeError(w http.ResponseWriter, _ *http.Request, err error, details any) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidEvent):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	}
	writeJSON(w, status, errorEnvelope{Error: apiError{Code: domain.FailureCode(err), Message: err.Error(), Details: details}})
}

package shared

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"leaveadvisor/internal/domain/leave"
	"leaveadvisor/internal/transport/http/api"
)

// FailError maps a domain error kind to a status and error code.
func FailError(w http.ResponseWriter, err error, requestID string) {
	switch {
	case errors.Is(err, leave.ErrInvalidInput):
		api.Fail(w, http.StatusBadRequest, "invalid_input", clientMessage(err), requestID)
	case errors.Is(err, leave.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", clientMessage(err), requestID)
	case errors.Is(err, leave.ErrUpstreamUnavailable):
		api.Fail(w, http.StatusServiceUnavailable, "upstream_unavailable", "advisory service unavailable", requestID)
	default:
		slog.Error("request failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "internal error", requestID)
	}
}

func clientMessage(err error) string {
	msg := err.Error()
	prefix := leave.ErrInvalidInput.Error() + ": "
	if idx := strings.Index(msg, prefix); idx >= 0 {
		return msg[idx+len(prefix):]
	}
	return msg
}

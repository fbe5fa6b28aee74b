package httpadapter

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/kirillkom/cto-coach/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrDocumentNotFound), domain.IsKind(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrUpstreamAuth):
		return http.StatusUnauthorized
	case domain.IsKind(err, domain.ErrUpstreamQuota):
		return http.StatusTooManyRequests
	case domain.IsKind(err, domain.ErrUpstreamContentFiltered):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrUpstreamFailure):
		return http.StatusBadGateway
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// publicErrorMessage keeps validation and not-found details but hides provider and internal errors
// behind their kind.
func publicErrorMessage(err error, status int) string {
	switch {
	case domain.IsKind(err, domain.ErrUpstreamAuth):
		return "Invalid API key configuration"
	case domain.IsKind(err, domain.ErrUpstreamQuota):
		return "API quota exceeded. Please try again later."
	case domain.IsKind(err, domain.ErrUpstreamContentFiltered):
		return "Content was filtered due to safety settings"
	case domain.IsKind(err, domain.ErrUpstreamFailure):
		return "Failed to generate AI response"
	case domain.IsKind(err, domain.ErrTemporary):
		return "service temporarily unavailable, retry later"
	case status == http.StatusRequestEntityTooLarge:
		return "uploaded file exceeds the maximum allowed size"
	case status >= http.StatusInternalServerError:
		return "internal server error"
	default:
		return err.Error()
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		slog.Error("http_request_failed",
			"request_id", requestIDFromContext(r.Context()),
			"path", r.URL.Path,
			"status", status,
			"error", err,
		)
	}
	writeJSON(w, status, map[string]string{"error": publicErrorMessage(err, status)})
}

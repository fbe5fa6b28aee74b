// Package llm holds the provider-neutral pieces of answer generation: HTTP status errors,
// failure classification into domain kinds and the resilient generator wrapper.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/kirillkom/cto-coach/internal/core/domain"
	"github.com/kirillkom/cto-coach/internal/infrastructure/resilience"
)

type HTTPStatusError struct {
	Provider   string
	Operation  string
	StatusCode int
	Status     string
	Message    string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "provider status error"
	}
	if strings.TrimSpace(e.Message) == "" {
		return fmt.Sprintf("%s %s status: %s", e.Provider, e.Operation, e.Status)
	}
	return fmt.Sprintf("%s %s status: %s: %s", e.Provider, e.Operation, e.Status, strings.TrimSpace(e.Message))
}

var messageKinds = []struct {
	needle string
	kind   error
}{
	{needle: "api key", kind: domain.ErrUpstreamAuth},
	{needle: "quota", kind: domain.ErrUpstreamQuota},
	{needle: "safety", kind: domain.ErrUpstreamContentFiltered},
}

// KindFromMessage maps provider error text onto a domain kind, or nil when nothing matches.
func KindFromMessage(message string) error {
	lower := strings.ToLower(message)
	for _, candidate := range messageKinds {
		if strings.Contains(lower, candidate.needle) {
			return candidate.kind
		}
	}
	return nil
}

var upstreamKinds = []error{
	domain.ErrUpstreamAuth,
	domain.ErrUpstreamQuota,
	domain.ErrUpstreamContentFiltered,
	domain.ErrUpstreamFailure,
	domain.ErrTemporary,
}

// Normalize guarantees the returned error carries exactly one upstream domain kind.
// Caller cancellation is passed through untouched.
func Normalize(operation string, err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range upstreamKinds {
		if errors.Is(err, kind) {
			return err
		}
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	if resilience.IsCircuitOpen(err) || errors.Is(err, context.DeadlineExceeded) {
		return domain.WrapError(domain.ErrTemporary, operation, err)
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		if kind := KindFromMessage(statusErr.Message); kind != nil {
			return domain.WrapError(kind, operation, err)
		}
		return domain.WrapError(kindFromStatus(statusErr.StatusCode), operation, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return domain.WrapError(domain.ErrTemporary, operation, err)
	}

	if kind := KindFromMessage(err.Error()); kind != nil {
		return domain.WrapError(kind, operation, err)
	}
	return domain.WrapError(domain.ErrUpstreamFailure, operation, err)
}

func kindFromStatus(statusCode int) error {
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.ErrUpstreamAuth
	case http.StatusTooManyRequests:
		return domain.ErrUpstreamQuota
	case http.StatusRequestTimeout, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return domain.ErrTemporary
	default:
		return domain.ErrUpstreamFailure
	}
}

// ClassifyError tells the resilience executor which provider failures are worth retrying
// and which should count against the breaker.
func ClassifyError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}
	if errors.Is(err, domain.ErrUpstreamContentFiltered) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}
	if errors.Is(err, domain.ErrUpstreamAuth) || errors.Is(err, domain.ErrUpstreamQuota) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusRequestTimeout, http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
		case http.StatusTooManyRequests, http.StatusUnauthorized, http.StatusForbidden:
			return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
		default:
			return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}

	return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
}

// FailureKind is a short label for metrics and logs.
func FailureKind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, domain.ErrUpstreamAuth):
		return "auth"
	case errors.Is(err, domain.ErrUpstreamQuota):
		return "quota"
	case errors.Is(err, domain.ErrUpstreamContentFiltered):
		return "content_filtered"
	case errors.Is(err, domain.ErrTemporary):
		return "temporary"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "failure"
	}
}

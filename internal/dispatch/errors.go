package dispatch

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/haasonsaas/nexusrun/internal/failover"
)

// ProviderError is a structured error from a provider call, carrying
// enough context for a driver to decide whether to retry in place or
// move to the next entry in its fallback chain. It generalizes the
// runtime's bare ProviderFailureError with the failover.Reason
// classification a driver needs before recording a failure.
type ProviderError struct {
	Reason   failover.Reason
	Provider string
	Model    string
	Status   int
	Message  string
	Cause    error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("[%s]", e.Reason))
	if e.Provider != "" {
		parts = append(parts, e.Provider)
	}
	if e.Model != "" {
		parts = append(parts, fmt.Sprintf("model=%s", e.Model))
	}
	if e.Status != 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.Status))
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	} else if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	return strings.Join(parts, " ")
}

// Unwrap returns the underlying cause, if any.
func (e *ProviderError) Unwrap() error { return e.Cause }

// NewProviderError classifies cause (by message, and by status once
// WithStatus is applied) into a failover.Reason and wraps it.
func NewProviderError(provider, model string, cause error) *ProviderError {
	e := &ProviderError{Provider: provider, Model: model, Cause: cause, Reason: failover.ReasonUnknown}
	if cause != nil {
		e.Message = cause.Error()
		e.Reason = ClassifyError(cause)
	}
	return e
}

// WithStatus stamps an HTTP status and reclassifies from it, since a
// status code is a more reliable signal than message sniffing.
func (e *ProviderError) WithStatus(status int) *ProviderError {
	e.Status = status
	e.Reason = ClassifyStatus(status)
	return e
}

// ClassifyStatus maps an HTTP status code to a failover.Reason.
func ClassifyStatus(status int) failover.Reason {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return failover.ReasonAuth
	case status == http.StatusPaymentRequired:
		return failover.ReasonBilling
	case status == http.StatusTooManyRequests:
		return failover.ReasonRateLimit
	case status == http.StatusNotFound:
		return failover.ReasonModelNotFound
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return failover.ReasonFormat
	case status == http.StatusServiceUnavailable:
		return failover.ReasonOverloaded
	case status >= 500:
		return failover.ReasonOverloaded
	default:
		return failover.ReasonUnknown
	}
}

// ClassifyError pattern-matches a raw transport error's message into a
// failover.Reason, for the case where no HTTP status is available (a
// dial failure, a context deadline).
func ClassifyError(err error) failover.Reason {
	if err == nil {
		return failover.ReasonUnknown
	}
	s := strings.ToLower(err.Error())
	switch {
	case strings.Contains(s, "timeout") || strings.Contains(s, "deadline exceeded"):
		return failover.ReasonTimeout
	case strings.Contains(s, "rate limit") || strings.Contains(s, "429"):
		return failover.ReasonRateLimit
	case strings.Contains(s, "unauthorized") || strings.Contains(s, "invalid api key") || strings.Contains(s, "401") || strings.Contains(s, "403"):
		return failover.ReasonAuth
	case strings.Contains(s, "billing") || strings.Contains(s, "quota") || strings.Contains(s, "insufficient") || strings.Contains(s, "402"):
		return failover.ReasonBilling
	case strings.Contains(s, "model not found") || strings.Contains(s, "does not exist"):
		return failover.ReasonModelNotFound
	case strings.Contains(s, "overloaded") || strings.Contains(s, "503") || strings.Contains(s, "502"):
		return failover.ReasonOverloaded
	default:
		return failover.ReasonUnknown
	}
}

// IsProviderError reports whether err's chain contains a *ProviderError.
func IsProviderError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}

// GetProviderError extracts the first *ProviderError in err's chain.
func GetProviderError(err error) (*ProviderError, bool) {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// IsRetryable reports whether err's classified reason is transient,
// falling back to raw-message classification when err is not a
// *ProviderError.
func IsRetryable(err error) bool {
	if pe, ok := GetProviderError(err); ok {
		return pe.Reason.IsTransient()
	}
	return ClassifyError(err).IsTransient()
}

// ShouldFailover reports whether err's classified reason warrants
// moving to the next provider in the fallback chain.
func ShouldFailover(err error) bool {
	if pe, ok := GetProviderError(err); ok {
		return pe.Reason.ShouldFailover()
	}
	return ClassifyError(err).ShouldFailover()
}

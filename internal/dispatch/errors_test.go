package dispatch_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/haasonsaas/nexusrun/internal/dispatch"
	"github.com/haasonsaas/nexusrun/internal/failover"
)

func TestClassifyStatus(t *testing.T) {
	cases := map[int]failover.Reason{
		http.StatusUnauthorized:        failover.ReasonAuth,
		http.StatusPaymentRequired:     failover.ReasonBilling,
		http.StatusTooManyRequests:     failover.ReasonRateLimit,
		http.StatusNotFound:            failover.ReasonModelNotFound,
		http.StatusBadRequest:          failover.ReasonFormat,
		http.StatusServiceUnavailable:  failover.ReasonOverloaded,
		http.StatusInternalServerError: failover.ReasonOverloaded,
	}
	for status, want := range cases {
		if got := dispatch.ClassifyStatus(status); got != want {
			t.Errorf("ClassifyStatus(%d) = %q, want %q", status, got, want)
		}
	}
}

func TestProviderErrorRoundTrip(t *testing.T) {
	cause := errors.New("rate limit exceeded, please retry")
	perr := dispatch.NewProviderError("openai", "gpt-4o", cause)

	if perr.Reason != failover.ReasonRateLimit {
		t.Errorf("Reason = %q, want rate_limit", perr.Reason)
	}
	if !errors.Is(perr.Unwrap(), cause) {
		t.Errorf("Unwrap did not return the original cause")
	}
	if !dispatch.IsProviderError(perr) {
		t.Errorf("IsProviderError should be true")
	}
	if !dispatch.IsRetryable(perr) {
		t.Errorf("rate_limit should be retryable")
	}
	if !dispatch.ShouldFailover(perr) {
		t.Errorf("rate_limit should trigger failover")
	}
}

func TestProviderErrorWithStatusReclassifies(t *testing.T) {
	perr := dispatch.NewProviderError("anthropic", "claude", errors.New("boom")).WithStatus(http.StatusBadRequest)
	if perr.Reason != failover.ReasonFormat {
		t.Errorf("Reason = %q, want format", perr.Reason)
	}
	if dispatch.ShouldFailover(perr) {
		t.Errorf("format reason should not trigger failover")
	}
}

func TestGetProviderErrorOnPlainError(t *testing.T) {
	if _, ok := dispatch.GetProviderError(errors.New("plain")); ok {
		t.Errorf("plain error should not be extracted as a ProviderError")
	}
}

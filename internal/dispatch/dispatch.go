// Package dispatch routes a normalized inference request to exactly one
// initialized provider client and tags its response with the dialect
// that produced it. It is a tagged variant, not a polymorphic client
// trait: each dialect's request shape and auth header differ enough
// that a uniform interface would hide real behavior at the one place
// callers most need to see it.
package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/haasonsaas/nexusrun/internal/dialect"
	"github.com/haasonsaas/nexusrun/internal/dialect/anthropic"
	"github.com/haasonsaas/nexusrun/internal/dialect/compat"
	"github.com/haasonsaas/nexusrun/internal/dialect/google"
	"github.com/haasonsaas/nexusrun/internal/dialect/openai"
	"github.com/haasonsaas/nexusrun/internal/runresult"
	"github.com/haasonsaas/nexusrun/internal/transport"
)

// ErrUnsupportedProvider is returned when a Dispatch has no handler for
// the requested API type, e.g. a zero-value Dispatch that was never
// constructed through one of the init funcs below.
var ErrUnsupportedProvider = errors.New("dispatch: unsupported provider")

type kind int

const (
	kindUnset kind = iota
	kindAnthropic
	kindOpenAI
	kindGemini
	kindCompat
)

// Dispatch carries an API-type tag and exactly one initialized client.
// The zero value is intentionally unusable; construct one via
// InitAnthropic, InitOpenAI, InitGemini, or InitCompat.
type Dispatch struct {
	kind    kind
	apiKey  string
	baseURL string
	model   string
	d       dialect.Dialect
}

const (
	anthropicBaseURL = "https://api.anthropic.com/v1/messages"
	openaiBaseURL    = "https://api.openai.com/v1/chat/completions"
	geminiBaseURLFmt = "https://generativelanguage.googleapis.com/v1beta/models/%s:streamGenerateContent?alt=sse"
)

// InitAnthropic builds a dispatch targeting the Anthropic Messages API.
func InitAnthropic(apiKey, model string) *Dispatch {
	return &Dispatch{kind: kindAnthropic, apiKey: apiKey, baseURL: anthropicBaseURL, model: model, d: anthropic.New()}
}

// InitOpenAI builds a dispatch targeting OpenAI's Chat Completions API.
func InitOpenAI(apiKey, model string) *Dispatch {
	return &Dispatch{kind: kindOpenAI, apiKey: apiKey, baseURL: openaiBaseURL, model: model, d: openai.New()}
}

// InitGemini builds a dispatch targeting Google's generative-language
// API.
func InitGemini(apiKey, model string) *Dispatch {
	return &Dispatch{kind: kindGemini, apiKey: apiKey, baseURL: fmt.Sprintf(geminiBaseURLFmt, model), model: model, d: google.New()}
}

// InitCompat builds a dispatch targeting an OpenAI-compatible gateway at
// a caller-supplied base URL. Its API-type tag stays openai_completions
// because the wire shape is identical; only the endpoint differs.
func InitCompat(apiKey, model, baseURL string) *Dispatch {
	return &Dispatch{kind: kindCompat, apiKey: apiKey, baseURL: baseURL, model: model, d: compat.New()}
}

// APIType reports the dialect tag this dispatch's responses carry.
func (d *Dispatch) APIType() dialect.APIType {
	if d.d == nil {
		return ""
	}
	return d.d.APIType()
}

// Dialect exposes the dispatch's one initialized wire dialect so a
// caller can assemble history into the wire shape this dispatch expects
// before calling SendMessage.
func (d *Dispatch) Dialect() dialect.Dialect {
	return d.d
}

// Result is the raw response view a dispatch hands back before it is
// reduced into a RunResult: a status code, the raw body, and the
// dialect tag that produced it.
type Result struct {
	Status  int
	Body    []byte
	APIType dialect.APIType

	dialect dialect.Dialect
}

// IsSuccess reports whether the status is a 2xx.
func (r Result) IsSuccess() bool {
	return r.Status >= 200 && r.Status < 300
}

// ParseRunResult drives the SSE parser and stream reducer over the
// response body using the dialect that produced it.
func (r Result) ParseRunResult() (runresult.Result, error) {
	return dialect.Reduce(r.dialect, r.Body)
}

// SendMessage forwards messagesJSON (and optional toolsJSON) to the
// dispatch's one initialized client and returns the raw response view.
// Compat and Gemini dispatches route on their own constructed base URL
// regardless of any API-type tag a caller might separately track; a
// Dispatch with no recognized kind (the zero value) returns
// ErrUnsupportedProvider.
func (d *Dispatch) SendMessage(ctx context.Context, t transport.Transport, messagesJSON, toolsJSON []byte) (Result, error) {
	switch d.kind {
	case kindGemini, kindCompat:
		return d.send(ctx, t, messagesJSON, toolsJSON)
	case kindAnthropic, kindOpenAI:
		return d.send(ctx, t, messagesJSON, toolsJSON)
	default:
		return Result{}, ErrUnsupportedProvider
	}
}

func (d *Dispatch) send(ctx context.Context, t transport.Transport, messagesJSON, toolsJSON []byte) (Result, error) {
	headers := d.headers()
	body := d.requestBody(messagesJSON, toolsJSON)

	resp, err := t.PostJSON(ctx, d.baseURL, headers, body)
	if err != nil {
		return Result{}, err
	}
	return Result{Status: resp.Status, Body: resp.Body, APIType: d.d.APIType(), dialect: d.d}, nil
}

func (d *Dispatch) headers() map[string]string {
	switch d.kind {
	case kindAnthropic:
		return map[string]string{
			"content-type":      "application/json",
			"x-api-key":         d.apiKey,
			"anthropic-version": "2023-06-01",
		}
	case kindGemini:
		return map[string]string{
			"content-type":   "application/json",
			"x-goog-api-key": d.apiKey,
		}
	default: // OpenAI and OpenAI-compatible
		return map[string]string{
			"content-type":  "application/json",
			"authorization": "Bearer " + d.apiKey,
		}
	}
}

// requestBody composes the dialect-specific envelope around an
// already-assembled messages array. Assembly of that array from history
// lives in the runtime (per dialect message builders); dispatch only
// wraps it with model/stream/tools fields.
func (d *Dispatch) requestBody(messagesJSON, toolsJSON []byte) []byte {
	switch d.kind {
	case kindGemini:
		buf := []byte(`{"contents":`)
		buf = append(buf, messagesJSON...)
		buf = append(buf, '}')
		return buf
	default:
		buf := []byte(`{"model":"` + d.model + `","stream":true,"messages":`)
		buf = append(buf, messagesJSON...)
		if len(toolsJSON) > 0 {
			buf = append(buf, []byte(`,"tools":`)...)
			buf = append(buf, toolsJSON...)
		}
		buf = append(buf, '}')
		return buf
	}
}

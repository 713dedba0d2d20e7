// Package compat implements the "OpenAI-compatible" dialect: gateways
// that speak the exact OpenAI Chat Completions wire shape behind a
// configurable base URL (LM Studio, vLLM's OpenAI shim, OpenRouter, and
// similar). The API-type tag stays openai_completions — there is no wire
// difference from OpenAI, only a transport-level base URL difference,
// which belongs to provider dispatch rather than the dialect.
package compat

import "github.com/haasonsaas/nexusrun/internal/dialect/openai"

// New returns the dialect for an OpenAI-compatible gateway. It is the
// same dialect OpenAI itself uses; the distinct package exists so
// dispatch can select it by name without implying the two are the same
// configured endpoint.
func New() openai.OpenAI {
	return openai.New()
}

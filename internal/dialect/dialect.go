// Package dialect defines the per-provider wire shape contract: message
// builders for history entries, a stream-event parser that recognizes
// one raw SSE frame, and the stop-reason mapping into the normalized
// enum. The provider boundary is a closed, small set, so dialects are
// modeled as a tagged interface rather than exposing a generic "client"
// trait — each dialect's tool-result encoding differs enough that a
// uniform trait would obscure real behavior.
package dialect

import (
	"encoding/json"

	"github.com/haasonsaas/nexusrun/internal/runresult"
	"github.com/haasonsaas/nexusrun/internal/sse"
)

// APIType tags which dialect produced a response.
type APIType string

const (
	APITypeAnthropic APIType = "anthropic_messages"
	APITypeOpenAI    APIType = "openai_completions"
	APITypeGoogle    APIType = "google_generative"
)

// StreamEventKind is the normalized shape one raw SSE frame reduces to.
type StreamEventKind string

const (
	KindStart          StreamEventKind = "start"
	KindTextDelta      StreamEventKind = "text_delta"
	KindToolCallStart  StreamEventKind = "tool_call_start"
	KindToolCallDelta  StreamEventKind = "tool_call_delta"
	KindToolCallEnd    StreamEventKind = "tool_call_end"
	KindStop           StreamEventKind = "stop"
	KindUsage          StreamEventKind = "usage"
	KindError          StreamEventKind = "error"
)

// StreamEvent is one normalized unit produced from a raw SSE frame.
type StreamEvent struct {
	Kind StreamEventKind

	Text string

	ToolCallID     string
	ToolName       string
	ToolInputDelta string

	StopReason    runresult.StopReason
	HasStopReason bool

	Usage    runresult.Usage
	HasUsage bool

	Err error
}

// Dialect is implemented once per supported wire shape.
type Dialect interface {
	// APIType reports the tag this dialect's responses carry.
	APIType() APIType

	// BuildUserMessage renders a user-role history entry in this
	// dialect's exact wire shape.
	BuildUserMessage(content string) json.RawMessage

	// BuildAssistantMessage renders an assistant-role history entry,
	// including any tool calls the model made in that turn.
	BuildAssistantMessage(content string, toolCalls []runresult.ToolCall) json.RawMessage

	// BuildToolResultMessage renders a tool-result history entry tied
	// back to the call it answers.
	BuildToolResultMessage(toolCallID, toolName, content string) json.RawMessage

	// ParseStreamEvent recognizes one raw SSE frame and reduces it to a
	// StreamEvent. ok is false for frames this dialect does not
	// recognize (e.g. a sentinel or a field this dialect ignores); such
	// frames are simply skipped by the reducer, not treated as errors.
	ParseStreamEvent(evt sse.Event) (out StreamEvent, ok bool)
}

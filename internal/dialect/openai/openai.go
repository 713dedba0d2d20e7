// Package openai implements the OpenAI Chat Completions wire dialect:
// role-tagged messages and the choices[0].delta stream vocabulary,
// terminated by a literal "data: [DONE]" frame. Message construction and
// stream-chunk decoding reuse go-openai's own wire types directly
// (ChatCompletionMessage, ToolCall, ChatCompletionStreamResponse) rather
// than a hand-rolled shadow struct, so the JSON shape and role/finish-
// reason constants stay pinned to the library.
package openai

import (
	"encoding/json"

	oai "github.com/sashabaranov/go-openai"

	"github.com/haasonsaas/nexusrun/internal/dialect"
	"github.com/haasonsaas/nexusrun/internal/runresult"
	"github.com/haasonsaas/nexusrun/internal/sse"
)

// OpenAI is the Chat Completions dialect. It is stateless: a tool-call
// start is recognized by the id/function.name fields only the first
// delta for a call carries, so no cross-frame bookkeeping is needed and
// one value can be shared across dispatches.
type OpenAI struct{}

// New returns an OpenAI dialect instance, ready to use as a
// dialect.Dialect.
func New() OpenAI { return OpenAI{} }

// APIType reports the openai_completions tag.
func (OpenAI) APIType() dialect.APIType { return dialect.APITypeOpenAI }

// BuildUserMessage renders {"role":"user","content":"..."}.
func (OpenAI) BuildUserMessage(content string) json.RawMessage {
	b, _ := json.Marshal(oai.ChatCompletionMessage{Role: oai.ChatMessageRoleUser, Content: content})
	return b
}

// BuildAssistantMessage renders the assistant's content plus any tool
// calls it made, in the shape OpenAI expects on the next turn.
func (OpenAI) BuildAssistantMessage(content string, toolCalls []runresult.ToolCall) json.RawMessage {
	m := oai.ChatCompletionMessage{Role: oai.ChatMessageRoleAssistant, Content: content}
	if len(toolCalls) > 0 {
		m.ToolCalls = make([]oai.ToolCall, len(toolCalls))
		for i, tc := range toolCalls {
			m.ToolCalls[i] = oai.ToolCall{
				ID:   tc.ID,
				Type: oai.ToolTypeFunction,
				Function: oai.FunctionCall{
					Name:      tc.Name,
					Arguments: tc.InputJSON,
				},
			}
		}
	}
	b, _ := json.Marshal(m)
	return b
}

// BuildToolResultMessage renders a "role":"tool" message carrying
// tool_call_id, per OpenAI's wire compatibility requirement.
func (OpenAI) BuildToolResultMessage(toolCallID, _ string, content string) json.RawMessage {
	b, _ := json.Marshal(oai.ChatCompletionMessage{
		Role:       oai.ChatMessageRoleTool,
		Content:    content,
		ToolCallID: toolCallID,
	})
	return b
}

func mapFinishReason(raw oai.FinishReason) (runresult.StopReason, bool) {
	switch raw {
	case oai.FinishReasonStop:
		return runresult.StopEndTurn, true
	case oai.FinishReasonToolCalls:
		return runresult.StopToolUse, true
	case oai.FinishReasonLength:
		return runresult.StopMaxTokens, true
	case oai.FinishReasonContentFilter:
		return runresult.StopContentFilter, true
	default:
		return "", false
	}
}

// ParseStreamEvent recognizes one OpenAI SSE frame. A frame carrying a
// tool-call delta with a non-empty id or function name opens a new call
// (OpenAI sends those fields only on the first delta for an index);
// frames carrying only argument fragments extend the current one.
func (o OpenAI) ParseStreamEvent(evt sse.Event) (dialect.StreamEvent, bool) {
	if evt.IsDone() {
		// [DONE] never carries a stop reason and must not clobber one
		// already recorded from an earlier finish_reason frame.
		return dialect.StreamEvent{Kind: dialect.KindStop}, true
	}

	var chunk oai.ChatCompletionStreamResponse
	if err := json.Unmarshal([]byte(evt.Data), &chunk); err != nil {
		return dialect.StreamEvent{}, false
	}

	if len(chunk.Choices) == 0 {
		if chunk.Usage != nil {
			return dialect.StreamEvent{
				Kind:     dialect.KindUsage,
				HasUsage: true,
				Usage: runresult.Usage{
					InputTokens:  uint64(chunk.Usage.PromptTokens),
					OutputTokens: uint64(chunk.Usage.CompletionTokens),
				},
			}, true
		}
		return dialect.StreamEvent{}, false
	}

	choice := chunk.Choices[0]

	if choice.Delta.Content != "" {
		return dialect.StreamEvent{Kind: dialect.KindTextDelta, Text: choice.Delta.Content}, true
	}

	if len(choice.Delta.ToolCalls) > 0 {
		tc := choice.Delta.ToolCalls[0]
		if tc.ID != "" || tc.Function.Name != "" {
			return dialect.StreamEvent{
				Kind:           dialect.KindToolCallStart,
				ToolCallID:     tc.ID,
				ToolName:       tc.Function.Name,
				ToolInputDelta: tc.Function.Arguments,
			}, true
		}
		return dialect.StreamEvent{Kind: dialect.KindToolCallDelta, ToolInputDelta: tc.Function.Arguments}, true
	}

	if reason, ok := mapFinishReason(choice.FinishReason); ok {
		return dialect.StreamEvent{Kind: dialect.KindStop, StopReason: reason, HasStopReason: true}, true
	}

	return dialect.StreamEvent{}, false
}

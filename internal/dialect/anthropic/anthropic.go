// Package anthropic implements the Anthropic Messages API wire dialect:
// content-block message bodies and the
// message_start/content_block_start/content_block_delta/message_delta/
// message_stop stream vocabulary.
package anthropic

import (
	"encoding/json"
	"strings"

	"github.com/haasonsaas/nexusrun/internal/dialect"
	"github.com/haasonsaas/nexusrun/internal/runresult"
	"github.com/haasonsaas/nexusrun/internal/sse"
)

// Anthropic is the Messages API dialect.
type Anthropic struct{}

// New returns an Anthropic dialect instance. It carries no state; one
// value can be shared across dispatches.
func New() Anthropic { return Anthropic{} }

// APIType reports the anthropic_messages tag.
func (Anthropic) APIType() dialect.APIType { return dialect.APITypeAnthropic }

type contentBlock struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	ToolUseID string          `json:"tool_use_id,omitempty"`
	Content   string          `json:"content,omitempty"`
	IsError   bool            `json:"is_error,omitempty"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

// BuildUserMessage renders {"role":"user","content":[{"type":"text",...}]}.
func (Anthropic) BuildUserMessage(content string) json.RawMessage {
	m := message{Role: "user", Content: []contentBlock{{Type: "text", Text: content}}}
	b, _ := json.Marshal(m)
	return b
}

// BuildAssistantMessage renders the assistant's text block plus one
// tool_use block per tool call the model made in that turn.
func (Anthropic) BuildAssistantMessage(content string, toolCalls []runresult.ToolCall) json.RawMessage {
	blocks := make([]contentBlock, 0, 1+len(toolCalls))
	if content != "" {
		blocks = append(blocks, contentBlock{Type: "text", Text: content})
	}
	for _, tc := range toolCalls {
		blocks = append(blocks, contentBlock{
			Type:  "tool_use",
			ID:    tc.ID,
			Name:  tc.Name,
			Input: json.RawMessage(tc.InputJSON),
		})
	}
	m := message{Role: "assistant", Content: blocks}
	b, _ := json.Marshal(m)
	return b
}

// BuildToolResultMessage wraps the result in a user-role message
// carrying a tool_result content block, per Anthropic's wire
// compatibility requirement.
func (Anthropic) BuildToolResultMessage(toolCallID, _ string, content string) json.RawMessage {
	m := message{
		Role: "user",
		Content: []contentBlock{
			{Type: "tool_result", ToolUseID: toolCallID, Content: content},
		},
	}
	b, _ := json.Marshal(m)
	return b
}

type messageStartPayload struct {
	Type    string `json:"type"`
	Message struct {
		Usage struct {
			InputTokens int `json:"input_tokens"`
		} `json:"usage"`
	} `json:"message"`
}

type contentBlockStartPayload struct {
	Type         string `json:"type"`
	ContentBlock struct {
		Type string `json:"type"`
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"content_block"`
}

type contentBlockDeltaPayload struct {
	Type  string `json:"type"`
	Delta struct {
		Type        string `json:"type"`
		Text        string `json:"text"`
		PartialJSON string `json:"partial_json"`
	} `json:"delta"`
}

type messageDeltaPayload struct {
	Type  string `json:"type"`
	Delta struct {
		StopReason string `json:"stop_reason"`
	} `json:"delta"`
	Usage struct {
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type errorPayload struct {
	Type  string `json:"type"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// mapStopReason translates Anthropic's stop_reason string into the
// normalized enum.
func mapStopReason(raw string) (runresult.StopReason, bool) {
	switch raw {
	case "end_turn":
		return runresult.StopEndTurn, true
	case "tool_use":
		return runresult.StopToolUse, true
	case "max_tokens":
		return runresult.StopMaxTokens, true
	case "stop_sequence":
		return runresult.StopSequence, true
	default:
		return "", false
	}
}

// ParseStreamEvent recognizes one Anthropic SSE frame.
func (a Anthropic) ParseStreamEvent(evt sse.Event) (dialect.StreamEvent, bool) {
	switch evt.Name {
	case "message_start":
		var p messageStartPayload
		if err := json.Unmarshal([]byte(evt.Data), &p); err != nil {
			return dialect.StreamEvent{}, false
		}
		return dialect.StreamEvent{
			Kind:     dialect.KindStart,
			HasUsage: true,
			Usage:    runresult.Usage{InputTokens: uint64(p.Message.Usage.InputTokens)},
		}, true

	case "content_block_start":
		var p contentBlockStartPayload
		if err := json.Unmarshal([]byte(evt.Data), &p); err != nil {
			return dialect.StreamEvent{}, false
		}
		if p.ContentBlock.Type != "tool_use" {
			return dialect.StreamEvent{}, false
		}
		return dialect.StreamEvent{
			Kind:       dialect.KindToolCallStart,
			ToolCallID: p.ContentBlock.ID,
			ToolName:   p.ContentBlock.Name,
		}, true

	case "content_block_delta":
		var p contentBlockDeltaPayload
		if err := json.Unmarshal([]byte(evt.Data), &p); err != nil {
			return dialect.StreamEvent{}, false
		}
		switch p.Delta.Type {
		case "text_delta":
			return dialect.StreamEvent{Kind: dialect.KindTextDelta, Text: p.Delta.Text}, true
		case "input_json_delta":
			return dialect.StreamEvent{Kind: dialect.KindToolCallDelta, ToolInputDelta: p.Delta.PartialJSON}, true
		default:
			return dialect.StreamEvent{}, false
		}

	case "content_block_stop":
		return dialect.StreamEvent{Kind: dialect.KindToolCallEnd}, true

	case "message_delta":
		var p messageDeltaPayload
		if err := json.Unmarshal([]byte(evt.Data), &p); err != nil {
			return dialect.StreamEvent{}, false
		}
		out := dialect.StreamEvent{
			Kind:     dialect.KindStop,
			HasUsage: true,
			Usage:    runresult.Usage{OutputTokens: uint64(p.Usage.OutputTokens)},
		}
		if reason, ok := mapStopReason(p.Delta.StopReason); ok {
			out.StopReason = reason
			out.HasStopReason = true
		}
		return out, true

	case "message_stop":
		return dialect.StreamEvent{Kind: dialect.KindStop}, true

	case "error":
		var p errorPayload
		msg := strings.TrimSpace(evt.Data)
		if err := json.Unmarshal([]byte(evt.Data), &p); err == nil && p.Error.Message != "" {
			msg = p.Error.Message
		}
		return dialect.StreamEvent{Kind: dialect.KindError, Err: errString(msg)}, true

	default:
		return dialect.StreamEvent{}, false
	}
}

type streamErr string

func (e streamErr) Error() string { return string(e) }

func errString(s string) error { return streamErr(s) }

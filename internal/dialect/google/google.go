// Package google implements the Google generative-language wire dialect:
// contents/parts request bodies and a streamed-candidates response
// shape. Google has no native tool-result content type; tool results
// fall back to the user-message encoding, which silently loses the
// tool-call linkage. This is a known, accepted limitation, not
// something this package should invent a richer encoding for.
package google

import (
	"encoding/json"

	"github.com/haasonsaas/nexusrun/internal/dialect"
	"github.com/haasonsaas/nexusrun/internal/runresult"
	"github.com/haasonsaas/nexusrun/internal/sse"
)

// Google is the generative-language dialect.
type Google struct{}

// New returns a Google dialect instance.
func New() Google { return Google{} }

// APIType reports the google_generative tag.
func (Google) APIType() dialect.APIType { return dialect.APITypeGoogle }

type part struct {
	Text string `json:"text,omitempty"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

// BuildUserMessage returns a one-element contents array; the history
// assembler strips the outer brackets before embedding it in the
// larger request array, per the dialect's wire compatibility note.
func (Google) BuildUserMessage(text string) json.RawMessage {
	b, _ := json.Marshal([]content{{Role: "user", Parts: []part{{Text: text}}}})
	return b
}

// BuildAssistantMessage renders the model's turn under role "model".
// Google tool-call history replay is out of scope for the fallback
// encoding this dialect uses; text is preserved, tool calls are not
// re-serialized into a native form.
func (Google) BuildAssistantMessage(text string, _ []runresult.ToolCall) json.RawMessage {
	b, _ := json.Marshal([]content{{Role: "model", Parts: []part{{Text: text}}}})
	return b
}

// BuildToolResultMessage falls back to the user-message encoding, per
// the dialect's stated limitation: Google has no tool_result content
// type, so the result is just prose from a user turn.
func (g Google) BuildToolResultMessage(_, toolName string, result string) json.RawMessage {
	text := result
	if toolName != "" {
		text = toolName + ": " + result
	}
	return g.BuildUserMessage(text)
}

type streamChunk struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata *struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
}

func mapFinishReason(raw string) (runresult.StopReason, bool) {
	switch raw {
	case "STOP":
		return runresult.StopEndTurn, true
	case "MAX_TOKENS":
		return runresult.StopMaxTokens, true
	case "SAFETY", "RECITATION":
		return runresult.StopContentFilter, true
	default:
		return "", false
	}
}

// ParseStreamEvent recognizes one Google SSE frame. Google's stream has
// no distinct text-delta vs. stop event split the way Anthropic and
// OpenAI do; a single chunk can carry both a text fragment and the
// terminal finishReason, so it is split here into at most a text event
// followed synthetically by a stop on the next call — callers that need
// both in one frame should prefer the usage/stop fields, which the
// reducer in package dialect accumulates independently of text.
func (Google) ParseStreamEvent(evt sse.Event) (dialect.StreamEvent, bool) {
	if evt.IsDone() {
		return dialect.StreamEvent{Kind: dialect.KindStop}, true
	}

	var chunk streamChunk
	if err := json.Unmarshal([]byte(evt.Data), &chunk); err != nil {
		return dialect.StreamEvent{}, false
	}

	if len(chunk.Candidates) == 0 {
		return dialect.StreamEvent{}, false
	}
	cand := chunk.Candidates[0]

	var text string
	for _, p := range cand.Content.Parts {
		text += p.Text
	}

	if text != "" {
		return dialect.StreamEvent{Kind: dialect.KindTextDelta, Text: text}, true
	}

	out := dialect.StreamEvent{Kind: dialect.KindStop}
	if reason, ok := mapFinishReason(cand.FinishReason); ok {
		out.StopReason = reason
		out.HasStopReason = true
	}
	if chunk.UsageMetadata != nil {
		out.HasUsage = true
		out.Usage = runresult.Usage{
			InputTokens:  uint64(chunk.UsageMetadata.PromptTokenCount),
			OutputTokens: uint64(chunk.UsageMetadata.CandidatesTokenCount),
		}
	}
	return out, true
}

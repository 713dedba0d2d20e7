// Package runresult defines the normalized response shape every wire
// dialect reduces its stream events into.
package runresult

// StopReason is the normalized terminal reason for an inference call.
type StopReason string

const (
	StopEndTurn       StopReason = "end_turn"
	StopToolUse       StopReason = "tool_use"
	StopMaxTokens     StopReason = "max_tokens"
	StopSequence      StopReason = "stop_sequence"
	StopContentFilter StopReason = "content_filter"
)

// ToolCall is one tool invocation the model requested.
type ToolCall struct {
	ID        string
	Name      string
	InputJSON string
}

// Usage is the token accounting for one inference call.
type Usage struct {
	InputTokens  uint64
	OutputTokens uint64
}

// Add accumulates u2 into u, in place. Addition is commutative and
// order-independent, matching the runtime's event-arrival accumulation.
func (u *Usage) Add(u2 Usage) {
	u.InputTokens += u2.InputTokens
	u.OutputTokens += u2.OutputTokens
}

// Result is produced once per inference call by a dialect's stream
// reducer. Its strings are owned by the caller that invoked the parser.
type Result struct {
	Text       string
	HasText    bool
	ToolCalls  []ToolCall
	StopReason StopReason
	HasStop    bool
	Usage      Usage
}

// HasToolCalls reports whether the result carries at least one tool call.
func (r *Result) HasToolCalls() bool {
	return len(r.ToolCalls) > 0
}

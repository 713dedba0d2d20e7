// Package runtime implements the agent run state machine: history
// ownership, turn counting, token accounting, and event emission, atop
// the provider dispatch and wire-dialect layers in sibling packages.
package runtime

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/haasonsaas/nexusrun/internal/dialect"
	"github.com/haasonsaas/nexusrun/internal/dispatch"
	"github.com/haasonsaas/nexusrun/internal/failover"
	"github.com/haasonsaas/nexusrun/internal/history"
	"github.com/haasonsaas/nexusrun/internal/runevent"
	"github.com/haasonsaas/nexusrun/internal/runresult"
	"github.com/haasonsaas/nexusrun/internal/transport"
)

// State is one point in the run state machine.
type State string

const (
	StateIdle        State = "idle"
	StateRunning     State = "running"
	StateWaitingTool State = "waiting_tool"
	StateCompacting  State = "compacting"
	StateCompleted   State = "completed"
	StateFailed      State = "failed"
	StateAborted     State = "aborted"
)

// IsTerminal reports whether s is one of the run's terminal states.
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateAborted
}

// Config is the immutable configuration a Runtime is constructed with.
type Config struct {
	AgentID    string
	MaxTurns   int
	MaxRetries uint32
	CooldownMs int64

	// Logger receives runtime diagnostics. A nil Logger is replaced with
	// a safe no-op default in New.
	Logger *slog.Logger
}

// Runtime drives one run: it owns the history, the state machine, the
// failover map, and the running token totals. A Runtime is
// single-threaded cooperative — one caller drives it at a time; two
// independent runs may execute concurrently only with independent
// Runtime instances, since nothing here is protected by a lock.
type Runtime struct {
	cfg Config

	state State
	turn  int
	runID string

	history []history.Message
	usage   runresult.Usage

	failoverState *failover.State

	sink runevent.Sink

	pendingToolCallIDs []string
}

// New constructs an idle Runtime.
func New(cfg Config, sink runevent.Sink) *Runtime {
	if sink == nil {
		sink = runevent.Discard
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return &Runtime{
		cfg:           cfg,
		state:         StateIdle,
		failoverState: failover.NewState(cfg.MaxRetries, cfg.CooldownMs),
		sink:          sink,
	}
}

// State reports the runtime's current state.
func (r *Runtime) State() State { return r.state }

// Turn reports the current turn counter.
func (r *Runtime) Turn() int { return r.turn }

// RunID reports this run's identifier, empty before Start is called.
func (r *Runtime) RunID() string { return r.runID }

// Usage reports the running token totals accumulated across every
// parsed run result of this run.
func (r *Runtime) Usage() runresult.Usage { return r.usage }

// History returns the runtime's append-only conversation log. The
// returned slice must not be mutated by the caller.
func (r *Runtime) History() []history.Message { return r.history }

// Failover exposes the runtime's owned failover state for callers that
// need to record provider failures around runInference.
func (r *Runtime) Failover() *failover.State { return r.failoverState }

func newRunID() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

// AddUserMessage appends a user-role history entry; content is copied.
func (r *Runtime) AddUserMessage(content string) {
	r.history = append(r.history, history.NewUserMessage(content))
}

// AddAssistantMessage appends an assistant-role history entry.
func (r *Runtime) AddAssistantMessage(content string) {
	r.history = append(r.history, history.NewAssistantMessage(content))
}

// AddToolResult appends a tool-result history entry.
func (r *Runtime) AddToolResult(toolCallID, toolName, content string) {
	r.history = append(r.history, history.NewToolResultMessage(toolCallID, toolName, content))
}

// Start transitions idle -> running, resets the turn counter, assigns a
// fresh run ID, and emits a start event.
func (r *Runtime) Start() error {
	if r.state != StateIdle {
		return &InvalidStateError{Operation: "start", State: r.state}
	}
	r.runID = newRunID()
	r.turn = 0
	r.state = StateRunning
	r.emit(runevent.Event{Type: runevent.TypeStart, AgentID: r.cfg.AgentID, RunID: r.runID, Turn: r.turn})
	return nil
}

// NextTurn advances the turn counter and returns true if the caller may
// proceed to run inference. It returns false (with no error — callers
// check State() to distinguish "done" from "failed") when the runtime
// is not in a turn-taking state, or when max_turns has been reached, in
// which case it also transitions to failed and emits an error event.
func (r *Runtime) NextTurn() bool {
	if r.state != StateRunning && r.state != StateWaitingTool {
		return false
	}
	if r.cfg.MaxTurns > 0 && r.turn >= r.cfg.MaxTurns {
		r.cfg.Logger.Warn("max turns exceeded", "agent_id", r.cfg.AgentID, "run_id", r.runID, "turn", r.turn, "max_turns", r.cfg.MaxTurns)
		r.state = StateFailed
		r.emit(runevent.Event{
			Type: runevent.TypeError, AgentID: r.cfg.AgentID, RunID: r.runID, Turn: r.turn,
			ErrorMessage: "max turns exceeded",
		})
		return false
	}
	r.turn++
	r.state = StateRunning
	return true
}

// Dispatcher is the subset of dispatch.Dispatch the runtime needs:
// the wire dialect to assemble history against, plus sending the
// assembled request.
type Dispatcher interface {
	Dialect() dialect.Dialect
	SendMessage(ctx context.Context, t transport.Transport, messagesJSON, toolsJSON []byte) (dispatch.Result, error)
}

// RunInference assembles history into the dispatch's wire shape,
// forwards it over t, and reduces the response into a RunResult,
// updating state, history, and emitted events as the contract
// prescribes. Precondition: State() == running.
func (r *Runtime) RunInference(ctx context.Context, d Dispatcher, t transport.Transport, toolsJSON []byte) (runresult.Result, error) {
	if r.state != StateRunning {
		return runresult.Result{}, &InvalidStateError{Operation: "runInference", State: r.state}
	}

	messagesJSON := dialect.AssembleMessages(d.Dialect(), r.history)

	res, err := d.SendMessage(ctx, t, messagesJSON, toolsJSON)
	if err != nil {
		r.cfg.Logger.Error("provider call failed", "error", err, "agent_id", r.cfg.AgentID, "turn", r.turn)
		r.fail(fmt.Sprintf("provider call failed: %v", err))
		return runresult.Result{}, &TransportFailureError{Cause: err}
	}
	if !res.IsSuccess() {
		r.cfg.Logger.Error("provider returned error status", "status", res.Status, "agent_id", r.cfg.AgentID, "turn", r.turn)
		r.fail("provider returned error status")
		return runresult.Result{}, &ProviderFailureError{Status: res.Status, Body: res.Body}
	}

	result, err := res.ParseRunResult()
	if err != nil {
		r.cfg.Logger.Error("failed to parse provider stream", "error", err, "agent_id", r.cfg.AgentID, "turn", r.turn)
		r.fail(fmt.Sprintf("failed to parse provider stream: %v", err))
		return runresult.Result{}, &ParseFailureError{Cause: err}
	}

	r.usage.Add(result.Usage)

	if result.HasToolCalls() {
		r.state = StateWaitingTool
		r.history = append(r.history, history.NewAssistantMessageWithToolCalls(result.Text, result.ToolCalls))
		r.pendingToolCallIDs = r.pendingToolCallIDs[:0]
		for _, tc := range result.ToolCalls {
			r.pendingToolCallIDs = append(r.pendingToolCallIDs, tc.ID)
			r.emit(runevent.Event{
				Type: runevent.TypeToolCall, AgentID: r.cfg.AgentID, RunID: r.runID, Turn: r.turn,
				ToolCallID: tc.ID, ToolName: tc.Name, ToolInput: tc.InputJSON,
			})
		}
	} else if result.HasText {
		r.AddAssistantMessage(result.Text)
		r.emit(runevent.Event{Type: runevent.TypeDelta, AgentID: r.cfg.AgentID, RunID: r.runID, Turn: r.turn, Text: result.Text})
	}

	return result, nil
}

// ToolResultInput is one tool's answer, ready to submit back to the
// runtime after a waiting_tool turn.
type ToolResultInput struct {
	ToolCallID string
	ToolName   string
	Content    string
}

// SubmitToolResults appends each result as a tool-result history entry,
// emits one tool_result event per entry, and transitions back to
// running. Precondition: State() == waiting_tool.
func (r *Runtime) SubmitToolResults(results []ToolResultInput) error {
	if r.state != StateWaitingTool {
		return &InvalidStateError{Operation: "submitToolResults", State: r.state}
	}
	for _, res := range results {
		r.AddToolResult(res.ToolCallID, res.ToolName, res.Content)
		r.emit(runevent.Event{
			Type: runevent.TypeToolResult, AgentID: r.cfg.AgentID, RunID: r.runID, Turn: r.turn,
			ToolCallID: res.ToolCallID, ToolName: res.ToolName, Text: res.Content,
		})
	}
	r.state = StateRunning
	return nil
}

// Complete transitions to completed and emits a complete event. It is a
// no-op from a terminal state; there is no transition out of one.
func (r *Runtime) Complete(text string) {
	if r.state.IsTerminal() {
		return
	}
	r.state = StateCompleted
	r.emit(runevent.Event{Type: runevent.TypeComplete, AgentID: r.cfg.AgentID, RunID: r.runID, Turn: r.turn, Text: text})
}

// Abort transitions to aborted and emits an abort event. It may be
// called at any time from the driving goroutine; it does not interrupt
// an in-flight transport call, and it is a no-op once a terminal state
// has already been reached.
func (r *Runtime) Abort() {
	if r.state.IsTerminal() {
		return
	}
	r.state = StateAborted
	r.emit(runevent.Event{Type: runevent.TypeAbort, AgentID: r.cfg.AgentID, RunID: r.runID, Turn: r.turn})
}

func (r *Runtime) fail(message string) {
	r.state = StateFailed
	r.emit(runevent.Event{Type: runevent.TypeError, AgentID: r.cfg.AgentID, RunID: r.runID, Turn: r.turn, ErrorMessage: message})
}

// NeedsCompaction reports whether the history's approximate token size
// (total content bytes / 4) exceeds four fifths of maxContextTokens.
// Integer arithmetic only; an empty history never needs compaction.
func (r *Runtime) NeedsCompaction(maxContextTokens int) bool {
	var totalBytes int
	for _, m := range r.history {
		totalBytes += len(m.Content)
	}
	if totalBytes == 0 {
		return false
	}
	return totalBytes/4 > maxContextTokens*4/5
}

func (r *Runtime) emit(e runevent.Event) {
	r.sink.Emit(e)
}

// EmitCompaction emits a compaction event. The runtime never rewrites
// history itself — summarizing older entries into a synthetic one is a
// policy the driver applies; this only records that it happened.
func (r *Runtime) EmitCompaction(summary string) {
	r.emit(runevent.Event{Type: runevent.TypeCompaction, AgentID: r.cfg.AgentID, RunID: r.runID, Turn: r.turn, Text: summary})
}

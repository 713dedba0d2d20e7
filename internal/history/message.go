// Package history holds the runtime's append-only conversation log.
package history

import (
	"github.com/google/uuid"

	"github.com/haasonsaas/nexusrun/internal/runresult"
)

// Role identifies who produced a history entry.
type Role string

const (
	RoleUser       Role = "user"
	RoleAssistant  Role = "assistant"
	RoleToolResult Role = "tool_result"
)

// Message is one entry in a run's conversation history. Entries are
// append-only within a run; content is copied on append and exclusively
// owned by the runtime that holds the history. ToolCalls is populated
// only on assistant entries that requested tool use, carrying what a
// bit-exact wire re-encoding of that turn needs beyond plain text. ID is
// a local correlation handle for logging and replay bookkeeping; it
// never appears on the wire.
type Message struct {
	ID         string
	Role       Role
	Content    string
	ToolCallID string
	ToolName   string
	ToolCalls  []runresult.ToolCall
}

// NewUserMessage builds a user-role history entry.
func NewUserMessage(content string) Message {
	return Message{ID: uuid.NewString(), Role: RoleUser, Content: content}
}

// NewAssistantMessage builds an assistant-role history entry.
func NewAssistantMessage(content string) Message {
	return Message{ID: uuid.NewString(), Role: RoleAssistant, Content: content}
}

// NewAssistantMessageWithToolCalls builds an assistant-role history
// entry that also requested one or more tool calls.
func NewAssistantMessageWithToolCalls(content string, toolCalls []runresult.ToolCall) Message {
	return Message{ID: uuid.NewString(), Role: RoleAssistant, Content: content, ToolCalls: toolCalls}
}

// NewToolResultMessage builds a tool-result history entry tied back to the
// tool call it answers.
func NewToolResultMessage(toolCallID, toolName, content string) Message {
	return Message{
		ID:         uuid.NewString(),
		Role:       RoleToolResult,
		Content:    content,
		ToolCallID: toolCallID,
		ToolName:   toolName,
	}
}

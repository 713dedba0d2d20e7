package dialect_test

import (
	"encoding/json"
	"testing"

	"github.com/haasonsaas/nexusrun/internal/dialect"
	"github.com/haasonsaas/nexusrun/internal/dialect/anthropic"
	"github.com/haasonsaas/nexusrun/internal/dialect/google"
	"github.com/haasonsaas/nexusrun/internal/dialect/openai"
	"github.com/haasonsaas/nexusrun/internal/history"
)

func TestAssembleMessagesAnthropic(t *testing.T) {
	msgs := []history.Message{
		history.NewUserMessage("hi"),
		history.NewAssistantMessage("hello"),
	}
	out := dialect.AssembleMessages(anthropic.New(), msgs)

	var arr []json.RawMessage
	if err := json.Unmarshal(out, &arr); err != nil {
		t.Fatalf("output is not a JSON array: %v (%s)", err, out)
	}
	if len(arr) != 2 {
		t.Fatalf("len = %d, want 2", len(arr))
	}
}

func TestAssembleMessagesGoogleStripsOuterBrackets(t *testing.T) {
	msgs := []history.Message{
		history.NewUserMessage("hi"),
		history.NewAssistantMessage("hello"),
	}
	out := dialect.AssembleMessages(google.New(), msgs)

	var arr []json.RawMessage
	if err := json.Unmarshal(out, &arr); err != nil {
		t.Fatalf("output is not a JSON array: %v (%s)", err, out)
	}
	if len(arr) != 2 {
		t.Fatalf("len = %d, want 2 (brackets from each entry's one-element array must be stripped, not nested)", len(arr))
	}
	var first struct {
		Role string `json:"role"`
	}
	if err := json.Unmarshal(arr[0], &first); err != nil {
		t.Fatalf("first entry is not a bare object: %v", err)
	}
	if first.Role != "user" {
		t.Errorf("first entry role = %q, want user", first.Role)
	}
}

func TestAssembleMessagesOpenAIToolResult(t *testing.T) {
	msgs := []history.Message{
		history.NewUserMessage("hi"),
		history.NewToolResultMessage("call_1", "bash", "ls output"),
	}
	out := dialect.AssembleMessages(openai.New(), msgs)

	var arr []json.RawMessage
	if err := json.Unmarshal(out, &arr); err != nil {
		t.Fatalf("output is not a JSON array: %v", err)
	}
	var toolMsg struct {
		Role       string `json:"role"`
		ToolCallID string `json:"tool_call_id"`
	}
	if err := json.Unmarshal(arr[1], &toolMsg); err != nil {
		t.Fatalf("second entry: %v", err)
	}
	if toolMsg.Role != "tool" || toolMsg.ToolCallID != "call_1" {
		t.Errorf("toolMsg = %+v", toolMsg)
	}
}

package dialect_test

import (
	"testing"

	"github.com/haasonsaas/nexusrun/internal/dialect"
	"github.com/haasonsaas/nexusrun/internal/dialect/anthropic"
	"github.com/haasonsaas/nexusrun/internal/dialect/openai"
	"github.com/haasonsaas/nexusrun/internal/runresult"
)

func TestAnthropicTextTurn(t *testing.T) {
	body := "event: message_start\n" +
		"data: {\"type\":\"message_start\",\"message\":{\"usage\":{\"input_tokens\":10}}}\n\n" +
		"event: content_block_delta\n" +
		"data: {\"type\":\"content_block_delta\",\"delta\":{\"type\":\"text_delta\",\"text\":\"Hello \"}}\n\n" +
		"event: content_block_delta\n" +
		"data: {\"type\":\"content_block_delta\",\"delta\":{\"type\":\"text_delta\",\"text\":\"world\"}}\n\n" +
		"event: message_delta\n" +
		"data: {\"type\":\"message_delta\",\"delta\":{\"stop_reason\":\"end_turn\"},\"usage\":{\"output_tokens\":5}}\n\n"

	result, err := dialect.Reduce(anthropic.New(), []byte(body))
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if result.Text != "Hello world" {
		t.Errorf("Text = %q, want %q", result.Text, "Hello world")
	}
	if result.HasToolCalls() {
		t.Errorf("unexpected tool calls: %+v", result.ToolCalls)
	}
	if result.StopReason != runresult.StopEndTurn {
		t.Errorf("StopReason = %q, want end_turn", result.StopReason)
	}
	if result.Usage.InputTokens != 10 || result.Usage.OutputTokens != 5 {
		t.Errorf("Usage = %+v, want {10 5}", result.Usage)
	}
}

func TestAnthropicToolTurn(t *testing.T) {
	body := "event: content_block_start\n" +
		"data: {\"type\":\"content_block_start\",\"content_block\":{\"type\":\"tool_use\",\"id\":\"call_abc\",\"name\":\"bash\"}}\n\n" +
		"event: content_block_delta\n" +
		"data: {\"type\":\"content_block_delta\",\"delta\":{\"type\":\"input_json_delta\",\"partial_json\":\"{\\\"cmd\\\":\\\"ls\\\"}\"}}\n\n" +
		"event: content_block_stop\n" +
		"data: {\"type\":\"content_block_stop\"}\n\n" +
		"event: message_delta\n" +
		"data: {\"type\":\"message_delta\",\"delta\":{\"stop_reason\":\"tool_use\"},\"usage\":{\"output_tokens\":0}}\n\n"

	result, err := dialect.Reduce(anthropic.New(), []byte(body))
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if !result.HasToolCalls() || len(result.ToolCalls) != 1 {
		t.Fatalf("ToolCalls = %+v, want one call", result.ToolCalls)
	}
	tc := result.ToolCalls[0]
	if tc.ID != "call_abc" || tc.Name != "bash" || tc.InputJSON != `{"cmd":"ls"}` {
		t.Errorf("ToolCall = %+v", tc)
	}
	if result.StopReason != runresult.StopToolUse {
		t.Errorf("StopReason = %q, want tool_use", result.StopReason)
	}
}

func TestOpenAIDoneDoesNotClobberToolUse(t *testing.T) {
	body := "data: {\"choices\":[{\"delta\":{\"tool_calls\":[{\"index\":0,\"id\":\"call_1\",\"function\":{\"name\":\"echo_tool\",\"arguments\":\"\"}}]}}]}\n\n" +
		"data: {\"choices\":[{\"delta\":{\"tool_calls\":[{\"index\":0,\"function\":{\"arguments\":\"{}\"}}]}}]}\n\n" +
		"data: {\"choices\":[{\"delta\":{},\"finish_reason\":\"tool_calls\"}]}\n\n" +
		"data: [DONE]\n\n"

	result, err := dialect.Reduce(openai.New(), []byte(body))
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if result.StopReason != runresult.StopToolUse {
		t.Errorf("StopReason = %q, want tool_use (must survive trailing [DONE])", result.StopReason)
	}
	if !result.HasToolCalls() || result.ToolCalls[0].Name != "echo_tool" {
		t.Errorf("ToolCalls = %+v", result.ToolCalls)
	}
}

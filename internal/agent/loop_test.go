package agent_test

import (
	"context"
	"errors"
	"testing"

	"github.com/haasonsaas/nexusrun/internal/agent"
	"github.com/haasonsaas/nexusrun/internal/dispatch"
	"github.com/haasonsaas/nexusrun/internal/runtime"
	"github.com/haasonsaas/nexusrun/internal/tool"
	"github.com/haasonsaas/nexusrun/internal/transport"
)

// scriptedTransport returns one canned body per call, in order.
type scriptedTransport struct {
	bodies []string
	calls  int
}

func (s *scriptedTransport) PostJSON(_ context.Context, _ string, _ map[string]string, _ []byte) (transport.Response, error) {
	if s.calls >= len(s.bodies) {
		return transport.Response{}, errors.New("scriptedTransport: no more scripted responses")
	}
	body := s.bodies[s.calls]
	s.calls++
	return transport.Response{Status: 200, Body: []byte(body)}, nil
}

func (s *scriptedTransport) Get(context.Context, string, map[string]string) (transport.Response, error) {
	return transport.Response{}, errors.New("not implemented")
}

const toolCallBody = "data: {\"choices\":[{\"delta\":{\"tool_calls\":[{\"index\":0,\"id\":\"call_1\",\"function\":{\"name\":\"echo_tool\",\"arguments\":\"\"}}]}}]}\n\n" +
	"data: {\"choices\":[{\"delta\":{\"tool_calls\":[{\"index\":0,\"function\":{\"arguments\":\"{}\"}}]}}]}\n\n" +
	"data: {\"choices\":[{\"delta\":{},\"finish_reason\":\"tool_calls\"}]}\n\n" +
	"data: [DONE]\n\n"

const textBody = "data: {\"choices\":[{\"delta\":{\"content\":\"All done\"},\"finish_reason\":\"stop\"}]}\n\n" +
	"data: [DONE]\n\n"

func TestRunLoopWithRegistry(t *testing.T) {
	tr := &scriptedTransport{bodies: []string{toolCallBody, textBody}}
	d := dispatch.InitOpenAI("key", "gpt-test")

	registry := tool.NewMapRegistry()
	registry.Register("echo_tool", func(ctx context.Context, input []byte) tool.Result {
		return tool.Result{Success: true, Output: []byte("echo output")}
	})

	rt := runtime.New(runtime.Config{AgentID: "a1", MaxTurns: 5}, nil)
	rt.AddUserMessage("Do something")

	result, err := agent.Run(context.Background(), rt, d, tr, nil, registry, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Text != "All done" {
		t.Errorf("final text = %q, want %q", result.Text, "All done")
	}
	if rt.State() != runtime.StateCompleted {
		t.Errorf("state = %s, want completed", rt.State())
	}
	if rt.Turn() != 2 {
		t.Errorf("turn = %d, want 2", rt.Turn())
	}
	if tr.calls != 2 {
		t.Errorf("transport calls = %d, want 2", tr.calls)
	}
}

func TestRunLoopMaxTurnsExceeded(t *testing.T) {
	tr := &scriptedTransport{bodies: []string{toolCallBody}}
	d := dispatch.InitOpenAI("key", "gpt-test")

	registry := tool.NewMapRegistry()
	registry.Register("echo_tool", func(ctx context.Context, input []byte) tool.Result {
		return tool.Result{Success: true, Output: []byte("echo output")}
	})

	rt := runtime.New(runtime.Config{AgentID: "a1", MaxTurns: 1}, nil)
	rt.AddUserMessage("Do something")

	_, err := agent.Run(context.Background(), rt, d, tr, nil, registry, nil)
	if err != nil {
		t.Fatalf("Run should not itself error on max-turns; the loop just stops: %v", err)
	}
	if rt.State() != runtime.StateFailed {
		t.Errorf("state = %s, want failed", rt.State())
	}
}

func TestRunLoopMissingToolSurfacesAsNotFound(t *testing.T) {
	tr := &scriptedTransport{bodies: []string{toolCallBody, textBody}}
	d := dispatch.InitOpenAI("key", "gpt-test")

	registry := tool.NewMapRegistry() // no handlers registered

	rt := runtime.New(runtime.Config{AgentID: "a1", MaxTurns: 5}, nil)
	rt.AddUserMessage("Do something")

	if _, err := agent.Run(context.Background(), rt, d, tr, nil, registry, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var foundToolResult bool
	for _, m := range rt.History() {
		if m.ToolCallID == "call_1" {
			foundToolResult = true
			if m.Content != tool.NotFoundContent {
				t.Errorf("tool result content = %q, want %q", m.Content, tool.NotFoundContent)
			}
		}
	}
	if !foundToolResult {
		t.Fatalf("expected a tool_result history entry for call_1")
	}
}

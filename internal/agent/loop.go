// Package agent implements the run loop driver: the top-level function
// that alternates inference and tool dispatch over a runtime.Runtime
// until a text-only response or a terminal failure. It is a sibling of
// the runtime state machine, not a layer inside it: the tool registry
// is called by the driver, never by the runtime itself, so there is no
// cycle between the two.
package agent

import (
	"context"
	"log/slog"

	"github.com/haasonsaas/nexusrun/internal/runresult"
	"github.com/haasonsaas/nexusrun/internal/runtime"
	"github.com/haasonsaas/nexusrun/internal/tool"
	"github.com/haasonsaas/nexusrun/internal/transport"
)

// Run drives rt from idle to a terminal state:
//
//	start()
//	loop nextTurn():
//	  result = runInference(dispatch)
//	  if result.hasToolCalls and registry != nil:
//	    for each tool_call: dispatch via registry, collect ToolResultInput
//	    submitToolResults(results)
//	    continue
//	  else:
//	    complete(result.text); return result
//	end loop
//	return last result (or empty)
//
// With a nil registry the first response ends the run: Complete is
// called with its text even when it carries tool calls. A non-nil
// registry that has no handler for a call answers it "tool not found".
func Run(ctx context.Context, rt *runtime.Runtime, d runtime.Dispatcher, t transport.Transport, toolsJSON []byte, registry tool.Registry, logger *slog.Logger) (runresult.Result, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if err := rt.Start(); err != nil {
		return runresult.Result{}, err
	}

	var last runresult.Result
	for rt.NextTurn() {
		result, err := rt.RunInference(ctx, d, t, toolsJSON)
		if err != nil {
			return runresult.Result{}, err
		}
		last = result

		if !result.HasToolCalls() || registry == nil {
			rt.Complete(result.Text)
			return result, nil
		}

		results := make([]runtime.ToolResultInput, 0, len(result.ToolCalls))
		for _, tc := range result.ToolCalls {
			content, ok := executeTool(ctx, registry, tc.Name, tc.InputJSON)
			if !ok {
				logger.Debug("tool not found", "tool", tc.Name, "tool_call_id", tc.ID)
			}
			results = append(results, runtime.ToolResultInput{
				ToolCallID: tc.ID,
				ToolName:   tc.Name,
				Content:    content,
			})
		}

		if err := rt.SubmitToolResults(results); err != nil {
			return runresult.Result{}, err
		}
	}

	return last, nil
}

// executeTool dispatches one tool call through registry. A nil
// registry, or a registry that reports no handler for name, both
// surface as NotFoundContent — the run loop never treats a missing tool
// as an error that aborts the run.
func executeTool(ctx context.Context, registry tool.Registry, name, inputJSON string) (content string, found bool) {
	if registry == nil {
		return tool.NotFoundContent, false
	}
	res, ok := registry.Execute(ctx, name, []byte(inputJSON))
	if !ok {
		return tool.NotFoundContent, false
	}
	return string(res.Output), true
}

package dialect

import (
	"strings"

	"github.com/haasonsaas/nexusrun/internal/runresult"
	"github.com/haasonsaas/nexusrun/internal/sse"
)

// Reduce drives the SSE parser over body and folds every recognized
// frame into a normalized RunResult through d. It implements the
// ProviderResult.parseRunResult contract: text deltas concatenate, the
// first tool-call-start opens a call that subsequent deltas append to
// (a later start or stream end flushes it), the first stop event with a
// reason wins (a trailing "[DONE]" or a later stop MUST NOT clobber it),
// and usage accumulates across every event that carries one.
func Reduce(d Dialect, body []byte) (runresult.Result, error) {
	var result runresult.Result
	var textBuilder strings.Builder

	var current *runresult.ToolCall
	flushToolCall := func() {
		if current != nil {
			result.ToolCalls = append(result.ToolCalls, *current)
			current = nil
		}
	}

	for _, raw := range sse.Parse(body) {
		evt, ok := d.ParseStreamEvent(raw)
		if !ok {
			continue
		}

		switch evt.Kind {
		case KindTextDelta:
			textBuilder.WriteString(evt.Text)

		case KindToolCallStart:
			flushToolCall()
			current = &runresult.ToolCall{ID: evt.ToolCallID, Name: evt.ToolName, InputJSON: evt.ToolInputDelta}

		case KindToolCallDelta:
			if current != nil {
				current.InputJSON += evt.ToolInputDelta
			}

		case KindToolCallEnd:
			flushToolCall()

		case KindStop:
			if evt.HasStopReason && !result.HasStop {
				result.StopReason = evt.StopReason
				result.HasStop = true
			}
			if evt.HasUsage {
				result.Usage.Add(evt.Usage)
			}

		case KindUsage:
			if evt.HasUsage {
				result.Usage.Add(evt.Usage)
			}

		case KindStart:
			if evt.HasUsage {
				result.Usage.Add(evt.Usage)
			}

		case KindError:
			if evt.Err != nil {
				return runresult.Result{}, evt.Err
			}
		}
	}

	flushToolCall()

	if textBuilder.Len() > 0 {
		result.Text = textBuilder.String()
		result.HasText = true
	}

	return result, nil
}

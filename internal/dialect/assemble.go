package dialect

import (
	"bytes"
	"encoding/json"

	"github.com/haasonsaas/nexusrun/internal/history"
)

// AssembleMessages renders an entire history log into the bracket-
// wrapped JSON array a dispatch sends on the wire: each entry emits
// exactly what the dialect's own message builder returns,
// comma-separated. Google's builders return a one-element array per
// entry (it has no native tool-result shape and folds everything
// through its contents/parts encoding), so for that dialect the outer
// brackets are stripped before embedding.
func AssembleMessages(d Dialect, msgs []history.Message) []byte {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, m := range msgs {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(buildMessage(d, m))
	}
	buf.WriteByte(']')
	return buf.Bytes()
}

func buildMessage(d Dialect, m history.Message) json.RawMessage {
	var raw json.RawMessage
	switch m.Role {
	case history.RoleAssistant:
		raw = d.BuildAssistantMessage(m.Content, m.ToolCalls)
	case history.RoleToolResult:
		raw = d.BuildToolResultMessage(m.ToolCallID, m.ToolName, m.Content)
	default: // history.RoleUser
		raw = d.BuildUserMessage(m.Content)
	}
	if d.APIType() == APITypeGoogle {
		raw = stripOuterArray(raw)
	}
	return raw
}

// stripOuterArray strips one level of enclosing '[' ']' from a JSON
// array value, returning its sole element's bytes unchanged otherwise.
func stripOuterArray(b json.RawMessage) json.RawMessage {
	t := bytes.TrimSpace(b)
	if len(t) >= 2 && t[0] == '[' && t[len(t)-1] == ']' {
		return bytes.TrimSpace(t[1 : len(t)-1])
	}
	return b
}

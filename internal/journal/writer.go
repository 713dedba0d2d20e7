// Package journal implements the append-only line-delimited record of a
// session's observable timeline: a header, messages, usage deltas, and
// compaction markers, one JSON object per line.
package journal

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// SchemaVersion is pinned in every session header this writer emits.
const SchemaVersion = 3

// Writer appends session-journal lines to one file. Concurrent writers
// to the same file are undefined behavior; the file is held open by
// exactly one writer for the life of a run.
type Writer struct {
	file *os.File
}

// OpenWriter opens or creates path for append, creating its parent
// directory if missing, with owner-only permissions.
func OpenWriter(path string) (*Writer, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, err
	}
	return &Writer{file: f}, nil
}

// Close closes the underlying file.
func (w *Writer) Close() error {
	return w.file.Close()
}

func (w *Writer) writeLine(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	b = append(b, '\n')
	_, err = w.file.Write(b)
	return err
}

type sessionLine struct {
	Type    string `json:"type"`
	Version int    `json:"version"`
	ID      string `json:"id"`
}

// WriteSessionHeader emits the session header line. It SHOULD be the
// first line written, but a reader must cope with its absence.
func (w *Writer) WriteSessionHeader(id string) error {
	return w.writeLine(sessionLine{Type: "session", Version: SchemaVersion, ID: id})
}

type textContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type messagePayload struct {
	Role      string        `json:"role"`
	Content   []textContent `json:"content"`
	Timestamp int64         `json:"timestamp"`
}

type messageLine struct {
	Type    string         `json:"type"`
	Message messagePayload `json:"message"`
}

// WriteMessage emits one message line. timestampMs defaults to the
// current wall clock when zero.
func (w *Writer) WriteMessage(role, text string, timestampMs int64) error {
	if timestampMs == 0 {
		timestampMs = time.Now().UnixMilli()
	}
	return w.writeLine(messageLine{
		Type: "message",
		Message: messagePayload{
			Role:      role,
			Content:   []textContent{{Type: "text", Text: text}},
			Timestamp: timestampMs,
		},
	})
}

type usageLine struct {
	Type         string `json:"type"`
	InputTokens  uint64 `json:"input_tokens"`
	OutputTokens uint64 `json:"output_tokens"`
}

// WriteUsage emits a usage delta line.
func (w *Writer) WriteUsage(inputTokens, outputTokens uint64) error {
	return w.writeLine(usageLine{Type: "usage", InputTokens: inputTokens, OutputTokens: outputTokens})
}

type compactionLine struct {
	Type    string `json:"type"`
	Summary string `json:"summary"`
}

// WriteCompaction emits a compaction marker line.
func (w *Writer) WriteCompaction(summary string) error {
	return w.writeLine(compactionLine{Type: "compaction", Summary: summary})
}

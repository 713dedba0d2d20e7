package journal

import (
	"bytes"
	"testing"

	"github.com/haasonsaas/nexusrun/internal/runevent"
)

func TestReplayEmitsEventsInOrder(t *testing.T) {
	body := `{"type":"session","version":3,"id":"sess-1"}` + "\n" +
		`{"type":"message","message":{"role":"user","content":[{"type":"text","text":"hi"}],"timestamp":1}}` + "\n" +
		`{"type":"usage","input_tokens":10,"output_tokens":5}` + "\n" +
		`{"type":"compaction","summary":"squashed"}` + "\n"

	lines, hasHeader, err := ReadLines(bytes.NewReader([]byte(body)))
	if err != nil {
		t.Fatalf("ReadLines: %v", err)
	}

	var collector runevent.Collector
	stats, err := NewReplayer(&collector).Replay(lines, hasHeader)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if !stats.Valid() {
		t.Fatalf("stats not valid: %v", stats.Errors)
	}
	if stats.MessageCount != 1 || stats.UsageCount != 1 || stats.LineCount != 4 {
		t.Errorf("stats = %+v", stats)
	}

	wantTypes := []runevent.Type{runevent.TypeStart, runevent.TypeDelta, runevent.TypeCompaction}
	if len(collector.Events) != len(wantTypes) {
		t.Fatalf("got %d events, want %d", len(collector.Events), len(wantTypes))
	}
	for i, wt := range wantTypes {
		if collector.Events[i].Type != wt {
			t.Errorf("event %d type = %s, want %s", i, collector.Events[i].Type, wt)
		}
	}
	if collector.Events[1].Text != "hi" {
		t.Errorf("message event text = %q, want hi", collector.Events[1].Text)
	}
	if collector.Events[2].Text != "squashed" {
		t.Errorf("compaction event text = %q, want squashed", collector.Events[2].Text)
	}
}

func TestReplayEmptyJournalReportsError(t *testing.T) {
	var collector runevent.Collector
	stats, err := NewReplayer(&collector).Replay(nil, false)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if stats.Valid() {
		t.Errorf("expected validation error on empty journal")
	}
}

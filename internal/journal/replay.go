package journal

import (
	"encoding/json"
	"fmt"

	"github.com/haasonsaas/nexusrun/internal/runevent"
)

// ReplayStats holds counts and structural-validation errors gathered
// over one replay pass.
type ReplayStats struct {
	LineCount    int
	MessageCount int
	UsageCount   int
	Errors       []string
}

// Valid reports whether the replay passed every structural check.
func (s *ReplayStats) Valid() bool {
	return len(s.Errors) == 0
}

// Replayer pushes a previously-written session journal back through a
// runevent.Sink. It is a read path only; it never rewrites the journal
// it replays.
type Replayer struct {
	sink runevent.Sink
}

// NewReplayer returns a Replayer that emits onto sink.
func NewReplayer(sink runevent.Sink) *Replayer {
	return &Replayer{sink: sink}
}

// Replay converts each session, message, and compaction line into a
// runevent.Event and emits it to the sink in order (usage lines are
// counted in the stats but emit no event), then runs structural checks: a session header
// should lead when present at all, and a replayed journal should not be
// empty.
func (r *Replayer) Replay(lines []Line, hasHeader bool) (*ReplayStats, error) {
	stats := &ReplayStats{LineCount: len(lines)}

	for i, l := range lines {
		switch l.Type {
		case LineSession:
			var s sessionLine
			if err := json.Unmarshal(l.Raw, &s); err != nil {
				return stats, fmt.Errorf("journal replay: decode session line %d: %w", i, err)
			}
			r.sink.Emit(runevent.Event{Type: runevent.TypeStart, RunID: s.ID})
		case LineMessage:
			var m messageLine
			if err := json.Unmarshal(l.Raw, &m); err != nil {
				return stats, fmt.Errorf("journal replay: decode message line %d: %w", i, err)
			}
			text := ""
			if len(m.Message.Content) > 0 {
				text = m.Message.Content[0].Text
			}
			r.sink.Emit(runevent.Event{Type: runevent.TypeDelta, Text: text})
			stats.MessageCount++
		case LineUsage:
			var u usageLine
			if err := json.Unmarshal(l.Raw, &u); err != nil {
				return stats, fmt.Errorf("journal replay: decode usage line %d: %w", i, err)
			}
			stats.UsageCount++
		case LineCompaction:
			var c compactionLine
			if err := json.Unmarshal(l.Raw, &c); err != nil {
				return stats, fmt.Errorf("journal replay: decode compaction line %d: %w", i, err)
			}
			r.sink.Emit(runevent.Event{Type: runevent.TypeCompaction, Text: c.Summary})
		}
	}

	stats.Errors = validate(lines, hasHeader)
	return stats, nil
}

// validate runs structural checks under the header-optional contract: a
// header is recommended but a journal without one still replays.
func validate(lines []Line, hasHeader bool) []string {
	var errs []string
	if len(lines) == 0 {
		errs = append(errs, "journal has no recognized lines")
		return errs
	}
	if lines[0].Type == LineSession && !hasHeader {
		errs = append(errs, "leading session line not reported as header")
	}
	return errs
}

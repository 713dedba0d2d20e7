package journal

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
)

// LineType tags a classified journal line.
type LineType string

const (
	LineUnknown    LineType = ""
	LineSession    LineType = "session"
	LineMessage    LineType = "message"
	LineCompaction LineType = "compaction"
	LineUsage      LineType = "usage"
)

// Line is one classified journal entry.
type Line struct {
	Type LineType
	Raw  []byte
}

// classify mirrors the reader contract literally: a line is classified
// by scanning for the distinguishing type marker in a fixed precedence
// order (session, message, compaction, usage); first match wins, and a
// line matching none of them is dropped rather than erroring the whole
// read.
func classify(raw []byte) LineType {
	s := string(raw)
	switch {
	case strings.Contains(s, `"type":"session"`):
		return LineSession
	case strings.Contains(s, `"type":"message"`):
		return LineMessage
	case strings.Contains(s, `"type":"compaction"`):
		return LineCompaction
	case strings.Contains(s, `"type":"usage"`):
		return LineUsage
	default:
		return LineUnknown
	}
}

// ReadLines streams r line by line, classifying each and dropping
// unrecognized ones. hasHeader reports whether the first non-empty line
// of the stream (before any classification drop) was itself a session
// line — dropped leading garbage does not retroactively make a later
// session line "line 0".
func ReadLines(r io.Reader) (lines []Line, hasHeader bool, err error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	first := true
	for scanner.Scan() {
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		t := classify(raw)
		if first {
			hasHeader = t == LineSession
			first = false
		}
		if t == LineUnknown {
			continue
		}
		cp := make([]byte, len(raw))
		copy(cp, raw)
		lines = append(lines, Line{Type: t, Raw: cp})
	}
	if scanErr := scanner.Err(); scanErr != nil {
		return nil, false, scanErr
	}
	return lines, hasHeader, nil
}

// Summary aggregates the countable facts a reader exposes over a parsed
// line sequence.
type Summary struct {
	MessageCount int
	TotalTokens  uint64
	HasHeader    bool
}

// Summarize computes MessageCount and TotalTokens over lines, and
// combines the hasHeader value ReadLines reported from the raw stream.
func Summarize(lines []Line, hasHeader bool) Summary {
	sum := Summary{HasHeader: hasHeader}
	for _, l := range lines {
		switch l.Type {
		case LineMessage:
			sum.MessageCount++
		case LineUsage:
			var u usageLine
			if json.Unmarshal(l.Raw, &u) == nil {
				sum.TotalTokens += u.InputTokens + u.OutputTokens
			}
		}
	}
	return sum
}

// ReadSummary is a convenience that reads all of r and summarizes it.
func ReadSummary(r io.Reader) (Summary, error) {
	lines, hasHeader, err := ReadLines(r)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(lines, hasHeader), nil
}

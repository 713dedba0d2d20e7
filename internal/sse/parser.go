// Package sse splits a server-sent-events response body into discrete
// events: "event:" and "data:" lines accumulate into the current frame,
// a blank line closes it.
package sse

import (
	"bufio"
	"bytes"
	"strings"
)

// DoneSentinel is the distinguished stream-end marker some dialects
// (notably OpenAI's) send as a literal "data: [DONE]" frame.
const DoneSentinel = "[DONE]"

// Event is one event frame: an optional event name and its accumulated
// data payload. Multiple "data:" lines within one frame are joined with
// "\n" before being stored here.
type Event struct {
	Name string
	Data string
}

// IsDone reports whether this event is the "[DONE]" sentinel.
func (e Event) IsDone() bool {
	return e.Data == DoneSentinel
}

// Parse splits one complete response body into its constituent events.
// An event boundary is a blank line. Whitespace immediately after the
// colon in a field line is stripped. The scan is O(n) in the body size
// and allocates once per event, never per byte.
func Parse(body []byte) []Event {
	var events []Event

	scanner := bufio.NewScanner(bytes.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var eventName string
	var dataLines []string

	flush := func() {
		if eventName == "" && len(dataLines) == 0 {
			return
		}
		events = append(events, Event{
			Name: eventName,
			Data: strings.Join(dataLines, "\n"),
		})
		eventName = ""
		dataLines = nil
	}

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case line == "":
			flush()
		case strings.HasPrefix(line, "event:"):
			eventName = strings.TrimPrefix(strings.TrimPrefix(line, "event:"), " ")
		case strings.HasPrefix(line, "data:"):
			dataLines = append(dataLines, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		default:
			// Unrecognized field lines (id:, retry:, comments) are ignored;
			// the dialects never need them.
		}
	}
	flush()

	return events
}

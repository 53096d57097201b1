// Package stream decodes Responses API server-sent event streams into text.
//
// The decoder is line oriented and tolerant: blank lines, the [DONE]
// sentinel, comments, keep-alives and malformed JSON all contribute nothing
// to the result instead of aborting the stream.
//
//	text := stream.Decode(stream.Lines(resp.Body).All())
package stream

import (
	"encoding/json"
	"strings"
)

// EventTypeOutputTextDelta is the only event type whose delta is collected.
const EventTypeOutputTextDelta = "response.output_text.delta"

// Stream framing literals.
const (
	dataPrefix   = "data:"
	doneSentinel = "[DONE]"
	objectStart  = "{"
)

// Event is a structured event decoded from a single line.
type Event struct {
	Type  string `json:"type"`
	Delta string `json:"delta"`
}

// TextDelta returns the text fragment carried by the event and whether the
// event is an output text delta at all.
func (e Event) TextDelta() (string, bool) {
	if e.Type != EventTypeOutputTextDelta {
		return "", false
	}
	return e.Delta, true
}

// normalize replaces invalid UTF-8 and trims surrounding whitespace.
func normalize(raw string) string {
	return strings.TrimSpace(strings.ToValidUTF8(raw, "�"))
}

func isBlank(line string) bool {
	return line == ""
}

func isDone(line string) bool {
	return line == doneSentinel
}

// hasEventShape reports whether the line can carry an event at all.
func hasEventShape(line string) bool {
	return strings.HasPrefix(line, dataPrefix) || strings.HasPrefix(line, objectStart)
}

// stripDataPrefix removes the SSE data field name, if present.
func stripDataPrefix(line string) string {
	if rest, ok := strings.CutPrefix(line, dataPrefix); ok {
		return strings.TrimSpace(rest)
	}
	return line
}

// parseEvent decodes payload as a JSON object. Anything that is not an
// object (arrays, scalars, garbage) is reported as not ok.
func parseEvent(payload string) (Event, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload), &fields); err != nil {
		return Event{}, false
	}

	var ev Event
	if raw, ok := fields["type"]; ok {
		// A non-string type cannot match the recognized event.
		_ = json.Unmarshal(raw, &ev.Type)
	}
	if raw, ok := fields["delta"]; ok {
		_ = json.Unmarshal(raw, &ev.Delta)
	}
	return ev, true
}

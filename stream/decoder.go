package stream

import (
	"io"
	"iter"
	"strings"
)

// Accumulator collects text fragments in arrival order.
type Accumulator struct {
	b strings.Builder
}

// Add appends a fragment verbatim.
func (a *Accumulator) Add(fragment string) {
	a.b.WriteString(fragment)
}

// String returns every fragment joined without a separator.
func (a *Accumulator) String() string {
	return a.b.String()
}

// Stats counts what happened to each line of a decode pass.
type Stats struct {
	Lines     int
	Blank     int
	Done      int
	Noise     int
	Malformed int
	Ignored   int
	Deltas    int
}

// Decoder turns stream lines into accumulated output text.
// A Decoder is not safe for concurrent use.
type Decoder struct {
	acc   Accumulator
	stats Stats
}

// NewDecoder returns an empty Decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Push processes a single raw line. It never fails: lines that cannot
// contribute a text delta are counted and dropped.
func (d *Decoder) Push(raw string) {
	d.stats.Lines++

	line := normalize(raw)
	switch {
	case isBlank(line):
		d.stats.Blank++
		return
	case isDone(line):
		d.stats.Done++
		return
	case !hasEventShape(line):
		d.stats.Noise++
		return
	}

	ev, ok := parseEvent(stripDataPrefix(line))
	if !ok {
		d.stats.Malformed++
		return
	}

	delta, ok := ev.TextDelta()
	if !ok {
		d.stats.Ignored++
		return
	}

	d.stats.Deltas++
	d.acc.Add(delta)
}

// Text returns the text accumulated so far.
func (d *Decoder) Text() string {
	return d.acc.String()
}

// Stats returns the line counters for the lines pushed so far.
func (d *Decoder) Stats() Stats {
	return d.stats
}

// Consume pushes every line of seq and returns the accumulated text.
func (d *Decoder) Consume(seq iter.Seq[string]) string {
	for line := range seq {
		d.Push(line)
	}
	return d.Text()
}

// Decode returns the concatenated output text deltas found in lines.
// It consumes lines once and never fails; malformed or irrelevant lines
// contribute nothing and an empty sequence yields "".
func Decode(lines iter.Seq[string]) string {
	return NewDecoder().Consume(lines)
}

// DecodeReader decodes every line read from r. The returned text is
// whatever was accumulated before r ended, so a read error comes back
// together with the partial text.
func DecodeReader(r io.Reader) (string, error) {
	lr := Lines(r)
	text := Decode(lr.All())
	return text, lr.Err()
}

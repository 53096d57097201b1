package stream

import (
	"bufio"
	"errors"
	"io"
	"iter"
	"strings"
)

// readBufferSize is the initial read buffer. Lines longer than this are
// still returned whole.
const readBufferSize = 64 * 1024

// LineReader yields the lines of an io.Reader, such as an HTTP response
// body, as a pull-based sequence.
type LineReader struct {
	reader *bufio.Reader
	err    error
}

// Lines returns a LineReader over r. Lines end at "\n", "\r\n" or a lone
// "\r", and have no length limit.
func Lines(r io.Reader) *LineReader {
	return &LineReader{reader: bufio.NewReaderSize(r, readBufferSize)}
}

// All returns the lines as a sequence. The sequence ends when the reader
// is exhausted or fails; check Err afterwards. The sequence can be ranged
// over only once.
func (l *LineReader) All() iter.Seq[string] {
	return func(yield func(string) bool) {
		for {
			chunk, err := l.reader.ReadString('\n')
			if err != nil && !errors.Is(err, io.EOF) {
				// The unterminated tail of a failed read is an incomplete line.
				l.err = err
				return
			}
			if chunk != "" {
				for _, line := range splitLine(chunk) {
					if !yield(line) {
						return
					}
				}
			}
			if err != nil {
				return
			}
		}
	}
}

// Err returns the first non-EOF error encountered while reading.
func (l *LineReader) Err() error {
	return l.err
}

// splitLine removes the terminator from chunk and splits it on any lone
// "\r" left inside.
func splitLine(chunk string) []string {
	chunk = strings.TrimSuffix(chunk, "\n")
	chunk = strings.TrimSuffix(chunk, "\r")
	return strings.Split(chunk, "\r")
}

package stream

import (
	"errors"
	"io"
	"slices"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/require"
)

func deltaLine(delta string) string {
	return `data: {"type":"response.output_text.delta","delta":"` + delta + `"}`
}

func TestDecode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		lines []string
		want  string
	}{
		{
			name:  "empty input",
			lines: nil,
			want:  "",
		},
		{
			name:  "only noise",
			lines: []string{"", "   ", "[DONE]", `data: {"type":"response.created"}`, `{"type":"response.completed"}`},
			want:  "",
		},
		{
			name:  "concatenates deltas in order",
			lines: []string{deltaLine("Hel"), deltaLine("lo"), deltaLine(", "), deltaLine("world")},
			want:  "Hello, world",
		},
		{
			name:  "malformed lines are skipped",
			lines: []string{"not json", deltaLine("A"), "{{{", deltaLine("B")},
			want:  "AB",
		},
		{
			name:  "done sentinel does not stop decoding",
			lines: []string{deltaLine("A"), "[DONE]", deltaLine("B")},
			want:  "AB",
		},
		{
			name:  "data done is inert",
			lines: []string{deltaLine("A"), "data: [DONE]", deltaLine("B")},
			want:  "AB",
		},
		{
			name:  "missing delta contributes nothing",
			lines: []string{`data: {"type":"response.output_text.delta"}`, deltaLine("x")},
			want:  "x",
		},
		{
			name:  "bare json lines are accepted",
			lines: []string{`{"type":"response.output_text.delta","delta":"bare"}`},
			want:  "bare",
		},
		{
			name:  "data prefix without space",
			lines: []string{`data:{"type":"response.output_text.delta","delta":"tight"}`},
			want:  "tight",
		},
		{
			name:  "surrounding whitespace is trimmed from lines",
			lines: []string{"  \t" + deltaLine("pad") + "  \r"},
			want:  "pad",
		},
		{
			name:  "deltas keep their own whitespace",
			lines: []string{deltaLine(" a "), deltaLine("\\n"), deltaLine(" b")},
			want:  " a \n b",
		},
		{
			name:  "duplicate deltas are kept",
			lines: []string{deltaLine("ha"), deltaLine("ha")},
			want:  "haha",
		},
		{
			name:  "sse fields other than data are noise",
			lines: []string{"event: response.output_text.delta", ": keep-alive", "id: 7", deltaLine("ok")},
			want:  "ok",
		},
		{
			name:  "non-object json is ignored",
			lines: []string{`data: ["response.output_text.delta"]`, `data: 42`, `data: null`, deltaLine("z")},
			want:  "z",
		},
		{
			name:  "non-string fields are ignored",
			lines: []string{`data: {"type":7,"delta":"no"}`, `data: {"type":"response.output_text.delta","delta":7}`},
			want:  "",
		},
		{
			name:  "unicode deltas",
			lines: []string{deltaLine("你好"), deltaLine("😀")},
			want:  "你好😀",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.want, Decode(slices.Values(tc.lines)))
		})
	}
}

func TestDecodeIsRepeatable(t *testing.T) {
	t.Parallel()

	lines := []string{deltaLine("one"), "garbage", deltaLine("two")}

	first := Decode(slices.Values(lines))
	second := Decode(slices.Values(lines))

	require.Equal(t, "onetwo", first)
	require.Equal(t, first, second)
}

func TestDecodeInvalidUTF8(t *testing.T) {
	t.Parallel()

	lines := []string{
		"\xff\xfe",
		`data: {"type":"response.output_text.delta","delta":"ok"}` + "\xff",
		deltaLine("!"),
	}

	require.NotPanics(t, func() {
		require.Equal(t, "!", Decode(slices.Values(lines)))
	})
}

func TestDecoderStats(t *testing.T) {
	t.Parallel()

	d := NewDecoder()
	for _, line := range []string{
		"",
		"[DONE]",
		": ping",
		"data: {oops",
		`data: {"type":"response.created"}`,
		deltaLine("a"),
		deltaLine("b"),
	} {
		d.Push(line)
	}

	require.Equal(t, "ab", d.Text())
	require.Equal(t, Stats{
		Lines:     7,
		Blank:     1,
		Done:      1,
		Noise:     1,
		Malformed: 1,
		Ignored:   1,
		Deltas:    2,
	}, d.Stats())
}

func TestDecoderConsumeStopsWithSequence(t *testing.T) {
	t.Parallel()

	pulled := 0
	seq := func(yield func(string) bool) {
		for _, line := range []string{deltaLine("a"), deltaLine("b")} {
			pulled++
			if !yield(line) {
				return
			}
		}
	}

	require.Equal(t, "ab", NewDecoder().Consume(seq))
	require.Equal(t, 2, pulled)
}

func TestDecodeReader(t *testing.T) {
	t.Parallel()

	t.Run("decodes a full stream", func(t *testing.T) {
		t.Parallel()

		body := "event: response.created\n" +
			"data: {\"type\":\"response.created\"}\n\n" +
			"event: response.output_text.delta\r\n" +
			"data: {\"type\":\"response.output_text.delta\",\"delta\":\"Hi\"}\r\n\r\n" +
			"data: {\"type\":\"response.output_text.delta\",\"delta\":\" there\"}\n\n" +
			"data: [DONE]\n"

		text, err := DecodeReader(strings.NewReader(body))
		require.NoError(t, err)
		require.Equal(t, "Hi there", text)
	})

	t.Run("returns partial text on read error", func(t *testing.T) {
		t.Parallel()

		readErr := errors.New("connection reset")
		body := io.MultiReader(
			strings.NewReader(deltaLine("par")+"\n"+deltaLine("tial")+"\n"),
			iotest.ErrReader(readErr),
		)

		text, err := DecodeReader(body)
		require.ErrorIs(t, err, readErr)
		require.Equal(t, "partial", text)
	})

	t.Run("handles a final line without newline", func(t *testing.T) {
		t.Parallel()

		text, err := DecodeReader(strings.NewReader(deltaLine("end")))
		require.NoError(t, err)
		require.Equal(t, "end", text)
	})
}

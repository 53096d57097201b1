package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mozilla-ai/llmstream/internal/testutil"
)

func TestDecodeCmd(t *testing.T) {
	t.Parallel()

	capture := filepath.Join(t.TempDir(), "capture.sse")
	require.NoError(t, os.WriteFile(capture, []byte(testutil.HelloStream()), 0o600))

	tests := []struct {
		name    string
		stdin   string
		args    []string
		want    string
		wantErr bool
	}{
		{
			name:  "reads stdin by default",
			stdin: testutil.HelloStream(),
			args:  []string{"decode"},
			want:  "Hello World\n",
		},
		{
			name:  "dash reads stdin",
			stdin: testutil.StreamBody(testutil.DeltaLine("稀疏"), `{"type":"response.output_text.delta","delta":"建模"}`),
			args:  []string{"decode", "-"},
			want:  "稀疏建模\n",
		},
		{
			name: "reads file",
			args: []string{"decode", capture},
			want: "Hello World\n",
		},
		{
			name:  "empty input prints empty line",
			stdin: "",
			args:  []string{"decode"},
			want:  "\n",
		},
		{
			name:  "noise only",
			stdin: testutil.StreamBody("[DONE]", "data: [DONE]", ": ping", "data: {broken"),
			args:  []string{"decode"},
			want:  "\n",
		},
		{
			name:    "missing file",
			args:    []string{"decode", filepath.Join(t.TempDir(), "nope.sse")},
			wantErr: true,
		},
		{
			name:    "too many args",
			args:    []string{"decode", "a", "b"},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			args := append([]string{"--env-file", ""}, tc.args...)
			res := execute(t, strings.NewReader(tc.stdin), args...)
			if tc.wantErr {
				require.Error(t, res.err)
				return
			}

			require.NoError(t, res.err)
			assert.Equal(t, tc.want, res.stdout)
		})
	}
}

func TestDecodeCmdReadError(t *testing.T) {
	t.Parallel()

	r := iotest.TimeoutReader(strings.NewReader(testutil.StreamBody(testutil.DeltaLine("partial"))))

	res := execute(t, r, "--env-file", "", "decode")
	require.NoError(t, res.err)
	assert.Equal(t, "partial\n", res.stdout)
	assert.Contains(t, res.stderr, "output may be incomplete")
}

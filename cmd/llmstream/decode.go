package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mozilla-ai/llmstream/stream"
)

const decodeLongDesc string = `Decode a captured Responses event stream and print the assembled text.

The input is read line by line from the named file, or from stdin when no
file or "-" is given. No request is made. Lines that are not
response.output_text.delta events are skipped.

Examples:
  llmstream decode capture.sse
  curl -sN ... | llmstream decode`

const decodeShortDesc string = "Decode a captured event stream without a request"

func (c *rootCommander) newDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode [file|-]",
		Short: decodeShortDesc,
		Long:  decodeLongDesc,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.decode(cmd, args)
		},
	}
}

func (c *rootCommander) decode(cmd *cobra.Command, args []string) error {
	var r io.Reader = cmd.InOrStdin()
	source := "-"
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening stream: %w", err)
		}
		defer f.Close()
		r = f
		source = args[0]
	}

	dec := stream.NewDecoder()
	lines := stream.Lines(r)
	text := dec.Consume(lines.All())

	if err := lines.Err(); err != nil {
		c.logger.Warn("reading stream failed, output may be incomplete", "source", source, "error", err)
	}
	c.logger.Debug("stream decoded", append([]any{"source", source}, statsAttrs(dec.Stats())...)...)

	_, err := fmt.Fprintln(cmd.OutOrStdout(), text)
	return err
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mozilla-ai/llmstream/config"
	"github.com/mozilla-ai/llmstream/internal/logger"
	"github.com/mozilla-ai/llmstream/internal/tracing"
	"github.com/mozilla-ai/llmstream/providers"
	"github.com/mozilla-ai/llmstream/providers/openai"
	"github.com/mozilla-ai/llmstream/stream"
)

// Flag names.
const (
	flagAPIURL        = "api-url"
	flagConfigDir     = "config-dir"
	flagDebug         = "debug"
	flagEnvFile       = "env-file"
	flagHeader        = "header"
	flagJSONLogs      = "json-logs"
	flagModel         = "model"
	flagPretty        = "pretty"
	flagSystem        = "system"
	flagTimeout       = "timeout"
	flagTraceEndpoint = "trace-endpoint"
	flagTraceExporter = "trace"
)

const defaultPrompt = "hi"

const rootLongDesc string = `llmstream sends one prompt to a Responses API endpoint and prints the
text assembled from the streamed output_text deltas.

Settings come from flags, then LLM_* environment variables (a .env file is
loaded first), then llmstream.{toml,json,yaml} in the config directory.
Logs are written to stderr; only the generated text goes to stdout.

Examples:
  llmstream
  llmstream "Summarize sparse modeling in one line"
  llmstream --model gpt-5.1-codex-max --system "Answer in JSON." "title please"
  llmstream -H X-Trace-Tag=abc "hello"
  llmstream decode capture.sse`

const rootShortDesc string = "Stream a Responses API completion and print its text"

type rootCommander struct {
	configDir string
	debug     bool
	envFile   string
	jsonLogs  bool
	pretty    bool

	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	cmder := &rootCommander{}

	cmd := &cobra.Command{
		Use:          "llmstream [prompt]",
		Short:        rootShortDesc,
		Long:         rootLongDesc,
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.logger = logger.New(
				logger.WithWriter(cmd.ErrOrStderr()),
				logger.WithDebug(cmder.debug),
				logger.WithJSON(cmder.jsonLogs),
				logger.WithPretty(cmder.pretty),
			)
			return cmder.loadEnvFile()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, args)
		},
	}

	// Global flags
	pf := cmd.PersistentFlags()
	pf.BoolVarP(&cmder.debug, flagDebug, "d", false, "Enable debug logging")
	pf.BoolVar(&cmder.jsonLogs, flagJSONLogs, false, "Write logs as JSON")
	pf.BoolVar(&cmder.pretty, flagPretty, false, "Write colorized, human-friendly logs")
	pf.StringVar(&cmder.envFile, flagEnvFile, ".env", "dotenv file loaded before reading LLM_* variables (empty to skip)")

	f := cmd.Flags()
	f.StringVar(&cmder.configDir, flagConfigDir, "", "Directory holding llmstream.{toml,json,yaml}")
	f.String(flagAPIURL, "", "Responses endpoint URL (env LLM_API_URL)")
	f.StringToStringP(flagHeader, "H", nil, "Extra request header as name=value (repeatable)")
	f.StringP(flagModel, "m", "", "Model name (env LLM_MODEL)")
	f.StringP(flagSystem, "s", "", "System prompt")
	f.Duration(flagTimeout, config.DefaultTimeout, "Time to wait for response headers (the body is not limited)")
	f.String(flagTraceExporter, tracing.ExporterNone, "Span exporter: none, stdout or otlp")
	f.String(flagTraceEndpoint, "", "OTLP/HTTP collector host:port")

	cmd.AddCommand(cmder.newDecodeCmd())

	return cmd
}

func (c *rootCommander) loadEnvFile() error {
	if c.envFile == "" {
		return nil
	}
	if err := godotenv.Load(c.envFile); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", c.envFile, err)
	}
	c.logger.Debug("loaded env file", "path", c.envFile)
	return nil
}

// loadSettings merges the config file, LLM_* environment and the flags that
// were set on cmd.
func (c *rootCommander) loadSettings(cmd *cobra.Command) (*config.File, error) {
	v, err := config.InitViper(c.configDir)
	if err != nil {
		return nil, err
	}

	bindings := map[string]string{
		config.KeyAPIURL:        flagAPIURL,
		config.KeyModel:         flagModel,
		config.KeySystemPrompt:  flagSystem,
		config.KeyTimeout:       flagTimeout,
		config.KeyTraceEndpoint: flagTraceEndpoint,
		config.KeyTraceExporter: flagTraceExporter,
	}
	for key, name := range bindings {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return nil, fmt.Errorf("binding flag %s: %w", name, err)
		}
	}

	if used := v.ConfigFileUsed(); used != "" {
		c.logger.Debug("loaded config file", "path", used)
	}

	return config.LoadFile(v)
}

func (c *rootCommander) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	settings, err := c.loadSettings(cmd)
	if err != nil {
		return err
	}

	shutdown, err := tracing.Setup(ctx, tracing.Options{
		Endpoint: settings.TraceEndpoint,
		Exporter: settings.TraceExporter,
		Writer:   cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(context.WithoutCancel(ctx)); err != nil {
			c.logger.Warn("flushing traces", "error", err)
		}
	}()

	opts := settings.Options()
	headers, err := cmd.Flags().GetStringToString(flagHeader)
	if err != nil {
		return err
	}
	if len(headers) > 0 {
		opts = append(opts, config.WithHeaders(headers))
	}

	provider, err := openai.New(opts...)
	if err != nil {
		return fmt.Errorf("configuring provider: %w", err)
	}

	prompt := promptFromArgs(args)
	c.logger.Debug("sending request",
		"provider", provider.Name(),
		"url", provider.APIURL(),
		"model", provider.Model(),
	)

	gen, err := provider.Generate(ctx, providers.GenerateParams{UserPrompt: prompt})
	if err != nil {
		return fmt.Errorf("generating text: %w", err)
	}

	if gen.ReadErr != nil {
		c.logger.Warn("stream ended early, output may be incomplete", "error", gen.ReadErr)
	}
	c.logger.Debug("stream finished", append([]any{"request_id", gen.RequestID}, statsAttrs(gen.Stats)...)...)

	_, err = fmt.Fprintln(cmd.OutOrStdout(), gen.Text)
	return err
}

func promptFromArgs(args []string) string {
	prompt := strings.TrimSpace(strings.Join(args, " "))
	if prompt == "" {
		return defaultPrompt
	}
	return prompt
}

func statsAttrs(s stream.Stats) []any {
	return []any{
		"lines", s.Lines,
		"deltas", s.Deltas,
		"blank", s.Blank,
		"done", s.Done,
		"noise", s.Noise,
		"malformed", s.Malformed,
		"ignored", s.Ignored,
	}
}

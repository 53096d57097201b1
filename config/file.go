package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Viper keys. Environment variables use the LLM_ prefix, e.g. LLM_API_URL.
const (
	KeyAPIKey       = "api_key"
	KeyAPIURL       = "api_url"
	KeyHeaders      = "headers"
	KeyModel        = "model"
	KeySystemPrompt = "system_prompt"
	KeyTimeout      = "timeout"

	KeyTraceEndpoint = "trace_endpoint"
	KeyTraceExporter = "trace_exporter"

	envPrefix      = "LLM"
	configFileName = "llmstream"
)

// File is the user-facing configuration assembled from a config file,
// LLM_* environment variables and bound CLI flags.
type File struct {
	APIKey       string        `mapstructure:"api_key"`
	APIURL       string        `mapstructure:"api_url"`
	Model        string        `mapstructure:"model"`
	SystemPrompt string        `mapstructure:"system_prompt"`
	Timeout      time.Duration `mapstructure:"timeout"`

	// Headers are added to every request. Keys read from a config file
	// arrive lowercased.
	Headers map[string]string `mapstructure:"headers"`

	// TraceExporter selects where spans go: "none", "stdout" or "otlp".
	TraceExporter string `mapstructure:"trace_exporter"`

	// TraceEndpoint is the OTLP/HTTP collector address for the otlp exporter.
	TraceEndpoint string `mapstructure:"trace_endpoint"`
}

// InitViper returns a viper instance that reads llmstream.{toml,json,yaml}
// from configDir (or the working directory and the user config directory
// when configDir is empty) and binds LLM_* environment variables.
//
// Precedence (highest to lowest): bound flags, environment, config file,
// defaults. A missing config file is not an error.
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	v.SetDefault(KeyAPIKey, "")
	v.SetDefault(KeyAPIURL, "")
	v.SetDefault(KeyHeaders, map[string]string{})
	v.SetDefault(KeyModel, "")
	v.SetDefault(KeySystemPrompt, "")
	v.SetDefault(KeyTimeout, DefaultTimeout)
	v.SetDefault(KeyTraceEndpoint, "")
	v.SetDefault(KeyTraceExporter, "none")

	v.SetConfigName(configFileName)
	if configDir != "" {
		v.AddConfigPath(configDir)
	} else {
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, configFileName))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	return v, nil
}

// LoadFile decodes the merged viper settings.
func LoadFile(v *viper.Viper) (*File, error) {
	var f File
	if err := v.Unmarshal(&f); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &f, nil
}

// Options converts the non-empty settings into provider options.
func (f *File) Options() []Option {
	var opts []Option
	if f.APIKey != "" {
		opts = append(opts, WithAPIKey(f.APIKey))
	}
	if f.APIURL != "" {
		opts = append(opts, WithAPIURL(f.APIURL))
	}
	if f.Model != "" {
		opts = append(opts, WithModel(f.Model))
	}
	if f.SystemPrompt != "" {
		opts = append(opts, WithSystemPrompt(f.SystemPrompt))
	}
	if f.Timeout > 0 {
		opts = append(opts, WithTimeout(f.Timeout))
	}
	if len(f.Headers) > 0 {
		opts = append(opts, WithHeaders(f.Headers))
	}
	return opts
}

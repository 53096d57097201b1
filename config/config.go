package config

import (
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"
)

// ExtraHeaders is the Extra key holding additional request headers as a
// map[string]string.
const ExtraHeaders = "headers"

// DefaultTimeout bounds the wait for response headers unless overridden.
// A response body may stream for as long as the server keeps sending.
const DefaultTimeout = 120 * time.Second

// Config holds the configuration for a provider.
type Config struct {
	// APIKey is the API key for authentication.
	APIKey string

	// APIURL is the full endpoint URL requests are posted to.
	// If empty, the provider's default is used.
	APIURL string

	// Extra holds provider-specific configuration options.
	Extra map[string]any

	// Model is the model name sent in the request payload.
	Model string

	// SystemPrompt replaces the provider's default system instruction.
	SystemPrompt string

	// Timeout bounds the wait for response headers. Reading the streamed
	// body is not limited; use a context deadline for an overall limit.
	Timeout time.Duration

	// httpClient is a custom HTTP client. Access via HTTPClient() method which
	// handles lazy creation with the configured Timeout if not explicitly set on the client.
	httpClient     *http.Client
	httpClientOnce sync.Once
}

// Option is a function that modifies the Config.
type Option func(*Config) error

// New creates a Config with the given options applied.
// Nil options are skipped.
func New(opts ...Option) (*Config, error) {
	cfg := &Config{
		Timeout: DefaultTimeout,
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// WithAPIKey sets the API key. Whitespace is automatically trimmed.
func WithAPIKey(key string) Option {
	return func(c *Config) error {
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("API key cannot be empty")
		}

		c.APIKey = key
		return nil
	}
}

// WithAPIURL sets the endpoint URL. It must be absolute.
func WithAPIURL(apiURL string) Option {
	return func(c *Config) error {
		apiURL = strings.TrimSpace(apiURL)
		if apiURL == "" {
			return fmt.Errorf("API URL cannot be empty")
		}

		if err := validateURL(apiURL); err != nil {
			return err
		}

		c.APIURL = apiURL
		return nil
	}
}

// WithExtra sets extra provider-specific configuration.
// Whitespace is automatically trimmed from the key.
func WithExtra(key string, value any) Option {
	return func(c *Config) error {
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("extra key cannot be empty")
		}

		if c.Extra == nil {
			c.Extra = make(map[string]any)
		}

		c.Extra[key] = value
		return nil
	}
}

// WithHeaders adds headers sent with every request. Names are stored in
// canonical form and repeated calls merge, later values winning. Empty
// header names are rejected.
func WithHeaders(headers map[string]string) Option {
	return func(c *Config) error {
		merged := map[string]string{}
		if existing, ok := c.ExtraValue(ExtraHeaders); ok {
			prev, ok := existing.(map[string]string)
			if !ok {
				return fmt.Errorf("extra %q must be map[string]string, got %T", ExtraHeaders, existing)
			}
			maps.Copy(merged, prev)
		}

		for name, value := range headers {
			name = strings.TrimSpace(name)
			if name == "" {
				return fmt.Errorf("header name cannot be empty")
			}
			merged[http.CanonicalHeaderKey(name)] = value
		}

		return WithExtra(ExtraHeaders, merged)(c)
	}
}

// WithHTTPClient sets a custom HTTP client.
// A custom client manages its own timeout, so Timeout is ignored for it.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Config) error {
		if client == nil {
			return fmt.Errorf("HTTP client cannot be nil")
		}

		c.httpClient = client
		return nil
	}
}

// WithModel sets the model name.
func WithModel(model string) Option {
	return func(c *Config) error {
		model = strings.TrimSpace(model)
		if model == "" {
			return fmt.Errorf("model cannot be empty")
		}

		c.Model = model
		return nil
	}
}

// WithSystemPrompt sets the system instruction sent before the user prompt.
func WithSystemPrompt(prompt string) Option {
	return func(c *Config) error {
		if strings.TrimSpace(prompt) == "" {
			return fmt.Errorf("system prompt cannot be empty")
		}

		c.SystemPrompt = prompt
		return nil
	}
}

// WithTimeout sets how long to wait for response headers.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) error {
		if d <= 0 {
			return fmt.Errorf("timeout must be positive, got %v", d)
		}

		c.Timeout = d
		return nil
	}
}

// ExtraValue retrieves a provider-specific configuration value.
func (c *Config) ExtraValue(key string) (any, bool) {
	if c.Extra == nil {
		return nil, false
	}

	v, ok := c.Extra[key]
	return v, ok
}

// HTTPClient returns the configured HTTP client, or lazily creates one using
// the configured Timeout if no custom client was provided via WithHTTPClient.
// The lazily-created client is cached and reused on subsequent calls.
func (c *Config) HTTPClient() *http.Client {
	c.httpClientOnce.Do(func() {
		if c.httpClient == nil {
			transport := http.DefaultTransport.(*http.Transport).Clone()
			transport.ResponseHeaderTimeout = c.Timeout
			c.httpClient = &http.Client{Transport: transport}
		}
	})

	return c.httpClient
}

// ResolveAPIKey returns the API key from config if set, otherwise falls back
// to the specified environment variable.
func (c *Config) ResolveAPIKey(envVar string) string {
	if c.APIKey != "" {
		return c.APIKey
	}

	return c.ResolveEnv(envVar)
}

// ResolveEnv returns the value of the specified environment variable,
// trimming whitespace. Returns empty string if the variable is not set or empty.
func (c *Config) ResolveEnv(envVar string) string {
	if envVar == "" {
		return ""
	}
	return strings.TrimSpace(os.Getenv(envVar))
}

// ResolveAPIURL resolves the endpoint from config, environment variable, or
// default value, and validates that it has a scheme and host.
func (c *Config) ResolveAPIURL(envVar, defaultVal string) (string, error) {
	apiURL := firstNonEmpty(c.APIURL, c.ResolveEnv(envVar), strings.TrimSpace(defaultVal))
	if apiURL == "" {
		return "", fmt.Errorf("API URL is required")
	}

	if err := validateURL(apiURL); err != nil {
		return "", err
	}

	return apiURL, nil
}

// ResolveModel resolves the model from config, environment variable, or
// default value.
func (c *Config) ResolveModel(envVar, defaultVal string) string {
	return firstNonEmpty(c.Model, c.ResolveEnv(envVar), defaultVal)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func validateURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid API URL %q: %w", raw, err)
	}

	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("API URL %q must have scheme and host", raw)
	}

	return nil
}

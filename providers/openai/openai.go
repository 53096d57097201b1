package openai

import (
	"github.com/mozilla-ai/llmstream/config"
	"github.com/mozilla-ai/llmstream/providers"
)

// Provider configuration constants.
const (
	defaultAPIURL = "http://111.119.221.189:9600/openai/v1/responses"
	defaultModel  = "gpt-5.1-codex-max"
	envAPIKey     = "LLM_API_KEY"
	envAPIURL     = "LLM_API_URL"
	envModel      = "LLM_MODEL"
	providerName  = "openai-responses"
)

// Ensure Provider implements the required interfaces.
var _ providers.Provider = (*Provider)(nil)

// Provider streams from the configured Responses endpoint.
// It embeds ResponsesProvider which handles the openai-go integration.
type Provider struct {
	*ResponsesProvider
}

// New creates a new Provider. Settings not given as options are read from
// LLM_API_URL, LLM_API_KEY and LLM_MODEL.
func New(opts ...config.Option) (*Provider, error) {
	base, err := NewResponses(ResponsesConfig{
		APIKeyEnvVar:  envAPIKey,
		APIURLEnvVar:  envAPIURL,
		DefaultAPIURL: defaultAPIURL,
		DefaultModel:  defaultModel,
		ModelEnvVar:   envModel,
		Name:          providerName,
	}, opts...)
	if err != nil {
		return nil, err
	}

	return &Provider{ResponsesProvider: base}, nil
}

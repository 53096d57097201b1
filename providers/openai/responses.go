// Package openai provides a Responses API provider for llmstream.
// It also exports a base provider for other Responses-compatible endpoints.
package openai

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"maps"
	"math"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mozilla-ai/llmstream/config"
	"github.com/mozilla-ai/llmstream/errors"
	"github.com/mozilla-ai/llmstream/providers"
	"github.com/mozilla-ai/llmstream/stream"
)

// OpenAI API error codes.
const (
	apiCodeContentFilter         = "content_filter"
	apiCodeContentPolicyViolated = "content_policy_violation"
	apiCodeContextLengthExceeded = "context_length_exceeded"
	apiCodeInvalidAPIKey         = "invalid_api_key"
	apiCodeModelNotFound         = "model_not_found"
	apiCodeRateLimitExceeded     = "rate_limit_exceeded"
)

// Request headers.
const (
	headerAccept     = "Accept"
	headerRequestID  = "X-Client-Request-Id"
	headerRetryAfter = "Retry-After"
	mimeJSON         = "application/json"
)

// Span names and attributes.
const (
	tracerName    = "github.com/mozilla-ai/llmstream/providers/openai"
	spanGenerate  = "responses.generate"
	attrDeltas    = "llm.stream.deltas"
	attrLines     = "llm.stream.lines"
	attrMalformed = "llm.stream.malformed"
	attrModel     = "llm.model"
	attrProvider  = "llm.provider"
	attrRequestID = "llm.request_id"
	attrTruncated = "llm.stream.truncated"
)

// ResponsesConfig contains the configuration for a Responses-compatible
// provider. Fields are ordered alphabetically.
type ResponsesConfig struct {
	// APIKeyEnvVar is the environment variable for the API key.
	APIKeyEnvVar string

	// APIURLEnvVar is the environment variable for the endpoint URL.
	APIURLEnvVar string

	// DefaultAPIURL is the endpoint used when neither option nor env set one.
	DefaultAPIURL string

	// DefaultModel is the model used when neither option nor env set one.
	DefaultModel string

	// ModelEnvVar is the environment variable for the model name.
	ModelEnvVar string

	// Name is the provider name used in error messages.
	Name string
}

// Generation is the outcome of one streamed request.
type Generation struct {
	// Text is the concatenated output text.
	Text string

	// Model is the model the request was sent with.
	Model string

	// RequestID is the client request id sent with the request.
	RequestID string

	// Stats counts how the stream lines were handled.
	Stats stream.Stats

	// ReadErr is set when the body ended with a read error. Text then holds
	// whatever arrived before the failure.
	ReadErr error
}

// Ensure ResponsesProvider implements the required interfaces.
var _ providers.Provider = (*ResponsesProvider)(nil)

// ResponsesProvider implements providers.Provider for endpoints speaking the
// OpenAI Responses streaming protocol.
type ResponsesProvider struct {
	apiURL       string
	client       openai.Client
	headers      map[string]string
	model        string
	respConfig   ResponsesConfig
	systemPrompt string
	tracer       trace.Tracer
}

// NewResponses creates a new Responses-compatible provider. The API key is
// required and checked here, before any request is made.
func NewResponses(respCfg ResponsesConfig, opts ...config.Option) (*ResponsesProvider, error) {
	cfg, err := config.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	if validErr := validateResponsesConfig(respCfg); validErr != nil {
		return nil, validErr
	}

	apiURL, err := cfg.ResolveAPIURL(respCfg.APIURLEnvVar, respCfg.DefaultAPIURL)
	if err != nil {
		return nil, err
	}

	apiKey := cfg.ResolveAPIKey(respCfg.APIKeyEnvVar)
	if apiKey == "" {
		return nil, errors.NewMissingAPIKeyError(respCfg.Name, respCfg.APIKeyEnvVar)
	}

	model := cfg.ResolveModel(respCfg.ModelEnvVar, respCfg.DefaultModel)
	if model == "" {
		return nil, errors.NewInvalidRequestError(respCfg.Name, fmt.Errorf("model is required"))
	}

	systemPrompt := cfg.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = providers.DefaultSystemPrompt
	}

	headers, err := extraHeaders(cfg)
	if err != nil {
		return nil, errors.NewInvalidRequestError(respCfg.Name, err)
	}

	return &ResponsesProvider{
		apiURL: apiURL,
		client: openai.NewClient(
			option.WithAPIKey(apiKey),
			option.WithHTTPClient(cfg.HTTPClient()),
			option.WithMaxRetries(0),
		),
		headers:      headers,
		model:        model,
		respConfig:   respCfg,
		systemPrompt: systemPrompt,
		tracer:       otel.Tracer(tracerName),
	}, nil
}

// APIURL returns the endpoint requests are posted to.
func (p *ResponsesProvider) APIURL() string {
	return p.apiURL
}

// Model returns the default model for requests.
func (p *ResponsesProvider) Model() string {
	return p.model
}

// Name returns the provider name.
func (p *ResponsesProvider) Name() string {
	return p.respConfig.Name
}

// BuildRequest builds the streaming request payload for params.
func (p *ResponsesProvider) BuildRequest(params providers.GenerateParams) providers.ResponsesRequest {
	model := params.Model
	if model == "" {
		model = p.model
	}

	systemPrompt := params.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = p.systemPrompt
	}

	return providers.ResponsesRequest{
		Model:  model,
		Stream: true,
		Input: []providers.InputMessage{
			providers.TextMessage(providers.RoleSystem, systemPrompt),
			providers.TextMessage(providers.RoleUser, params.UserPrompt),
		},
	}
}

// GenerateText performs one streaming request and returns the output text.
// A stream that breaks off after the response started is not an error: the
// text received up to that point is returned.
func (p *ResponsesProvider) GenerateText(ctx context.Context, params providers.GenerateParams) (string, error) {
	gen, err := p.Generate(ctx, params)
	if err != nil {
		return "", err
	}
	return gen.Text, nil
}

// Generate performs one streaming request and reports the decoded text
// along with stream statistics.
func (p *ResponsesProvider) Generate(ctx context.Context, params providers.GenerateParams) (gen *Generation, err error) {
	if err := p.validateGenerateParams(params); err != nil {
		return nil, err
	}

	req := p.BuildRequest(params)
	requestID := uuid.NewString()

	ctx, span := p.tracer.Start(ctx, spanGenerate, trace.WithAttributes(
		attribute.String(attrProvider, p.Name()),
		attribute.String(attrModel, req.Model),
		attribute.String(attrRequestID, requestID),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	body, err := json.Marshal(req)
	if err != nil {
		return nil, errors.NewInvalidRequestError(p.Name(), fmt.Errorf("encoding request: %w", err))
	}

	var resp *http.Response
	err = p.client.Post(ctx, p.apiURL, json.RawMessage(body), &resp, p.requestOptions(requestID)...)
	if err != nil {
		return nil, p.ConvertError(err)
	}
	if resp == nil || resp.Body == nil {
		return nil, errors.NewProviderError(p.Name(), fmt.Errorf("empty response"))
	}
	defer resp.Body.Close()

	dec := stream.NewDecoder()
	lines := stream.Lines(resp.Body)
	text := dec.Consume(lines.All())
	stats := dec.Stats()

	span.SetAttributes(
		attribute.Int(attrDeltas, stats.Deltas),
		attribute.Int(attrLines, stats.Lines),
		attribute.Int(attrMalformed, stats.Malformed),
		attribute.Bool(attrTruncated, lines.Err() != nil),
	)

	return &Generation{
		Text:      text,
		Model:     req.Model,
		RequestID: requestID,
		Stats:     stats,
		ReadErr:   lines.Err(),
	}, nil
}

// requestOptions returns the per-request headers. Configured extra headers
// go first so Accept and the request id cannot be overridden.
func (p *ResponsesProvider) requestOptions(requestID string) []option.RequestOption {
	opts := make([]option.RequestOption, 0, len(p.headers)+2)
	for _, name := range slices.Sorted(maps.Keys(p.headers)) {
		opts = append(opts, option.WithHeader(name, p.headers[name]))
	}
	return append(opts,
		option.WithHeader(headerAccept, mimeJSON),
		option.WithHeader(headerRequestID, requestID),
	)
}

// ConvertError converts openai-go errors to llmstream error types.
func (p *ResponsesProvider) ConvertError(err error) error {
	if err == nil {
		return nil
	}

	name := p.respConfig.Name

	var apiErr *openai.Error
	if stderrors.As(err, &apiErr) {
		return convertAPIError(name, apiErr, err)
	}

	return errors.NewProviderError(name, err)
}

// convertAPIError maps an unsuccessful HTTP status to a typed error.
func convertAPIError(name string, apiErr *openai.Error, originalErr error) error {
	switch apiErr.StatusCode {
	case http.StatusBadRequest:
		switch apiErr.Code {
		case apiCodeContextLengthExceeded:
			return errors.NewContextLengthError(name, originalErr)
		case apiCodeContentFilter, apiCodeContentPolicyViolated:
			return errors.NewContentFilterError(name, originalErr)
		}
		return errors.NewInvalidRequestError(name, originalErr)
	case http.StatusUnauthorized:
		return errors.NewAuthenticationError(name, originalErr)
	case http.StatusNotFound:
		return errors.NewModelNotFoundError(name, originalErr)
	case http.StatusTooManyRequests:
		return newRateLimitError(name, apiErr, originalErr)
	}

	switch apiErr.Code {
	case apiCodeInvalidAPIKey:
		return errors.NewAuthenticationError(name, originalErr)
	case apiCodeModelNotFound:
		return errors.NewModelNotFoundError(name, originalErr)
	case apiCodeRateLimitExceeded:
		return newRateLimitError(name, apiErr, originalErr)
	}

	provErr := errors.NewProviderError(name, originalErr)
	provErr.StatusCode = apiErr.StatusCode
	return provErr
}

func newRateLimitError(name string, apiErr *openai.Error, originalErr error) *errors.RateLimitError {
	rateErr := errors.NewRateLimitError(name, originalErr)
	if apiErr.Response != nil {
		rateErr.RetryAfter = parseRetryAfter(apiErr.Response.Header.Get(headerRetryAfter), time.Now())
	}
	return rateErr
}

// parseRetryAfter reads a Retry-After value given either as delay seconds or
// as an HTTP date. Missing, invalid or past values yield 0.
func parseRetryAfter(value string, now time.Time) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return max(secs, 0)
	}
	at, err := http.ParseTime(value)
	if err != nil {
		return 0
	}
	return max(int(math.Ceil(at.Sub(now).Seconds())), 0)
}

// extraHeaders reads the optional request headers from cfg.Extra.
func extraHeaders(cfg *config.Config) (map[string]string, error) {
	v, ok := cfg.ExtraValue(config.ExtraHeaders)
	if !ok || v == nil {
		return nil, nil
	}
	headers, ok := v.(map[string]string)
	if !ok {
		return nil, fmt.Errorf("extra %q must be map[string]string, got %T", config.ExtraHeaders, v)
	}
	return maps.Clone(headers), nil
}

func (p *ResponsesProvider) validateGenerateParams(params providers.GenerateParams) error {
	if strings.TrimSpace(params.UserPrompt) == "" {
		return errors.NewInvalidRequestError(p.Name(), fmt.Errorf("user prompt is required"))
	}
	return nil
}

// validateResponsesConfig validates the provider configuration.
func validateResponsesConfig(cfg ResponsesConfig) error {
	if cfg.Name == "" {
		return fmt.Errorf("provider name is required")
	}
	return nil
}

// Package llmstream sends prompts to OpenAI Responses API endpoints and
// assembles the streamed output text.
//
// This package re-exports common types and configuration options from subpackages,
// allowing most use cases to work with just two imports:
//
//	import (
//	    "github.com/mozilla-ai/llmstream"
//	    "github.com/mozilla-ai/llmstream/providers/openai"
//	)
//
//	provider, err := openai.New(llmstream.WithAPIKey("sk-..."))
//	text, err := provider.GenerateText(ctx, llmstream.GenerateParams{
//	    UserPrompt: "hi",
//	})
//
// Captured streams can be decoded without a request:
//
//	text, err := llmstream.DecodeReader(f)
package llmstream

import (
	"github.com/mozilla-ai/llmstream/config"
	"github.com/mozilla-ai/llmstream/errors"
	"github.com/mozilla-ai/llmstream/providers"
	"github.com/mozilla-ai/llmstream/stream"
)

// Message roles.
const (
	RoleSystem = providers.RoleSystem
	RoleUser   = providers.RoleUser
)

// DefaultSystemPrompt is sent when no system prompt is configured.
const DefaultSystemPrompt = providers.DefaultSystemPrompt

// EventTypeOutputTextDelta is the only event type whose delta is collected.
const EventTypeOutputTextDelta = stream.EventTypeOutputTextDelta

// Provider types.
type (
	GenerateParams   = providers.GenerateParams
	Provider         = providers.Provider
	ResponsesRequest = providers.ResponsesRequest
)

// Stream types.
type (
	Decoder = stream.Decoder
	Event   = stream.Event
	Stats   = stream.Stats
)

// Stream decoding.
var (
	Decode            = stream.Decode
	DecodeReader      = stream.DecodeReader
	ExtractJSONObject = providers.ExtractJSONObject
	NewDecoder        = stream.NewDecoder
)

// Config types.
type (
	Config = config.Config
	Option = config.Option
)

// Configuration options.
var (
	NewConfig        = config.New
	WithAPIKey       = config.WithAPIKey
	WithAPIURL       = config.WithAPIURL
	WithExtra        = config.WithExtra
	WithHeaders      = config.WithHeaders
	WithHTTPClient   = config.WithHTTPClient
	WithModel        = config.WithModel
	WithSystemPrompt = config.WithSystemPrompt
	WithTimeout      = config.WithTimeout
)

// Sentinel errors for type checking with errors.Is().
var (
	ErrAuthentication = errors.ErrAuthentication
	ErrContentFilter  = errors.ErrContentFilter
	ErrContextLength  = errors.ErrContextLength
	ErrInvalidRequest = errors.ErrInvalidRequest
	ErrMissingAPIKey  = errors.ErrMissingAPIKey
	ErrModelNotFound  = errors.ErrModelNotFound
	ErrProvider       = errors.ErrProvider
	ErrRateLimit      = errors.ErrRateLimit
)

// Error types.
type (
	AuthenticationError = errors.AuthenticationError
	BaseError           = errors.BaseError
	ContentFilterError  = errors.ContentFilterError
	ContextLengthError  = errors.ContextLengthError
	InvalidRequestError = errors.InvalidRequestError
	MissingAPIKeyError  = errors.MissingAPIKeyError
	ModelNotFoundError  = errors.ModelNotFoundError
	ProviderError       = errors.ProviderError
	RateLimitError      = errors.RateLimitError
)

// Package errors defines the typed errors returned by llmstream.
//
// Every error embeds BaseError and matches a sentinel with errors.Is, so
// callers can branch on the category without type assertions:
//
//	if errors.Is(err, llmerrors.ErrMissingAPIKey) { ... }
package errors

import (
	stderrors "errors"
	"fmt"
)

// Error codes used in BaseError.Code field.
const (
	CodeAuthError      = "auth_error"
	CodeContentFilter  = "content_filter"
	CodeContextLength  = "context_length_exceeded"
	CodeInvalidRequest = "invalid_request"
	CodeMissingAPIKey  = "missing_api_key"
	CodeModelNotFound  = "model_not_found"
	CodeProviderError  = "provider_error"
	CodeRateLimit      = "rate_limit"
)

// Sentinel errors for type checking with errors.Is().
var (
	ErrAuthentication = stderrors.New("authentication failed")
	ErrContentFilter  = stderrors.New("content filtered")
	ErrContextLength  = stderrors.New("context length exceeded")
	ErrInvalidRequest = stderrors.New("invalid request")
	ErrMissingAPIKey  = stderrors.New("missing API key")
	ErrModelNotFound  = stderrors.New("model not found")
	ErrProvider       = stderrors.New("provider error")
	ErrRateLimit      = stderrors.New("rate limit exceeded")
)

// BaseError carries the error code, the provider that produced it and the
// underlying cause.
type BaseError struct {
	// Code is a short error code (e.g., "rate_limit", "auth_error").
	Code string

	// Provider is the name of the provider that returned the error.
	Provider string

	// Err is the underlying error.
	Err error

	sentinel error
}

func newBase(code, provider string, err, sentinel error) BaseError {
	return BaseError{Code: code, Provider: provider, Err: err, sentinel: sentinel}
}

// Error implements the error interface.
func (e *BaseError) Error() string {
	msg := ""
	if e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Provider != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Provider, e.Code, msg)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// Is allows checking error types with errors.Is().
func (e *BaseError) Is(target error) bool {
	return e.sentinel != nil && target == e.sentinel
}

// Unwrap returns the underlying error.
func (e *BaseError) Unwrap() error {
	return e.Err
}

// AuthenticationError is returned when the endpoint rejects the credential.
type AuthenticationError struct {
	BaseError
}

// ContentFilterError is returned when content is blocked by safety filters.
type ContentFilterError struct {
	BaseError
}

// ContextLengthError is returned when the input exceeds the model's limit.
type ContextLengthError struct {
	BaseError
}

// InvalidRequestError is returned when the request is malformed.
type InvalidRequestError struct {
	BaseError
}

// MissingAPIKeyError is returned when no API key is configured.
type MissingAPIKeyError struct {
	BaseError
	EnvVar string // The environment variable that should contain the key
}

// ModelNotFoundError is returned when the requested model doesn't exist.
type ModelNotFoundError struct {
	BaseError
}

// ProviderError is returned for transport failures and any non-success
// status that has no more specific type.
type ProviderError struct {
	BaseError
	StatusCode int
}

// RateLimitError is returned when the API rate limit is exceeded.
type RateLimitError struct {
	BaseError
	RetryAfter int // Seconds until retry is allowed, if known
}

// NewAuthenticationError creates a new AuthenticationError.
func NewAuthenticationError(provider string, err error) *AuthenticationError {
	return &AuthenticationError{BaseError: newBase(CodeAuthError, provider, err, ErrAuthentication)}
}

// NewContentFilterError creates a new ContentFilterError.
func NewContentFilterError(provider string, err error) *ContentFilterError {
	return &ContentFilterError{BaseError: newBase(CodeContentFilter, provider, err, ErrContentFilter)}
}

// NewContextLengthError creates a new ContextLengthError.
func NewContextLengthError(provider string, err error) *ContextLengthError {
	return &ContextLengthError{BaseError: newBase(CodeContextLength, provider, err, ErrContextLength)}
}

// NewInvalidRequestError creates a new InvalidRequestError.
func NewInvalidRequestError(provider string, err error) *InvalidRequestError {
	return &InvalidRequestError{BaseError: newBase(CodeInvalidRequest, provider, err, ErrInvalidRequest)}
}

// NewMissingAPIKeyError creates a new MissingAPIKeyError.
func NewMissingAPIKeyError(provider string, envVar string) *MissingAPIKeyError {
	err := fmt.Errorf("API key not provided. Set %s environment variable or pass WithAPIKey option", envVar)
	return &MissingAPIKeyError{
		BaseError: newBase(CodeMissingAPIKey, provider, err, ErrMissingAPIKey),
		EnvVar:    envVar,
	}
}

// NewModelNotFoundError creates a new ModelNotFoundError.
func NewModelNotFoundError(provider string, err error) *ModelNotFoundError {
	return &ModelNotFoundError{BaseError: newBase(CodeModelNotFound, provider, err, ErrModelNotFound)}
}

// NewProviderError creates a new ProviderError. StatusCode is left for the
// caller to set when the failure came with an HTTP status.
func NewProviderError(provider string, err error) *ProviderError {
	return &ProviderError{BaseError: newBase(CodeProviderError, provider, err, ErrProvider)}
}

// NewRateLimitError creates a new RateLimitError.
func NewRateLimitError(provider string, err error) *RateLimitError {
	return &RateLimitError{BaseError: newBase(CodeRateLimit, provider, err, ErrRateLimit)}
}

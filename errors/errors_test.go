package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorIs(t *testing.T) {
	t.Parallel()

	cause := stderrors.New("original error")

	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "AuthenticationError matches ErrAuthentication",
			err:       NewAuthenticationError("openai-responses", cause),
			target:    ErrAuthentication,
			wantMatch: true,
		},
		{
			name:      "AuthenticationError does not match ErrRateLimit",
			err:       NewAuthenticationError("openai-responses", cause),
			target:    ErrRateLimit,
			wantMatch: false,
		},
		{
			name:      "ContentFilterError matches ErrContentFilter",
			err:       NewContentFilterError("openai-responses", cause),
			target:    ErrContentFilter,
			wantMatch: true,
		},
		{
			name:      "ContextLengthError matches ErrContextLength",
			err:       NewContextLengthError("openai-responses", cause),
			target:    ErrContextLength,
			wantMatch: true,
		},
		{
			name:      "InvalidRequestError matches ErrInvalidRequest",
			err:       NewInvalidRequestError("openai-responses", cause),
			target:    ErrInvalidRequest,
			wantMatch: true,
		},
		{
			name:      "MissingAPIKeyError matches ErrMissingAPIKey",
			err:       NewMissingAPIKeyError("openai-responses", "LLM_API_KEY"),
			target:    ErrMissingAPIKey,
			wantMatch: true,
		},
		{
			name:      "ModelNotFoundError matches ErrModelNotFound",
			err:       NewModelNotFoundError("openai-responses", cause),
			target:    ErrModelNotFound,
			wantMatch: true,
		},
		{
			name:      "ProviderError matches ErrProvider",
			err:       NewProviderError("openai-responses", cause),
			target:    ErrProvider,
			wantMatch: true,
		},
		{
			name:      "RateLimitError matches ErrRateLimit",
			err:       NewRateLimitError("openai-responses", cause),
			target:    ErrRateLimit,
			wantMatch: true,
		},
		{
			name:      "wrapped error still matches",
			err:       fmt.Errorf("generating: %w", NewRateLimitError("openai-responses", cause)),
			target:    ErrRateLimit,
			wantMatch: true,
		},
		{
			name:      "cause is reachable through Unwrap",
			err:       NewProviderError("openai-responses", cause),
			target:    cause,
			wantMatch: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.wantMatch, stderrors.Is(tc.err, tc.target))
		})
	}
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	cause := stderrors.New("something went wrong")

	tests := []struct {
		name        string
		err         error
		wantContain []string
	}{
		{
			name:        "RateLimitError includes provider and code",
			err:         NewRateLimitError("openai-responses", cause),
			wantContain: []string{"[openai-responses]", "rate_limit", "something went wrong"},
		},
		{
			name:        "MissingAPIKeyError includes env var hint",
			err:         NewMissingAPIKeyError("openai-responses", "LLM_API_KEY"),
			wantContain: []string{"[openai-responses]", "missing_api_key", "LLM_API_KEY"},
		},
		{
			name:        "ProviderError includes cause",
			err:         NewProviderError("openai-responses", stderrors.New(`500 Internal Server Error {"error":"boom"}`)),
			wantContain: []string{"provider_error", "500", `{"error":"boom"}`},
		},
		{
			name:        "error without provider omits brackets",
			err:         NewInvalidRequestError("", stderrors.New("user prompt is required")),
			wantContain: []string{"invalid_request: user prompt is required"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			msg := tc.err.Error()
			for _, want := range tc.wantContain {
				require.Contains(t, msg, want)
			}
		})
	}
}

func TestErrorCodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		code string
		want string
	}{
		{name: "authentication", code: NewAuthenticationError("p", nil).Code, want: CodeAuthError},
		{name: "content filter", code: NewContentFilterError("p", nil).Code, want: CodeContentFilter},
		{name: "context length", code: NewContextLengthError("p", nil).Code, want: CodeContextLength},
		{name: "invalid request", code: NewInvalidRequestError("p", nil).Code, want: CodeInvalidRequest},
		{name: "missing key", code: NewMissingAPIKeyError("p", "LLM_API_KEY").Code, want: CodeMissingAPIKey},
		{name: "model not found", code: NewModelNotFoundError("p", nil).Code, want: CodeModelNotFound},
		{name: "provider", code: NewProviderError("p", nil).Code, want: CodeProviderError},
		{name: "rate limit", code: NewRateLimitError("p", nil).Code, want: CodeRateLimit},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, tc.code)
		})
	}
}

func TestErrorAs(t *testing.T) {
	t.Parallel()

	t.Run("can extract ProviderError with StatusCode", func(t *testing.T) {
		t.Parallel()

		src := NewProviderError("openai-responses", stderrors.New("unavailable"))
		src.StatusCode = 503
		err := fmt.Errorf("wrapped: %w", src)

		var provErr *ProviderError
		require.True(t, stderrors.As(err, &provErr))
		require.Equal(t, 503, provErr.StatusCode)
		require.Equal(t, "openai-responses", provErr.Provider)
	})

	t.Run("can extract MissingAPIKeyError with EnvVar", func(t *testing.T) {
		t.Parallel()

		err := NewMissingAPIKeyError("openai-responses", "LLM_API_KEY")

		var keyErr *MissingAPIKeyError
		require.True(t, stderrors.As(err, &keyErr))
		require.Equal(t, "LLM_API_KEY", keyErr.EnvVar)
	})

	t.Run("can extract RateLimitError with RetryAfter", func(t *testing.T) {
		t.Parallel()

		err := NewRateLimitError("openai-responses", stderrors.New("rate limited"))
		err.RetryAfter = 30

		var rateErr *RateLimitError
		require.True(t, stderrors.As(err, &rateErr))
		require.Equal(t, 30, rateErr.RetryAfter)
	})
}

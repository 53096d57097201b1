package testutil

import (
	"context"
	"sync"

	"github.com/mozilla-ai/llmstream/providers"
)

// MockProvider is a mock implementation of the Provider interface for testing.
type MockProvider struct {
	NameFunc         func() string
	GenerateTextFunc func(ctx context.Context, params providers.GenerateParams) (string, error)

	mu sync.Mutex

	// Track calls for assertions.
	GenerateTextCalls []providers.GenerateParams
}

// Ensure MockProvider implements the Provider interface.
var _ providers.Provider = (*MockProvider)(nil)

// NewMockProvider creates a new MockProvider that answers "Hello World".
func NewMockProvider() *MockProvider {
	return &MockProvider{
		NameFunc: func() string { return "mock" },
		GenerateTextFunc: func(context.Context, providers.GenerateParams) (string, error) {
			return "Hello World", nil
		},
	}
}

// Name implements providers.Provider.
func (m *MockProvider) Name() string {
	if m.NameFunc != nil {
		return m.NameFunc()
	}
	return "mock"
}

// GenerateText implements providers.Provider.
func (m *MockProvider) GenerateText(ctx context.Context, params providers.GenerateParams) (string, error) {
	m.mu.Lock()
	m.GenerateTextCalls = append(m.GenerateTextCalls, params)
	m.mu.Unlock()

	if m.GenerateTextFunc != nil {
		return m.GenerateTextFunc(ctx, params)
	}
	return "", nil
}

// Calls returns the params of every GenerateText call so far.
func (m *MockProvider) Calls() []providers.GenerateParams {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]providers.GenerateParams(nil), m.GenerateTextCalls...)
}

// Package providers defines the provider interface and the Responses API
// request types shared by provider implementations.
package providers

import (
	"context"
)

// Message roles.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Content part types.
const (
	ContentTypeInputText = "input_text"
)

// DefaultSystemPrompt is sent when neither the params nor the config set one.
const DefaultSystemPrompt = "You are a helpful assistant."

// ContentPart is one typed part of an input message.
type ContentPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// GenerateParams describes a single text generation request.
type GenerateParams struct {
	// Model overrides the provider's configured model when set.
	Model string

	// SystemPrompt overrides the provider's system instruction when set.
	SystemPrompt string

	// UserPrompt is the user message. Required.
	UserPrompt string
}

// InputMessage is a role-tagged message in a Responses API request.
type InputMessage struct {
	Role    string        `json:"role"`
	Content []ContentPart `json:"content"`
}

// Provider generates text from a prompt by consuming a streamed response.
type Provider interface {
	// Name returns the provider's identifier.
	Name() string

	// GenerateText performs one streaming request and returns the
	// concatenated output text.
	GenerateText(ctx context.Context, params GenerateParams) (string, error)
}

// ResponsesRequest is the JSON payload posted to a Responses API endpoint.
type ResponsesRequest struct {
	Model  string         `json:"model"`
	Stream bool           `json:"stream"`
	Input  []InputMessage `json:"input"`
}

// TextMessage returns a message with a single input_text part.
func TextMessage(role, text string) InputMessage {
	return InputMessage{
		Role:    role,
		Content: []ContentPart{{Type: ContentTypeInputText, Text: text}},
	}
}

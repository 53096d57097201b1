// Package testutil provides testing utilities and fixtures for llmstream.
package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// TestAPIKey is the credential used by fixture servers and providers in tests.
const TestAPIKey = "test-api-key"

// DeltaLine returns an SSE data line carrying an output text delta.
func DeltaLine(delta string) string {
	payload, _ := json.Marshal(map[string]string{
		"type":  "response.output_text.delta",
		"delta": delta,
	})
	return "data: " + string(payload)
}

// EventLine returns an SSE data line for an event of the given type with
// no delta.
func EventLine(eventType string) string {
	payload, _ := json.Marshal(map[string]string{"type": eventType})
	return "data: " + string(payload)
}

// StreamBody joins lines into a newline-terminated response body.
func StreamBody(lines ...string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// HelloStream is a typical stream for the text "Hello World" with the
// lifecycle events, blank separators and terminator real endpoints send.
func HelloStream() string {
	return StreamBody(
		"event: response.created",
		EventLine("response.created"),
		"",
		"event: response.output_text.delta",
		DeltaLine("Hello"),
		"",
		"event: response.output_text.delta",
		DeltaLine(" World"),
		"",
		EventLine("response.completed"),
		"",
		"data: [DONE]",
	)
}

// CapturedRequest is one request seen by a fixture server.
type CapturedRequest struct {
	Header http.Header
	Body   []byte
	Method string
	Path   string
}

// Decode unmarshals the captured JSON body into v.
func (r CapturedRequest) Decode(t *testing.T, v any) {
	t.Helper()
	if err := json.Unmarshal(r.Body, v); err != nil {
		t.Fatalf("decoding captured request body: %v", err)
	}
}

// ResponsesServer is a fixture Responses endpoint backed by httptest.
type ResponsesServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []CapturedRequest
}

// NewResponsesServer starts a server that records each request and replies
// via handler. The server is closed when the test ends.
func NewResponsesServer(t *testing.T, handler http.HandlerFunc) *ResponsesServer {
	t.Helper()

	s := &ResponsesServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		s.mu.Lock()
		s.requests = append(s.requests, CapturedRequest{
			Header: r.Header.Clone(),
			Body:   body,
			Method: r.Method,
			Path:   r.URL.Path,
		})
		s.mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(s.Close)

	return s
}

// URL returns the absolute endpoint URL of the server.
func (s *ResponsesServer) URL() string {
	return s.Server.URL + "/openai/v1/responses"
}

// Requests returns the requests received so far.
func (s *ResponsesServer) Requests() []CapturedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]CapturedRequest(nil), s.requests...)
}

// StreamHandler replies 200 with body as an event stream.
func StreamHandler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, body)
	}
}

// ErrorHandler replies with status and an OpenAI-style JSON error body.
func ErrorHandler(status int, code, message string) http.HandlerFunc {
	return ErrorHandlerWithHeaders(status, code, message, nil)
}

// ErrorHandlerWithHeaders is ErrorHandler plus extra response headers, such
// as Retry-After.
func ErrorHandlerWithHeaders(status int, code, message string, headers map[string]string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		for name, value := range headers {
			w.Header().Set(name, value)
		}
		payload, _ := json.Marshal(map[string]any{
			"error": map[string]any{
				"code":    code,
				"message": message,
				"type":    "invalid_request_error",
			},
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write(payload)
	}
}

// TruncatedHandler writes body, declares a longer Content-Length and then
// drops the connection, so the client sees an unexpected EOF mid-stream.
func TruncatedHandler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Content-Length", "1048576")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, body)
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		hj, ok := w.(http.Hijacker)
		if !ok {
			return
		}
		conn, _, err := hj.Hijack()
		if err != nil {
			return
		}
		_ = conn.Close()
	}
}

// SlowStreamHandler replies 200 and writes each line with delay before it,
// flushing after every line.
func SlowStreamHandler(delay time.Duration, lines ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		f, _ := w.(http.Flusher)
		if f != nil {
			f.Flush()
		}
		for _, line := range lines {
			select {
			case <-r.Context().Done():
				return
			case <-time.After(delay):
			}
			_, _ = io.WriteString(w, line+"\n")
			if f != nil {
				f.Flush()
			}
		}
	}
}

// DelayedHandler waits for delay, or for the client to go away, before
// handing the request to next.
func DelayedHandler(delay time.Duration, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
			return
		case <-time.After(delay):
		}
		next(w, r)
	}
}

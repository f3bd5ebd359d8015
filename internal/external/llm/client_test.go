package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/wonny/council/backend/pkg/logger"
)

func testClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := New(Config{
		APIKey:            "test-key",
		BaseURL:           baseURL,
		RequestsPerSecond: 1000,
		Burst:             100,
	}, logger.NewNop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func completionResponse(content string) string {
	body := map[string]interface{}{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1,
		"model":   "gpt-4.1-mini",
		"choices": []map[string]interface{}{
			{
				"index":         0,
				"finish_reason": "stop",
				"message": map[string]interface{}{
					"role":    "assistant",
					"content": content,
				},
			},
		},
	}
	b, _ := json.Marshal(body)
	return string(b)
}

func TestNewMissingAPIKey(t *testing.T) {
	_, err := New(Config{}, logger.NewNop())
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("New() error = %v, want ErrMissingAPIKey", err)
	}

	_, err = New(Config{APIKey: "   "}, logger.NewNop())
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("New() with blank key error = %v, want ErrMissingAPIKey", err)
	}
}

func TestCompleteSuccess(t *testing.T) {
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		fmt.Fprint(w, completionResponse("  council verdict  \n"))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	got, err := c.Complete(context.Background(), "system text", "user text", ChatConfig{
		Model:       "gpt-4.1-mini",
		Temperature: 0.3,
		MaxTokens:   1400,
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "council verdict" {
		t.Errorf("Complete() = %q, want trimmed content", got)
	}

	if gotBody["model"] != "gpt-4.1-mini" {
		t.Errorf("request model = %v", gotBody["model"])
	}
	if _, ok := gotBody["max_completion_tokens"]; !ok {
		t.Error("request missing max_completion_tokens")
	}
	msgs, ok := gotBody["messages"].([]interface{})
	if !ok || len(msgs) != 2 {
		t.Fatalf("request messages = %v", gotBody["messages"])
	}
	first := msgs[0].(map[string]interface{})
	if first["role"] != "system" || first["content"] != "system text" {
		t.Errorf("first message = %v", first)
	}
}

func TestCompleteTokenParamFallback(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if _, ok := body["max_completion_tokens"]; ok {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error":{"message":"Unsupported parameter: 'max_completion_tokens' is not supported with this model. Use 'max_tokens' instead.","type":"invalid_request_error"}}`)
			return
		}
		if _, ok := body["max_tokens"]; !ok {
			t.Error("fallback request missing max_tokens")
		}
		fmt.Fprint(w, completionResponse("ok"))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	got, err := c.Complete(context.Background(), "s", "u", ChatConfig{Model: "gpt-4.1-mini", MaxTokens: 800})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "ok" {
		t.Errorf("Complete() = %q, want %q", got, "ok")
	}
	if n := requests.Load(); n != 2 {
		t.Errorf("server saw %d requests, want 2", n)
	}
}

func TestCompleteRetriesOnServerError(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"error":{"message":"internal error","type":"server_error"}}`)
			return
		}
		fmt.Fprint(w, completionResponse("recovered"))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	got, err := c.Complete(context.Background(), "s", "u", ChatConfig{Model: "gpt-4.1-mini", MaxTokens: 100})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "recovered" {
		t.Errorf("Complete() = %q, want %q", got, "recovered")
	}
	if n := requests.Load(); n != 2 {
		t.Errorf("server saw %d requests, want 2", n)
	}
}

func TestCompleteRetriesOnEmptyContent(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) == 1 {
			fmt.Fprint(w, completionResponse("   "))
			return
		}
		fmt.Fprint(w, completionResponse("filled"))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	got, err := c.Complete(context.Background(), "s", "u", ChatConfig{Model: "gpt-4.1-mini", MaxTokens: 100})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "filled" {
		t.Errorf("Complete() = %q, want %q", got, "filled")
	}
	if n := requests.Load(); n != 2 {
		t.Errorf("server saw %d requests, want 2", n)
	}
}

func TestCompleteExhaustsRetries(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":{"message":"internal error","type":"server_error"}}`)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	_, err := c.Complete(context.Background(), "s", "u", ChatConfig{Model: "gpt-4.1-mini", MaxTokens: 100})
	if err == nil {
		t.Fatal("Complete() expected error after exhausted retries")
	}
	if !strings.Contains(err.Error(), "llm call failed after 3 attempts") {
		t.Errorf("Complete() error = %v, want attempt count in message", err)
	}
	if n := requests.Load(); n != 3 {
		t.Errorf("server saw %d requests, want 3", n)
	}
}

func TestCompleteContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":{"message":"internal error","type":"server_error"}}`)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := testClient(t, srv.URL)
	start := time.Now()
	_, err := c.Complete(ctx, "s", "u", ChatConfig{Model: "gpt-4.1-mini", MaxTokens: 100})
	if err == nil {
		t.Fatal("Complete() expected error with canceled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Complete() error = %v, want context.Canceled in chain", err)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("Complete() took %v with canceled context, want fast return", elapsed)
	}
}

func TestIsTokenParamError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"max_tokens message", fmt.Errorf("Unsupported parameter: 'max_tokens'"), true},
		{"max_completion_tokens message", fmt.Errorf("use 'max_completion_tokens' instead"), true},
		{"uppercase", fmt.Errorf("MAX_TOKENS not supported"), true},
		{"rate limit", fmt.Errorf("rate limit exceeded"), false},
		{"auth", fmt.Errorf("invalid api key"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isTokenParamError(tt.err); got != tt.want {
				t.Errorf("isTokenParamError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Expected bearer token header, got %q", got)
		}

		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("Expected JSON request body, got %v", err)
		}
		if body.Model != "gpt-4o" {
			t.Errorf("Expected model gpt-4o, got %s", body.Model)
		}
		if len(body.Messages) != 2 || body.Messages[0].Role != "system" || body.Messages[1].Content != "user prompt" {
			t.Errorf("Unexpected messages: %+v", body.Messages)
		}

		w.Write([]byte(`{"choices":[{"message":{"content":"  the answer  "}}]}`))
	}))
	defer srv.Close()

	t.Setenv("OPENAI_API_ENDPOINT", srv.URL)
	t.Setenv("OPENAI_API_KEY", "test-key")

	out, err := NewCompleter("gpt-4o").Complete(context.Background(), "system prompt", "user prompt")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if out != "the answer" {
		t.Errorf("Expected trimmed content, got %q", out)
	}
}

func TestCompleteMissingKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	if _, err := NewCompleter("gpt-4o").Complete(context.Background(), "s", "u"); err == nil {
		t.Fatal("Expected error when the API key is missing")
	}
}

func TestCompleteErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	t.Setenv("OPENAI_API_ENDPOINT", srv.URL)
	t.Setenv("OPENAI_API_KEY", "test-key")

	if _, err := NewCompleter("gpt-4o").Complete(context.Background(), "s", "u"); err == nil {
		t.Fatal("Expected error on http 429")
	}
}

func TestCompleteNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	t.Setenv("OPENAI_API_ENDPOINT", srv.URL)
	t.Setenv("OPENAI_API_KEY", "test-key")

	if _, err := NewCompleter("gpt-4o").Complete(context.Background(), "s", "u"); err == nil {
		t.Fatal("Expected error on empty choices")
	}
}

func TestCompleteBoundedTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server detects the client disconnect,
		// then stall until the client gives up.
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer srv.Close()

	t.Setenv("OPENAI_API_ENDPOINT", srv.URL)
	t.Setenv("OPENAI_API_KEY", "test-key")

	c := NewCompleter("gpt-4o")
	if c.httpClient.Timeout == 0 {
		t.Fatal("Expected a non-zero client timeout")
	}
	c.httpClient = &http.Client{Timeout: 100 * time.Millisecond}

	start := time.Now()
	_, err := c.Complete(context.Background(), "s", "u")
	if err == nil {
		t.Fatal("Expected timeout error from a stalled backend")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Expected the call to fail within the client timeout, took %v", elapsed)
	}
}

func TestDeepSeekEndpointOverride(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	t.Setenv("DEEPSEEK_API_ENDPOINT", srv.URL)
	t.Setenv("DEEPSEEK_API_KEY", "test-key")

	out, err := NewDeepSeekCompleter("deepseek-chat").Complete(context.Background(), "s", "u")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if out != "ok" {
		t.Errorf("Expected content from overridden endpoint, got %q", out)
	}
}

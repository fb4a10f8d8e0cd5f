package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"llm-portfolio-trader/internal/trace"
)

// requestTimeout bounds every completion request. Reasoning models can be
// slow, but a hung call must never outlive the cycle that issued it.
const requestTimeout = 2 * time.Minute

// Completer calls an OpenAI-compatible chat completions endpoint. DeepSeek
// models reuse this client with their own base URL and key.
type Completer struct {
	model      string
	baseURL    string
	apiKeyEnv  string
	httpClient *http.Client
}

func NewCompleter(model string) *Completer {
	baseURL := "https://api.openai.com"
	if ep := os.Getenv("OPENAI_API_ENDPOINT"); ep != "" {
		baseURL = ep
	}
	return &Completer{
		model:      model,
		baseURL:    baseURL,
		apiKeyEnv:  "OPENAI_API_KEY",
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

func NewDeepSeekCompleter(model string) *Completer {
	baseURL := "https://api.deepseek.com"
	if ep := os.Getenv("DEEPSEEK_API_ENDPOINT"); ep != "" {
		baseURL = ep
	}
	return &Completer{
		model:      model,
		baseURL:    baseURL,
		apiKeyEnv:  "DEEPSEEK_API_KEY",
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

func (c *Completer) Complete(ctx context.Context, system, user string) (string, error) {
	ctx, span := trace.StartSpan(ctx, "openai-api-call")
	defer span.End()

	apiKey := os.Getenv(c.apiKeyEnv)
	if apiKey == "" {
		return "", errors.New(c.apiKeyEnv + " missing")
	}

	body := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
	}
	bb, _ := json.Marshal(body)

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/chat/completions", bytes.NewReader(bb))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("openai http %d", resp.StatusCode)
	}

	var r struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return "", err
	}

	if len(r.Choices) == 0 {
		return "", errors.New("no choices")
	}
	return strings.TrimSpace(r.Choices[0].Message.Content), nil
}

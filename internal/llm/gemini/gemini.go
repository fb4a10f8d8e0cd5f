package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"llm-portfolio-trader/internal/trace"
)

// requestTimeout bounds every completion request so a hung backend cannot
// wedge the cycle that issued it.
const requestTimeout = 2 * time.Minute

// Completer calls the Google Generative Language API.
type Completer struct {
	model      string
	endpoint   string
	httpClient *http.Client
}

func NewCompleter(model string) *Completer {
	endpoint := "https://generativelanguage.googleapis.com/v1beta/models"
	if ep := os.Getenv("GEMINI_API_ENDPOINT"); ep != "" {
		endpoint = ep
	}
	return &Completer{
		model:      model,
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

func (c *Completer) Complete(ctx context.Context, system, user string) (string, error) {
	ctx, span := trace.StartSpan(ctx, "gemini-api-call")
	defer span.End()

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return "", errors.New("GEMINI_API_KEY missing")
	}

	body := map[string]any{
		"system_instruction": map[string]any{
			"parts": []map[string]string{{"text": system}},
		},
		"contents": []map[string]any{
			{"role": "user", "parts": []map[string]string{{"text": user}}},
		},
		"generationConfig": map[string]any{"temperature": 0},
	}
	bb, _ := json.Marshal(body)

	u := fmt.Sprintf("%s/%s:generateContent?key=%s", c.endpoint, c.model, url.QueryEscape(apiKey))
	req, err := http.NewRequestWithContext(ctx, "POST", u, bytes.NewReader(bb))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("gemini http %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var r struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return "", err
	}

	if len(r.Candidates) == 0 || len(r.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("no candidates")
	}

	var sb strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return strings.TrimSpace(sb.String()), nil
}

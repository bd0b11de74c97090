// Package ai is the optional Gemini suggestion layer for semester-program
// scheduling. The deterministic matcher remains the source of truth; AI
// output is only accepted after it passes invariant validation.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

var (
	ErrNoAPIKeys      = errors.New("no API keys configured")
	ErrQuotaExceeded  = errors.New("quota exceeded")
	ErrAllKeysDrained = errors.New("all API keys hit their quota")
)

// Provider generates text for a prompt.
type Provider interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// GeminiClient calls the Gemini generateContent API with a fixed list of
// API keys. On a quota error the next key is tried immediately; any other
// error fails the call.
type GeminiClient struct {
	keys    []string
	model   string
	baseURL string
	client  *http.Client
}

// GeminiOption configures a GeminiClient.
type GeminiOption func(*GeminiClient)

// WithBaseURL sets the base URL (for testing).
func WithBaseURL(url string) GeminiOption {
	return func(c *GeminiClient) {
		if url != "" {
			c.baseURL = url
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) GeminiOption {
	return func(c *GeminiClient) {
		c.client = client
	}
}

func NewGeminiClient(apiKeys []string, model string, opts ...GeminiOption) *GeminiClient {
	c := &GeminiClient{
		keys:    apiKeys,
		model:   model,
		baseURL: defaultGeminiBaseURL,
		client:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error struct {
		Code   int    `json:"code"`
		Status string `json:"status"`
	} `json:"error"`
}

func (c *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	if len(c.keys) == 0 {
		return "", ErrNoAPIKeys
	}

	for i, key := range c.keys {
		text, err := c.generate(ctx, key, prompt)
		if err == nil {
			return text, nil
		}
		if !errors.Is(err, ErrQuotaExceeded) {
			return "", err
		}
		log.Printf("Gemini key %d/%d hit quota, rotating", i+1, len(c.keys))
	}
	return "", ErrAllKeysDrained
}

func (c *GeminiClient) generate(ctx context.Context, apiKey, prompt string) (string, error) {
	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: prompt}},
		}},
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var parsed geminiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("decoding Gemini response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || parsed.Error.Status == "RESOURCE_EXHAUSTED" {
		return "", ErrQuotaExceeded
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Gemini API status %d: %s", resp.StatusCode, parsed.Error.Status)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("Gemini returned no candidates")
	}

	var sb strings.Builder
	for _, p := range parsed.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}

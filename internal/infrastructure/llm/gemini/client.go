// Package gemini talks to the Google Generative Language REST API.
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
	"strings"
	"time"

	"github.com/kirillkom/cto-coach/internal/core/domain"
	"github.com/kirillkom/cto-coach/internal/infrastructure/llm"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "gemini-1.5-flash"
	providerName   = "gemini"
)

type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

func New(baseURL, apiKey, model string, timeout time.Duration) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Generate sends prompt as a single user turn and returns the first candidate's text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return "", domain.WrapError(domain.ErrUpstreamAuth, "gemini generate", errors.New("API key is not configured"))
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal gemini request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, url.PathEscape(c.model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini generate request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", statusError(resp)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}
	return candidateText(out)
}

func candidateText(out generateResponse) (string, error) {
	if reason := out.PromptFeedback.BlockReason; reason != "" {
		return "", domain.WrapError(domain.ErrUpstreamContentFiltered, "gemini generate", fmt.Errorf("prompt blocked: %s", reason))
	}
	if len(out.Candidates) == 0 {
		return "", domain.WrapError(domain.ErrUpstreamFailure, "gemini generate", errors.New("no candidates in response"))
	}

	candidate := out.Candidates[0]
	if strings.EqualFold(candidate.FinishReason, "SAFETY") {
		return "", domain.WrapError(domain.ErrUpstreamContentFiltered, "gemini generate", errors.New("candidate blocked by safety settings"))
	}

	var b strings.Builder
	for _, p := range candidate.Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String(), nil
}

func statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	message := strings.TrimSpace(string(raw))
	var parsed errorResponse
	if err := json.Unmarshal(raw, &parsed); err == nil && parsed.Error.Message != "" {
		message = parsed.Error.Message
	}
	return &llm.HTTPStatusError{
		Provider:   providerName,
		Operation:  "generate",
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Message:    message,
	}
}

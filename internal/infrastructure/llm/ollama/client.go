package ollama

import (
	"context"
	"net/http"
	"strings"
	"time"
)

type Client struct {
	baseURL    string
	genModel   string
	httpClient *http.Client
}

func New(baseURL, genModel string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		genModel:   genModel,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Generate runs a non-streaming completion against /api/generate.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	request := map[string]any{
		"model":  c.genModel,
		"prompt": prompt,
		"stream": false,
	}

	var response struct {
		Response string `json:"response"`
	}
	if err := c.postJSON(ctx, "/api/generate", request, &response, "generate"); err != nil {
		return "", err
	}
	return response.Response, nil
}

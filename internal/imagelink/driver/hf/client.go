package hf

import (
	"context"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://router.huggingface.co/hf-inference"

// Client implements the Hugging Face Inference driver via direct HTTP.
//
// The same driver serves both dispatch modes: a provider-pinned instance
// points BaseURL at the hf-inference route, while the auto-routing instance
// points at the serverless endpoint that selects a provider for the model.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// NewClient returns a client with defaults applied.
func NewClient(baseURL, apiKey string) *Client {
	url := strings.TrimSpace(baseURL)
	if url == "" {
		url = defaultBaseURL
	}

	return &Client{
		BaseURL: url,
		APIKey:  strings.TrimSpace(apiKey),
	}
}

// Name returns the driver identifier.
func (c *Client) Name() string {
	return "hf"
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, nil
	}
	return context.WithTimeout(ctx, timeout)
}

package hf

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/imagesmith/imagesmith/internal/imagelink/driver"
)

type textToImageRequest struct {
	Inputs string `json:"inputs"`
}

// GenerateImage posts a text-to-image request. The inference endpoint returns
// the image payload directly as binary; JSON bodies only appear on errors.
func (c *Client) GenerateImage(ctx context.Context, req *driver.ImageRequest) (*driver.ImageResponse, error) {
	if c == nil {
		return nil, fmt.Errorf("hf client not configured")
	}
	if strings.TrimSpace(c.APIKey) == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if req == nil {
		return nil, fmt.Errorf("request is required")
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, fmt.Errorf("prompt is required")
	}

	model := strings.TrimSpace(req.Model)
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}

	ctx, cancel := withTimeout(ctx, c.Timeout)
	if cancel != nil {
		defer cancel()
	}

	body, err := json.Marshal(textToImageRequest{Inputs: req.Prompt})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	endpoint := strings.TrimRight(c.BaseURL, "/") + "/models/" + url.PathEscape(model)
	start := time.Now()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "image/png, image/jpeg, image/webp")

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		driver.Trace(driver.TraceEntry{
			Driver:       c.Name(),
			Endpoint:     endpoint,
			Model:        model,
			PromptLength: len(req.Prompt),
			Error:        err.Error(),
			DurationMs:   time.Since(start).Milliseconds(),
		})
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	driver.Trace(driver.TraceEntry{
		Driver:        c.Name(),
		Endpoint:      endpoint,
		Model:         model,
		PromptLength:  len(req.Prompt),
		StatusCode:    resp.StatusCode,
		ResponseBytes: len(respBody),
		DurationMs:    time.Since(start).Milliseconds(),
	})

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &driver.ProviderError{Provider: c.Name(), StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody)), RawResponse: respBody}
	}

	contentType := strings.TrimSpace(resp.Header.Get("Content-Type"))
	if strings.HasPrefix(contentType, "application/json") {
		// A 2xx JSON body is a provider quirk (e.g. a queued-model notice),
		// never image data.
		return nil, &driver.ProviderError{Provider: c.Name(), StatusCode: resp.StatusCode, Message: "expected binary image payload, got JSON: " + strings.TrimSpace(string(respBody)), RawResponse: respBody}
	}
	if len(respBody) == 0 {
		return nil, fmt.Errorf("empty image payload")
	}
	if contentType == "" {
		contentType = "image/png"
	}

	return &driver.ImageResponse{
		Bytes:       respBody,
		ContentType: contentType,
	}, nil
}

package driver

import "context"

// Driver defines the interface for text-to-image providers.
type Driver interface {
	// GenerateImage sends a generation request and returns the materialized
	// image bytes.
	GenerateImage(ctx context.Context, req *ImageRequest) (*ImageResponse, error)
	// Name returns the driver identifier (e.g., "hf").
	Name() string
}

// ImageRequest is a provider-agnostic generation request.
type ImageRequest struct {
	Model  string
	Prompt string
}

// ImageResponse is a provider-agnostic generation response. Bytes always holds
// the complete image payload; drivers never hand back partially read streams.
type ImageResponse struct {
	Bytes       []byte
	ContentType string
}

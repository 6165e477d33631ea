// Package imagelink dispatches text-to-image generation requests to external
// providers with a single primary/fallback retry pipeline.
package imagelink

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fulmenhq/gofulmen/logging"
	"go.uber.org/zap"

	"github.com/imagesmith/imagesmith/internal/imagelink/driver"
	"github.com/imagesmith/imagesmith/internal/metrics"
)

// Result is a completed generation with the image fully materialized.
type Result struct {
	ImageBytes   []byte
	ContentType  string
	ModelUsed    string
	Provider     string
	Fallback     bool
	PromptLength int
	Timestamp    time.Time
}

// Service runs the two-stage generation pipeline: one attempt against the
// primary provider with the caller's model, then exactly one fallback attempt
// against the fallback provider with the configured fallback model. There is
// no third attempt.
type Service struct {
	Registry *Registry
	Config   Config
	Logger   *logging.Logger
	Clock    func() time.Time
}

// NewService builds a Service from config.
func NewService(cfg Config, logger *logging.Logger) *Service {
	return &Service{
		Registry: NewRegistry(cfg),
		Config:   cfg,
		Logger:   logger,
	}
}

// CredentialConfigured reports whether the primary provider has a usable key.
func (s *Service) CredentialConfigured() bool {
	if s == nil || s.Registry == nil {
		return false
	}
	return s.Registry.CredentialConfigured(s.Config.DefaultProvider)
}

// Generate produces an image for prompt. An empty model falls back to the
// configured fallback model for the primary attempt as well.
func (s *Service) Generate(ctx context.Context, model, prompt string) (*Result, error) {
	if s == nil || s.Registry == nil {
		return nil, fmt.Errorf("imagelink service not configured")
	}

	primaryModel := strings.TrimSpace(model)
	if primaryModel == "" {
		primaryModel = s.Config.FallbackModel
	}

	result, primaryErr := s.attempt(ctx, s.Config.DefaultProvider, primaryModel, prompt)
	if primaryErr == nil {
		return result, nil
	}

	// The primary failure stays server-side; callers only hear about it if
	// the fallback fails too.
	if s.Logger != nil {
		s.Logger.Warn("Primary provider failed, trying fallback",
			zap.String("provider", s.Config.DefaultProvider),
			zap.String("model", primaryModel),
			zap.String("cause", primaryErr.Error()))
	}
	metrics.RecordFallback(s.Config.FallbackProvider)

	result, fallbackErr := s.attempt(ctx, s.Config.FallbackProvider, s.Config.FallbackModel, prompt)
	if fallbackErr == nil {
		result.Fallback = true
		return result, nil
	}

	if s.Logger != nil {
		s.Logger.Error("Fallback provider failed",
			zap.String("provider", s.Config.FallbackProvider),
			zap.String("model", s.Config.FallbackModel),
			zap.String("cause", fallbackErr.Error()))
	}

	return nil, fmt.Errorf("image generation failed: %w", fallbackErr)
}

func (s *Service) attempt(ctx context.Context, providerID, model, prompt string) (*Result, error) {
	resolved, err := s.Registry.Resolve(providerID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := resolved.Driver.GenerateImage(ctx, &driver.ImageRequest{
		Model:  model,
		Prompt: prompt,
	})
	metrics.RecordGeneration(resolved.ProviderID, err == nil, time.Since(start))
	if err != nil {
		return nil, err
	}

	return &Result{
		ImageBytes:   resp.Bytes,
		ContentType:  resp.ContentType,
		ModelUsed:    model,
		Provider:     resolved.ProviderID,
		PromptLength: len([]rune(prompt)),
		Timestamp:    s.now(),
	}, nil
}

func (s *Service) now() time.Time {
	if s != nil && s.Clock != nil {
		return s.Clock()
	}
	return time.Now().UTC()
}

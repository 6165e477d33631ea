package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/fulmenhq/gofulmen/logging"
	"go.uber.org/zap"

	"github.com/imagesmith/imagesmith/internal/imagelink"
	"github.com/imagesmith/imagesmith/internal/imagelink/encode"
	"github.com/imagesmith/imagesmith/internal/metrics"
	"github.com/imagesmith/imagesmith/internal/quota"
)

// ImageGenerator is the slice of the imagelink service the gateway needs.
type ImageGenerator interface {
	Generate(ctx context.Context, model, prompt string) (*imagelink.Result, error)
	CredentialConfigured() bool
}

const maxPromptLength = 500

// QueryGateway serves POST /query. Gates run in a fixed order: method,
// OPTIONS short-circuit, credential presence, validation, quota, generation.
// Config and validation failures therefore never consume quota.
//
// The endpoint keeps a compact flat JSON contract (the browser client depends
// on it) instead of the envelope shape used by the rest of the server.
type QueryGateway struct {
	Limiter   *quota.Limiter
	Generator ImageGenerator
	Logger    *logging.Logger
	Clock     func() time.Time
}

// NewQueryGateway wires the gateway from its collaborators.
func NewQueryGateway(limiter *quota.Limiter, generator ImageGenerator, logger *logging.Logger) *QueryGateway {
	return &QueryGateway{
		Limiter:   limiter,
		Generator: generator,
		Logger:    logger,
	}
}

type queryMeta struct {
	Model        string `json:"model"`
	Timestamp    string `json:"timestamp"`
	PromptLength int    `json:"promptLength"`
}

type querySuccess struct {
	ImageData string    `json:"imageData"`
	Meta      queryMeta `json:"meta"`
}

type queryError struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type quotaExceeded struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retryAfter"`
	ResetTime  string `json:"resetTime"`
}

type generationFailed struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

func (g *QueryGateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Pre-flight is normally short-circuited by the CORS middleware; this
	// keeps the contract when the handler is mounted bare.
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		writeQueryJSON(w, http.StatusMethodNotAllowed, queryError{Error: "Method not allowed"})
		return
	}

	if g.Generator == nil || !g.Generator.CredentialConfigured() {
		g.logError("Provider credential missing, refusing generation request")
		writeQueryJSON(w, http.StatusInternalServerError, queryError{
			Error:   "Server configuration error",
			Message: "Image generation is currently unavailable.",
		})
		return
	}

	model, prompt, verr := decodeQueryRequest(r)
	if verr != nil {
		writeQueryJSON(w, http.StatusBadRequest, *verr)
		return
	}

	key := clientKey(r)
	if g.Limiter != nil {
		decision := g.Limiter.Allow(key)
		metrics.RecordQuotaDecision(decision.Allowed)
		if !decision.Allowed {
			g.logWarn("Rate limit exceeded",
				zap.String("client", key),
				zap.Int("retry_after_s", decision.RetryAfterSeconds()))
			writeQueryJSON(w, http.StatusTooManyRequests, quotaExceeded{
				Error: "Too many requests",
				Message: fmt.Sprintf("Rate limit exceeded. You can make %d requests per %s.",
					decision.Limit, formatWindow(decision.Window)),
				RetryAfter: decision.RetryAfterSeconds(),
				ResetTime:  decision.ResetAt.UTC().Format(time.RFC3339),
			})
			return
		}
	}

	result, err := g.Generator.Generate(r.Context(), model, prompt)
	if err != nil {
		g.logError("Image generation failed",
			zap.String("client", key),
			zap.String("model", model),
			zap.Error(err))
		writeQueryJSON(w, http.StatusInternalServerError, generationFailed{
			Error:     "Image generation failed",
			Message:   "Failed to generate image. Please try again.",
			Timestamp: g.now().Format(time.RFC3339),
		})
		return
	}

	metrics.RecordImagePayload(len(result.ImageBytes))
	writeQueryJSON(w, http.StatusOK, querySuccess{
		ImageData: encode.EncodeBase64String(result.ImageBytes),
		Meta: queryMeta{
			Model:        result.ModelUsed,
			Timestamp:    result.Timestamp.UTC().Format(time.RFC3339),
			PromptLength: result.PromptLength,
		},
	})
}

// decodeQueryRequest parses the untyped body into a model/prompt pair.
// A body that does not decode, a missing or non-string prompt, and an empty
// prompt all collapse to the same client error; an over-length prompt gets
// its own.
func decodeQueryRequest(r *http.Request) (model, prompt string, verr *queryError) {
	invalidPrompt := &queryError{
		Error:   "Invalid prompt",
		Message: "Prompt must be a non-empty string",
	}

	var raw map[string]any
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			return "", "", invalidPrompt
		}
	}

	promptValue, ok := raw["prompt"].(string)
	if !ok || promptValue == "" {
		return "", "", invalidPrompt
	}
	if len([]rune(promptValue)) > maxPromptLength {
		return "", "", &queryError{
			Error:   "Prompt too long",
			Message: fmt.Sprintf("Prompt must be %d characters or less", maxPromptLength),
		}
	}

	if m, ok := raw["model"].(string); ok {
		model = strings.TrimSpace(m)
	}
	return model, promptValue, nil
}

// clientKey buckets quota usage by a best-effort network identity: first
// forwarded-for entry, else the peer address, else "unknown".
func clientKey(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first := strings.TrimSpace(strings.Split(xff, ",")[0]); first != "" {
			return first
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if addr := strings.TrimSpace(r.RemoteAddr); addr != "" {
		return addr
	}
	return "unknown"
}

func formatWindow(d time.Duration) string {
	plural := func(n int, unit string) string {
		if n == 1 {
			return fmt.Sprintf("1 %s", unit)
		}
		return fmt.Sprintf("%d %ss", n, unit)
	}
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		return plural(int(d/time.Hour), "hour")
	case d >= time.Minute && d%time.Minute == 0:
		return plural(int(d/time.Minute), "minute")
	default:
		return plural(int(d/time.Second), "second")
	}
}

func writeQueryJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (g *QueryGateway) now() time.Time {
	if g != nil && g.Clock != nil {
		return g.Clock()
	}
	return time.Now().UTC()
}

func (g *QueryGateway) logWarn(msg string, fields ...zap.Field) {
	if g != nil && g.Logger != nil {
		g.Logger.Warn(msg, fields...)
	}
}

func (g *QueryGateway) logError(msg string, fields ...zap.Field) {
	if g != nil && g.Logger != nil {
		g.Logger.Error(msg, fields...)
	}
}

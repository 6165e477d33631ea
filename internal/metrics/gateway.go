package metrics

import (
	"time"

	"github.com/imagesmith/imagesmith/internal/observability"
)

// Gateway metric names following Prometheus conventions.
const (
	GenerationsTotal      = "gateway_generations_total"
	GenerationDuration    = "gateway_generation_duration_ms"
	FallbacksTotal        = "gateway_fallbacks_total"
	QuotaDecisionsTotal   = "gateway_quota_decisions_total"
	PromptLengthChars     = "gateway_prompt_length_chars"
	ImagePayloadBytesName = "gateway_image_payload_bytes"
)

// RecordGeneration records one provider generation attempt.
func RecordGeneration(provider string, success bool, duration time.Duration) {
	if observability.TelemetrySystem == nil {
		return
	}

	status := "success"
	if !success {
		status = "failure"
	}

	labels := map[string]string{
		"provider": provider,
		"status":   status,
	}

	_ = observability.TelemetrySystem.Counter(GenerationsTotal, 1, labels)
	_ = observability.TelemetrySystem.Histogram(GenerationDuration, duration, labels)
}

// RecordFallback records that the primary attempt failed and the fallback ran.
func RecordFallback(provider string) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			FallbacksTotal,
			1,
			map[string]string{"provider": provider},
		)
	}
}

// RecordQuotaDecision records an admit/reject decision from the rate limiter.
func RecordQuotaDecision(allowed bool) {
	if observability.TelemetrySystem == nil {
		return
	}

	decision := "allowed"
	if !allowed {
		decision = "rejected"
	}

	_ = observability.TelemetrySystem.Counter(
		QuotaDecisionsTotal,
		1,
		map[string]string{"decision": decision},
	)
}

// RecordImagePayload records the size of a generated image returned to a caller.
func RecordImagePayload(bytes int) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Gauge(
			ImagePayloadBytesName,
			float64(bytes),
			nil,
		)
	}
}

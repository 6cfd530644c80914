// Package metrics emits memeforge metrics through
// observability.TelemetrySystem. Every recorder is a no-op until
// observability.InitMetrics runs.
package metrics

import (
	"time"

	"github.com/memeforge/memeforge/internal/meme"
	"github.com/memeforge/memeforge/internal/observability"
)

// Metric names follow Prometheus conventions.
const (
	RenderTotal         = "meme_render_total"
	RenderDuration      = "meme_render_duration_ms"
	PreviewAttempts     = "meme_preview_attempts_total"
	PreviewCacheTotal   = "meme_preview_cache_total"
	RegisteredMemes     = "meme_registry_templates"
	HealthCheckTotal    = "app_health_check_total"
	HealthCheckDuration = "app_health_check_duration_ms"
	ServerStartTime     = "app_server_start_time_seconds"
	ServerUptime        = "app_server_uptime_seconds"
)

// Render status labels.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// RenderStatus labels a render outcome: "success" or the error kind.
func RenderStatus(err error) string {
	if err == nil {
		return StatusSuccess
	}
	if kind := meme.KindOf(err); kind != "" {
		return string(kind)
	}
	return StatusFailure
}

// RecordRender counts one template invocation and its duration.
func RecordRender(key string, err error, duration time.Duration) {
	sys := observability.TelemetrySystem
	if sys == nil {
		return
	}
	_ = sys.Counter(RenderTotal, 1, map[string]string{
		"template": key,
		"status":   RenderStatus(err),
	})
	_ = sys.Histogram(RenderDuration, duration, map[string]string{
		"template": key,
	})
}

// RecordPreviewAttempts counts the render attempts one preview needed.
func RecordPreviewAttempts(key string, attempts int) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(PreviewAttempts, float64(attempts), map[string]string{
			"template": key,
		})
	}
}

// RecordPreviewCache counts a preview cache lookup as a hit or a miss.
func RecordPreviewCache(key string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(PreviewCacheTotal, 1, map[string]string{
			"template": key,
			"result":   result,
		})
	}
}

// SetRegisteredMemes reports the registry size.
func SetRegisteredMemes(count int) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Gauge(RegisteredMemes, float64(count), nil)
	}
}

// RecordHealthCheck records a health check execution
func RecordHealthCheck(checkName string, healthy bool, duration time.Duration) {
	status := "healthy"
	if !healthy {
		status = "unhealthy"
	}

	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			HealthCheckTotal,
			1,
			map[string]string{
				"check":  checkName,
				"status": status,
			},
		)
		_ = observability.TelemetrySystem.Histogram(
			HealthCheckDuration,
			duration,
			map[string]string{
				"check": checkName,
			},
		)
	}
}

// SetServerStartTime records the server start time (Unix timestamp)
func SetServerStartTime(timestamp int64) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Gauge(ServerStartTime, float64(timestamp), nil)
	}
}

// SetServerUptime records the server uptime in seconds
func SetServerUptime(seconds int64) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Gauge(ServerUptime, float64(seconds), nil)
	}
}

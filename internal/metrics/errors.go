package metrics

import (
	"strconv"

	"github.com/memeforge/memeforge/internal/observability"
)

// Error metric names.
const (
	ErrorsTotalName      = "errors_total"
	ErrorsByEndpointName = "errors_by_endpoint"
	PanicsTotalName      = "panics_total"
)

// HTTPError describes one error response for the error counters.
type HTTPError struct {
	Endpoint string
	Code     string
	Status   int
	// MemeKind is the meme error kind, empty for non-template failures.
	MemeKind string
}

// RecordHTTPError counts an error response by code and, when known, by
// route pattern. Template failures additionally carry their kind.
func RecordHTTPError(e HTTPError) {
	sys := observability.TelemetrySystem
	if sys == nil {
		return
	}
	labels := map[string]string{
		"error_code":  e.Code,
		"http_status": strconv.Itoa(e.Status),
	}
	if e.MemeKind != "" {
		labels["meme_error"] = e.MemeKind
	}
	_ = sys.Counter(ErrorsTotalName, 1, labels)

	if e.Endpoint != "" {
		_ = sys.Counter(ErrorsByEndpointName, 1, map[string]string{
			"endpoint":   e.Endpoint,
			"error_code": e.Code,
		})
	}
}

// RecordPanic counts a recovered panic on endpoint.
func RecordPanic(endpoint string) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(PanicsTotalName, 1, map[string]string{
			"endpoint": endpoint,
		})
	}
}

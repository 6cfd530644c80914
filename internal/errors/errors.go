// Package errors maps memeforge failures onto gofulmen error envelopes and
// writes them as JSON HTTP responses.
package errors

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/fulmenhq/gofulmen/errors"
	"github.com/google/uuid"

	"github.com/memeforge/memeforge/internal/meme"
	"github.com/memeforge/memeforge/internal/server/middleware"
)

// Envelope codes.
const (
	CodeInvalidInput     = "INVALID_INPUT"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeNotFound         = "NOT_FOUND"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodeConflict         = "CONFLICT"
	CodePayloadTooLarge  = "PAYLOAD_TOO_LARGE"
	CodeInternal         = "INTERNAL_ERROR"
	CodeDatabase         = "DATABASE_ERROR"
	CodeTimeout          = "TIMEOUT"
	CodeDataProcessing   = "DATA_PROCESSING_ERROR"
	CodeConfigInvalid    = "CONFIG_INVALID"
	CodeUnavailable      = "SERVICE_UNAVAILABLE"
)

func NewInvalidInputError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodeInvalidInput, message)
}

func NewNotFoundError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodeNotFound, message)
}

func NewMethodNotAllowedError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodeMethodNotAllowed, message)
}

func NewPayloadTooLargeError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodePayloadTooLarge, message)
}

func NewInternalError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodeInternal, message)
}

// Wrap builds an envelope around err carrying the request's correlation ID.
func Wrap(ctx context.Context, code string, err error, message string) *errors.ErrorEnvelope {
	envelope := errors.NewErrorEnvelope(code, message)
	envelope = envelope.WithCorrelationID(extractCorrelationID(ctx))
	envelope = envelope.WithTraceID(extractTraceID(ctx))
	return withWrappedError(envelope, err)
}

func WrapInvalidInput(ctx context.Context, err error, message string) *errors.ErrorEnvelope {
	return Wrap(ctx, CodeInvalidInput, err, message)
}

func WrapDatabaseError(ctx context.Context, err error, message string) *errors.ErrorEnvelope {
	return Wrap(ctx, CodeDatabase, err, message)
}

func WrapTimeout(ctx context.Context, err error, message string) *errors.ErrorEnvelope {
	return Wrap(ctx, CodeTimeout, err, message)
}

// FromMemeError converts a typed engine error into an envelope. The engine
// kind travels in the "meme_error" detail; count and schema failures add
// their bounds or violations. It returns nil when err carries no engine
// error.
func FromMemeError(ctx context.Context, err error) *errors.ErrorEnvelope {
	var typed meme.Error
	if !stderrors.As(err, &typed) {
		return nil
	}

	code := CodeValidationFailed
	switch typed.Kind() {
	case meme.KindUnknownTemplate:
		code = CodeNotFound
	case meme.KindDuplicateKey:
		code = CodeConflict
	case meme.KindPreviewAttemptsExhausted:
		code = CodeDataProcessing
	}

	envelope := errors.NewErrorEnvelope(code, typed.Error())
	envelope = envelope.WithCorrelationID(extractCorrelationID(ctx))
	envelope = envelope.WithTraceID(extractTraceID(ctx))

	details := map[string]interface{}{"meme_error": string(typed.Kind())}
	switch e := typed.(type) {
	case *meme.ImageNumberMismatchError:
		details["min"], details["max"] = e.Min, e.Max
	case *meme.TextNumberMismatchError:
		details["min"], details["max"] = e.Min, e.Max
	case *meme.ArgModelMismatchError:
		details["violations"] = violationStrings(e.Violations)
	case *meme.OpenImageFailedError:
		details["index"] = e.Index
	case *meme.UnknownTemplateError:
		details["key"] = e.Key
	case *meme.DuplicateKeyError:
		details["key"] = e.Key
	case *meme.PreviewAttemptsExhaustedError:
		details["key"], details["attempts"] = e.Key, e.Attempts
	}
	updated, updateErr := envelope.WithContext(details)
	if updateErr != nil {
		// keep the kind so clients can still branch on it
		updated, updateErr = envelope.WithContext(map[string]interface{}{
			"meme_error":    string(typed.Kind()),
			"context_error": updateErr.Error(),
		})
	}
	if updateErr == nil {
		envelope = updated
	}
	if code == CodeDataProcessing {
		if updated, sevErr := envelope.WithSeverity(errors.SeverityHigh); sevErr == nil {
			envelope = updated
		}
	}
	return envelope
}

// violationStrings flattens violations into "field: message" entries, the
// only list shape envelope context accepts.
func violationStrings(violations []meme.Violation) []string {
	out := make([]string, len(violations))
	for i, v := range violations {
		out[i] = v.String()
	}
	return out
}

// extractCorrelationID gets correlation ID from context, falls back to generating new UUID
func extractCorrelationID(ctx context.Context) string {
	if ctx != nil {
		if requestID := middleware.GetRequestID(ctx); requestID != "" {
			return requestID
		}
	}
	return uuid.New().String()
}

// extractTraceID reuses the correlation ID until requests carry trace context.
func extractTraceID(ctx context.Context) string {
	return extractCorrelationID(ctx)
}

// EnsureEnvelope normalizes any error into a gofulmen ErrorEnvelope.
func EnsureEnvelope(err error) *errors.ErrorEnvelope {
	return EnsureEnvelopeContext(nil, err)
}

// EnsureEnvelopeContext is EnsureEnvelope with engine errors tagged with the
// request's correlation ID.
func EnsureEnvelopeContext(ctx context.Context, err error) *errors.ErrorEnvelope {
	if err == nil {
		env := errors.NewErrorEnvelope(CodeInternal, "unexpected nil error")
		env, _ = env.WithSeverity(errors.SeverityCritical)
		return env
	}

	var envelope *errors.ErrorEnvelope
	if stderrors.As(err, &envelope) && envelope != nil {
		return envelope
	}
	if envelope := FromMemeError(ctx, err); envelope != nil {
		return envelope
	}

	env := errors.NewErrorEnvelope(CodeInternal, "unexpected error")
	env, _ = env.WithContext(map[string]interface{}{
		"wrapped_error": err.Error(),
	})
	env, _ = env.WithSeverity(errors.SeverityHigh)
	return env
}

// EnsureCorrelationID attaches a correlation ID to the envelope using the context when available.
func EnsureCorrelationID(envelope *errors.ErrorEnvelope, ctx context.Context) *errors.ErrorEnvelope {
	if envelope == nil || envelope.CorrelationID != "" {
		return envelope
	}

	var correlationID string
	if ctx != nil {
		correlationID = middleware.GetRequestID(ctx)
	}
	if correlationID == "" {
		correlationID = "fallback-" + errors.GenerateCorrelationID()
	}
	return envelope.WithCorrelationID(correlationID)
}

// HTTPStatusFromEnvelope resolves the HTTP status code corresponding to an error envelope.
func HTTPStatusFromEnvelope(envelope *errors.ErrorEnvelope) int {
	if envelope == nil {
		return http.StatusInternalServerError
	}
	return HTTPStatusFromCode(envelope.Code)
}

// HTTPStatusFromCode resolves the HTTP status code corresponding to an error code.
func HTTPStatusFromCode(code string) int {
	switch code {
	case CodeInvalidInput, CodeValidationFailed:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case CodeConflict:
		return http.StatusConflict
	case CodePayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case CodeTimeout:
		return http.StatusGatewayTimeout
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func withWrappedError(envelope *errors.ErrorEnvelope, err error) *errors.ErrorEnvelope {
	if envelope == nil || err == nil {
		return envelope
	}

	updated, updateErr := envelope.WithContext(map[string]interface{}{
		"wrapped_error": err.Error(),
	})
	if updateErr != nil {
		return envelope
	}
	return updated
}

// ResponseDetails constructs API-safe details map by merging envelope details and context.
func ResponseDetails(envelope *errors.ErrorEnvelope) map[string]interface{} {
	if envelope == nil {
		return nil
	}

	details := make(map[string]interface{})
	for key, value := range envelope.Details {
		details[key] = value
	}
	for key, value := range envelope.Context {
		if _, exists := details[key]; !exists {
			details[key] = value
		}
	}
	if len(details) == 0 {
		return nil
	}
	return details
}

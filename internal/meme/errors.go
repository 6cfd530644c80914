package meme

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind is a stable identifier for each failure the engine reports.
type ErrorKind string

const (
	KindImageNumberMismatch      ErrorKind = "image_number_mismatch"
	KindTextNumberMismatch       ErrorKind = "text_number_mismatch"
	KindArgModelMismatch         ErrorKind = "arg_model_mismatch"
	KindOpenImageFailed          ErrorKind = "open_image_failed"
	KindTextOverLength           ErrorKind = "text_over_length"
	KindTextOrNameNotEnough      ErrorKind = "text_or_name_not_enough"
	KindDuplicateKey             ErrorKind = "duplicate_key"
	KindUnknownTemplate          ErrorKind = "unknown_template"
	KindPreviewAttemptsExhausted ErrorKind = "preview_attempts_exhausted"
)

// Error is implemented by every typed engine error.
type Error interface {
	error
	Kind() ErrorKind
}

// KindOf returns the kind of the first engine error in err's chain, or "".
func KindOf(err error) ErrorKind {
	var e Error
	if errors.As(err, &e) {
		return e.Kind()
	}
	return ""
}

// IsKind reports whether err carries an engine error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

// ImageNumberMismatchError is returned when the image count is out of bounds.
type ImageNumberMismatchError struct {
	Min int
	Max int
}

func (e *ImageNumberMismatchError) Error() string {
	return "the number of images is incorrect, it should be " + describeRange(e.Min, e.Max)
}

func (e *ImageNumberMismatchError) Kind() ErrorKind { return KindImageNumberMismatch }

// TextNumberMismatchError is returned when the text count is out of bounds.
type TextNumberMismatchError struct {
	Min int
	Max int
}

func (e *TextNumberMismatchError) Error() string {
	return "the number of texts is incorrect, it should be " + describeRange(e.Min, e.Max)
}

func (e *TextNumberMismatchError) Kind() ErrorKind { return KindTextNumberMismatch }

func describeRange(lo, hi int) string {
	if lo == hi {
		return fmt.Sprintf("%d", lo)
	}
	return fmt.Sprintf("%d ~ %d", lo, hi)
}

// Violation describes one field that failed schema validation.
type Violation struct {
	Field   string `json:"field" yaml:"field"`
	Message string `json:"message" yaml:"message"`
}

func (v Violation) String() string {
	if v.Field == "" {
		return v.Message
	}
	return v.Field + ": " + v.Message
}

// ArgModelMismatchError is returned when extra args fail schema validation.
type ArgModelMismatchError struct {
	Detail     string
	Violations []Violation
}

func newArgModelMismatch(schema string, violations []Violation) *ArgModelMismatchError {
	parts := make([]string, 0, len(violations))
	for _, v := range violations {
		parts = append(parts, v.String())
	}
	detail := fmt.Sprintf("%d validation error(s) for %s: %s", len(violations), schema, strings.Join(parts, "; "))
	return &ArgModelMismatchError{Detail: detail, Violations: violations}
}

func (e *ArgModelMismatchError) Error() string {
	return "the arguments do not match the template: " + e.Detail
}

func (e *ArgModelMismatchError) Kind() ErrorKind { return KindArgModelMismatch }

// OpenImageFailedError is returned when an input buffer cannot be decoded.
type OpenImageFailedError struct {
	Index  int
	Detail string
	Err    error
}

func (e *OpenImageFailedError) Error() string {
	return fmt.Sprintf("failed to open image %d: %s", e.Index, e.Detail)
}

func (e *OpenImageFailedError) Unwrap() error { return e.Err }

func (e *OpenImageFailedError) Kind() ErrorKind { return KindOpenImageFailed }

// TextOverLengthError is raised by render functions when text does not fit.
type TextOverLengthError struct {
	Text string
}

// TextOverLength builds the error a render function returns for text that
// cannot be laid out.
func TextOverLength(text string) error {
	return &TextOverLengthError{Text: text}
}

func (e *TextOverLengthError) Error() string {
	return fmt.Sprintf("text %q is too long", e.Text)
}

func (e *TextOverLengthError) Kind() ErrorKind { return KindTextOverLength }

// TextOrNameNotEnoughError is raised by render functions that need one more
// text (or a user name) than they were given.
type TextOrNameNotEnoughError struct{}

// TextOrNameNotEnough builds the error for a missing text or name.
func TextOrNameNotEnough() error {
	return &TextOrNameNotEnoughError{}
}

func (e *TextOrNameNotEnoughError) Error() string {
	return "not enough texts or user names"
}

func (e *TextOrNameNotEnoughError) Kind() ErrorKind { return KindTextOrNameNotEnough }

// DuplicateKeyError is returned when a key is registered twice.
type DuplicateKeyError struct {
	Key string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("meme %q is already registered", e.Key)
}

func (e *DuplicateKeyError) Kind() ErrorKind { return KindDuplicateKey }

// UnknownTemplateError is returned for lookups of unregistered keys.
type UnknownTemplateError struct {
	Key string
}

func (e *UnknownTemplateError) Error() string {
	return fmt.Sprintf("meme %q not found", e.Key)
}

func (e *UnknownTemplateError) Kind() ErrorKind { return KindUnknownTemplate }

// PreviewAttemptsExhaustedError is returned when preview synthesis keeps
// hitting TextOrNameNotEnough past its retry ceiling.
type PreviewAttemptsExhaustedError struct {
	Key      string
	Attempts int
	Last     error
}

func (e *PreviewAttemptsExhaustedError) Error() string {
	return fmt.Sprintf("preview for %q gave up after %d attempt(s): %v", e.Key, e.Attempts, e.Last)
}

func (e *PreviewAttemptsExhaustedError) Unwrap() error { return e.Last }

func (e *PreviewAttemptsExhaustedError) Kind() ErrorKind { return KindPreviewAttemptsExhausted }

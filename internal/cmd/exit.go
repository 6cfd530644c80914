package cmd

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/fulmenhq/gofulmen/errors"
	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/fulmenhq/gofulmen/logging"
	"go.uber.org/zap"

	"github.com/memeforge/memeforge/internal/meme"
)

// configError marks failures to load or validate configuration.
type configError struct {
	err error
}

func (e *configError) Error() string { return "load config: " + e.err.Error() }

func (e *configError) Unwrap() error { return e.err }

// ExitCodeFor picks the foundry exit code for a command error.
func ExitCodeFor(err error) foundry.ExitCode {
	var cfgErr *configError
	switch {
	case err == nil:
		return foundry.ExitCode(0)
	case stderrors.As(err, &cfgErr):
		return foundry.ExitConfigInvalid
	case stderrors.Is(err, fs.ErrNotExist):
		return foundry.ExitFileNotFound
	default:
		return foundry.ExitFailure
	}
}

// ExitWithCode logs err with the exit code's catalog metadata and exits.
// A nil logger falls back to stderr.
func ExitWithCode(logger *logging.Logger, exitCode foundry.ExitCode, msg string, err error) {
	info, ok := foundry.GetExitCodeInfo(exitCode)
	if !ok {
		fmt.Fprintf(os.Stderr, "FATAL: %s: %v (exit code: %d)\n", msg, err, exitCode)
		os.Exit(int(exitCode))
	}
	if logger == nil {
		ExitWithCodeStderr(exitCode, msg, err)
		return
	}

	fields := []zap.Field{
		zap.Int("exit_code", info.Code),
		zap.String("exit_name", info.Name),
		zap.String("exit_category", info.Category),
	}
	fields = append(fields, errorFields(err)...)
	logger.Error(msg, fields...)
	os.Exit(info.Code)
}

// ExitWithCodeStderr writes the failure to stderr and exits. Use it before
// a logger exists.
func ExitWithCodeStderr(exitCode foundry.ExitCode, msg string, err error) {
	switch {
	case err == nil:
		fmt.Fprintf(os.Stderr, "FATAL: %s\n", msg)
	default:
		fmt.Fprintf(os.Stderr, "FATAL: %s: %s\n", msg, describeError(err))
	}

	info, ok := foundry.GetExitCodeInfo(exitCode)
	if !ok {
		os.Exit(int(exitCode))
	}
	fmt.Fprintf(os.Stderr, "Exit Code: %d (%s) - %s\n", info.Code, info.Name, info.Description)
	os.Exit(info.Code)
}

// describeError renders envelopes with their code and engine errors with
// their kind.
func describeError(err error) string {
	var envelope *errors.ErrorEnvelope
	if stderrors.As(err, &envelope) && envelope != nil {
		msg := fmt.Sprintf("[%s] %s", envelope.Code, envelope.Message)
		if original, ok := envelope.Original.(error); ok && original != nil {
			msg += ": " + original.Error()
		}
		return msg
	}
	if kind := meme.KindOf(err); kind != "" {
		return fmt.Sprintf("[%s] %v", kind, err)
	}
	return err.Error()
}

func errorFields(err error) []zap.Field {
	if err == nil {
		return nil
	}
	var envelope *errors.ErrorEnvelope
	if stderrors.As(err, &envelope) && envelope != nil {
		fields := []zap.Field{
			zap.String("error_code", envelope.Code),
			zap.String("error_message", envelope.Message),
			zap.String("correlation_id", envelope.CorrelationID),
		}
		if envelope.Context != nil {
			fields = append(fields, zap.Any("error_context", envelope.Context))
		}
		if original, ok := envelope.Original.(error); ok && original != nil {
			fields = append(fields, zap.Error(original))
		}
		return fields
	}
	fields := []zap.Field{zap.Error(err)}
	if kind := meme.KindOf(err); kind != "" {
		fields = append(fields, zap.String("meme_error", string(kind)))
	}
	return fields
}

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"expedientes/internal/service"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Rejected operation (not found, wrong passphrase, ...)
	ExitCommandError = 2 // Command error (bad flags, unreadable store, ...)
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Diagnostics go here so JSON output stays parseable
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status  string    `json:"status"`            // "ok" or "error"
	Data    any       `json:"data,omitempty"`    // success payload
	Warning string    `json:"warning,omitempty"` // non-fatal problem next to a success
	Error   *CLIError `json:"error,omitempty"`   // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Success outputs data. In text mode text renders it; a nil text prints data with fmt.
func (f *OutputFormatter) Success(data any, text func(w io.Writer)) error {
	return f.SuccessWithWarning(data, "", text)
}

// SuccessWithWarning is Success plus a non-fatal warning.
func (f *OutputFormatter) SuccessWithWarning(data any, warning string, text func(w io.Writer)) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: data, Warning: warning})
	}
	if text != nil {
		text(f.Writer)
	} else {
		fmt.Fprintln(f.Writer, data)
	}
	if warning != "" {
		fmt.Fprintf(f.errWriter(), "Warning: %s\n", warning)
	}
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message},
		})
	}
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	return nil
}

// VerboseLog outputs a message only if verbose mode is enabled.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.errWriter(), format+"\n", args...)
}

func (f *OutputFormatter) errWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

// fail reports err through the formatter and returns the matching ExitError.
func (f *OutputFormatter) fail(err error) error {
	code, exit := errorCode(err)
	_ = f.Error(code, err.Error())
	return WrapExitError(exit, code, err)
}

func errorCode(err error) (string, int) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return "INVALID_INPUT", ExitCommandError
	case errors.Is(err, service.ErrNotFound):
		return "CASE_NOT_FOUND", ExitFailure
	case errors.Is(err, service.ErrAmbiguousID):
		return "AMBIGUOUS_CASE_ID", ExitFailure
	case errors.Is(err, service.ErrOfficeMismatch):
		return "OFFICE_MISMATCH", ExitFailure
	case errors.Is(err, service.ErrSchema):
		return "SCHEMA_ERROR", ExitCommandError
	case errors.Is(err, service.ErrSourceUnavailable):
		return "SOURCE_UNAVAILABLE", ExitCommandError
	case errors.Is(err, service.ErrPersistence):
		return "PERSISTENCE_ERROR", ExitFailure
	default:
		return "ERROR", ExitFailure
	}
}

// Package errors provides centralized error definitions and error handling utilities
// for pybar. It defines domain-specific errors, semantic error types, error
// constructors with context wrapping, and error classification helpers.
//
// # Error Types
//
// Domain-specific errors represent errors from specific subsystems:
//   - WidgetError: structural misuse of a widget tree (bad index, unknown child)
//   - DispatchError: click dispatch failures (unknown or malformed click ids)
//   - SourceError: an external reactive source (UPower, PulseAudio) failed
//   - RenderError: the render target process could not be started or driven
//
// Semantic errors represent common error conditions:
//   - ValidationError: invalid input (layout files, configuration values)
//
// # Usage
//
//	err := errors.NewWidgetError("pop", errors.ErrIndexOutOfRange).WithIndex(7)
//
//	if errors.Is(err, errors.ErrIndexOutOfRange) { ... }
//
//	var dispatchErr *errors.DispatchError
//	if errors.As(err, &dispatchErr) { ... }
//
// # Error Classification
//
// Errors can be classified by severity and behavior:
//   - Retryable: transient errors that may succeed on retry
//   - UserFacing: errors safe to display to users (vs internal errors)
//   - Severity: Debug, Info, Warning, Error, Critical
//
// A click id that this process never minted is classified as critical: the
// render target session treats any critical error as fatal.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that must stop the process.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Widget tree sentinel errors
var (
	// ErrIndexOutOfRange indicates that a Box index does not address a child.
	ErrIndexOutOfRange = New("index out of range")
	// ErrWidgetNotFound indicates that a widget is not a child of the Box.
	ErrWidgetNotFound = New("widget not found")
	// ErrNilWidget indicates that a nil widget was passed where a child is required.
	ErrNilWidget = New("nil widget")
)

// Click dispatch sentinel errors
var (
	// ErrUnknownClickID indicates that a click id was never registered.
	ErrUnknownClickID = New("unknown click id")
	// ErrMalformedClick indicates that a click line is not a decimal id.
	ErrMalformedClick = New("malformed click line")
)

// Source and render target sentinel errors
var (
	// ErrSourceUnavailable indicates that an external source could not be reached.
	ErrSourceUnavailable = New("source unavailable")
	// ErrRenderTargetNotFound indicates that the render target binary is missing.
	ErrRenderTargetNotFound = New("render target not found")
	// ErrRenderTargetExited indicates that the render target process exited.
	ErrRenderTargetExited = New("render target exited")
)

// General sentinel errors
var (
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
	// ErrInvalidLayout indicates that a layout description could not be built.
	ErrInvalidLayout = New("invalid layout")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// BarError is the base interface for all pybar errors.
// It extends the standard error interface with additional methods for
// error handling and classification.
type BarError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Is reports whether this error matches the target error.
	Is(target error) bool

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsRetryable returns true if the error is transient and the operation
	// may succeed on retry.
	IsRetryable() bool

	// IsUserFacing returns true if the error message is safe to display
	// to end users.
	IsUserFacing() bool
}

// baseError provides common functionality for all error types.
type baseError struct {
	message    string
	cause      error
	severity   Severity
	retryable  bool
	userFacing bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// IsRetryable returns whether the error is retryable.
func (e *baseError) IsRetryable() bool {
	return e.retryable
}

// IsUserFacing returns whether the error is safe to show users.
func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

// format renders "prefix [k=v, ...]: message: cause".
func (e *baseError) format(prefix string, parts []string) string {
	if len(parts) > 0 {
		prefix = fmt.Sprintf("%s [%s]", prefix, strings.Join(parts, ", "))
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// -----------------------------------------------------------------------------
// Domain-Specific Errors
// -----------------------------------------------------------------------------

// WidgetError represents structural misuse of a widget tree.
//
// Example:
//
//	err := errors.NewWidgetError("replace", errors.ErrIndexOutOfRange).WithIndex(3).WithLength(2)
//	fmt.Println(err) // "widget error [index=3, len=2]: replace: index out of range"
type WidgetError struct {
	baseError
	Index  int
	Length int
	hasIdx bool
}

// NewWidgetError creates a new WidgetError for the given operation.
func NewWidgetError(op string, cause error) *WidgetError {
	return &WidgetError{
		baseError: baseError{
			message:    op,
			cause:      cause,
			severity:   SeverityError,
			retryable:  false,
			userFacing: false,
		},
	}
}

// WithIndex adds the offending index to the error context.
func (e *WidgetError) WithIndex(i int) *WidgetError {
	e.Index = i
	e.hasIdx = true
	return e
}

// WithLength adds the child count at the time of the error.
func (e *WidgetError) WithLength(n int) *WidgetError {
	e.Length = n
	return e
}

// Error returns the formatted error message.
func (e *WidgetError) Error() string {
	var parts []string
	if e.hasIdx {
		parts = append(parts, fmt.Sprintf("index=%d", e.Index), fmt.Sprintf("len=%d", e.Length))
	}
	return e.format("widget error", parts)
}

// Is checks if this error matches the target.
func (e *WidgetError) Is(target error) bool {
	if _, ok := target.(*WidgetError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// DispatchError represents a click dispatch failure.
//
// Example:
//
//	err := errors.NewDispatchError(errors.ErrUnknownClickID).WithClickID(42)
type DispatchError struct {
	baseError
	ClickID int
	Line    string
}

// NewDispatchError creates a new DispatchError. Unknown ids can only come
// from a logic error in this process, so the error is critical.
func NewDispatchError(cause error) *DispatchError {
	severity := SeverityError
	if errors.Is(cause, ErrUnknownClickID) {
		severity = SeverityCritical
	}
	return &DispatchError{
		baseError: baseError{
			message:    "dispatch failed",
			cause:      cause,
			severity:   severity,
			retryable:  false,
			userFacing: false,
		},
		ClickID: -1,
	}
}

// WithClickID adds the click id to the error context.
func (e *DispatchError) WithClickID(id int) *DispatchError {
	e.ClickID = id
	return e
}

// WithLine adds the raw input line to the error context.
func (e *DispatchError) WithLine(line string) *DispatchError {
	e.Line = line
	return e
}

// Error returns the formatted error message.
func (e *DispatchError) Error() string {
	var parts []string
	if e.ClickID >= 0 {
		parts = append(parts, fmt.Sprintf("id=%d", e.ClickID))
	}
	if e.Line != "" {
		parts = append(parts, fmt.Sprintf("line=%q", e.Line))
	}
	return e.format("dispatch error", parts)
}

// Is checks if this error matches the target.
func (e *DispatchError) Is(target error) bool {
	if _, ok := target.(*DispatchError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// SourceError represents a failure of an external reactive source.
//
// Example:
//
//	err := errors.NewSourceError("upower", "enumerate devices", dbusErr)
type SourceError struct {
	baseError
	Source string
}

// NewSourceError creates a new SourceError. Source failures are usually
// transient (daemon restarting), so they are marked retryable.
func NewSourceError(source, message string, cause error) *SourceError {
	return &SourceError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityWarning,
			retryable:  true,
			userFacing: true,
		},
		Source: source,
	}
}

// Error returns the formatted error message.
func (e *SourceError) Error() string {
	var parts []string
	if e.Source != "" {
		parts = append(parts, fmt.Sprintf("source=%s", e.Source))
	}
	return e.format("source error", parts)
}

// Is checks if this error matches the target.
func (e *SourceError) Is(target error) bool {
	if _, ok := target.(*SourceError); ok {
		return true
	}
	if errors.Is(target, ErrSourceUnavailable) {
		return true
	}
	return e.baseError.Is(target)
}

// RenderError represents a failure of the render target process.
//
// Example:
//
//	err := errors.NewRenderError("start", execErr).WithTarget("/usr/bin/lemonbar")
type RenderError struct {
	baseError
	Target string
}

// NewRenderError creates a new RenderError.
func NewRenderError(message string, cause error) *RenderError {
	return &RenderError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithTarget adds the render target path to the error context.
func (e *RenderError) WithTarget(path string) *RenderError {
	e.Target = path
	return e
}

// WithSeverity sets the error severity.
func (e *RenderError) WithSeverity(s Severity) *RenderError {
	e.severity = s
	return e
}

// Error returns the formatted error message.
func (e *RenderError) Error() string {
	var parts []string
	if e.Target != "" {
		parts = append(parts, fmt.Sprintf("target=%s", e.Target))
	}
	return e.format("render error", parts)
}

// Is checks if this error matches the target.
func (e *RenderError) Is(target error) bool {
	if _, ok := target.(*RenderError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// ValidationError represents invalid input or state.
//
// Example:
//
//	err := errors.NewValidationError("unknown widget type").WithField("root.children[2].type").WithValue("clokc")
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:    message,
			severity:   SeverityWarning,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithField adds a field name to the error context.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue adds the invalid value to the error context.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// WithCause adds a cause to the error.
func (e *ValidationError) WithCause(cause error) *ValidationError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}
	return e.format("validation error", parts)
}

// Is checks if this error matches the target.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	if errors.Is(target, ErrInvalidInput) {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// IsRetryable returns true if the error represents a transient condition
// that may succeed on retry.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var barErr BarError
	if As(err, &barErr) {
		return barErr.IsRetryable()
	}
	return false
}

// IsUserFacing returns true if the error message is safe to display to end users.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	var barErr BarError
	if As(err, &barErr) {
		return barErr.IsUserFacing()
	}
	return false
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement BarError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}
	var barErr BarError
	if As(err, &barErr) {
		return barErr.Severity()
	}
	return SeverityError
}

// IsFatal reports whether err must stop the process.
func IsFatal(err error) bool {
	return GetSeverity(err) == SeverityCritical
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
//
// Example:
//
//	err := errors.Wrap(baseErr, "failed to start lemonbar")
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

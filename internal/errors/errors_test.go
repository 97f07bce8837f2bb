package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestSeverity_String(t *testing.T) {
	tests := []struct {
		severity Severity
		want     string
	}{
		{SeverityDebug, "debug"},
		{SeverityInfo, "info"},
		{SeverityWarning, "warning"},
		{SeverityError, "error"},
		{SeverityCritical, "critical"},
		{Severity(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.severity.String(); got != tt.want {
				t.Errorf("Severity.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

// -----------------------------------------------------------------------------
// WidgetError Tests
// -----------------------------------------------------------------------------

func TestWidgetError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *WidgetError
		want string
	}{
		{
			name: "with index",
			err:  NewWidgetError("pop", ErrIndexOutOfRange).WithIndex(3).WithLength(2),
			want: "widget error [index=3, len=2]: pop: index out of range",
		},
		{
			name: "without index",
			err:  NewWidgetError("remove", ErrWidgetNotFound),
			want: "widget error: remove: widget not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWidgetError_Is(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewWidgetError("insert", ErrNilWidget))

	if !Is(err, ErrNilWidget) {
		t.Error("Is(err, ErrNilWidget) = false, want true")
	}
	if Is(err, ErrIndexOutOfRange) {
		t.Error("Is(err, ErrIndexOutOfRange) = true, want false")
	}
	var widgetErr *WidgetError
	if !As(err, &widgetErr) {
		t.Fatal("As(*WidgetError) = false, want true")
	}
	if widgetErr.IsUserFacing() {
		t.Error("IsUserFacing() = true, want false")
	}
}

// -----------------------------------------------------------------------------
// DispatchError Tests
// -----------------------------------------------------------------------------

func TestDispatchError_UnknownIDIsCritical(t *testing.T) {
	err := NewDispatchError(ErrUnknownClickID).WithClickID(42)

	if err.Severity() != SeverityCritical {
		t.Errorf("Severity() = %v, want %v", err.Severity(), SeverityCritical)
	}
	if !IsFatal(err) {
		t.Error("IsFatal() = false, want true")
	}
	if got, want := err.Error(), "dispatch error [id=42]: dispatch failed: unknown click id"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestDispatchError_MalformedIsNotFatal(t *testing.T) {
	err := NewDispatchError(ErrMalformedClick).WithLine("abc")

	if IsFatal(err) {
		t.Error("IsFatal() = true, want false")
	}
	if got, want := err.Error(), `dispatch error [line="abc"]: dispatch failed: malformed click line`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

// -----------------------------------------------------------------------------
// SourceError / RenderError Tests
// -----------------------------------------------------------------------------

func TestSourceError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewSourceError("pulse", "subscribe", cause)

	if !Is(err, ErrSourceUnavailable) {
		t.Error("Is(err, ErrSourceUnavailable) = false, want true")
	}
	if !Is(err, cause) {
		t.Error("Is(err, cause) = false, want true")
	}
	if !IsRetryable(err) {
		t.Error("IsRetryable() = false, want true")
	}
	if got, want := err.Error(), "source error [source=pulse]: subscribe: connection refused"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestRenderError(t *testing.T) {
	err := NewRenderError("start", ErrRenderTargetNotFound).WithTarget("lemonbar")

	if !Is(err, ErrRenderTargetNotFound) {
		t.Error("Is(err, ErrRenderTargetNotFound) = false, want true")
	}
	if GetSeverity(err) != SeverityError {
		t.Errorf("GetSeverity() = %v, want %v", GetSeverity(err), SeverityError)
	}
	if !IsUserFacing(err) {
		t.Error("IsUserFacing() = false, want true")
	}
}

// -----------------------------------------------------------------------------
// ValidationError Tests
// -----------------------------------------------------------------------------

func TestValidationError(t *testing.T) {
	err := NewValidationError("unknown widget type").WithField("root.type").WithValue("clokc")

	if !Is(err, ErrInvalidInput) {
		t.Error("Is(err, ErrInvalidInput) = false, want true")
	}
	want := "validation error [field=root.type, value=clokc]: unknown widget type"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

// -----------------------------------------------------------------------------
// Classification Tests
// -----------------------------------------------------------------------------

func TestClassification_PlainErrors(t *testing.T) {
	plain := errors.New("plain")

	if IsRetryable(plain) {
		t.Error("IsRetryable(plain) = true, want false")
	}
	if IsUserFacing(plain) {
		t.Error("IsUserFacing(plain) = true, want false")
	}
	if GetSeverity(plain) != SeverityError {
		t.Errorf("GetSeverity(plain) = %v, want %v", GetSeverity(plain), SeverityError)
	}
	if GetSeverity(nil) != SeverityDebug {
		t.Errorf("GetSeverity(nil) = %v, want %v", GetSeverity(nil), SeverityDebug)
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, "x") != nil {
		t.Error("Wrap(nil) should be nil")
	}
	err := Wrapf(ErrInvalidLayout, "layout %s", "bar.yaml")
	if !Is(err, ErrInvalidLayout) {
		t.Error("Wrapf should preserve the chain")
	}
	if got, want := err.Error(), "layout bar.yaml: invalid layout"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

package apperr

import (
	"errors"
	"fmt"
	"testing"
)

// ----------------------------------------------------------------------------
// Normalize
// ----------------------------------------------------------------------------

func TestNormalize(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		if got := Normalize(nil); got != nil {
			t.Errorf("Normalize(nil) = %v, want nil", got)
		}
	})

	t.Run("AppError passes through", func(t *testing.T) {
		in := New(CodeTimeout, "slow", true)
		if got := Normalize(in); got != in {
			t.Errorf("Normalize returned a different instance: %v", got)
		}
	})

	t.Run("wrapped AppError unwraps", func(t *testing.T) {
		in := New(CodeNetworkError, "down", true)
		wrapped := fmt.Errorf("fetching page: %w", in)
		if got := Normalize(wrapped); got != in {
			t.Errorf("Normalize(%v) = %v, want the wrapped AppError", wrapped, got)
		}
	})

	t.Run("plain error", func(t *testing.T) {
		got := Normalize(errors.New("boom"))
		if got.Code != CodeUnknown {
			t.Errorf("Code = %q, want %q", got.Code, CodeUnknown)
		}
		if got.Message != "boom" {
			t.Errorf("Message = %q, want %q", got.Message, "boom")
		}
		if got.Retryable {
			t.Error("Retryable = true, want false")
		}
	})

	t.Run("string", func(t *testing.T) {
		got := Normalize("went sideways")
		if got.Code != CodeUnknown || got.Message != "went sideways" {
			t.Errorf("got %v", got)
		}
	})

	t.Run("arbitrary value", func(t *testing.T) {
		got := Normalize(42)
		if got.Code != CodeUnknown {
			t.Errorf("Code = %q, want %q", got.Code, CodeUnknown)
		}
		if got.Details["originalError"] != 42 {
			t.Errorf("Details[originalError] = %v, want 42", got.Details["originalError"])
		}
		if got.Timestamp.IsZero() {
			t.Error("Timestamp is zero")
		}
	})
}

// ----------------------------------------------------------------------------
// FromDatabase
// ----------------------------------------------------------------------------

func TestFromDatabase(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		code      string
		retryable bool
	}{
		{"connection refused", errors.New("dial tcp: connection refused"), CodeDBConnectionFailed, true},
		{"timeout", errors.New("canceling statement due to statement timeout"), CodeTimeout, true},
		{"constraint", errors.New(`violates unique constraint "transactions_import_key_key"`), CodeDBConstraintViolation, false},
		{"generic", errors.New("syntax error at or near SELECT"), CodeDBQueryFailed, true},
		// "connection" is checked before "timeout": a message containing both
		// classifies as a connection failure.
		{"connection wins over timeout", errors.New("connection timeout"), CodeDBConnectionFailed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromDatabase(tt.err, "insert transaction")
			if got.Code != tt.code {
				t.Errorf("Code = %q, want %q", got.Code, tt.code)
			}
			if got.Retryable != tt.retryable {
				t.Errorf("Retryable = %v, want %v", got.Retryable, tt.retryable)
			}
			if got.Details["operation"] != "insert transaction" {
				t.Errorf("Details[operation] = %v", got.Details["operation"])
			}
			if got.Details["cause"] != tt.err.Error() {
				t.Errorf("Details[cause] = %v", got.Details["cause"])
			}
		})
	}

	t.Run("nil", func(t *testing.T) {
		if got := FromDatabase(nil, "noop"); got != nil {
			t.Errorf("FromDatabase(nil) = %v, want nil", got)
		}
	})

	t.Run("already classified", func(t *testing.T) {
		in := New(CodeDBConstraintViolation, "duplicate", false)
		if got := FromDatabase(fmt.Errorf("insert: %w", in), "insert"); got != in {
			t.Errorf("FromDatabase re-classified an AppError: %v", got)
		}
	})
}

func TestAppErrorError(t *testing.T) {
	err := New(CodeTimeout, "took too long", true)
	if got, want := err.Error(), "TIMEOUT: took too long"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestWithDetail(t *testing.T) {
	err := New(CodeUnknown, "x", false).WithDetail("a", 1).WithDetail("b", "two")
	if err.Details["a"] != 1 || err.Details["b"] != "two" {
		t.Errorf("Details = %v", err.Details)
	}
}

// ----------------------------------------------------------------------------
// ImportError
// ----------------------------------------------------------------------------

func TestImportErrorMessage(t *testing.T) {
	e := ImportError{Row: 2, Column: "amount", Message: "must be a valid amount", Value: "abc"}
	got := e.Error()
	want := "row 3, amount: must be a valid amount"
	if got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestToImportError(t *testing.T) {
	t.Run("passthrough", func(t *testing.T) {
		in := ImportError{Row: 5, Column: "date", Message: "bad"}
		got := ToImportError(in, 9, GeneralColumn)
		if got != in {
			t.Errorf("got %v, want original preserved", got)
		}
	})

	t.Run("pointer passthrough", func(t *testing.T) {
		in := &ImportError{Row: 5, Column: "date", Message: "bad"}
		got := ToImportError(in, 9, GeneralColumn)
		if got != *in {
			t.Errorf("got %v, want original preserved", got)
		}
	})

	t.Run("wraps AppError", func(t *testing.T) {
		got := ToImportError(New(CodeDBQueryFailed, "query failed", true), 4, GeneralColumn)
		if got.Row != 4 || got.Column != GeneralColumn {
			t.Errorf("got row %d column %q", got.Row, got.Column)
		}
		if got.Message == "" {
			t.Error("Message is empty")
		}
	})

	t.Run("defaults", func(t *testing.T) {
		got := ToImportError("mystery", -5, "")
		if got.Row != -1 {
			t.Errorf("Row = %d, want -1", got.Row)
		}
		if got.Column != "unknown" {
			t.Errorf("Column = %q, want %q", got.Column, "unknown")
		}
	})
}

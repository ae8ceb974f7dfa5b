package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainError(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		err := New(CodeNotSupported, "unsupported language")
		if err.Error() != "[NOT_SUPPORTED] unsupported language" {
			t.Errorf("expected [NOT_SUPPORTED] unsupported language, got %s", err.Error())
		}
	})

	t.Run("Wrap", func(t *testing.T) {
		original := errors.New("broken pipe")
		err := Wrap(original, CodeUnavailable, "reference service failed")
		expected := "[UNAVAILABLE] reference service failed: broken pipe"
		if err.Error() != expected {
			t.Errorf("expected %s, got %s", expected, err.Error())
		}
		if !errors.Is(err, original) {
			t.Error("expected wrapped error to unwrap to the original")
		}
	})

	t.Run("IsCode", func(t *testing.T) {
		err := New(CodeValidationError, "invalid input")
		if !IsCode(err, CodeValidationError) {
			t.Error("expected IsCode to return true for CodeValidationError")
		}
		if IsCode(err, CodeNotFound) {
			t.Error("expected IsCode to return false for CodeNotFound")
		}
	})

	t.Run("IsUnsupportedThroughFmtWrap", func(t *testing.T) {
		err := fmt.Errorf("analyze a.py: %w", New(CodeNotSupported, "unsupported language"))
		if !IsUnsupported(err) {
			t.Error("expected IsUnsupported to see through fmt wrapping")
		}
	})

	t.Run("AddContext", func(t *testing.T) {
		err := AddContext(New(CodeNotFound, "missing"), CtxPath, "/src/a.ts")
		var de *DomainError
		if !errors.As(err, &de) {
			t.Fatal("expected DomainError")
		}
		if de.Context[CtxPath] != "/src/a.ts" {
			t.Errorf("expected path context, got %v", de.Context)
		}

		plain := AddContext(errors.New("boom"), CtxSymbol, "helper")
		if !IsCode(plain, CodeInternal) {
			t.Error("expected plain errors to be wrapped as internal")
		}
		if !errors.As(plain, &de) || de.Context[CtxSymbol] != "helper" {
			t.Errorf("expected symbol context, got %v", plain)
		}
		if AddContext(nil, CtxPath, "x") != nil {
			t.Error("expected nil error to stay nil")
		}
	})
}

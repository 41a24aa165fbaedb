package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrapUnwrap(t *testing.T) {
	cause := errors.New("pq: duplicate key")
	err := Wrap(NotFound, "document missing", cause)

	if !errors.Is(err, cause) {
		t.Fatalf("expected errors.Is to find cause")
	}

	appErr, ok := As(err)
	if !ok {
		t.Fatalf("expected As to extract *Error")
	}
	if appErr.Code != NotFound {
		t.Fatalf("Code = %v, want %v", appErr.Code, NotFound)
	}
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", New(QuotaExceeded, "too many queries"))
	if !Is(err, QuotaExceeded) {
		t.Fatalf("expected Is(err, QuotaExceeded) to be true")
	}
	if Is(err, NotFound) {
		t.Fatalf("expected Is(err, NotFound) to be false")
	}
}

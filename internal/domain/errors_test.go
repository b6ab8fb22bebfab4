package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorMatching(t *testing.T) {
	err := NotFound(ErrServiceNotFound, "abc")
	if err.Error() != "service not found: abc" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, ErrNotFound) || !errors.Is(err, ErrServiceNotFound) {
		t.Fatalf("NotFound error does not match its sentinels")
	}
	if errors.Is(err, ErrCarrierNotFound) || errors.Is(err, ErrInvalidInput) {
		t.Fatalf("NotFound error matches an unrelated sentinel")
	}

	wrapped := fmt.Errorf("loading: %w", err)
	if !errors.Is(wrapped, ErrServiceNotFound) || KindOf(wrapped) != KindNotFound {
		t.Fatalf("wrapped error lost its kind")
	}

	if KindOf(InvalidInput("bad %s", "weight")) != KindInvalidInput {
		t.Fatalf("InvalidInput has the wrong kind")
	}
	if KindOf(ValidationFailed("nope")) != KindValidationFailed {
		t.Fatalf("ValidationFailed has the wrong kind")
	}
	if KindOf(errors.New("plain")) != "" {
		t.Fatalf("plain errors should have no kind")
	}
}

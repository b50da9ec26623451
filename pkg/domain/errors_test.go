package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	err := NewError(KindNotFound, "remove_tab", "tab %q not found", "t1")
	want := `remove_tab: not_found: tab "t1" not found`
	if err.Error() != want {
		t.Fatalf("unexpected message: %q", err.Error())
	}
	bare := NewError(KindInvalidPayload, "", "title required")
	if bare.Error() != "invalid_payload: title required" {
		t.Fatalf("unexpected bare message: %q", bare.Error())
	}
}

func TestKindOfUnwrapsWrappedErrors(t *testing.T) {
	inner := NewError(KindCapacityExceeded, "add_tab", "limit reached")
	wrapped := fmt.Errorf("dispatch: %w", inner)
	if KindOf(wrapped) != KindCapacityExceeded {
		t.Fatalf("expected capacity kind, got %s", KindOf(wrapped))
	}
	if !IsKind(wrapped, KindCapacityExceeded) {
		t.Fatalf("IsKind must match through wrapping")
	}
	if IsKind(wrapped, KindNotFound) {
		t.Fatalf("IsKind must not match a different kind")
	}
}

func TestKindOfForeignError(t *testing.T) {
	if KindOf(errors.New("boom")) != KindInternal {
		t.Fatalf("foreign errors must classify as internal")
	}
}

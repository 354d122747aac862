package errors

import (
	"errors"
	"testing"
)

func TestNewAndIs(t *testing.T) {
	err := New(ErrNotaryNotFound, "notary not found")
	if !Is(err, ErrNotaryNotFound) {
		t.Error("Is should match the code")
	}
	if Is(err, ErrArticleNotFound) {
		t.Error("Is should not match a different code")
	}
	if Is(errors.New("plain"), ErrInternal) {
		t.Error("plain errors carry no code")
	}
	if got := err.Error(); got != "[NOTARY_NOT_FOUND] notary not found" {
		t.Errorf("unexpected message: %q", got)
	}
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(ErrPersistence, "failed to save booking", cause)

	if !Is(err, ErrPersistence) {
		t.Error("Is should match the wrapping code")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should reach the cause through Unwrap")
	}
}

package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		code   Code
		status int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodeStateConflict, http.StatusUnprocessableEntity},
		{CodeDependency, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		meta := MetadataFor(tc.code)
		if meta.HTTPStatus != tc.status {
			t.Errorf("code %s: expected status %d, got %d", tc.code, tc.status, meta.HTTPStatus)
		}
	}
}

func TestMetadataForUnknownCodeFallsBackToInternal(t *testing.T) {
	t.Parallel()

	meta := MetadataFor(Code("MYSTERY"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal fallback, got %d", meta.HTTPStatus)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	t.Parallel()

	cause := fmt.Errorf("socket closed")
	err := Wrap(CodeDependency, cause, "fetch payment")

	if !errors.Is(err, cause) {
		t.Fatal("wrapped error should match its cause")
	}
	if err.Code() != CodeDependency {
		t.Fatalf("expected dependency code, got %s", err.Code())
	}
}

func TestAsUnwrapsThroughChain(t *testing.T) {
	t.Parallel()

	inner := New(CodeStateConflict, "illegal status transition")
	outer := fmt.Errorf("handling request: %w", inner)

	typed := As(outer)
	if typed == nil {
		t.Fatal("expected typed error in chain")
	}
	if typed.Code() != CodeStateConflict {
		t.Fatalf("expected state conflict, got %s", typed.Code())
	}
}

func TestWithDetails(t *testing.T) {
	t.Parallel()

	err := New(CodeConflict, "insufficient stock").WithDetails(map[string]any{"available": 1})
	details, ok := err.Details().(map[string]any)
	if !ok {
		t.Fatal("expected map details")
	}
	if details["available"] != 1 {
		t.Fatalf("unexpected details: %v", details)
	}
}

package errors_test

import (
	"io"
	"testing"

	"github.com/ocflib/ocf/errors"
)

func TestEAndIs(t *testing.T) {
	err := errors.E(errors.BadSync, "sync marker mismatch")
	if !errors.Is(errors.BadSync, err) {
		t.Fatalf("expected Is(BadSync, %v) to be true", err)
	}
	if errors.Is(errors.BadMagic, err) {
		t.Fatalf("expected Is(BadMagic, %v) to be false", err)
	}
	want := "sync marker mismatch: invalid sync marker"
	if got := err.Error(); got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

func TestEWrapsCause(t *testing.T) {
	cause := errors.New("underlying failure")
	err := errors.E(errors.CompressFailure, "flate decompress", cause)
	e := errors.Recover(err)
	if e.Kind != errors.CompressFailure {
		t.Fatalf("Kind = %v, want CompressFailure", e.Kind)
	}
	if e.Err != cause {
		t.Fatalf("Err = %v, want %v", e.Err, cause)
	}
}

func TestOnceLatchesFirstErrorOnly(t *testing.T) {
	var once errors.Once
	once.Ignored = []error{io.EOF}

	once.Set(io.EOF)
	if once.Err() != nil {
		t.Fatalf("expected ignored io.EOF to be dropped, got %v", once.Err())
	}

	first := errors.New("first")
	second := errors.New("second")
	once.Set(first)
	once.Set(second)
	if once.Err() != first {
		t.Fatalf("Err() = %v, want %v", once.Err(), first)
	}
}

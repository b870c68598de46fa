package rferr

import (
	"errors"
	"strings"
	"testing"
)

func TestDomainWrapsSentinel(t *testing.T) {
	err := Domain("distance must be > 0, got %v", -1.0)
	if !errors.Is(err, ErrDomain) {
		t.Fatalf("expected errors.Is(err, ErrDomain), got %v", err)
	}
	if errors.Is(err, ErrNoConvergence) {
		t.Fatalf("domain error must not match ErrNoConvergence")
	}
	if !strings.Contains(err.Error(), "distance must be > 0, got -1") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestNoConvergenceWrapsSentinel(t *testing.T) {
	err := NoConvergence("target %g not bracketed", 1e-30)
	if !errors.Is(err, ErrNoConvergence) {
		t.Fatalf("expected errors.Is(err, ErrNoConvergence), got %v", err)
	}
}

// Package rferr defines the error taxonomy shared by the link-budget packages.
package rferr

import (
	"errors"
	"fmt"
)

var (
	// ErrDomain is returned when an input violates a formula precondition,
	// such as a non-positive distance or a code rate outside (0, 1].
	ErrDomain = errors.New("domain error")
	// ErrNoConvergence is returned when a numeric inversion cannot bracket
	// a root inside its search interval.
	ErrNoConvergence = errors.New("no convergence")
)

// Domain wraps ErrDomain with a formatted reason.
func Domain(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrDomain, fmt.Sprintf(format, args...))
}

// NoConvergence wraps ErrNoConvergence with a formatted reason.
func NoConvergence(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNoConvergence, fmt.Sprintf(format, args...))
}

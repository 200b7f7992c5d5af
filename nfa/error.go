// Package nfa compiles a query.Ast into an epsilon-NFA with bounded
// edit-distance (fuzz) semantics, and fills the per-word transition table
// that drives single-word matching. It corresponds to components C4 and
// C5.
package nfa

import (
	"errors"
	"fmt"
)

// Sentinel errors for NFA construction, following the same
// sentinel-plus-wrapping-struct convention used throughout this module's
// ambient error handling.
var (
	// ErrInvalidRepetition is returned when a Repetition node's bounds
	// are nonsensical (max < min).
	ErrInvalidRepetition = errors.New("nfa: invalid repetition bounds")

	// ErrEmptyAst is returned when compiling a nil/zero-value Ast.
	ErrEmptyAst = errors.New("nfa: cannot compile an empty Ast")
)

// BuildError wraps a construction failure with the state count reached
// so far.
type BuildError struct {
	Message string
	States  int
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("nfa: build error after %d states: %s", e.States, e.Message)
}

func (e *BuildError) Unwrap() error {
	return ErrInvalidRepetition
}

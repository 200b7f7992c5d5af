package dfa

import "errors"

// Sentinel errors for DFA promotion, per spec.md §4.7.
var (
	// ErrTooManyStates means the powerstate index exceeded MaxStates;
	// the caller should fall back to NFA-based matching for this
	// expression rather than treat this as fatal.
	ErrTooManyStates = errors.New("dfa: powerstate index exceeds MaxStates")

	// ErrUnsatisfiable means promotion completed but no powerstate
	// contains the accept state: the expression can never match any
	// word, independent of fuzz. This maps to spec.md §7's
	// NoMatchesPossible.
	ErrUnsatisfiable = errors.New("dfa: expression accept state is unreachable")
)

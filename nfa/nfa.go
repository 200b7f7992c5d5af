package nfa

import (
	"fmt"

	"github.com/noodleword/noodle/alphabet"
	"github.com/noodleword/noodle/bitset"
)

// StateID identifies a state within one Expression's state vector.
type StateID int

// State is a single NFA state, per spec.md §3: it either consumes exactly
// one symbol matching Class and advances to Next, or is a pure ε-fan-out
// (Class empty) whose reachability is entirely carried by Epsilon.
// Epsilon is the transitive closure of ε-reachability including the
// state itself, maintained by Optimize.
type State struct {
	Class   alphabet.CharClass
	Next    StateID
	Epsilon bitset.Set1D
}

// IsEpsilonOnly reports whether the state consumes no symbol.
func (s *State) IsEpsilonOnly() bool {
	return s.Class.IsEmpty()
}

func (s *State) String() string {
	if s.IsEpsilonOnly() {
		return fmt.Sprintf("State{eps-only, next=%d}", s.Next)
	}
	return fmt.Sprintf("State{class=%#x, next=%d}", uint32(s.Class), s.Next)
}

// Expression is a compiled NFA for one query expression, per spec.md §3:
// a state vector, the fuzz budget it was compiled for, and the original
// text plus detected option flags (kept for diagnostics/Logs formatting).
type Expression struct {
	States             []State
	Fuzz               int
	Text               string
	IgnoreWhitespace   bool
	IgnorePunctuation  bool
}

// NumStates returns the number of states in the expression's NFA.
func (e *Expression) NumStates() int {
	return len(e.States)
}

// Accept is the unique accept state: the NFA's last state, which per
// spec.md's invariants has no outgoing character edge.
func (e *Expression) Accept() StateID {
	return StateID(len(e.States) - 1)
}

// EpsilonClosure returns the ε-closure of state s (includes s itself).
func (e *Expression) EpsilonClosure(s StateID) bitset.Set1D {
	return e.States[s].Epsilon
}

// StartClosure returns the ε-closure of the start state (state 0), the
// seed for a fresh TransitionTable row per spec.md §4.5.
func (e *Expression) StartClosure() bitset.Set1D {
	return e.EpsilonClosure(0)
}

// Package dfa implements the opportunistic NFA→DFA promotion described
// in spec.md §4.7 (component C7): when an expression's fuzz budget is
// zero, its equivalency classes can be powerset-constructed into a
// dense transition table, turning per-word stepping from an O(states)
// bitset union into an O(1) table lookup.
package dfa

import (
	"fmt"

	"github.com/noodleword/noodle/bitset"
)

// MaxStates is the powerstate cap from spec.md §4.7: promotion aborts
// and the caller keeps the NFA representation if the powerset index
// would exceed this many entries.
const MaxStates = 1024

// Class is one equivalency class's fuzz-0 transition behavior: Table[s]
// is the set of NFA states reachable by stepping one word-character from
// NFA state s. ClassesFromAlphabet builds one Class per alphabet symbol
// from the NFA alone, not from signatures seen in the wordlist.
type Class struct {
	Table bitset.Set2D // rows = numStates, cols = numStates
}

// Row returns the to-state set reachable from NFA state s in this class.
func (c *Class) Row(s int) bitset.Set1D {
	return c.Table.Row(s)
}

// DFA is a promoted equivalency-class automaton: a dense table of
// powerstate transitions per class, plus the set of terminal
// (accepting) powerstates.
type DFA struct {
	NumStates int // NFA state count the powerstates are built over

	// powerstates[i] is the NFA-state bitset represented by powerstate i.
	// Index 0 is always the null powerstate (empty); index 1 is always
	// the start powerstate (the NFA start closure).
	powerstates []bitset.Set1D

	// setTable[classIndex][powerstateIndex] = successor powerstate index.
	setTable [][]int

	// terminal[i] is true iff powerstate i contains the NFA accept state.
	terminal []bool
}

// Start is the powerstate id a fresh word match begins at.
const Start = 1

// Null is the dead powerstate id: once reached, no further word can
// ever match.
const Null = 0

// Step returns the successor powerstate after consuming one more word
// character under the given class, from the current powerstate.
func (d *DFA) Step(classIndex, powerstate int) int {
	return d.setTable[classIndex][powerstate]
}

// IsTerminal reports whether powerstate is an accepting state.
func (d *DFA) IsTerminal(powerstate int) bool {
	return d.terminal[powerstate]
}

// PowerstateCount returns how many powerstates the promotion discovered,
// the promoted automaton's own state count (as distinct from NumStates,
// the underlying NFA's state count it was built over).
func (d *DFA) PowerstateCount() int {
	return len(d.powerstates)
}

// Promote builds a DFA over classes for an NFA of numStates states whose
// start closure is startClosure and whose unique accept state is
// acceptState, per spec.md §4.7. It aborts with ErrTooManyStates if the
// powerstate index would exceed MaxStates, and reports
// ErrUnsatisfiable if, after promotion, the accept state is unreachable
// from the start powerstate under any combination of classes.
func Promote(numStates int, startClosure bitset.Set1D, acceptState int, classes []Class) (*DFA, error) {
	d := &DFA{NumStates: numStates}

	null := bitset.NewSet1D(numStates)
	d.powerstates = append(d.powerstates, null)
	d.powerstates = append(d.powerstates, startClosure)

	index := map[string]int{
		powerstateKey(&null):        Null,
		powerstateKey(&startClosure): Start,
	}

	d.setTable = make([][]int, len(classes))
	for ci := range classes {
		d.setTable[ci] = []int{Null, Null} // placeholders, fixed size below once total known
	}

	// Worklist-driven BFS over the powerset. d.powerstates grows as new
	// powerstates are discovered; we keep per-class tables in lockstep,
	// resized to match.
	queue := []int{Start}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]

		for ci, class := range classes {
			successor := bitset.NewSet1D(numStates)
			it := d.powerstates[p].Ones()
			for {
				s, ok := it.Next()
				if !ok {
					break
				}
				row := class.Row(s)
				successor.UnionWith(&row)
			}

			key := powerstateKey(&successor)
			idx, seen := index[key]
			if !seen {
				if len(d.powerstates) >= MaxStates {
					return nil, fmt.Errorf("%w: exceeded %d states", ErrTooManyStates, MaxStates)
				}
				idx = len(d.powerstates)
				index[key] = idx
				d.powerstates = append(d.powerstates, successor)
				for c := range d.setTable {
					d.setTable[c] = append(d.setTable[c], Null)
				}
				queue = append(queue, idx)
			}
			for len(d.setTable[ci]) <= p {
				d.setTable[ci] = append(d.setTable[ci], Null)
			}
			d.setTable[ci][p] = idx
		}
	}

	d.terminal = make([]bool, len(d.powerstates))
	anyTerminal := false
	for i, ps := range d.powerstates {
		if ps.Contains(acceptState) {
			d.terminal[i] = true
			anyTerminal = true
		}
	}
	if !anyTerminal {
		return nil, ErrUnsatisfiable
	}
	return d, nil
}

// powerstateKey produces a comparable identity for a powerstate bitset,
// used to dedupe the powerset index the way the original implementation
// used an IndexSet keyed by the bitset's contents.
func powerstateKey(s *bitset.Set1D) string {
	var b []byte
	it := s.Ones()
	for {
		i, ok := it.Next()
		if !ok {
			break
		}
		b = append(b, byte(i), byte(i>>8), byte(i>>16), byte(i>>24))
	}
	return string(b)
}

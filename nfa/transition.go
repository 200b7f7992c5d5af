package nfa

import (
	"github.com/noodleword/noodle/alphabet"
	"github.com/noodleword/noodle/bitset"
)

// Table is the per-word transition table from spec.md §4.5: a 3D bitset
// T[char_index][from_state][fuzz_used] → set of to_state. The (from,
// fuzz) pair is flattened into a single "row" dimension so it can be
// backed by bitset.Set3D, whose three dimensions here are
// [char_index][from*  (fuzzMax+1) + fuzz][to_state].
type Table struct {
	bits      bitset.Set3D
	numStates int
	fuzzMax   int
}

func (t *Table) rowIndex(from, fuzz int) int { return from*(t.fuzzMax+1) + fuzz }

// Row returns the reachable-state set for a given character index, from
// state, and fuzz level, sharing backing storage with the table.
func (t *Table) Row(charIndex, from, fuzz int) bitset.Set1D {
	return t.bits.Row(charIndex, t.rowIndex(from, fuzz))
}

// NumStates returns the NFA state count this table was sized for.
func (t *Table) NumStates() int { return t.numStates }

// FuzzMax returns the maximum fuzz level this table tracks.
func (t *Table) FuzzMax() int { return t.fuzzMax }

// NewTable allocates a Table for an NFA of numStates states, a fuzz
// budget of fuzzMax, and a word of the given length.
func NewTable(numStates, fuzzMax, length int) Table {
	rows := numStates * (fuzzMax + 1)
	return Table{
		bits:      bitset.NewSet3D(length+1, rows, numStates),
		numStates: numStates,
		fuzzMax:   fuzzMax,
	}
}

// FillTransitionTable runs the incremental edit-distance propagation
// from spec.md §4.5 over chars, starting from the table's row 0 (which
// it seeds with each state's own epsilon closure). It returns the table
// and the length of the longest prefix of chars that remained reachable
// from at least one (from, fuzz) pair — equal to len(chars) unless every
// reach goes empty partway through, the caller's prefix-reuse signal.
func FillTransitionTable(expr *Expression, chars []alphabet.Symbol, fuzzMax int) (*Table, int) {
	numStates := len(expr.States)
	t := NewTable(numStates, fuzzMax, len(chars))
	seedTable(&t, expr)

	lastValid := 0
	for k := 0; k < len(chars); k++ {
		c := chars[k]
		stepOneChar(&t, expr, k, c)
		enforceFuzzMinimality(&t, k+1)
		if rowIsEmpty(&t, k+1) {
			return &t, lastValid
		}
		lastValid = k + 1
	}
	return &t, lastValid
}

// FillTransitionTableFrom is FillTransitionTable with the prefix-sharing
// fast path from spec.md §4.5: if chars shares a prefix of length p with
// prevChars, rows T[0..p] are copied from prevTable (whose own longest
// valid prefix was prevLastValid) instead of recomputed, and only
// T[p..] is filled fresh. Pass a nil prevTable (or an empty prevChars)
// to fall back to filling from scratch, equivalent to
// FillTransitionTable. It returns the table, the longest valid prefix
// exactly as FillTransitionTable does, and the shared-prefix length p
// that was reused (0 if none), for the caller's prefix-sharing stats.
func FillTransitionTableFrom(expr *Expression, chars []alphabet.Symbol, fuzzMax int, prevChars []alphabet.Symbol, prevTable *Table, prevLastValid int) (table *Table, lastValid, sharedPrefix int) {
	p := commonPrefixLen(prevChars, chars)

	t := NewTable(len(expr.States), fuzzMax, len(chars))

	start := 0
	if p > 0 && prevTable != nil && fuzzMax == prevTable.fuzzMax {
		copyPrefixRows(&t, prevTable, p)
		lastValid = prevLastValid
		if lastValid > p {
			lastValid = p
		}
		start = p
	} else {
		seedTable(&t, expr)
		p = 0
	}

	for k := start; k < len(chars); k++ {
		c := chars[k]
		stepOneChar(&t, expr, k, c)
		enforceFuzzMinimality(&t, k+1)
		if rowIsEmpty(&t, k+1) {
			return &t, lastValid, p
		}
		lastValid = k + 1
	}
	return &t, lastValid, p
}

// copyPrefixRows copies src's rows T[0..throughK] into dst, reusing a
// shared word prefix's already-computed reach instead of recomputing it.
func copyPrefixRows(dst, src *Table, throughK int) {
	for k := 0; k <= throughK; k++ {
		for from := 0; from < dst.numStates; from++ {
			for f := 0; f <= dst.fuzzMax; f++ {
				d := dst.Row(k, from, f)
				s := src.Row(k, from, f)
				d.CopyFrom(&s)
			}
		}
	}
}

// commonPrefixLen returns the length of the longest shared prefix of a
// and b.
func commonPrefixLen(a, b []alphabet.Symbol) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}

func seedTable(t *Table, expr *Expression) {
	for from := 0; from < t.numStates; from++ {
		row := t.Row(0, from, 0)
		closure := expr.States[from].Epsilon
		row.UnionWith(&closure)
	}
}

func stepOneChar(t *Table, expr *Expression, k int, c alphabet.Symbol) {
	exactClass := alphabet.Single(c)
	for from := 0; from < t.numStates; from++ {
		for f := 0; f <= t.fuzzMax; f++ {
			src := t.Row(k, from, f)
			if src.IsEmpty() {
				continue
			}

			// Exact step: consume c as written.
			dst := t.Row(k+1, from, f)
			stepClass(expr, &src, exactClass, &dst)

			if f >= t.fuzzMax {
				continue
			}

			// Deletion: skip a character of the word without advancing
			// the NFA; the unconsumed reach carries straight over.
			del := t.Row(k+1, from, f+1)
			del.UnionWith(&src)

			// Substitution: consume one arbitrary letter in place of c.
			sub := t.Row(k+1, from, f+1)
			stepClass(expr, &src, alphabet.Letters, &sub)

			// Insertion: the NFA consumes an extra letter, then c.
			inserted := bitset.NewSet1D(t.numStates)
			stepClass(expr, &src, alphabet.Letters, &inserted)
			ins := t.Row(k+1, from, f+1)
			stepClass(expr, &inserted, exactClass, &ins)
		}
	}
}

// stepClass advances every state in src whose CharClass intersects
// matchClass to the epsilon closure of its Next state, unioning the
// result into dst.
func stepClass(expr *Expression, src *bitset.Set1D, matchClass alphabet.CharClass, dst *bitset.Set1D) {
	it := src.Ones()
	for {
		s, ok := it.Next()
		if !ok {
			break
		}
		state := &expr.States[s]
		if state.IsEpsilonOnly() || !state.Class.IsIntersecting(matchClass) {
			continue
		}
		closure := expr.States[state.Next].Epsilon
		dst.UnionWith(&closure)
	}
}

// enforceFuzzMinimality subtracts every lower-fuzz result from each
// higher-fuzz row at character index k, maintaining the invariant that a
// state reachable with less fuzz never also appears at higher fuzz.
func enforceFuzzMinimality(t *Table, k int) {
	for from := 0; from < t.numStates; from++ {
		t.bits.CompactDistance(k, t.rowIndex(from, 0), t.fuzzMax+1)
	}
}

func rowIsEmpty(t *Table, k int) bool {
	for from := 0; from < t.numStates; from++ {
		for f := 0; f <= t.fuzzMax; f++ {
			if !t.Row(k, from, f).IsEmpty() {
				return false
			}
		}
	}
	return true
}

// AcceptReachable reports whether the NFA's accept state is present in
// T[charIndex][from][f] for any f in [0, fuzzMax].
func AcceptReachable(t *Table, expr *Expression, charIndex, from int) bool {
	accept := int(expr.Accept())
	for f := 0; f <= t.fuzzMax; f++ {
		if t.Row(charIndex, from, f).Contains(accept) {
			return true
		}
	}
	return false
}

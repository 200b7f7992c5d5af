// Package search implements the word matcher / class cache pass (C6) and
// the phrase product-DFS (C8) that sit between per-expression NFA
// compilation and the query evaluator.
package search

import (
	"github.com/noodleword/noodle/alphabet"
	"github.com/noodleword/noodle/bitset"
	"github.com/noodleword/noodle/dfa"
	"github.com/noodleword/noodle/nfa"
	"github.com/noodleword/noodle/word"
)

// nullClass is the reserved class id meaning "no transitions survive at
// all": a word bucketed here can never extend into a longer phrase and
// is dropped from the alive wordlist, per spec.md §4.6.
const nullClass = 0

// WordMatcher drives one expression's NFA over a wordlist, bucketing
// words by their net transition signature (their final-character
// cross-section of C5's table) so identical-signature words share a
// single cached row set instead of re-deriving it.
//
// This does not additionally merge equivalency classes that turn out to
// be identical beyond their signature bytes (an idea the original
// implementation's matcher left commented out in its finalize step without a
// correctness proof for how it interacts with the fuzz-minimality
// invariant); the signature map above already dedupes exact matches,
// which is the safe subset of that idea.
type WordMatcher struct {
	expr      *nfa.Expression
	fuzz      int
	numStates int

	classIndex map[string]int
	classRows  [][]bitset.Set1D // classRows[id][from*(fuzz+1)+f] = to-state set

	classOf map[string]int // word text -> class id, populated as words are classified

	// promoted is an optional C7 DFA built from ClassesFromAlphabet,
	// used both to fast-path the single-word accept/reject decision and
	// to step phrase-search layers (see SetDFA, StepDFA).
	promoted *dfa.DFA

	// prevChars/prevTable/prevLastValid carry the previous word's
	// transition table forward so a consecutive word sharing a prefix
	// only needs its suffix recomputed, per spec.md §4.5's prefix
	// sharing.
	prevChars     []alphabet.Symbol
	prevTable     *nfa.Table
	prevLastValid int

	stats MatcherStats
}

// MatcherStats reports the prefix-sharing and match counters the
// original implementation printed at the end of a word-matcher pass
// (`total_prefixed`, `total_matched`, `total_length` in query.rs),
// surfaced here as a queryable accessor instead of a println!.
type MatcherStats struct {
	TotalPrefixed int // symbols skipped across every classified word by reusing a shared prefix
	TotalMatched  int // words classified as an immediate single-word match
	TotalLength   int // total symbols processed across every classified word
}

// Stats returns the matcher's running prefix-sharing and match counters.
func (m *WordMatcher) Stats() MatcherStats { return m.stats }

// SetDFA installs a promoted DFA as the fast path for Classify's
// single-word match decision and, per spec.md §4.8, for phrase-layer
// reach stepping in place of the NFA bitset representation. Pass nil to
// clear it.
func (m *WordMatcher) SetDFA(d *dfa.DFA) { m.promoted = d }

// HasDFA reports whether a promoted DFA was installed via SetDFA.
func (m *WordMatcher) HasDFA() bool { return m.promoted != nil }

// DFAStart returns the powerstate a fresh phrase-search layer begins at
// for this matcher; callers must check HasDFA first.
func (m *WordMatcher) DFAStart() int { return dfa.Start }

// StepDFA advances powerstate p by one word using the promoted DFA,
// returning the successor powerstate, whether it is terminal, and
// whether it is the dead powerstate. Callers must check HasDFA first.
func (m *WordMatcher) StepDFA(p int, w word.Word) (next int, accepted, empty bool) {
	chars := m.effectiveChars(w)
	next, accepted = dfa.StepWordFrom(m.promoted, p, chars)
	return next, accepted, next == dfa.Null
}

// NewWordMatcher builds a matcher for a compiled expression. fuzz is
// normally expr.Fuzz; the caller passes it explicitly so layer state can
// be sized uniformly across every matcher in a pipeline.
func NewWordMatcher(expr *nfa.Expression, fuzz int) *WordMatcher {
	m := &WordMatcher{
		expr:       expr,
		fuzz:       fuzz,
		numStates:  expr.NumStates(),
		classIndex: map[string]int{},
		classOf:    map[string]int{},
	}
	null := make([]bitset.Set1D, m.numStates*(m.fuzz+1))
	for i := range null {
		empty := bitset.NewSet1D(m.numStates)
		null[i] = empty
	}
	m.classIndex[rowsKey(null)] = nullClass
	m.classRows = append(m.classRows, null)
	return m
}

// NumStates returns the NFA state count this matcher was built over.
func (m *WordMatcher) NumStates() int { return m.numStates }

// Fuzz returns the fuzz budget this matcher steps at.
func (m *WordMatcher) Fuzz() int { return m.fuzz }

// Expr returns the compiled expression this matcher wraps.
func (m *WordMatcher) Expr() *nfa.Expression { return m.expr }

// netRows extracts table's cross-section at charIndex as one row per
// (from, fuzz) pair, the class signature spec.md §4.6 buckets words by.
func (m *WordMatcher) netRows(table *nfa.Table, charIndex int) []bitset.Set1D {
	rows := make([]bitset.Set1D, m.numStates*(m.fuzz+1))
	for from := 0; from < m.numStates; from++ {
		for f := 0; f <= m.fuzz; f++ {
			rows[from*(m.fuzz+1)+f] = table.Row(charIndex, from, f)
		}
	}
	return rows
}

func rowsKey(rows []bitset.Set1D) string {
	var b []byte
	for _, r := range rows {
		it := r.Ones()
		for {
			i, ok := it.Next()
			if !ok {
				break
			}
			b = append(b, byte(i), byte(i>>8))
		}
		b = append(b, 0xFF)
	}
	return string(b)
}

// Classify runs w through the NFA and returns its class id and whether
// it is itself an immediate single-word match (the accept state is
// reachable from state 0 at any fuzz level after consuming every
// symbol).
func (m *WordMatcher) Classify(w word.Word) (classID int, isMatch bool) {
	if id, ok := m.classOf[w.Text]; ok {
		return id, m.acceptsAtFullLength(id)
	}

	chars := m.effectiveChars(w)
	m.stats.TotalLength += len(chars)

	var fastMatch bool
	haveFast := m.promoted != nil
	if haveFast {
		_, fastMatch = dfa.StepWord(m.promoted, chars)
	}

	table, lastValid, shared := nfa.FillTransitionTableFrom(m.expr, chars, m.fuzz, m.prevChars, m.prevTable, m.prevLastValid)
	m.stats.TotalPrefixed += shared
	m.prevChars = chars
	m.prevTable = table
	m.prevLastValid = lastValid

	if lastValid != len(chars) {
		m.classOf[w.Text] = nullClass
		return nullClass, false
	}

	rows := m.netRows(table, len(chars))
	key := rowsKey(rows)
	id, ok := m.classIndex[key]
	if !ok {
		id = len(m.classRows)
		m.classIndex[key] = id
		m.classRows = append(m.classRows, rows)
	}
	m.classOf[w.Text] = id

	isMatch = fastMatch
	if !haveFast {
		isMatch = nfa.AcceptReachable(table, m.expr, len(chars), 0)
	}
	if isMatch {
		m.stats.TotalMatched++
	}
	return id, isMatch
}

// effectiveChars returns the symbol sequence a word is matched against:
// the full folded sequence (including the trailing WordEnd marker) only
// when the expression explicitly matches word boundaries, since most
// expressions never mention alphabet.WordEnd and would otherwise dead-end
// on every word's final symbol.
func (m *WordMatcher) effectiveChars(w word.Word) []alphabet.Symbol {
	if !m.expr.IgnoreWhitespace && len(w.Chars) > 0 {
		return w.Chars
	}
	if len(w.Chars) == 0 {
		return w.Chars
	}
	return w.Chars[:len(w.Chars)-1]
}

// acceptsAtFullLength reports whether class id's from=0 rows reach the
// accept state at any fuzz level, used to answer repeated Classify calls
// for a word without recomputing its table.
func (m *WordMatcher) acceptsAtFullLength(id int) bool {
	accept := int(m.expr.Accept())
	rows := m.classRows[id]
	for f := 0; f <= m.fuzz; f++ {
		row := rows[0*(m.fuzz+1)+f]
		if row.Contains(accept) {
			return true
		}
	}
	return false
}

// ClassifyAll classifies every word in order, returning the single-word
// matches and the subset that survived into a non-null class (the
// "alive" wordlist for the next matcher or the phrase pass).
func (m *WordMatcher) ClassifyAll(words []word.Word) (matches, alive []word.Word) {
	for _, w := range words {
		id, isMatch := m.Classify(w)
		if isMatch {
			matches = append(matches, w)
		}
		if id != nullClass {
			alive = append(alive, w)
		}
	}
	return matches, alive
}

// Step advances a fuzz x state reach (one row per fuzz level, sized
// NumStates() columns) across word w's class, per spec.md §4.8: for
// every (src, f) in reach, union class.T[src][fd] into next[f+fd] for
// every fd with f+fd <= fuzz. It reports whether the accept state is
// present at any fuzz level in the result and whether the result is
// empty.
func (m *WordMatcher) Step(reach bitset.Set2D, classID int) (next bitset.Set2D, anyAccept, empty bool) {
	next = bitset.NewSet2D(m.fuzz+1, m.numStates)
	rows := m.classRows[classID]

	for f := 0; f <= m.fuzz; f++ {
		src := reach.Row(f)
		it := src.Ones()
		for {
			s, ok := it.Next()
			if !ok {
				break
			}
			for fd := 0; f+fd <= m.fuzz; fd++ {
				to := rows[s*(m.fuzz+1)+fd]
				dst := next.Row(f + fd)
				dst.UnionWith(&to)
			}
		}
	}

	accept := int(m.expr.Accept())
	empty = true
	for f := 0; f <= m.fuzz; f++ {
		row := next.Row(f)
		if !row.IsEmpty() {
			empty = false
		}
		if row.Contains(accept) {
			anyAccept = true
		}
	}
	return next, anyAccept, empty
}

// StartReach builds the fuzz x state reach seeded with the NFA's start
// closure at fuzz 0, the seed for SearchLayer 0 in the phrase pass.
func (m *WordMatcher) StartReach() bitset.Set2D {
	reach := bitset.NewSet2D(m.fuzz+1, m.numStates)
	row := reach.Row(0)
	start := m.expr.StartClosure()
	row.UnionWith(&start)
	return reach
}

// set2DIsSubset reports whether every row of a is a subset of the
// corresponding row of b.
func set2DIsSubset(a, b *bitset.Set2D) bool {
	rows := a.Rows()
	for r := 0; r < rows; r++ {
		ra := a.Row(r)
		rb := b.Row(r)
		if !ra.IsSubset(&rb) {
			return false
		}
	}
	return true
}

// PipelineStats reports the convergence-pass statistics the original
// implementation printed once the alive wordlist reached a fixed point
// (`optimizing took {:?} in {} passes, wordlist shrunk {} -> {}` in
// query.rs), surfaced here instead as a return value the evaluator logs.
type PipelineStats struct {
	ConvergencePasses int // reverse-order passes run after the initial forward pass
	InitialAlive      int // alive wordlist size after the forward pass, before convergence
	FinalAlive        int // alive wordlist size once convergence reached a fixed point
}

// RunPipeline streams words through a sequence of matchers in order
// (matcher i+1 only sees matcher i's alive wordlist), per spec.md §4.6's
// "Pipelined matchers". A word is a final single-word match iff every
// matcher classified it as a match. After the forward pass, matchers are
// re-run in reverse order against the shrunk alive wordlist until no
// further shrinkage occurs (the convergence optimization).
func RunPipeline(matchers []*WordMatcher, words []word.Word) (matches, alive []word.Word, stats PipelineStats) {
	if len(matchers) == 0 {
		return nil, words, PipelineStats{InitialAlive: len(words), FinalAlive: len(words)}
	}

	matchSet := make(map[string]bool)
	current := words
	for i, m := range matchers {
		wordMatches, next := m.ClassifyAll(current)
		if i == 0 {
			for _, w := range wordMatches {
				matchSet[w.Text] = true
			}
		} else {
			thisSet := make(map[string]bool, len(wordMatches))
			for _, w := range wordMatches {
				thisSet[w.Text] = true
			}
			for k := range matchSet {
				if !thisSet[k] {
					delete(matchSet, k)
				}
			}
		}
		current = next
	}
	stats.InitialAlive = len(current)

	for {
		stats.ConvergencePasses++
		shrank := false
		for i := len(matchers) - 1; i >= 0; i-- {
			_, next := matchers[i].ClassifyAll(current)
			if len(next) != len(current) {
				shrank = true
			}
			current = next
		}
		if !shrank {
			break
		}
	}
	stats.FinalAlive = len(current)

	for _, w := range words {
		if matchSet[w.Text] {
			matches = append(matches, w)
		}
	}
	return matches, current, stats
}

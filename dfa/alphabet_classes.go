package dfa

import (
	"github.com/noodleword/noodle/alphabet"
	"github.com/noodleword/noodle/bitset"
	"github.com/noodleword/noodle/nfa"
)

// ClassesFromAlphabet builds one equivalency Class per symbol of
// alphabet.Size, each a fuzz-0 transition table over expr: Class i's
// Table row s is the epsilon closure reached by consuming symbol i from
// NFA state s. Unlike the wordlist-driven class discovery C6 performs
// for bucketing (which only ever sees the signatures actual words
// produce), this builds every symbol's class up front from the NFA's
// structure alone, since a fuzz-0 expression's alphabet is small and
// fixed (alphabet.Size symbols) regardless of which words exist.
func ClassesFromAlphabet(expr *nfa.Expression) []Class {
	n := expr.NumStates()
	classes := make([]Class, alphabet.Size)
	for sym := alphabet.Symbol(0); int(sym) < alphabet.Size; sym++ {
		table := bitset.NewSet2D(n, n)
		matchClass := alphabet.Single(sym)
		for from := 0; from < n; from++ {
			dst := table.Row(from)
			src := expr.EpsilonClosure(nfa.StateID(from))
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
		classes[sym] = Class{Table: table}
	}
	return classes
}

// StepWord walks chars through d starting from Start, returning the
// final powerstate and whether it is terminal.
func StepWord(d *DFA, chars []alphabet.Symbol) (powerstate int, accepted bool) {
	return StepWordFrom(d, Start, chars)
}

// StepWordFrom walks chars through d starting from an arbitrary
// powerstate p, returning the final powerstate and whether it is
// terminal. This is what lets the phrase search's DFS advance a single
// promoted-DFA powerstate one word at a time instead of restarting from
// Start at every layer, per spec.md §4.8's DFA-stepping branch.
func StepWordFrom(d *DFA, p int, chars []alphabet.Symbol) (powerstate int, accepted bool) {
	for _, c := range chars {
		p = d.Step(int(c), p)
		if p == Null {
			return Null, false
		}
	}
	return p, d.IsTerminal(p)
}

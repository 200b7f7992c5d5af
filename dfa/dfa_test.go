package dfa

import (
	"errors"
	"testing"

	"github.com/noodleword/noodle/alphabet"
	"github.com/noodleword/noodle/bitset"
	"github.com/noodleword/noodle/nfa"
	"github.com/noodleword/noodle/query"
)

func charClass(r rune) query.Ast {
	return query.NewCharClass(alphabet.Single(alphabet.Fold(r)))
}

func compileLiteral(t *testing.T, word string) *nfa.Expression {
	t.Helper()
	var children []query.Ast
	for _, r := range word {
		children = append(children, charClass(r))
	}
	root := query.NewSequence(children)
	expr, err := nfa.Compile(root, 0, word, query.ExpressionOptions{})
	if err != nil {
		t.Fatalf("Compile(%q) error: %v", word, err)
	}
	return expr
}

// classesForAlphabet builds one Class per letter actually used in word,
// each a fuzz-0 transition table over expr, the way C6 would collect
// distinct per-word-set transition signatures.
func classesForAlphabet(expr *nfa.Expression, letters []rune) ([]Class, map[rune]int) {
	index := map[rune]int{}
	var classes []Class
	n := expr.NumStates()
	for i, r := range letters {
		index[r] = i
		table := bitset.NewSet2D(n, n)
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
				if state.IsEpsilonOnly() {
					continue
				}
				if !state.Class.Contains(alphabet.Fold(r)) {
					continue
				}
				closure := expr.States[state.Next].Epsilon
				dst.UnionWith(&closure)
			}
		}
		classes = append(classes, Class{Table: table})
	}
	return classes, index
}

func TestPromoteAcceptsExactWord(t *testing.T) {
	expr := compileLiteral(t, "cat")
	classes, index := classesForAlphabet(expr, []rune{'c', 'a', 't'})

	d, err := Promote(expr.NumStates(), expr.StartClosure(), int(expr.Accept()), classes)
	if err != nil {
		t.Fatalf("Promote error: %v", err)
	}

	p := Start
	for _, r := range "cat" {
		p = d.Step(index[r], p)
	}
	if !d.IsTerminal(p) {
		t.Errorf("expected \"cat\" to land on a terminal powerstate")
	}
}

func TestPromoteRejectsMismatch(t *testing.T) {
	expr := compileLiteral(t, "cat")
	classes, index := classesForAlphabet(expr, []rune{'c', 'a', 't', 'd', 'o', 'g'})

	d, err := Promote(expr.NumStates(), expr.StartClosure(), int(expr.Accept()), classes)
	if err != nil {
		t.Fatalf("Promote error: %v", err)
	}

	p := Start
	for _, r := range "dog" {
		p = d.Step(index[r], p)
	}
	if d.IsTerminal(p) {
		t.Errorf("did not expect \"dog\" to match a DFA promoted from \"cat\"")
	}
	if p != Null {
		t.Errorf("expected mismatched word to land on the null powerstate, got %d", p)
	}
}

func TestPromoteUnsatisfiableWhenAcceptMissingFromStart(t *testing.T) {
	// A start closure that never contains the accept state and a class
	// set with no transitions at all can never reach acceptState.
	n := 2
	classes := []Class{{Table: bitset.NewSet2D(n, n)}}
	start := bitset.NewSet1D(n)
	start.Insert(0)

	_, err := Promote(n, start, 1, classes)
	if !errors.Is(err, ErrUnsatisfiable) {
		t.Fatalf("expected ErrUnsatisfiable, got %v", err)
	}
}

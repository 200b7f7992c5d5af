package search

import (
	"testing"

	"github.com/noodleword/noodle/alphabet"
	"github.com/noodleword/noodle/dfa"
	"github.com/noodleword/noodle/nfa"
	"github.com/noodleword/noodle/query"
	"github.com/noodleword/noodle/word"
)

func TestPhraseSearchFindsTwoWordPhrase(t *testing.T) {
	// expression matches exactly 6 letters; "cat"+"dog" (6 letters
	// total) should be found as a depth-2 phrase.
	six := 6
	root := query.NewRepetition(query.NewCharClass(alphabet.Letters), 6, &six)
	expr, err := nfa.Compile(root, 0, ".{6}", query.ExpressionOptions{})
	if err != nil {
		t.Fatalf("Compile error: %v", err)
	}
	m := NewWordMatcher(expr, 0)

	words := []word.Word{
		word.New("cat", 0, 0),
		word.New("dog", 0, 0),
		word.New("a", 0, 0),
	}
	_, alive, _ := RunPipeline([]*WordMatcher{m}, words)

	ps := NewPhraseSearch([]*WordMatcher{m}, alive, 3)
	found := false
	for {
		phrase, done := ps.Next(-1)
		if done {
			break
		}
		if phrase == nil {
			continue
		}
		if len(phrase.Words) == 2 && phrase.Words[0].Text == "cat" && phrase.Words[1].Text == "dog" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected to find the phrase [cat dog]")
	}
}

func TestPhraseSearchUsesPromotedDFA(t *testing.T) {
	// Same expression and wordlist as TestPhraseSearchFindsTwoWordPhrase,
	// but this time the matcher carries a promoted DFA, exercising the
	// phrase DFS's DFA-stepping branch instead of the NFA bitset one.
	six := 6
	root := query.NewRepetition(query.NewCharClass(alphabet.Letters), 6, &six)
	expr, err := nfa.Compile(root, 0, ".{6}", query.ExpressionOptions{})
	if err != nil {
		t.Fatalf("Compile error: %v", err)
	}
	m := NewWordMatcher(expr, 0)

	classes := dfa.ClassesFromAlphabet(expr)
	d, err := dfa.Promote(expr.NumStates(), expr.StartClosure(), int(expr.Accept()), classes)
	if err != nil {
		t.Fatalf("Promote error: %v", err)
	}
	m.SetDFA(d)
	if !m.HasDFA() {
		t.Fatalf("expected HasDFA to report true after SetDFA")
	}

	words := []word.Word{
		word.New("cat", 0, 0),
		word.New("dog", 0, 0),
		word.New("a", 0, 0),
	}
	_, alive, _ := RunPipeline([]*WordMatcher{m}, words)

	ps := NewPhraseSearch([]*WordMatcher{m}, alive, 3)
	found := false
	for {
		phrase, done := ps.Next(-1)
		if done {
			break
		}
		if phrase == nil {
			continue
		}
		if len(phrase.Words) == 2 && phrase.Words[0].Text == "cat" && phrase.Words[1].Text == "dog" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected the DFA-backed search to find the phrase [cat dog]")
	}
}

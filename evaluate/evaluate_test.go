package evaluate

import (
	"testing"
	"time"

	"github.com/noodleword/noodle/query"
	"github.com/noodleword/noodle/word"
)

func mustParse(t *testing.T, text string) query.QueryAst {
	t.Helper()
	ast, err := query.Parse(text)
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", text, err)
	}
	return ast
}

func drain(t *testing.T, e *Evaluator) []word.Word {
	t.Helper()
	var matched []word.Word
	for i := 0; i < 10000; i++ {
		ev := e.Next(time.Time{})
		switch ev.Kind {
		case EventMatch:
			matched = append(matched, ev.Words...)
		case EventComplete:
			return matched
		case EventTimeout:
			t.Fatalf("unexpected timeout with no deadline set")
		}
	}
	t.Fatalf("evaluator did not complete within step budget")
	return nil
}

func TestEvaluatorSingleWordMatch(t *testing.T) {
	ast := mustParse(t, "(cat)")
	words := []word.Word{
		word.New("cat", 0, 0),
		word.New("dog", 0, 0),
		word.New("cats", 0, 0),
	}
	e, err := New(ast, words)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	matched := drain(t, e)
	if len(matched) != 1 || matched[0].Text != "cat" {
		t.Fatalf("expected exactly [\"cat\"], got %v", matched)
	}
}

func TestEvaluatorRespectsResultsLimit(t *testing.T) {
	ast := mustParse(t, "(.); #limit 2")
	words := []word.Word{
		word.New("a", 0, 0),
		word.New("b", 0, 0),
		word.New("c", 0, 0),
	}
	e, err := New(ast, words)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	matched := drain(t, e)
	if len(matched) != 2 {
		t.Fatalf("expected results_limit=2 to cap matches, got %d", len(matched))
	}
}

func TestEvaluatorPhraseMatch(t *testing.T) {
	ast := mustParse(t, "(catdog)")
	words := []word.Word{
		word.New("cat", 0, 0),
		word.New("dog", 0, 0),
	}
	e, err := New(ast, words)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	matched := drain(t, e)
	found := false
	for _, w := range matched {
		if w.Text == "cat" || w.Text == "dog" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected the phrase pass to surface cat/dog as part of a match, got %v", matched)
	}
}

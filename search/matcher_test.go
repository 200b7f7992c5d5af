package search

import (
	"testing"

	"github.com/noodleword/noodle/alphabet"
	"github.com/noodleword/noodle/nfa"
	"github.com/noodleword/noodle/query"
	"github.com/noodleword/noodle/word"
)

func charClass(r rune) query.Ast {
	return query.NewCharClass(alphabet.Single(alphabet.Fold(r)))
}

func compileLiteral(t *testing.T, text string, fuzz int) *nfa.Expression {
	t.Helper()
	var children []query.Ast
	for _, r := range text {
		children = append(children, charClass(r))
	}
	root := query.NewSequence(children)
	expr, err := nfa.Compile(root, fuzz, text, query.ExpressionOptions{})
	if err != nil {
		t.Fatalf("Compile(%q) error: %v", text, err)
	}
	return expr
}

func TestWordMatcherClassifiesExactMatch(t *testing.T) {
	expr := compileLiteral(t, "cat", 0)
	m := NewWordMatcher(expr, 0)

	cat := word.New("cat", 0, 0)
	dog := word.New("dog", 0, 0)

	_, isMatch := m.Classify(cat)
	if !isMatch {
		t.Errorf("expected \"cat\" to match its own literal expression")
	}
	_, isMatch = m.Classify(dog)
	if isMatch {
		t.Errorf("did not expect \"dog\" to match")
	}
}

func TestWordMatcherBucketsIdenticalSignaturesTogether(t *testing.T) {
	// "a." matches any 2-letter word starting with 'a'; "az" and "aq"
	// should land in the same non-null class since both are matches and
	// both produce an identical reach after consuming their second
	// letter.
	root := query.NewSequence([]query.Ast{charClass('a'), query.NewCharClass(alphabet.Letters)})
	expr, err := nfa.Compile(root, 0, "a.", query.ExpressionOptions{})
	if err != nil {
		t.Fatalf("Compile error: %v", err)
	}
	m := NewWordMatcher(expr, 0)

	az := word.New("az", 0, 0)
	aq := word.New("aq", 0, 0)
	idAz, _ := m.Classify(az)
	idAq, _ := m.Classify(aq)
	if idAz != idAq {
		t.Errorf("expected \"az\" and \"aq\" in the same class, got %d and %d", idAz, idAq)
	}
	if idAz == nullClass {
		t.Errorf("expected a non-null class for words matching the expression")
	}
}

func TestWordMatcherStatsTracksPrefixSharingAndMatches(t *testing.T) {
	expr := compileLiteral(t, "cats", 0)
	m := NewWordMatcher(expr, 0)

	// "cat" then "cats": the second word shares a 3-symbol prefix with
	// the first, which Classify should record via Stats().
	m.Classify(word.New("cat", 0, 0))
	m.Classify(word.New("cats", 0, 0))

	stats := m.Stats()
	if stats.TotalPrefixed == 0 {
		t.Errorf("expected TotalPrefixed > 0 after classifying a shared-prefix word, got %+v", stats)
	}
	if stats.TotalMatched != 1 {
		t.Errorf("expected exactly 1 match (\"cats\"), got %+v", stats)
	}
	if stats.TotalLength != 7 {
		t.Errorf("expected TotalLength to sum to 3+4=7 symbols, got %+v", stats)
	}
}

func TestRunPipelineFiltersOnEveryMatcher(t *testing.T) {
	catExpr := compileLiteral(t, "cat", 0)
	letterExpr := func() *nfa.Expression {
		root := query.NewRepetition(query.NewCharClass(alphabet.Letters), 1, nil)
		e, err := nfa.Compile(root, 0, ".+", query.ExpressionOptions{})
		if err != nil {
			t.Fatalf("Compile error: %v", err)
		}
		return e
	}()

	m1 := NewWordMatcher(catExpr, 0)
	m2 := NewWordMatcher(letterExpr, 0)

	words := []word.Word{
		word.New("cat", 0, 0),
		word.New("dog", 0, 0),
	}
	matches, alive, _ := RunPipeline([]*WordMatcher{m1, m2}, words)
	if len(matches) != 1 || matches[0].Text != "cat" {
		t.Fatalf("expected exactly [\"cat\"] to match both matchers, got %v", matches)
	}
	if len(alive) == 0 {
		t.Errorf("expected at least one alive word to survive the pipeline")
	}
}

// Package noodle is a word and phrase search engine for constrained,
// fuzzy, and anagram-style word puzzles.
//
// noodle compiles a small regex-like query language — character
// classes, repetition, alternation, partial groups, and anagram forms —
// into NFAs, then streams a wordlist through them to find single words
// and multi-word phrases that satisfy every expression in a query
// simultaneously.
//
// Basic usage:
//
//	ast, err := noodle.Parse("(c[ao]t)")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	words := []word.Word{word.New("cat", 0, 0), word.New("cot", 0, 0)}
//	ev, err := noodle.NewEvaluator(ast, words)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for {
//	    ev := ev.Next(time.Time{})
//	    if ev.Kind == evaluate.EventComplete {
//	        break
//	    }
//	    // handle ev.Words, ev.Logs, ...
//	}
//
// Limitations:
//   - Wordlist loading is a host concern; noodle only accepts an
//     already-resident []word.Word.
//   - There is no persistent index: every query rebuilds its NFAs.
package noodle

import (
	"time"

	"github.com/noodleword/noodle/evaluate"
	"github.com/noodleword/noodle/query"
	"github.com/noodleword/noodle/word"
)

// Parse parses query text into a QueryAst, per the grammar in spec.md
// §6: lines separated by newline or semicolon, each either an
// expression, a pragma (#words/#dict/#limit/#quiet), a macro
// definition, a comment, or blank.
func Parse(text string) (query.QueryAst, error) {
	return query.Parse(text)
}

// NewEvaluator compiles every expression in ast and prepares an
// Evaluator to drive the word matcher and phrase search passes over
// words. The wordlist is read-only and shared by reference; the caller
// owns it for the evaluator's lifetime.
func NewEvaluator(ast query.QueryAst, words []word.Word) (*evaluate.Evaluator, error) {
	return evaluate.New(ast, words)
}

// Run parses text and drives it to completion in one call, collecting
// every Match event's words into a single slice. It is a convenience
// wrapper for callers that don't need streaming, deadlines, or Logs —
// production use should call Parse and NewEvaluator directly and drive
// Evaluator.Next itself.
func Run(text string, words []word.Word) ([]word.Word, error) {
	ast, err := Parse(text)
	if err != nil {
		return nil, err
	}
	ev, err := NewEvaluator(ast, words)
	if err != nil {
		return nil, err
	}

	var results []word.Word
	for {
		event := ev.Next(time.Time{})
		switch event.Kind {
		case evaluate.EventMatch:
			results = append(results, event.Words...)
		case evaluate.EventComplete, evaluate.EventTimeout:
			return results, nil
		}
	}
}

// Package evaluate drives a parsed query to completion: it compiles
// each expression, runs the word matcher pipeline, then the phrase DFS,
// and streams out the resulting events. It corresponds to component C9.
package evaluate

import (
	"fmt"
	"strings"
	"time"

	"github.com/noodleword/noodle/dfa"
	"github.com/noodleword/noodle/nfa"
	"github.com/noodleword/noodle/query"
	"github.com/noodleword/noodle/search"
	"github.com/noodleword/noodle/word"
)

// DefaultMaxWords and DefaultResultsLimit are the fallback query limits
// from spec.md §6, applied when a query's pragmas leave them unset.
const (
	DefaultMaxWords     = 10
	DefaultResultsLimit = 300
)

// DeadlineCheckInterval is how many phrase-search DFS steps run between
// deadline checks, per spec.md §4.9.
const DeadlineCheckInterval = 256

// Phase is one of the evaluator's three states.
type Phase int

const (
	PhaseWord Phase = iota
	PhrasePhase
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseWord:
		return "Word"
	case PhrasePhase:
		return "Phrase"
	case PhaseDone:
		return "Done"
	default:
		return "Unknown"
	}
}

// EventKind discriminates the events the evaluator streams out.
type EventKind int

const (
	EventMatch EventKind = iota
	EventLogs
	EventTimeout
	EventComplete
)

// Event is one step's outcome. Exactly the field matching Kind is
// meaningful.
type Event struct {
	Kind    EventKind
	Words   []word.Word // EventMatch
	Logs    []string    // EventLogs
	Summary string      // EventComplete
}

// Evaluator drives one query to completion, per spec.md §4.9. It is not
// safe for concurrent use; a surrounding server runs one per query and
// may run many in parallel.
type Evaluator struct {
	ast          query.QueryAst
	words        []word.Word
	maxWords     int
	resultsLimit int

	matchers      []*search.WordMatcher
	dfas          []*dfa.DFA // dfas[i] is non-nil iff matchers[i]'s expression promoted
	pipelineStats search.PipelineStats

	phase        Phase
	pendingLogs  []string
	wordMatches  []word.Word
	wordCursor   int
	alive        []word.Word
	phraseSearch *search.PhraseSearch

	matchCount int
}

// New builds an evaluator for ast over words, compiling every expression
// and running the word-matcher pass eagerly (spec.md's Phase column
// only distinguishes Word-vs-Phrase from the caller's point of view; the
// pipeline itself runs the single-word pass in one shot because it must
// fully drain before phrase search can begin, per §4.6's "every matcher
// must be driven to exhaustion").
func New(ast query.QueryAst, words []word.Word) (*Evaluator, error) {
	e := &Evaluator{
		ast:          ast,
		words:        words,
		maxWords:     DefaultMaxWords,
		resultsLimit: DefaultResultsLimit,
		phase:        PhaseWord,
	}
	if ast.Options.MaxWords != nil {
		e.maxWords = *ast.Options.MaxWords
	}
	if ast.Options.ResultsLimit != nil {
		e.resultsLimit = *ast.Options.ResultsLimit
	}
	if len(ast.Warnings) > 0 && !ast.Options.Quiet {
		e.pendingLogs = append(e.pendingLogs, ast.Warnings...)
	}

	for _, expr := range ast.Expressions {
		compiled, err := nfa.Compile(expr.Root, expr.Options.Fuzz, "", expr.Options)
		if err != nil {
			return nil, err
		}
		m := search.NewWordMatcher(compiled, expr.Options.Fuzz)
		e.matchers = append(e.matchers, m)

		var d *dfa.DFA
		if expr.Options.Fuzz == 0 {
			classes := dfa.ClassesFromAlphabet(compiled)
			promoted, promoteErr := dfa.Promote(compiled.NumStates(), compiled.StartClosure(), int(compiled.Accept()), classes)
			switch promoteErr {
			case nil:
				d = promoted
				m.SetDFA(d)
			case dfa.ErrUnsatisfiable:
				if !ast.Options.Quiet {
					e.pendingLogs = append(e.pendingLogs, fmt.Sprintf("expression %q can never match: %v", expr.Root.String(), promoteErr))
				}
			default:
				// dfa.ErrTooManyStates: fall back to the NFA
				// representation silently, exactly as spec.md §4.7
				// prescribes.
			}
		}
		e.dfas = append(e.dfas, d)
	}

	e.wordMatches, e.alive, e.pipelineStats = search.RunPipeline(e.matchers, e.words)
	return e, nil
}

// Next drives the evaluator one step, honoring deadline if it is
// non-zero. It returns Timeout without mutating phase-advancing state if
// the deadline has already passed at a checkpoint.
func (e *Evaluator) Next(deadline time.Time) Event {
	if len(e.pendingLogs) > 0 {
		logs := e.pendingLogs
		e.pendingLogs = nil
		return Event{Kind: EventLogs, Logs: logs}
	}

	switch e.phase {
	case PhaseWord:
		return e.stepWord()
	case PhrasePhase:
		return e.stepPhrase(deadline)
	default:
		return Event{Kind: EventComplete, Summary: e.summaryString()}
	}
}

func (e *Evaluator) stepWord() Event {
	for e.wordCursor < len(e.wordMatches) {
		w := e.wordMatches[e.wordCursor]
		e.wordCursor++
		if e.matchCount >= e.resultsLimit {
			e.phase = PhaseDone
			return Event{Kind: EventComplete, Summary: e.summaryString()}
		}
		e.matchCount++
		return Event{Kind: EventMatch, Words: []word.Word{w}}
	}
	e.beginPhrase()
	if len(e.pendingLogs) > 0 {
		logs := e.pendingLogs
		e.pendingLogs = nil
		return Event{Kind: EventLogs, Logs: logs}
	}
	return e.stepPhrase(time.Time{})
}

func (e *Evaluator) beginPhrase() {
	if !e.ast.Options.Quiet {
		e.pendingLogs = append(e.pendingLogs, e.stateSizeLog(), e.convergenceLog())
	}

	e.phase = PhrasePhase
	if e.maxWords <= 1 || len(e.matchers) == 0 {
		e.phase = PhaseDone
		return
	}
	e.phraseSearch = search.NewPhraseSearch(e.matchers, e.alive, e.maxWords)
}

// stateSizeLog reports each expression's NFA state count against its
// promoted-or-not state count, the "optimized state sizes: ... -> ..."
// line the original printed at the Word->Phrase transition.
func (e *Evaluator) stateSizeLog() string {
	parts := make([]string, len(e.matchers))
	for i, m := range e.matchers {
		if d := e.dfas[i]; d != nil {
			parts[i] = fmt.Sprintf("expr %d: %d -> %d states (promoted)", i, m.NumStates(), d.PowerstateCount())
		} else {
			parts[i] = fmt.Sprintf("expr %d: %d states (not promoted)", i, m.NumStates())
		}
	}
	return "optimized state sizes: " + strings.Join(parts, ", ")
}

// convergenceLog reports the word-matcher pipeline's convergence-pass
// statistics, the "optimizing took ... in N passes, wordlist shrunk X ->
// Y" line the original printed once the alive wordlist reached a fixed
// point.
func (e *Evaluator) convergenceLog() string {
	s := e.pipelineStats
	return fmt.Sprintf("optimizing took %d convergence pass(es), wordlist shrunk %d -> %d", s.ConvergencePasses, s.InitialAlive, s.FinalAlive)
}

func (e *Evaluator) stepPhrase(deadline time.Time) Event {
	if e.phraseSearch == nil {
		e.phase = PhaseDone
		return Event{Kind: EventComplete, Summary: e.summaryString()}
	}

	for {
		if !deadline.IsZero() && !time.Now().Before(deadline) {
			return Event{Kind: EventTimeout}
		}

		phrase, done := e.phraseSearch.Next(DeadlineCheckInterval)
		if done {
			e.phase = PhaseDone
			return Event{Kind: EventComplete, Summary: e.summaryString()}
		}
		if phrase == nil {
			// Budget exhausted without a match or completion; loop back
			// around to re-check the deadline before resuming the DFS.
			continue
		}
		if e.matchCount >= e.resultsLimit {
			e.phase = PhaseDone
			return Event{Kind: EventComplete, Summary: e.summaryString()}
		}
		e.matchCount++
		return Event{Kind: EventMatch, Words: phrase.Words}
	}
}

func (e *Evaluator) summaryString() string {
	return fmt.Sprintf("%d match(es), phase=%s", e.matchCount, e.phase)
}

// Phase returns the evaluator's current state-machine phase.
func (e *Evaluator) Phase() Phase { return e.phase }

// Promoted reports whether expression i promoted to a DFA (spec.md
// §4.7), for diagnostics.
func (e *Evaluator) Promoted(i int) bool { return e.dfas[i] != nil }

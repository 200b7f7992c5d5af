package search

import (
	"github.com/noodleword/noodle/bitset"
	"github.com/noodleword/noodle/word"
)

// SearchLayer is one depth of the phrase product-DFS stack, per
// spec.md §3: a cursor into the alive wordlist and, per matcher, either a
// fuzz x state reach or a single promoted-DFA powerstate. A matcher uses
// States[m] when it has no promoted DFA and DFA[m] when it does (per
// spec.md §4.8's DFA-stepping branch); the unused slot for a given
// matcher index is left at its zero value.
type SearchLayer struct {
	WordIndex int
	States    []bitset.Set2D // States[m] = reach for matcher m at this depth
	DFA       []int          // DFA[m] = powerstate for matcher m at this depth
}

func newLayer(matchers []*WordMatcher) SearchLayer {
	states := make([]bitset.Set2D, len(matchers))
	dfaStates := make([]int, len(matchers))
	for i, m := range matchers {
		if m.HasDFA() {
			continue
		}
		states[i] = bitset.NewSet2D(m.Fuzz()+1, m.NumStates())
	}
	return SearchLayer{States: states, DFA: dfaStates}
}

// Phrase holds the words making up one phrase match, in stack order.
type Phrase struct {
	Words []word.Word
}

// PhraseSearch runs the bounded depth-first product search of spec.md
// §4.8 over the alive wordlist handed off by RunPipeline. Each call to
// Next resumes exactly where the previous call left off.
type PhraseSearch struct {
	matchers   []*WordMatcher
	alive      []word.Word
	classOf    [][]int // classOf[m][wordIdx]
	layers     []SearchLayer
	depthLimit int
	cursor     int
	steps      int
}

// NewPhraseSearch builds a search over alive for the given matcher
// pipeline, bounded to depthLimit words (the query's max_words option).
func NewPhraseSearch(matchers []*WordMatcher, alive []word.Word, depthLimit int) *PhraseSearch {
	classOf := make([][]int, len(matchers))
	for mi, m := range matchers {
		classOf[mi] = make([]int, len(alive))
		for wi, w := range alive {
			id, _ := m.Classify(w)
			classOf[mi][wi] = id
		}
	}

	layers := make([]SearchLayer, depthLimit+1)
	for i := range layers {
		layers[i] = newLayer(matchers)
	}
	for mi, m := range matchers {
		if m.HasDFA() {
			layers[0].DFA[mi] = m.DFAStart()
			continue
		}
		layers[0].States[mi] = m.StartReach()
	}

	return &PhraseSearch{
		matchers:   matchers,
		alive:      alive,
		classOf:    classOf,
		layers:     layers,
		depthLimit: depthLimit,
	}
}

// Steps returns the number of DFS expansions taken so far, the cadence
// the evaluator uses for its every-256-steps deadline check.
func (ps *PhraseSearch) Steps() int { return ps.steps }

// Next advances the search until it finds a phrase match or exhausts the
// search space, returning (nil, true) in the latter case. It steps at
// most maxSteps DFS expansions before returning (nil, false) so the
// caller can check a deadline between calls; pass a non-positive
// maxSteps for no limit.
func (ps *PhraseSearch) Next(maxSteps int) (*Phrase, bool) {
	budget := maxSteps
	for {
		if ps.cursor < 0 {
			return nil, true
		}
		if maxSteps > 0 && budget <= 0 {
			return nil, false
		}

		layer := &ps.layers[ps.cursor]
		if layer.WordIndex >= len(ps.alive) {
			ps.cursor--
			if ps.cursor >= 0 {
				ps.layers[ps.cursor].WordIndex++
			}
			continue
		}

		ps.steps++
		budget--

		wi := layer.WordIndex
		w := ps.alive[wi]
		anyEmpty := false
		allAccept := true
		allSubset := true
		next := make([]bitset.Set2D, len(ps.matchers))
		nextDFA := make([]int, len(ps.matchers))

		for mi, m := range ps.matchers {
			classID := ps.classOf[mi][wi]
			if classID == nullClass {
				anyEmpty = true
				break
			}

			if m.HasDFA() {
				p := layer.DFA[mi]
				np, anyAcc, empty := m.StepDFA(p, w)
				nextDFA[mi] = np
				if empty {
					anyEmpty = true
				}
				if !anyAcc {
					allAccept = false
				}
				if np != p {
					allSubset = false
				}
				continue
			}

			reach := layer.States[mi]
			n, anyAcc, empty := m.Step(reach, classID)
			next[mi] = n
			if empty {
				anyEmpty = true
			}
			if !anyAcc {
				allAccept = false
			}
			if !set2DIsSubset(&n, &reach) {
				allSubset = false
			}
		}

		if anyEmpty || allSubset {
			layer.WordIndex++
			continue
		}

		depth := ps.cursor + 1
		var match *Phrase
		if allAccept && ps.cursor >= 1 {
			match = ps.buildPhrase(depth)
		}

		if ps.cursor+1 < ps.depthLimit {
			nl := &ps.layers[ps.cursor+1]
			nl.WordIndex = 0
			nl.States = next
			nl.DFA = nextDFA
			ps.cursor++
		} else {
			layer.WordIndex++
		}

		if match != nil {
			return match, false
		}
	}
}

func (ps *PhraseSearch) buildPhrase(depth int) *Phrase {
	words := make([]word.Word, depth)
	for i := 0; i < depth; i++ {
		words[i] = ps.alive[ps.layers[i].WordIndex]
	}
	return &Phrase{Words: words}
}

// Package word defines Noodle's in-memory word representation. Loading a
// wordlist from disk is a host concern (see spec.md §1's Non-goals); this
// package only builds Word values from already-resident text.
package word

import "github.com/noodleword/noodle/alphabet"

// Tranche buckets words by how "common" they are, the way the original
// wordlist loader grew tranche boundaries as it read further into a
// frequency-sorted dictionary. The core never loads a file itself and
// never reads the tranche; it only carries the value a caller assigns.
// No query option filters words by tranche.
type Tranche uint8

// New constructs a Word from raw text: it records the text
// verbatim, folds it into alphabet symbols terminated by WordEnd, and
// stores the caller-supplied tranche and score.
func New(text string, tranche Tranche, score uint32) Word {
	return Word{
		Text:    text,
		Chars:   alphabet.FoldString(text),
		Tranche: tranche,
		Score:   score,
	}
}

// Word is a single dictionary entry: its display text, its folded symbol
// sequence (always ending in alphabet.WordEnd), which tranche it belongs
// to, and a frequency/quality score used to rank results.
type Word struct {
	Text    string
	Chars   []alphabet.Symbol
	Tranche Tranche
	Score   uint32
}

// Len returns the number of symbols in the word, including the trailing
// WordEnd marker.
func (w Word) Len() int {
	return len(w.Chars)
}

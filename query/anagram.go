package query

import (
	"fmt"

	"github.com/noodleword/noodle/alphabet"
)

// histEntry is one distinct letter of an anagram bank with its
// multiplicity, in first-occurrence order (the order the original
// implementation's IndexMap<Char, usize> histogram iterates in).
type histEntry struct {
	Sym   alphabet.Symbol
	Count int
}

func histogram(bank []alphabet.Symbol) []histEntry {
	var hist []histEntry
	index := map[alphabet.Symbol]int{}
	for _, s := range bank {
		if i, ok := index[s]; ok {
			hist[i].Count++
			continue
		}
		index[s] = len(hist)
		hist = append(hist, histEntry{Sym: s, Count: 1})
	}
	return hist
}

// maxHistogramSize returns the largest anagram histogram size (number of
// distinct letters) found anywhere in the Ast, or 0 if it contains no
// anagram nodes.
func maxHistogramSize(a Ast) int {
	max := 0
	walkAnagrams(a, func(k AnagramKind, bank []alphabet.Symbol) {
		if n := len(histogram(bank)); n > max {
			max = n
		}
	})
	return max
}

func countAnagrams(a Ast) int {
	n := 0
	walkAnagrams(a, func(AnagramKind, []alphabet.Symbol) { n++ })
	return n
}

func walkAnagrams(a Ast, visit func(AnagramKind, []alphabet.Symbol)) {
	switch a.Kind {
	case KindAnagram:
		visit(a.AnagramKind, a.Bank)
	case KindAlternatives, KindSequence:
		for _, c := range a.Children {
			walkAnagrams(c, visit)
		}
	case KindRepetition:
		walkAnagrams(a.Term, visit)
	}
}

// expandAnagrams rewrites every ExpressionAst containing K anagram nodes
// with histogram sizes N1..NK into max(Ni)+1 plain expressions, per
// spec.md §4.3. Expressions with no anagram nodes pass through unchanged.
func expandAnagrams(exprs []ExpressionAst) ([]ExpressionAst, []string, error) {
	var result []ExpressionAst
	var warnings []string
	for _, e := range exprs {
		if countAnagrams(e.Root) == 0 {
			result = append(result, e)
			continue
		}
		maxUnique := maxHistogramSize(e.Root)
		for i := 0; i <= maxUnique; i++ {
			root, w, err := replaceAnagrams(e.Root, i)
			if err != nil {
				return nil, nil, err
			}
			warnings = append(warnings, w...)
			result = append(result, ExpressionAst{Root: root, Options: e.Options})
		}
	}
	return result, warnings, nil
}

func replaceAnagrams(a Ast, nth int) (Ast, []string, error) {
	switch a.Kind {
	case KindAnagram:
		return astForAnagram(a.AnagramKind, a.Bank, nth)
	case KindAlternatives:
		children, warnings, err := replaceAnagramsAll(a.Children, nth)
		if err != nil {
			return Ast{}, nil, err
		}
		return NewAlternatives(children), warnings, nil
	case KindSequence:
		children, warnings, err := replaceAnagramsAll(a.Children, nth)
		if err != nil {
			return Ast{}, nil, err
		}
		return NewSequence(children), warnings, nil
	case KindRepetition:
		term, warnings, err := replaceAnagrams(a.Term, nth)
		if err != nil {
			return Ast{}, nil, err
		}
		return NewRepetition(term, a.Min, a.Max), warnings, nil
	default:
		return a, nil, nil
	}
}

func replaceAnagramsAll(children []Ast, nth int) ([]Ast, []string, error) {
	out := make([]Ast, len(children))
	var warnings []string
	for i, c := range children {
		r, w, err := replaceAnagrams(c, nth)
		if err != nil {
			return nil, nil, err
		}
		out[i] = r
		warnings = append(warnings, w...)
	}
	return out, warnings, nil
}

// astForAnagram builds the nth expansion of one anagram node, per
// spec.md §4.3.
func astForAnagram(kind AnagramKind, bank []alphabet.Symbol, nth int) (Ast, []string, error) {
	hist := histogram(bank)
	if nth < len(hist) {
		return perLetterExpansion(kind, hist, nth), nil, nil
	}
	return lengthConstraintExpansion(kind, hist, bank)
}

// perLetterExpansion builds the "F c F c ... c F" fragment for the
// nth distinct bank letter.
func perLetterExpansion(kind AnagramKind, hist []histEntry, nth int) Ast {
	entry := hist[nth]

	var charAst Ast
	switch kind.Variant {
	case Sub, TransDelete:
		charAst = NewRepetition(NewCharClass(alphabet.Single(entry.Sym)), 0, intPtr(1))
	default: // Standard, Super, TransAdd
		charAst = NewCharClass(alphabet.Single(entry.Sym))
	}

	var fillClass alphabet.CharClass
	switch kind.Variant {
	case Super, TransAdd:
		fillClass = alphabet.Letters
	default: // Standard, Sub, TransDelete: other bank letters only
		for i, h := range hist {
			if i != nth {
				fillClass = fillClass.Union(alphabet.Single(h.Sym))
			}
		}
	}
	fillAst := NewRepetition(NewCharClass(fillClass), 0, nil)

	children := make([]Ast, 0, 2*entry.Count+1)
	children = append(children, fillAst)
	for k := 0; k < entry.Count; k++ {
		children = append(children, charAst, fillAst)
	}
	return NewSequence(children)
}

// lengthConstraintExpansion builds the final "total length" expansion
// (nth == len(hist)).
func lengthConstraintExpansion(kind AnagramKind, hist []histEntry, bank []alphabet.Symbol) (Ast, []string, error) {
	total := 0
	var bankClass alphabet.CharClass
	for _, h := range hist {
		total += h.Count
		bankClass = bankClass.Union(alphabet.Single(h.Sym))
	}

	switch kind.Variant {
	case Standard:
		return NewRepetition(NewCharClass(bankClass), total, intPtr(total)), nil, nil
	case Sub:
		return NewRepetition(NewCharClass(bankClass), 0, intPtr(total)), nil, nil
	case TransDelete:
		d := kind.N
		var warnings []string
		if d > total {
			warnings = append(warnings, fmt.Sprintf(
				"transdelete count %d exceeds bank length %d; clamped to %d", d, total, total))
			d = total
		}
		length := total - d
		return NewRepetition(NewCharClass(bankClass), length, intPtr(length)), warnings, nil
	case Super:
		return NewRepetition(NewCharClass(alphabet.Letters), total, nil), nil, nil
	case TransAdd:
		length := total + kind.N
		return NewRepetition(NewCharClass(alphabet.Letters), length, intPtr(length)), nil, nil
	default:
		return Ast{}, nil, fmt.Errorf("unknown anagram variant %v", kind.Variant)
	}
}

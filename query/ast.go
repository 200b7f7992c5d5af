// Package query implements Noodle's query language: parsing query text
// into an Ast, expanding anagram nodes into plain expressions, and
// substituting macros. It corresponds to components C2 and C3.
package query

import (
	"fmt"
	"strings"

	"github.com/noodleword/noodle/alphabet"
)

// Ast is a recursive query expression node. Exactly one group of the
// fields below is meaningful for any given node, selected by
// Kind — this mirrors the original Rust implementation's tagged enum,
// expressed in Go as a struct with a discriminant instead of an
// interface hierarchy, since every node needs structural equality for
// round-trip tests and an interface-per-variant makes that awkward.
type Ast struct {
	Kind Kind

	// CharClass
	Class alphabet.CharClass

	// Alternatives, Sequence
	Children []Ast

	// Repetition
	Term Ast
	Min  int
	Max  *int // nil means unbounded

	// Anagram
	AnagramKind AnagramKind
	Bank        []alphabet.Symbol
}

// Kind discriminates Ast node variants.
type Kind int

const (
	KindCharClass Kind = iota
	KindAlternatives
	KindSequence
	KindRepetition
	KindAnagram
)

// NewCharClass builds a CharClass leaf node.
func NewCharClass(c alphabet.CharClass) Ast {
	return Ast{Kind: KindCharClass, Class: c}
}

// NewAlternatives builds an Alternatives node.
func NewAlternatives(children []Ast) Ast {
	return Ast{Kind: KindAlternatives, Children: children}
}

// NewSequence builds a Sequence node.
func NewSequence(children []Ast) Ast {
	return Ast{Kind: KindSequence, Children: children}
}

// NewRepetition builds a Repetition node. max == nil means unbounded.
func NewRepetition(term Ast, min int, max *int) Ast {
	return Ast{Kind: KindRepetition, Term: term, Min: min, Max: max}
}

// NewAnagram builds an Anagram node.
func NewAnagram(kind AnagramKind, bank []alphabet.Symbol) Ast {
	return Ast{Kind: KindAnagram, AnagramKind: kind, Bank: bank}
}

// AnagramKind distinguishes the four anagram forms plus standard.
type AnagramKind struct {
	Variant AnagramVariant
	N       int // meaningful only for TransAdd/TransDelete
}

// AnagramVariant enumerates the anagram forms from spec §4.2/§4.3.
type AnagramVariant int

const (
	Standard AnagramVariant = iota
	Super
	Sub
	TransAdd
	TransDelete
)

func intPtr(n int) *int { return &n }

// String renders the Ast back into query syntax. Used for the parser
// round-trip property tests and for Logs diagnostics.
func (a Ast) String() string {
	switch a.Kind {
	case KindCharClass:
		return classString(a.Class)
	case KindAlternatives:
		parts := make([]string, len(a.Children))
		for i, c := range a.Children {
			parts[i] = c.String()
		}
		return "(" + strings.Join(parts, "|") + ")"
	case KindSequence:
		// A parenthesized group with more than one child collapses to a
		// bare Sequence node at parse time (see exprParser.parseSequence);
		// reprinting it with its own parens makes grouping round-trip
		// without needing a separate "was grouped" flag on the node.
		var b strings.Builder
		for _, c := range a.Children {
			b.WriteString(c.String())
		}
		return "(" + b.String() + ")"
	case KindRepetition:
		return a.Term.String() + repString(a.Min, a.Max)
	case KindAnagram:
		return anagramString(a.AnagramKind, a.Bank)
	default:
		return "?"
	}
}

func repString(min int, max *int) string {
	switch {
	case max != nil && min == 0 && *max == 1:
		return "?"
	case max == nil && min == 0:
		return "*"
	case max == nil && min == 1:
		return "+"
	case max != nil && *max == min:
		return fmt.Sprintf("{%d}", min)
	case max == nil:
		return fmt.Sprintf("{%d,}", min)
	case min == 0:
		return fmt.Sprintf("{,%d}", *max)
	default:
		return fmt.Sprintf("{%d,%d}", min, *max)
	}
}

func classString(c alphabet.CharClass) string {
	switch c {
	case alphabet.Letters:
		return "."
	case alphabet.Single(alphabet.WordEnd):
		return "_"
	case alphabet.Single(alphabet.Punct):
		return "'"
	}
	// Single letter fast path.
	for s := alphabet.Symbol(0); s < 26; s++ {
		if c == alphabet.Single(s) {
			return s.String()
		}
	}
	var b strings.Builder
	b.WriteByte('[')
	for s := alphabet.Symbol(0); s < alphabet.Size; s++ {
		if c.Contains(s) {
			b.WriteString(s.String())
		}
	}
	b.WriteByte(']')
	return b.String()
}

func anagramString(k AnagramKind, bank []alphabet.Symbol) string {
	var b strings.Builder
	b.WriteByte('<')
	for _, s := range bank {
		b.WriteString(s.String())
	}
	switch k.Variant {
	case Super:
		b.WriteByte('+')
	case Sub:
		b.WriteByte('-')
	case TransAdd:
		fmt.Fprintf(&b, "+%d", k.N)
	case TransDelete:
		fmt.Fprintf(&b, "-%d", k.N)
	}
	b.WriteByte('>')
	return b.String()
}

// ExpressionOptions carries the per-expression flags from §4.2's option
// suffixes (!_ !' !N) plus auto-detected flags from detectOptions.
type ExpressionOptions struct {
	ExplicitWordBoundaries bool
	ExplicitPunctuation    bool
	Fuzz                   int // 0 when unset
}

// ExpressionAst pairs a parsed Ast with its expression-level options.
type ExpressionAst struct {
	Root    Ast
	Options ExpressionOptions
}

// QueryOptions carries the query-wide pragmas (#words, #dict, #limit,
// #quiet). A nil pointer means "unset, use the evaluator's default."
type QueryOptions struct {
	MaxWords     *int
	Dictionary   *string
	ResultsLimit *int
	Quiet        bool
}

// QueryAst is the top-level parse result: macro table (insertion order
// preserved), the expanded expression list, and query-wide options.
type QueryAst struct {
	MacroNames  []string
	MacroValues map[string]string
	Expressions []ExpressionAst
	Options     QueryOptions

	// Warnings carries non-fatal diagnostics produced while building the
	// query, such as the transdelete bank-length clamp from spec.md §9's
	// second open question. The evaluator surfaces these as Logs events
	// rather than dropping them silently.
	Warnings []string
}

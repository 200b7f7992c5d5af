package nfa

import (
	"github.com/noodleword/noodle/alphabet"
	"github.com/noodleword/noodle/bitset"
	"github.com/noodleword/noodle/query"
)

// fragment is a partially-built NFA subgraph: start is its entry state,
// end is a dangling epsilon-only placeholder whose outgoing edges the
// caller wires up once it knows what follows. This is the standard
// Thompson-construction "patch list of one" technique, simplified
// because every state here can carry an arbitrary number of epsilon
// out-edges (so the "patch list" is just direct insertion into a state's
// edge list rather than a linked list of deferred fixups).
type fragment struct {
	start, end StateID
}

// builder accumulates raw states during Thompson construction. Epsilon
// edges are recorded as plain edge lists here; they are only turned into
// sized bitset.Set1D values once every state has been allocated (see
// Compile), since a bitset's length must be fixed up front.
type builder struct {
	class    []alphabet.CharClass
	next     []StateID
	epsEdges [][]StateID
}

// InvalidNext marks a character-consuming Next field that hasn't been
// patched yet. Zero is a valid StateID, so we can't use it as a sentinel.
const InvalidNext StateID = -1

func (b *builder) alloc(class alphabet.CharClass, next StateID) StateID {
	b.class = append(b.class, class)
	b.next = append(b.next, next)
	b.epsEdges = append(b.epsEdges, nil)
	return StateID(len(b.class) - 1)
}

func (b *builder) addEpsilon(from, to StateID) {
	b.epsEdges[from] = append(b.epsEdges[from], to)
}

// Compile builds an Expression's NFA from a fully anagram-expanded
// query.Ast, per spec.md §4.4. fuzz is the expression's edit-distance
// budget (from query.ExpressionOptions.Fuzz).
func Compile(root query.Ast, fuzz int, text string, opts query.ExpressionOptions) (*Expression, error) {
	b := &builder{}
	frag, err := b.build(root)
	if err != nil {
		return nil, err
	}

	// Wrap the built fragment so state 0 is always the conceptual start
	// and the last state is always the unique accept state, regardless
	// of the order construction happened to allocate states in.
	n := len(b.class)
	shift := func(id StateID) StateID { return id + 1 }

	class := make([]alphabet.CharClass, n+2)
	next := make([]StateID, n+2)
	epsEdges := make([][]StateID, n+2)

	class[0] = alphabet.Empty
	epsEdges[0] = []StateID{shift(frag.start)}

	for i := 0; i < n; i++ {
		class[i+1] = b.class[i]
		if b.next[i] != InvalidNext {
			next[i+1] = shift(b.next[i])
		}
		for _, e := range b.epsEdges[i] {
			epsEdges[i+1] = append(epsEdges[i+1], shift(e))
		}
	}

	acceptID := StateID(n + 1)
	class[acceptID] = alphabet.Empty
	epsEdges[shift(frag.end)] = append(epsEdges[shift(frag.end)], acceptID)

	states := make([]State, n+2)
	for i := range states {
		states[i] = State{Class: class[i], Next: next[i]}
	}

	expr := &Expression{
		States:            states,
		Fuzz:              fuzz,
		Text:              text,
		IgnoreWhitespace:  !opts.ExplicitWordBoundaries,
		IgnorePunctuation: !opts.ExplicitPunctuation,
	}
	seedEpsilon(expr, epsEdges)
	Optimize(expr)
	return expr, nil
}

func seedEpsilon(expr *Expression, direct [][]StateID) {
	n := len(expr.States)
	for i := range expr.States {
		set := bitset.NewSet1D(n)
		for _, to := range direct[i] {
			set.Insert(int(to))
		}
		expr.States[i].Epsilon = set
	}
}

func (b *builder) build(a query.Ast) (fragment, error) {
	switch a.Kind {
	case query.KindCharClass:
		return b.buildCharClass(a.Class), nil
	case query.KindSequence:
		return b.buildSequence(a.Children)
	case query.KindAlternatives:
		return b.buildAlternatives(a.Children)
	case query.KindRepetition:
		return b.buildRepetition(a.Term, a.Min, a.Max)
	case query.KindAnagram:
		return fragment{}, &BuildError{Message: "anagram nodes must be expanded before compilation", States: len(b.class)}
	default:
		return fragment{}, ErrEmptyAst
	}
}

func (b *builder) buildCharClass(c alphabet.CharClass) fragment {
	end := b.alloc(alphabet.Empty, InvalidNext)
	start := b.alloc(c, end)
	return fragment{start: start, end: end}
}

func (b *builder) buildSequence(children []query.Ast) (fragment, error) {
	if len(children) == 0 {
		s := b.alloc(alphabet.Empty, InvalidNext)
		return fragment{s, s}, nil
	}
	frags := make([]fragment, len(children))
	for i, c := range children {
		f, err := b.build(c)
		if err != nil {
			return fragment{}, err
		}
		frags[i] = f
	}
	for i := 0; i < len(frags)-1; i++ {
		b.addEpsilon(frags[i].end, frags[i+1].start)
	}
	return fragment{frags[0].start, frags[len(frags)-1].end}, nil
}

func (b *builder) buildAlternatives(children []query.Ast) (fragment, error) {
	s := b.alloc(alphabet.Empty, InvalidNext)
	j := b.alloc(alphabet.Empty, InvalidNext)
	for _, c := range children {
		f, err := b.build(c)
		if err != nil {
			return fragment{}, err
		}
		b.addEpsilon(s, f.start)
		b.addEpsilon(f.end, j)
	}
	return fragment{s, j}, nil
}

func (b *builder) buildRepetition(term query.Ast, min int, max *int) (fragment, error) {
	if max != nil && *max < min {
		return fragment{}, ErrInvalidRepetition
	}
	if min == 0 && max != nil && *max == 0 {
		s := b.alloc(alphabet.Empty, InvalidNext)
		return fragment{s, s}, nil
	}
	if min == 1 && max != nil && *max == 1 {
		return b.build(term)
	}

	n := min
	if max != nil && *max > n {
		n = *max
	}
	if n == 0 {
		n = 1
	}

	frags := make([]fragment, n)
	for i := 0; i < n; i++ {
		f, err := b.build(term)
		if err != nil {
			return fragment{}, err
		}
		frags[i] = f
	}
	for i := 0; i < n-1; i++ {
		b.addEpsilon(frags[i].end, frags[i+1].start)
	}

	entry := b.alloc(alphabet.Empty, InvalidNext)
	end := b.alloc(alphabet.Empty, InvalidNext)

	b.addEpsilon(entry, frags[0].start)
	if min == 0 {
		b.addEpsilon(entry, end)
	}
	for i := 1; i < n; i++ {
		if i <= n-min {
			b.addEpsilon(entry, frags[i].start)
		}
	}

	// Only the last copy exits to end: entering at copy i consumes
	// exactly n-i copies, which the entry gate above keeps >= min.
	b.addEpsilon(frags[n-1].end, end)

	if max == nil {
		// Unbounded repetition: loop the last copy back on itself to
		// allow arbitrarily many further repeats without allocating
		// more states, per spec.md §4.4.
		b.addEpsilon(frags[n-1].end, frags[n-1].start)
	}

	return fragment{entry, end}, nil
}

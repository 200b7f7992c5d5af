package query

import (
	"strings"

	"github.com/coregx/ahocorasick"
)

// SubstituteMacros replaces every occurrence of a macro name in line with
// its defined value, scanning left to right exactly once.
//
// The original implementation applied macros with a sequential
// O(macros × len(line)) loop of individual string replacements, one
// macro at a time. Here, as in the teacher's own upgrade from naive
// multi-literal scanning to `ahocorasick.Automaton` once a literal
// alternation passes a size threshold (see meta/compile.go's
// UseAhoCorasick strategy), all macro names are compiled into a single
// automaton and substituted in one left-to-right pass. Rebuilding the
// automaton per line is acceptable here since the macro table is small
// (tens of entries at most) relative to a search wordlist; a caller
// evaluating many queries against the same macro table can cache the
// automaton themselves.
func SubstituteMacros(line string, names []string, values map[string]string) string {
	if len(names) == 0 {
		return line
	}
	builder := ahocorasick.NewBuilder()
	for _, name := range names {
		builder.AddPattern([]byte(name))
	}
	automaton, err := builder.Build()
	if err != nil {
		// No macro name is pathological input (they're parsed identifiers);
		// if construction somehow fails, fall back to no substitution
		// rather than fail the whole query.
		return line
	}

	haystack := []byte(line)
	var out strings.Builder
	pos := 0
	for pos <= len(haystack) {
		m := automaton.Find(haystack, pos)
		if m == nil {
			out.Write(haystack[pos:])
			break
		}
		out.Write(haystack[pos:m.Start])
		name := string(haystack[m.Start:m.End])
		out.WriteString(values[name])
		pos = m.End
	}
	return out.String()
}

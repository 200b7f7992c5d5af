package query

import "testing"

func TestParseRoundTrip(t *testing.T) {
	cases := []string{
		"(hello)",
		"(a+(b[cd]?)*)",
		"(a{2}b{3,}c{,4}d{5,6})",
		"(a|(bc)|(d|(ef)))",
	}
	for _, c := range cases {
		t.Run(c, func(t *testing.T) {
			q, err := Parse(c)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", c, err)
			}
			if len(q.Expressions) != 1 {
				t.Fatalf("Parse(%q) produced %d expressions, want 1", c, len(q.Expressions))
			}
			got := q.Expressions[0].Root.String()
			if got != c {
				t.Errorf("round trip: got %q, want %q", got, c)
			}
		})
	}
}

func TestParsePragmas(t *testing.T) {
	q, err := Parse("hello\n#words 3\n#limit 100\n#quiet")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if q.Options.MaxWords == nil || *q.Options.MaxWords != 3 {
		t.Errorf("MaxWords = %v, want 3", q.Options.MaxWords)
	}
	if q.Options.ResultsLimit == nil || *q.Options.ResultsLimit != 100 {
		t.Errorf("ResultsLimit = %v, want 100", q.Options.ResultsLimit)
	}
	if !q.Options.Quiet {
		t.Errorf("Quiet = false, want true")
	}
}

func TestParseMacro(t *testing.T) {
	q, err := Parse("FOO=abc\nFOObar")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(q.Expressions) != 1 {
		t.Fatalf("expected 1 expression, got %d", len(q.Expressions))
	}
	got := q.Expressions[0].Root.String()
	want := "(abcbar)"
	if got != want {
		t.Errorf("macro substitution: got %q, want %q", got, want)
	}
}

func TestParseOptions(t *testing.T) {
	q, err := Parse("hen !1")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if q.Expressions[0].Options.Fuzz != 1 {
		t.Errorf("Fuzz = %d, want 1", q.Expressions[0].Options.Fuzz)
	}
}

func TestParseEnumeration(t *testing.T) {
	q, err := Parse("3")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(q.Expressions) != 1 {
		t.Fatalf("expected 1 expression")
	}
	if !q.Expressions[0].Options.ExplicitWordBoundaries {
		t.Errorf("bare integer enumeration should auto-detect explicit word boundaries")
	}
}

func TestParseComment(t *testing.T) {
	q, err := Parse("#this is a comment\nhello")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(q.Expressions) != 1 {
		t.Fatalf("comment line should not produce an expression, got %d", len(q.Expressions))
	}
}

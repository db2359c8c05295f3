package wildmat

import "testing"

func TestBasicGlobs(t *testing.T) {
	cases := []struct {
		pattern string
		s       string
		want    bool
	}{
		{"comp.*", "comp.lang.go", true},
		{"comp.*", "alt.lang.go", false},
		{"*.test", "comp.test", true},
		{"*.test", "comp.test.sub", false},
		{"a?c", "abc", true},
		{"a?c", "ac", false},
		{"*", "anything.at.all", true},
		{"", "comp.lang.go", false}, // empty single glob matches only empty string
	}
	for _, c := range cases {
		if got := matchGlob(c.s, c.pattern); got != c.want {
			t.Errorf("matchGlob(%q,%q)=%v want %v", c.s, c.pattern, got, c.want)
		}
	}
}

func TestCharacterClasses(t *testing.T) {
	cases := []struct {
		pattern string
		s       string
		want    bool
	}{
		{"comp.lang.[cg]*", "comp.lang.go", true},
		{"comp.lang.[cg]*", "comp.lang.perl", false},
		{"comp.lang.[!cg]*", "comp.lang.perl", true},
		{"comp.lang.[!cg]*", "comp.lang.go", false},
		{`a\[b`, "a[b", true},
	}
	for _, c := range cases {
		if got := matchGlob(c.s, c.pattern); got != c.want {
			t.Errorf("matchGlob(%q,%q)=%v want %v", c.s, c.pattern, got, c.want)
		}
	}
}

func TestAlternationAndExclusion(t *testing.T) {
	p := Compile("comp.*,alt.*,!alt.binaries.*")
	cases := []struct {
		s    string
		want bool
	}{
		{"comp.lang.go", true},
		{"alt.test", true},
		{"alt.binaries.pictures", false},
		{"misc.test", false},
	}
	for _, c := range cases {
		if got := p.Match(c.s); got != c.want {
			t.Errorf("Match(%q)=%v want %v", c.s, got, c.want)
		}
	}
}

func TestEmptyExpressionMatchesAll(t *testing.T) {
	p := Compile("")
	if !p.Match("anything") {
		t.Error("empty wildmat expression should match all groups")
	}
}

func TestExclusionOverridesInclusion(t *testing.T) {
	// A group matched by both an inclusive and exclusive term must be excluded.
	p := Compile("*,!comp.lang.go")
	if p.Match("comp.lang.go") {
		t.Error("exclusion should override inclusion")
	}
	if !p.Match("comp.lang.rust") {
		t.Error("unrelated group should still match")
	}
}

func TestEscapes(t *testing.T) {
	if !matchGlob("a*b", `a\*b`) {
		t.Error("escaped * should match literal *")
	}
	if matchGlob("axb", `a\*b`) {
		t.Error("escaped * should not act as wildcard")
	}
}

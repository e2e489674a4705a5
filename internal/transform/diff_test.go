package transform

import (
	"strings"
	"testing"
)

// apply replays changes over original.
func apply(original string, changes []Change) string {
	var b strings.Builder
	pos := 0
	for _, c := range changes {
		b.WriteString(original[pos:c.Offset])
		b.WriteString(c.Replacement)
		pos = c.Offset + len(c.Original)
	}
	b.WriteString(original[pos:])
	return b.String()
}

func TestChanges_Replay(t *testing.T) {
	tests := []struct {
		name      string
		original  string
		processed string
	}{
		{"grammar", "i has went to the meeting yesterday", "I went to the meeting yesterday."},
		{"identical", "Hello there", "Hello there"},
		{"insert only", "Hello", "Hello, world"},
		{"delete only", "the the cat", "the cat"},
		{"rewrite", "abc", "xyz"},
		{"empty processed", "gone", ""},
		{"unicode", "Grüße, mein Freund", "Grüße, meine Freundin"},
		{"newlines", "line one\nline too", "line one\nline two"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			changes := Changes(tt.original, tt.processed)
			if got := apply(tt.original, changes); got != tt.processed {
				t.Errorf("replay = %q, want %q (changes %+v)", got, tt.processed, changes)
			}
			for i := 1; i < len(changes); i++ {
				if changes[i].Offset < changes[i-1].Offset {
					t.Errorf("changes out of order: %+v", changes)
				}
			}
		})
	}
}

func TestChanges_WordLevel(t *testing.T) {
	changes := Changes("I has a cat", "I have a cat")
	if len(changes) != 1 {
		t.Fatalf("changes = %+v, want one", changes)
	}
	c := changes[0]
	if c.Original != "has" || c.Replacement != "have" || c.Offset != 2 {
		t.Errorf("change = %+v, want has->have at 2", c)
	}
}

func TestChanges_Identical(t *testing.T) {
	if got := Changes("same", "same"); got != nil {
		t.Errorf("Changes = %+v, want nil", got)
	}
}

func TestSplitTokens(t *testing.T) {
	got := splitTokens("don't stop,  now!")
	want := []string{"don't", " ", "stop", ",", "  ", "now", "!"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("splitTokens = %q, want %q", got, want)
	}
}

func TestTokenRune_SkipsSurrogates(t *testing.T) {
	for _, i := range []int{0, 1, 0xD7FF, 0xD800, 0xDFFF, 0xE000, 70000} {
		r := tokenRune(i)
		if r >= 0xD800 && r <= 0xDFFF {
			t.Errorf("tokenRune(%d) = %U is a surrogate", i, r)
		}
		if back := tokenIndex(r); back != i {
			t.Errorf("tokenIndex(tokenRune(%d)) = %d", i, back)
		}
	}
}

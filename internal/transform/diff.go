package transform

import (
	"strings"
	"unicode"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Changes returns the word-level edits that turn original into processed.
// A deletion directly followed by an insertion is reported as one
// replacement.
func Changes(original, processed string) []Change {
	if original == processed {
		return nil
	}

	enc := &tokenEncoder{index: make(map[string]rune)}
	a := enc.encode(original)
	b := enc.encode(processed)

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMainRunes(a, b, false)

	var (
		changes []Change
		offset  int
		pending *Change
	)
	flush := func() {
		if pending != nil {
			changes = append(changes, *pending)
			pending = nil
		}
	}
	for _, d := range diffs {
		text := enc.decode(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			flush()
			offset += len(text)
		case diffmatchpatch.DiffDelete:
			if pending == nil {
				pending = &Change{Offset: offset}
			}
			pending.Original += text
			offset += len(text)
		case diffmatchpatch.DiffInsert:
			if pending == nil {
				pending = &Change{Offset: offset}
			}
			pending.Replacement += text
		}
	}
	flush()
	return changes
}

// tokenEncoder maps each distinct word or whitespace run to one rune so the
// character diff operates on words.
type tokenEncoder struct {
	index  map[string]rune
	tokens []string
}

func (e *tokenEncoder) encode(s string) []rune {
	var out []rune
	for _, tok := range splitTokens(s) {
		r, ok := e.index[tok]
		if !ok {
			r = tokenRune(len(e.tokens))
			e.index[tok] = r
			e.tokens = append(e.tokens, tok)
		}
		out = append(out, r)
	}
	return out
}

func (e *tokenEncoder) decode(s string) string {
	var b strings.Builder
	for _, r := range s {
		b.WriteString(e.tokens[tokenIndex(r)])
	}
	return b.String()
}

// Token ids skip the UTF-16 surrogate range so they survive string
// round-trips inside the diff.
const surrogateLo, surrogateSpan = 0xD800, 0x800

func tokenRune(i int) rune {
	if i >= surrogateLo {
		return rune(i + surrogateSpan)
	}
	return rune(i)
}

func tokenIndex(r rune) int {
	if r >= surrogateLo+surrogateSpan {
		return int(r) - surrogateSpan
	}
	return int(r)
}

// splitTokens splits s into runs of letters/digits, runs of whitespace, and
// single punctuation characters.
func splitTokens(s string) []string {
	var (
		tokens []string
		start  = -1
		kind   int
	)
	classify := func(r rune) int {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'':
			return 1
		case unicode.IsSpace(r):
			return 2
		}
		return 3
	}
	for i, r := range s {
		k := classify(r)
		if start >= 0 && (k != kind || k == 3) {
			tokens = append(tokens, s[start:i])
			start = -1
		}
		if start < 0 {
			start, kind = i, k
		}
	}
	if start >= 0 {
		tokens = append(tokens, s[start:])
	}
	return tokens
}

// Package normalizer cleans raw per-page text extracted from documents before it is chunked.
package normalizer

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// ErrNotText is returned when the extracted page is not valid UTF-8 text.
var ErrNotText = errors.New("page text is not valid UTF-8")

var (
	lineEndHyphenRe = regexp.MustCompile(`-[ \t]*\n[ \t]*`)
	blankLinesRe    = regexp.MustCompile(`\n\s*\n`)

	newlineFolder = strings.NewReplacer("\r\n", "\n", "\r", "\n")
)

// Normalize rejoins hyphenated words, turns soft line wraps into spaces and
// collapses runs of blank lines into a single paragraph break.
func Normalize(raw string) (string, error) {
	if !utf8.ValidString(raw) {
		return "", ErrNotText
	}

	text := newlineFolder.Replace(raw)
	// NFKC folds ligature glyphs (ﬁ, ﬂ) and non-breaking spaces left by PDF extraction.
	text = norm.NFKC.String(text)
	text = strings.TrimSpace(text)

	text = rejoinHyphenation(text)
	text = collapseSoftWraps(text)
	text = blankLinesRe.ReplaceAllString(text, "\n\n")

	return text, nil
}

// rejoinHyphenation removes "-\n" line breaks. A hyphen between two word
// characters on adjacent lines is a broken word and is dropped. Any other
// line-end hyphen is kept followed by a space, and a paragraph break after
// it stays in place.
func rejoinHyphenation(text string) string {
	matches := lineEndHyphenRe.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		b.WriteString(text[last:start])

		before, _ := utf8.DecodeLastRuneInString(text[:start])
		after, _ := utf8.DecodeRuneInString(text[end:])
		switch {
		case after == '\n':
			b.WriteString("- \n")
		case !isWordRune(before) || !isWordRune(after):
			b.WriteString("- ")
		}
		last = end
	}
	b.WriteString(text[last:])
	return b.String()
}

// collapseSoftWraps replaces every newline that is not part of a blank-line
// boundary with a space.
func collapseSoftWraps(text string) string {
	if !strings.Contains(text, "\n") {
		return text
	}

	out := []byte(text)
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' && !touchesNewline(text, i) {
			out[i] = ' '
		}
	}
	return string(out)
}

// touchesNewline reports whether another newline is reachable from position i
// across horizontal whitespace only.
func touchesNewline(text string, i int) bool {
	j := i - 1
	for j >= 0 && isHorizontalSpace(text[j]) {
		j--
	}
	if j >= 0 && text[j] == '\n' {
		return true
	}

	j = i + 1
	for j < len(text) && isHorizontalSpace(text[j]) {
		j++
	}
	return j < len(text) && text[j] == '\n'
}

func isHorizontalSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\v' || c == '\f'
}

func isWordRune(r rune) bool {
	return r != utf8.RuneError && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_')
}

package chunker

import (
	"strings"
	"unicode/utf8"
)

// Split breaks text into pieces of at most maxSize characters, preferring the
// earliest separator in the list. Each separator stays attached to the end of
// the piece it terminates, so joining the result yields text unchanged. The
// empty separator means "split anywhere" and guarantees termination.
func Split(text string, maxSize int, separators []string) []string {
	if text == "" {
		return nil
	}
	if maxSize < 1 {
		maxSize = 1
	}
	return split(text, maxSize, separators)
}

func split(text string, maxSize int, separators []string) []string {
	if utf8.RuneCountInString(text) <= maxSize {
		return []string{text}
	}

	sep, rest, ok := pickSeparator(text, separators)
	if !ok || sep == "" {
		return hardSplit(text, maxSize)
	}

	var (
		chunks  []string
		current strings.Builder
		curLen  int
	)
	flush := func() {
		if curLen == 0 {
			return
		}
		chunks = append(chunks, current.String())
		current.Reset()
		curLen = 0
	}

	for _, piece := range strings.SplitAfter(text, sep) {
		if piece == "" {
			continue
		}
		n := utf8.RuneCountInString(piece)
		if n > maxSize {
			flush()
			chunks = append(chunks, split(piece, maxSize, rest)...)
			continue
		}
		if curLen+n > maxSize {
			flush()
		}
		current.WriteString(piece)
		curLen += n
	}
	flush()

	return chunks
}

// pickSeparator returns the first separator present in text and the finer
// separators after it.
func pickSeparator(text string, separators []string) (string, []string, bool) {
	for i, sep := range separators {
		if sep == "" || strings.Contains(text, sep) {
			return sep, separators[i+1:], true
		}
	}
	return "", nil, false
}

// hardSplit slices text into consecutive windows of maxSize runes.
func hardSplit(text string, maxSize int) []string {
	chunks := make([]string, 0, utf8.RuneCountInString(text)/maxSize+1)
	start, count := 0, 0
	for i := range text {
		if count == maxSize {
			chunks = append(chunks, text[start:i])
			start, count = i, 0
		}
		count++
	}
	return append(chunks, text[start:])
}

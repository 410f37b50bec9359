package chunker

import (
	"iter"
	"regexp"
	"strings"
	"unicode/utf8"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Chunks returns a lazy, restartable sequence of overlapping text segments.
// Whitespace runs are collapsed to single spaces before splitting. A chunk
// tentatively ends after size characters; when that lands mid-document the
// boundary is pulled back to the nearest sentence terminator within the
// trailing size window. Cut positions always land on rune starts, so a chunk
// never splits a multibyte character. The start position always advances by
// at least size-overlap so the scan cannot stall.
func Chunks(text string, size, overlap int) iter.Seq[string] {
	return func(yield func(string) bool) {
		cleaned := Normalize(text)
		if cleaned == "" || size <= 0 {
			return
		}

		start := 0
		for start < len(cleaned) {
			end := start + size
			if end >= len(cleaned) {
				end = len(cleaned)
			} else {
				end = runeStart(cleaned, end)
				if end <= start {
					// size is smaller than the rune at start, take it whole
					_, width := utf8.DecodeRuneInString(cleaned[start:])
					end = start + width
				}
			}
			if end < len(cleaned) {
				// Prefer a sentence boundary over a hard cut. The search
				// window is the trailing overlap span: a boundary any earlier
				// would let the next start position skip past uncovered text.
				from := end - overlap
				if from <= start {
					from = start + 1
				}
				if dot := strings.LastIndexByte(cleaned[from:end], '.'); dot >= 0 {
					end = from + dot + 1
				}
			}

			if chunk := strings.TrimSpace(cleaned[start:end]); chunk != "" {
				if !yield(chunk) {
					return
				}
			}
			if end == len(cleaned) {
				return
			}

			// overlap must never stall the scan
			next := end - overlap
			if next > start {
				next = runeStart(cleaned, next)
			}
			if next <= start {
				next = end
			}
			start = next
		}
	}
}

// Split collects the chunk sequence into a slice.
func Split(text string, size, overlap int) []string {
	var chunks []string
	for c := range Chunks(text, size, overlap) {
		chunks = append(chunks, c)
	}
	return chunks
}

// Normalize collapses whitespace runs to single spaces and trims the ends.
func Normalize(text string) string {
	return whitespaceRun.ReplaceAllString(strings.TrimSpace(text), " ")
}

// runeStart walks i back to the start of the rune containing s[i].
func runeStart(s string, i int) int {
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}

package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplit_EmptyInput(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\t  \n"} {
		if got := Split(input, 100, 20); len(got) != 0 {
			t.Errorf("Split(%q) = %v; want empty", input, got)
		}
	}
}

func TestSplit_ShortInputSingleChunk(t *testing.T) {
	text := "Total due: $125.00. Please pay promptly."
	chunks := Split(text, 1000, 200)

	if len(chunks) != 1 {
		t.Fatalf("expected exactly 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != text {
		t.Errorf("chunk = %q; want %q", chunks[0], text)
	}
}

func TestSplit_NormalizesWhitespace(t *testing.T) {
	chunks := Split("a  b\n\nc\td", 100, 10)
	if len(chunks) != 1 || chunks[0] != "a b c d" {
		t.Errorf("got %v; want [\"a b c d\"]", chunks)
	}
}

func TestSplit_ChunkSizeBound(t *testing.T) {
	text := strings.Repeat("This is a sentence about invoices. ", 100)
	size, overlap := 120, 30

	chunks := Split(text, size, overlap)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len(c) > size {
			t.Errorf("chunk %d length %d exceeds size %d", i, len(c), size)
		}
		if strings.TrimSpace(c) == "" {
			t.Errorf("chunk %d is empty after trim", i)
		}
	}
}

func TestSplit_SentenceBoundaryPreferred(t *testing.T) {
	text := "First sentence here. Second sentence follows with more words after the boundary"
	chunks := Split(text, 25, 10)

	if !strings.HasSuffix(chunks[0], ".") {
		t.Errorf("first chunk %q should end at a sentence boundary", chunks[0])
	}
}

func TestSplit_CoversWholeInput(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 50; i++ {
		b.WriteString("Sentence number ")
		b.WriteByte(byte('a' + i%26))
		b.WriteByte(byte('a' + i/26))
		b.WriteString(" in the sequence. ")
	}
	cleaned := Normalize(b.String())
	chunks := Split(b.String(), 100, 25)

	// every chunk must start at or before the previously covered position
	covered := 0
	for i, c := range chunks {
		start := strings.Index(cleaned, c)
		if start < 0 {
			t.Fatalf("chunk %d not found in input", i)
		}
		if start > covered {
			t.Fatalf("gap before chunk %d: starts at %d, covered %d", i, start, covered)
		}
		if end := start + len(c); end > covered {
			covered = end
		}
	}
	if covered < len(cleaned)-1 { // trailing space may be trimmed
		t.Errorf("chunks cover up to %d of %d characters", covered, len(cleaned))
	}
}

func TestSplit_MultibyteRunesStayIntact(t *testing.T) {
	// currency symbols are three bytes each; 50 is never a multiple of 3,
	// so every tentative cut lands inside a rune
	text := strings.Repeat("€", 100)
	chunks := Split(text, 50, 10)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if !utf8.ValidString(c) {
			t.Errorf("chunk %d is not valid UTF-8: %q", i, c)
		}
		if strings.Count(c, "€")*len("€") != len(c) {
			t.Errorf("chunk %d contains torn bytes: %q", i, c)
		}
	}
}

func TestSplit_MultibyteMixedText(t *testing.T) {
	text := strings.Repeat("Invoice total 125€ plus 40£ handling fee. ", 30)
	chunks := Split(text, 100, 25)

	for i, c := range chunks {
		if !utf8.ValidString(c) {
			t.Errorf("chunk %d is not valid UTF-8: %q", i, c)
		}
	}
	joined := strings.Join(chunks, " ")
	if !strings.Contains(joined, "125€") || !strings.Contains(joined, "40£") {
		t.Error("currency markers lost across chunk boundaries")
	}
}

func TestSplit_SizeSmallerThanRune(t *testing.T) {
	chunks := Split("€€€", 1, 0) // size below the rune width must not stall
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d: %v", len(chunks), chunks)
	}
	for i, c := range chunks {
		if c != "€" {
			t.Errorf("chunk %d = %q; want %q", i, c, "€")
		}
	}
}

func TestChunks_LazyAndRestartable(t *testing.T) {
	text := strings.Repeat("one two three four five. ", 40)
	seq := Chunks(text, 80, 20)

	first := 0
	for range seq {
		first++
	}
	second := 0
	for range seq {
		second++
	}
	if first == 0 || first != second {
		t.Errorf("restarted sequence yielded %d chunks, first pass %d", second, first)
	}

	// early break must not panic or leak
	for range seq {
		break
	}
}

func TestSplit_MonotonicProgressWithLargeOverlap(t *testing.T) {
	text := strings.Repeat("x", 500)
	chunks := Split(text, 100, 100) // overlap == size must still terminate

	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
	total := 0
	for _, c := range chunks {
		total += len(c)
	}
	if total < 500 {
		t.Errorf("chunks cover %d of 500 characters", total)
	}
}

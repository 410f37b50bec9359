package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/avanth/docuquery/internal/domain/docModel"
	"github.com/avanth/docuquery/pkg/logger_i"
)

// --- Mocks for the OCR fallback ---

type mockRecognizer struct {
	recognizeFunc func(png []byte) (string, error)
	closed        bool
}

func (m *mockRecognizer) Recognize(png []byte) (string, error) { return m.recognizeFunc(png) }
func (m *mockRecognizer) Close() error {
	m.closed = true
	return nil
}

type mockRasterizer struct {
	renderFunc func(pageIndex int) ([]byte, error)
	closed     bool
}

func (m *mockRasterizer) RenderPNG(pageIndex int) ([]byte, error) { return m.renderFunc(pageIndex) }
func (m *mockRasterizer) Close() error {
	m.closed = true
	return nil
}

func testEngine(rec PageRecognizer, ras PageRasterizer, recErr, rasErr error) *Engine {
	return &Engine{
		logger:        logger_i.NewLogger("Extraction Engine Test "),
		newRecognizer: func() (PageRecognizer, error) { return rec, recErr },
		newRasterizer: func(string) (PageRasterizer, error) { return ras, rasErr },
	}
}

// --- Unit Tests ---

func TestDocTypeOf(t *testing.T) {
	tests := []struct {
		path     string
		expected docModel.DocType
	}{
		{"test.pdf", docModel.PDF},
		{"DOC.DOCX", docModel.DOCX},
		{"notes.txt", docModel.DOCX},
		{"old.rtf", docModel.DOCX},
		{"image.png", docModel.ERR},
	}

	for _, tt := range tests {
		if got := DocTypeOf(tt.path); got != tt.expected {
			t.Errorf("DocTypeOf(%s) = %v; want %v", tt.path, got, tt.expected)
		}
	}
}

func TestAssemble_PageMarkers(t *testing.T) {
	pages := []pageText{
		{Number: 1, Text: "first page body"},
		{Number: 2, Text: "scanned page body", OCR: true},
	}

	out, err := assemble(pages)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "--- Page 1 ---\nfirst page body") {
		t.Errorf("missing plain page marker in %q", out)
	}
	if !strings.Contains(out, "--- Page 2 (OCR) ---\nscanned page body") {
		t.Errorf("missing OCR page marker in %q", out)
	}
}

func TestAssemble_SkipsBlankPages(t *testing.T) {
	out, err := assemble([]pageText{
		{Number: 1, Text: "   \n\t"},
		{Number: 2, Text: "content"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(out, "Page 1") {
		t.Errorf("blank page should be dropped, got %q", out)
	}
}

func TestAssemble_NoUsableText(t *testing.T) {
	if _, err := assemble(nil); !errors.Is(err, ErrNoText) {
		t.Errorf("assemble(nil) error = %v; want ErrNoText", err)
	}
	if _, err := assemble([]pageText{{Number: 1, Text: "  "}}); !errors.Is(err, ErrNoText) {
		t.Errorf("whitespace-only pages error = %v; want ErrNoText", err)
	}
}

func TestExtractText_PlainTextFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "note.txt")
	if err := os.WriteFile(path, []byte("Total due: $125.00."), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := NewEngine().ExtractText(context.Background(), path, docModel.DOCX)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "--- Page 1 ---") || !strings.Contains(out, "Total due: $125.00.") {
		t.Errorf("extracted text = %q", out)
	}
}

func TestExtractText_EmptyFileIsNoText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	if err := os.WriteFile(path, []byte("  \n "), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := NewEngine().ExtractText(context.Background(), path, docModel.DOCX)
	if !errors.Is(err, ErrNoText) {
		t.Errorf("error = %v; want ErrNoText", err)
	}
}

func TestExtractText_MissingPDF(t *testing.T) {
	_, err := NewEngine().ExtractText(context.Background(), "/nonexistent/file.pdf", docModel.PDF)

	var extractionErr *ExtractionError
	if !errors.As(err, &extractionErr) {
		t.Fatalf("error = %v; want *ExtractionError", err)
	}
	if extractionErr.Path != "/nonexistent/file.pdf" {
		t.Errorf("error path = %q", extractionErr.Path)
	}
}

func TestExtractText_UnsupportedType(t *testing.T) {
	_, err := NewEngine().ExtractText(context.Background(), "pic.png", docModel.ERR)
	if err == nil {
		t.Fatal("expected error for unsupported content type")
	}
}

func TestOCRFallback_LazySetupAndPageIndex(t *testing.T) {
	var rendered []int
	ras := &mockRasterizer{renderFunc: func(pageIndex int) ([]byte, error) {
		rendered = append(rendered, pageIndex)
		return []byte("png"), nil
	}}
	rec := &mockRecognizer{recognizeFunc: func(png []byte) (string, error) {
		return "recognized text", nil
	}}

	ocr := newOCRFallback(testEngine(rec, ras, nil, nil), "doc.pdf")

	got, err := ocr.recognizePage(3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "recognized text" {
		t.Errorf("recognized = %q", got)
	}
	// recognizer and rasterizer use 0-based pages, callers 1-based
	if len(rendered) != 1 || rendered[0] != 2 {
		t.Errorf("rendered pages = %v; want [2]", rendered)
	}

	ocr.close()
	if !rec.closed || !ras.closed {
		t.Error("close must release recognizer and rasterizer")
	}
}

func TestOCRFallback_SetupFailureIsSticky(t *testing.T) {
	calls := 0
	engine := &Engine{
		logger: logger_i.NewLogger("Extraction Engine Test "),
		newRecognizer: func() (PageRecognizer, error) {
			calls++
			return nil, errors.New("no tesseract")
		},
		newRasterizer: func(string) (PageRasterizer, error) {
			t.Fatal("rasterizer must not open when recognizer setup fails")
			return nil, nil
		},
	}

	ocr := newOCRFallback(engine, "doc.pdf")
	if _, err := ocr.recognizePage(1); err == nil {
		t.Fatal("expected setup error")
	}
	if _, err := ocr.recognizePage(2); err == nil {
		t.Fatal("expected cached setup error")
	}
	if calls != 1 {
		t.Errorf("recognizer setup attempted %d times; want 1", calls)
	}
	ocr.close()
}

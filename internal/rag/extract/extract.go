package extract

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/avanth/docuquery/internal/domain/docModel"
	"github.com/avanth/docuquery/pkg/logger_i"
)

// Page markers keep the page structure visible in the stored full text so
// answers can cite where in the document a passage came from.
const (
	pageMarker    = "\n\n--- Page %d ---\n"
	ocrPageMarker = "\n\n--- Page %d (OCR) ---\n"
)

// ErrNoText is the "document opened fine but held no usable text" outcome,
// distinct from a hard extraction failure.
var ErrNoText = errors.New("no text could be extracted")

type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extracting %s: %v", e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

type pageText struct {
	Number int
	Text   string
	OCR    bool
}

// Engine converts a stored document into page-ordered plain text. The direct
// text layer is preferred; pages without one fall back to rasterization plus
// optical recognition.
type Engine struct {
	logger        *logger_i.Logger
	newRecognizer func() (PageRecognizer, error)
	newRasterizer func(path string) (PageRasterizer, error)
}

func NewEngine() *Engine {
	return &Engine{
		logger:        logger_i.NewLogger("Extraction Engine "),
		newRecognizer: newTesseractRecognizer,
		newRasterizer: newFitzRasterizer,
	}
}

func DocTypeOf(docPath string) docModel.DocType {
	ext := strings.ToLower(filepath.Ext(docPath))
	switch ext {
	case ".pdf":
		return docModel.PDF
	case ".docx", ".txt", ".rtf", ".odt":
		return docModel.DOCX
	default:
		return docModel.ERR
	}
}

// ExtractText returns the concatenated page texts for the document at path.
// Unreadable input yields an *ExtractionError; a readable document with no
// usable text yields ErrNoText.
func (e *Engine) ExtractText(ctx context.Context, path string, contentType docModel.DocType) (string, error) {
	var pages []pageText
	var err error

	switch contentType {
	case docModel.PDF:
		pages, err = e.extractPDF(ctx, path)
	case docModel.DOCX:
		pages, err = extractDocxTxtRtf(path)
	default:
		err = fmt.Errorf("unsupported content type: %s", contentType)
	}
	if err != nil {
		return "", &ExtractionError{Path: path, Err: err}
	}

	return assemble(pages)
}

func assemble(pages []pageText) (string, error) {
	var b strings.Builder
	for _, p := range pages {
		if strings.TrimSpace(p.Text) == "" {
			continue
		}
		marker := pageMarker
		if p.OCR {
			marker = ocrPageMarker
		}
		fmt.Fprintf(&b, marker, p.Number)
		b.WriteString(p.Text)
	}

	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", ErrNoText
	}
	return out, nil
}

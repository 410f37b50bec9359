package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"

	"github.com/avanth/docuquery/internal/config"
)

func (e *Engine) extractPDF(ctx context.Context, path string) ([]pageText, error) {
	reader, err := pdf.Open(path)
	if err != nil {
		e.logger.Error("failed opening of pdf file", "path", path)
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	ocr := newOCRFallback(e, path)
	defer ocr.close()

	var pages []pageText
	numPages := reader.NumPage()
	e.logger.Debug("extractPDF", "path", path, "number of pages", numPages)
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var content string
		page := reader.Page(i)
		if !page.V.IsNull() {
			content, err = protectExtract(page)
			if err != nil {
				e.logger.Warn("text layer extraction failed", "page", i, "error", err)
				content = ""
			}
		}
		if strings.TrimSpace(content) != "" {
			pages = append(pages, pageText{Number: i, Text: content})
			continue
		}

		// Empty text layer means a scanned or image-only page.
		recognized, err := ocr.recognizePage(i)
		if err != nil {
			e.logger.Warn("page recognition failed", "page", i, "error", err)
			continue
		}
		pages = append(pages, pageText{Number: i, Text: recognized, OCR: true})
	}
	return pages, nil
}

// extractDocxTxtRtf reads a .odt, .docx, .rtf or plaintext file and returns
// the content as a single page.
func extractDocxTxtRtf(path string) ([]pageText, error) {
	text, err := cat.File(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document text: %w", err)
	}
	return []pageText{{Number: 1, Text: text}}, nil
}

// protectExtract bounds a single page's text layer read; some malformed PDFs
// make GetPlainText spin.
func protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(config.ExtractPageTimeout):
		return "", errors.New("page extraction timeout")
	}
}

package extract

import (
	"fmt"

	"github.com/gen2brain/go-fitz"
	"github.com/otiai10/gosseract/v2"

	"github.com/avanth/docuquery/internal/config"
)

// PageRecognizer turns a rasterized page image into text.
type PageRecognizer interface {
	Recognize(png []byte) (string, error)
	Close() error
}

// PageRasterizer renders one page of an open document to a PNG image.
// Page indexes are 0-based.
type PageRasterizer interface {
	RenderPNG(pageIndex int) ([]byte, error)
	Close() error
}

// ocrFallback opens the recognizer and rasterizer on first use so documents
// with a full text layer never pay the model/engine startup cost.
type ocrFallback struct {
	engine     *Engine
	path       string
	recognizer PageRecognizer
	rasterizer PageRasterizer
	setupErr   error
	tried      bool
}

func newOCRFallback(e *Engine, path string) *ocrFallback {
	return &ocrFallback{engine: e, path: path}
}

func (o *ocrFallback) recognizePage(pageNum int) (string, error) {
	if err := o.setup(); err != nil {
		return "", err
	}

	png, err := o.rasterizer.RenderPNG(pageNum - 1)
	if err != nil {
		return "", fmt.Errorf("rasterizing page %d: %w", pageNum, err)
	}
	return o.recognizer.Recognize(png)
}

func (o *ocrFallback) setup() error {
	if o.tried {
		return o.setupErr
	}
	o.tried = true

	recognizer, err := o.engine.newRecognizer()
	if err != nil {
		o.setupErr = fmt.Errorf("starting recognizer: %w", err)
		return o.setupErr
	}
	rasterizer, err := o.engine.newRasterizer(o.path)
	if err != nil {
		recognizer.Close()
		o.setupErr = fmt.Errorf("opening document for rasterization: %w", err)
		return o.setupErr
	}
	o.recognizer = recognizer
	o.rasterizer = rasterizer
	return nil
}

func (o *ocrFallback) close() {
	if o.recognizer != nil {
		o.recognizer.Close()
	}
	if o.rasterizer != nil {
		o.rasterizer.Close()
	}
}

type tesseractRecognizer struct {
	client *gosseract.Client
}

func newTesseractRecognizer() (PageRecognizer, error) {
	client := gosseract.NewClient()
	if err := client.SetLanguage(config.OCRLanguage); err != nil {
		client.Close()
		return nil, err
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		client.Close()
		return nil, err
	}
	return &tesseractRecognizer{client: client}, nil
}

func (t *tesseractRecognizer) Recognize(png []byte) (string, error) {
	if err := t.client.SetImageFromBytes(png); err != nil {
		return "", err
	}
	return t.client.Text()
}

func (t *tesseractRecognizer) Close() error { return t.client.Close() }

type fitzRasterizer struct {
	doc *fitz.Document
}

func newFitzRasterizer(path string) (PageRasterizer, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	return &fitzRasterizer{doc: doc}, nil
}

func (f *fitzRasterizer) RenderPNG(pageIndex int) ([]byte, error) {
	return f.doc.ImagePNG(pageIndex, config.OCRRasterDPI)
}

func (f *fitzRasterizer) Close() error { return f.doc.Close() }

package tokens

import (
	"context"
	"fmt"

	"github.com/dsm122n/lab-hll/ocr"
)

// ImageSource provides the images painted on each page.
type ImageSource interface {
	PageCount(ctx context.Context) (int, error)
	PageImages(ctx context.Context, index int) ([][]byte, error)
}

// Recognizer reads text lines from an encoded image.
type Recognizer interface {
	RecognizeLines(image []byte) ([]string, error)
	Close() error
}

// pageSegmenter is implemented by recognizers whose layout analysis can be
// tuned, such as *ocr.Client.
type pageSegmenter interface {
	SetPageSegMode(mode ocr.PageSegMode) error
}

// OCRSource reads tokens from scanned pages: every line Tesseract recognizes
// in a page image becomes one token. It needs a binary built with the "ocr"
// tag; otherwise Page fails with ocr.ErrOCRNotEnabled.
type OCRSource struct {
	images ImageSource
	lang   string
	psm    ocr.PageSegMode
	open   func(lang string) (Recognizer, error)
}

// NewOCRSource returns a source recognizing the images of src in lang. An
// empty lang selects ocr.DefaultLanguage.
func NewOCRSource(src ImageSource, lang string) *OCRSource {
	if lang == "" {
		lang = ocr.DefaultLanguage
	}
	return &OCRSource{images: src, lang: lang, open: openTesseract}
}

// WithRecognizer returns a copy of s that opens recognizers with open.
func (s *OCRSource) WithRecognizer(open func(lang string) (Recognizer, error)) *OCRSource {
	cp := *s
	cp.open = open
	return &cp
}

// WithPageSegMode returns a copy of s that sets mode on every recognizer
// supporting it. The zero mode keeps the recognizer's default.
func (s *OCRSource) WithPageSegMode(mode ocr.PageSegMode) *OCRSource {
	cp := *s
	cp.psm = mode
	return &cp
}

func openTesseract(lang string) (Recognizer, error) {
	c, err := ocr.New()
	if err != nil {
		return nil, err
	}
	if lang != ocr.DefaultLanguage {
		if err := c.SetLanguage(lang); err != nil {
			c.Close()
			return nil, err
		}
	}
	return c, nil
}

// PageCount returns the number of pages.
func (s *OCRSource) PageCount(ctx context.Context) (int, error) {
	return s.images.PageCount(ctx)
}

// Page recognizes the images of a page in order. Each call uses its own
// recognizer, so pages can be read concurrently.
func (s *OCRSource) Page(ctx context.Context, index int) ([]string, error) {
	imgs, err := s.images.PageImages(ctx, index)
	if err != nil {
		return nil, err
	}
	if len(imgs) == 0 {
		return nil, nil
	}

	rec, err := s.open(s.lang)
	if err != nil {
		return nil, fmt.Errorf("failed to start OCR: %w", err)
	}
	defer rec.Close()

	if ps, ok := rec.(pageSegmenter); ok && s.psm != 0 {
		if err := ps.SetPageSegMode(s.psm); err != nil {
			return nil, fmt.Errorf("failed to set page segmentation mode %s: %w", s.psm, err)
		}
	}

	var out []string
	for i, img := range imgs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := ocr.Prepare(img)
		if err != nil {
			return nil, fmt.Errorf("page %d image %d: %w", index+1, i+1, err)
		}
		lines, err := rec.RecognizeLines(data)
		if err != nil {
			return nil, fmt.Errorf("page %d image %d: %w", index+1, i+1, err)
		}
		for _, line := range lines {
			emit(&out, line)
		}
	}
	return out, nil
}

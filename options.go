package labhll

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dsm122n/lab-hll/catalog"
	"github.com/dsm122n/lab-hll/ocr"
)

// maxDownloadBytes caps PDFs fetched by FromURL.
const maxDownloadBytes = 64 << 20

// ExtractOptions holds the configuration of an Extractor.
type ExtractOptions struct {
	// Page selection, 1-indexed as given.
	pages []int

	catalog *catalog.Catalog
	logger  *slog.Logger
	ctx     context.Context
	client  *http.Client

	ocr     bool
	ocrLang string
	ocrPSM  ocr.PageSegMode
}

// defaultOptions returns the built-in catalog, slog.Default and
// http.DefaultClient.
func defaultOptions() ExtractOptions {
	return ExtractOptions{
		catalog: catalog.Default(),
		logger:  slog.Default(),
		ctx:     context.Background(),
		client:  http.DefaultClient,
	}
}

// clone returns a copy with its own page list.
func (o ExtractOptions) clone() ExtractOptions {
	cp := o
	if o.pages != nil {
		cp.pages = append([]int(nil), o.pages...)
	}
	return cp
}

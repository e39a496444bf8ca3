package labhll

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/dsm122n/lab-hll/catalog"
	"github.com/dsm122n/lab-hll/ocr"
	"github.com/dsm122n/lab-hll/render"
	"github.com/dsm122n/lab-hll/report"
	"github.com/dsm122n/lab-hll/tokens"
)

// ErrAcquisition is returned when the document cannot be read: open, fetch,
// parse and page errors, and a missing header.
var ErrAcquisition = errors.New("failed to acquire report")

// Extractor is a fluent, immutable extraction pipeline. Each configuration
// method returns a new Extractor, so a configured Extractor can be shared.
type Extractor struct {
	// Source, exactly one of which is set.
	path   string
	reader io.ReadSeeker
	url    string
	source tokens.Source

	options ExtractOptions

	// Accumulated error (fail-fast).
	err error
}

// clone returns a copy with its own options.
func (e *Extractor) clone() *Extractor {
	return &Extractor{
		path:    e.path,
		reader:  e.reader,
		url:     e.url,
		source:  e.source,
		options: e.options.clone(),
		err:     e.err,
	}
}

// ============================================================================
// Configuration Methods (return new Extractor instance)
// ============================================================================

// Pages restricts extraction to the given pages (1-indexed). Multiple calls
// are cumulative. The header is read from the first selected page.
//
// Example:
//
//	summary, _, err := labhll.Open("informe.pdf").Pages(1, 2).Summary()
func (e *Extractor) Pages(pages ...int) *Extractor {
	newExt := e.clone()
	newExt.options.pages = append(newExt.options.pages, pages...)
	return newExt
}

// PageRange restricts extraction to pages start through end (1-indexed,
// inclusive).
func (e *Extractor) PageRange(start, end int) *Extractor {
	newExt := e.clone()
	if newExt.err == nil && (start < 1 || end < start) {
		newExt.err = fmt.Errorf("invalid page range %d-%d", start, end)
		return newExt
	}
	for i := start; i <= end; i++ {
		newExt.options.pages = append(newExt.options.pages, i)
	}
	return newExt
}

// WithCatalog replaces the built-in exam catalog.
func (e *Extractor) WithCatalog(cat *catalog.Catalog) *Extractor {
	newExt := e.clone()
	if cat == nil {
		if newExt.err == nil {
			newExt.err = errors.New("nil catalog")
		}
		return newExt
	}
	newExt.options.catalog = cat
	return newExt
}

// WithLogger sets the logger. The pipeline logs at Debug level only.
func (e *Extractor) WithLogger(logger *slog.Logger) *Extractor {
	newExt := e.clone()
	if logger != nil {
		newExt.options.logger = logger
	}
	return newExt
}

// WithContext sets the context that bounds downloads and page extraction.
func (e *Extractor) WithContext(ctx context.Context) *Extractor {
	newExt := e.clone()
	if ctx != nil {
		newExt.options.ctx = ctx
	}
	return newExt
}

// WithHTTPClient sets the client used by FromURL.
func (e *Extractor) WithHTTPClient(client *http.Client) *Extractor {
	newExt := e.clone()
	if client != nil {
		newExt.options.client = client
	}
	return newExt
}

// OCR reads tokens from page images instead of the text layer, for scanned
// reports. lang is a Tesseract language ("" for Spanish). Requires a binary
// built with the "ocr" tag and a PDF input.
func (e *Extractor) OCR(lang string) *Extractor {
	newExt := e.clone()
	newExt.options.ocr = true
	newExt.options.ocrLang = lang
	return newExt
}

// OCRPageSegMode sets Tesseract's page segmentation mode for OCR. It has no
// effect unless OCR is enabled.
func (e *Extractor) OCRPageSegMode(mode ocr.PageSegMode) *Extractor {
	newExt := e.clone()
	newExt.options.ocrPSM = mode
	return newExt
}

// ============================================================================
// Terminal Operations
// ============================================================================

// PageCount returns the number of pages of the document.
func (e *Extractor) PageCount() (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	src, err := e.openSource()
	if err != nil {
		return 0, err
	}
	n, err := src.PageCount(e.options.ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrAcquisition, err)
	}
	return n, nil
}

// Tokens returns the tokens of the selected pages, in page order.
//
// Example:
//
//	pages, _, err := labhll.Open("informe.pdf").Tokens()
//	for i, tok := range pages[0] {
//	    fmt.Println(i, tok)
//	}
func (e *Extractor) Tokens() ([][]string, []Warning, error) {
	pages, _, warnings, err := e.readPages()
	return pages, warnings, err
}

// readPages returns the tokens of the selected pages together with their
// 0-indexed document page numbers.
func (e *Extractor) readPages() ([][]string, []int, []Warning, error) {
	if e.err != nil {
		return nil, nil, nil, e.err
	}
	src, err := e.openSource()
	if err != nil {
		return nil, nil, nil, err
	}
	pageNums, err := e.resolvePages(src)
	if err != nil {
		return nil, nil, nil, err
	}

	pages, err := e.fetchPages(src, pageNums)
	if err != nil {
		return nil, nil, nil, err
	}

	var warnings []Warning
	for i, p := range pages {
		if len(p) == 0 {
			warnings = append(warnings, Warning{
				Code:    WarnEmptyPage,
				Page:    pageNums[i] + 1,
				Message: "no text tokens; the page may be scanned",
			})
		}
	}
	return pages, pageNums, warnings, nil
}

// Report extracts the lab values of the document.
//
// Layout mismatches and derived values that could not be computed are
// reported as warnings. Any failure to read the document, the header
// included, is an ErrAcquisition.
func (e *Extractor) Report() (*report.LabReport, []Warning, error) {
	pages, pageNums, warnings, err := e.readPages()
	if err != nil {
		return nil, nil, err
	}

	log := e.options.logger
	cat := e.options.catalog

	r, res, err := report.Build(pages, cat)
	if err != nil {
		return nil, warnings, fmt.Errorf("%w: %w", ErrAcquisition, err)
	}

	for _, m := range res.Mismatches {
		page := pageNums[m.Page] + 1
		log.Debug("layout mismatch",
			"exam", m.Entry.Name,
			"page", page,
			"name_index", m.NameIndex,
			"value_index", m.ValueIndex,
			"error", m.Err,
		)
		warnings = append(warnings, Warning{
			Code:    WarnLayoutMismatch,
			Page:    page,
			Message: fmt.Sprintf("%s at token %d: %v", m.Entry.Name, m.NameIndex, m.Err),
		})
	}

	for _, field := range r.ApplyDerived() {
		log.Debug("derived value skipped", "field", field)
		warnings = append(warnings, Warning{
			Code:    WarnDerivedSkipped,
			Message: fmt.Sprintf("%s not computed: leukocyte count or percentage is not numeric", field),
		})
	}

	log.Debug("report extracted",
		"date", r.Date.Format(report.DateLayout),
		"time", r.Time,
		"matches", len(res.Matches),
		"mismatches", len(res.Mismatches),
		"fields", r.Len(),
	)
	return r, warnings, nil
}

// Summary returns the text summary of the document.
//
// Example:
//
//	summary := labhll.MustText(labhll.Open("informe.pdf").Summary())
func (e *Extractor) Summary() (string, []Warning, error) {
	r, warnings, err := e.Report()
	if err != nil {
		return "", warnings, err
	}
	return render.Text(r), warnings, nil
}

// ============================================================================
// Internal helpers
// ============================================================================

// openSource builds the token source for the configured input.
func (e *Extractor) openSource() (tokens.Source, error) {
	if e.source != nil {
		if e.options.ocr {
			return nil, errors.New("OCR needs a PDF input")
		}
		return e.source, nil
	}

	var pdf *tokens.PDFSource
	var err error
	switch {
	case e.path != "":
		pdf, err = tokens.OpenPDF(e.path)
	case e.reader != nil:
		pdf, err = tokens.NewPDFSource(e.reader)
	case e.url != "":
		var data []byte
		if data, err = e.download(); err == nil {
			pdf, err = tokens.NewPDFSource(bytes.NewReader(data))
		}
	default:
		return nil, errors.New("no input specified")
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAcquisition, err)
	}

	if e.options.ocr {
		return tokens.NewOCRSource(pdf, e.options.ocrLang).WithPageSegMode(e.options.ocrPSM), nil
	}
	return pdf, nil
}

// download fetches the PDF at e.url.
func (e *Extractor) download() ([]byte, error) {
	req, err := http.NewRequestWithContext(e.options.ctx, http.MethodGet, e.url, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	resp, err := e.options.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch: %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if len(data) > maxDownloadBytes {
		return nil, fmt.Errorf("document larger than %d bytes", maxDownloadBytes)
	}

	e.options.logger.Debug("downloaded document", "url", e.url, "bytes", len(data))
	return data, nil
}

// resolvePages converts 1-indexed page numbers to sorted, unique 0-indexed
// ones. No selection means every page.
func (e *Extractor) resolvePages(src tokens.Source) ([]int, error) {
	pageCount, err := src.PageCount(e.options.ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get page count: %w", ErrAcquisition, err)
	}

	if len(e.options.pages) == 0 {
		pageIndices := make([]int, pageCount)
		for i := range pageIndices {
			pageIndices[i] = i
		}
		return pageIndices, nil
	}

	var pageIndices []int
	for _, p := range e.options.pages {
		if p < 1 || p > pageCount {
			return nil, fmt.Errorf("page %d out of range (1-%d)", p, pageCount)
		}
		pageIndices = append(pageIndices, p-1)
	}
	slices.Sort(pageIndices)
	return slices.Compact(pageIndices), nil
}

// fetchPages reads pages concurrently. The first failure cancels the rest
// and is returned; no partial result is kept.
func (e *Extractor) fetchPages(src tokens.Source, pageNums []int) ([][]string, error) {
	log := e.options.logger
	pages := make([][]string, len(pageNums))

	g, ctx := errgroup.WithContext(e.options.ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, n := range pageNums {
		g.Go(func() error {
			toks, err := src.Page(ctx, n)
			if err != nil {
				return fmt.Errorf("page %d: %w", n+1, err)
			}
			log.Debug("page tokens", "page", n+1, "tokens", len(toks))
			pages[i] = toks
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAcquisition, err)
	}
	return pages, nil
}

package tokens

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/dsm122n/lab-hll/format"
)

// ErrInvalidPDF is returned when a document cannot be read as a PDF.
var ErrInvalidPDF = errors.New("invalid PDF")

// PDFSource reads tokens from the text layer of a PDF. Each token is the
// text of one text-showing operator, in content stream order.
//
// Access to the underlying pdfcpu context is serialized; content streams are
// tokenized outside the lock, so concurrent Page calls overlap.
type PDFSource struct {
	mu  sync.Mutex
	ctx *model.Context
}

// NewPDFSource reads and validates a PDF. Inputs recognized as another
// format, such as an HTML page or a scanned image, fail before parsing.
func NewPDFSource(rs io.ReadSeeker) (*PDFSource, error) {
	f, err := format.DetectReader(rs)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	switch {
	case f.IsImage():
		return nil, fmt.Errorf("%w: input is a %s image (%s); scans must be wrapped in a PDF", ErrInvalidPDF, f, f.MediaType())
	case f != format.PDF && f != format.Unknown:
		return nil, fmt.Errorf("%w: input is %s (%s)", ErrInvalidPDF, f, f.MediaType())
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadValidateAndOptimize(rs, conf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}
	return &PDFSource{ctx: ctx}, nil
}

// OpenPDF reads the PDF file at path.
func OpenPDF(path string) (*PDFSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return NewPDFSource(bytes.NewReader(data))
}

// PageCount returns the number of pages.
func (s *PDFSource) PageCount(ctx context.Context) (int, error) {
	return s.ctx.PageCount, nil
}

// Page returns the tokens of the page at index.
func (s *PDFSource) Page(ctx context.Context, index int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkIndex(index, s.ctx.PageCount); err != nil {
		return nil, err
	}

	pl, err := s.load(index + 1)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", index+1, err)
	}
	return pl.root.tokens(), nil
}

// PageImages returns the images painted on the page at index, encoded as
// pdfcpu exports them (PNG, TIFF or JPEG), ordered by object number.
func (s *PDFSource) PageImages(ctx context.Context, index int) ([][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkIndex(index, s.ctx.PageCount); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	imgs, err := pdfcpu.ExtractPageImages(s.ctx, index+1, false)
	if err != nil {
		return nil, fmt.Errorf("page %d: failed to extract images: %w", index+1, err)
	}

	var out [][]byte
	for _, objNr := range slices.Sorted(maps.Keys(imgs)) {
		img := imgs[objNr]
		if img.Reader == nil {
			continue
		}
		data, err := io.ReadAll(img)
		if err != nil {
			return nil, fmt.Errorf("page %d: failed to read image %d: %w", index+1, objNr, err)
		}
		out = append(out, data)
	}
	return out, nil
}

// pageLoader builds the scopes of one page. Form XObjects are read when
// first painted and kept by object number, so a form painted many times or
// reached from several other forms is decoded once.
type pageLoader struct {
	src   *PDFSource
	root  *scope
	fonts map[int]*fontDecoder
	forms map[formKey]*scope
}

// formKey identifies a resolved form. A form without its own /Resources
// reads those of the scope that owns its painter's resources.
type formKey struct {
	objNr int
	owner *scope
}

// load collects the content and resources of a 1-based page.
func (s *PDFSource) load(pageNr int) (*pageLoader, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := pdfcpu.ExtractPageContent(s.ctx, pageNr)
	if err != nil {
		return nil, fmt.Errorf("failed to extract content: %w", err)
	}
	var content []byte
	if r != nil {
		if content, err = io.ReadAll(r); err != nil {
			return nil, fmt.Errorf("failed to read content: %w", err)
		}
	}

	d, _, inh, err := s.ctx.PageDict(pageNr, true)
	if err != nil {
		return nil, fmt.Errorf("failed to read page dictionary: %w", err)
	}
	var res types.Dict
	if inh != nil && inh.Resources != nil {
		res = inh.Resources
	} else if o, ok := d.Find("Resources"); ok {
		res, _ = s.ctx.DereferenceDict(o)
	}

	pl := &pageLoader{
		src:   s,
		fonts: make(map[int]*fontDecoder),
		forms: make(map[formKey]*scope),
	}
	pl.root = pl.scope(content, res, nil)
	return pl, nil
}

// scope returns the scope of a content stream. With a nil owner, res is the
// stream's own resource dictionary; otherwise the stream shares the fonts
// and resolved forms of owner, whose resources are res. The caller holds the
// lock.
func (l *pageLoader) scope(content []byte, res types.Dict, owner *scope) *scope {
	sc := &scope{content: content}
	if owner == nil {
		owner = sc
		sc.fonts = l.fontsOf(res)
	} else {
		sc.fonts = owner.fonts
	}
	sc.resolve = func(name string) *scope {
		return l.form(res, owner, name)
	}
	return sc
}

// fontsOf resolves the /Font entry of a resource dictionary.
func (l *pageLoader) fontsOf(res types.Dict) map[string]*fontDecoder {
	out := make(map[string]*fontDecoder)
	fonts, err := l.src.ctx.DereferenceDict(res["Font"])
	if err != nil {
		return out
	}
	for name, o := range fonts {
		if f := l.font(o); f != nil {
			out[name] = f
		}
	}
	return out
}

// font returns the decoder of a font, building it once per object number.
func (l *pageLoader) font(o types.Object) *fontDecoder {
	ir, ok := o.(types.IndirectRef)
	if !ok {
		return l.src.font(o)
	}
	nr := ir.ObjectNumber.Value()
	if f, ok := l.fonts[nr]; ok {
		return f
	}
	f := l.src.font(o)
	l.fonts[nr] = f
	return f
}

// form resolves the form XObject name of res. It returns nil when name is
// not a form.
func (l *pageLoader) form(res types.Dict, owner *scope, name string) *scope {
	l.src.mu.Lock()
	defer l.src.mu.Unlock()
	ctx := l.src.ctx

	xobjects, err := ctx.DereferenceDict(res["XObject"])
	if err != nil {
		return nil
	}
	o, ok := xobjects[name]
	if !ok {
		return nil
	}
	key := formKey{objNr: -1}
	if ir, ok := o.(types.IndirectRef); ok {
		key.objNr = ir.ObjectNumber.Value()
	}

	sd, _, err := ctx.DereferenceStreamDict(o)
	if err != nil || sd == nil {
		return nil
	}
	if st := sd.NameEntry("Subtype"); st == nil || *st != "Form" {
		return nil
	}

	var own types.Dict
	if o, ok := sd.Find("Resources"); ok {
		if d, err := ctx.DereferenceDict(o); err == nil && d != nil {
			own = d
		}
	}
	if own == nil {
		key.owner = owner
	}
	if key.objNr >= 0 {
		if sc, ok := l.forms[key]; ok {
			return sc
		}
	}

	if err := sd.Decode(); err != nil {
		return nil
	}
	var sc *scope
	if own != nil {
		sc = l.scope(sd.Content, own, nil)
	} else {
		sc = l.scope(sd.Content, res, owner)
	}
	if key.objNr >= 0 {
		l.forms[key] = sc
	}
	return sc
}

// font builds the decoder of a font dictionary. It returns nil when the
// object is not a dictionary.
func (s *PDFSource) font(o types.Object) *fontDecoder {
	d, err := s.ctx.DereferenceDict(o)
	if err != nil || d == nil {
		return nil
	}

	var f *fontDecoder
	if st := d.NameEntry("Subtype"); st != nil && *st == "Type0" {
		f = newCompositeDecoder()
	} else {
		f = s.simpleDecoder(d)
	}

	if o, ok := d.Find("ToUnicode"); ok {
		sd, _, err := s.ctx.DereferenceStreamDict(o)
		if err == nil && sd != nil && sd.Decode() == nil {
			f.toUnicode = parseCMap(sd.Content)
		}
	}
	return f
}

// simpleDecoder reads /Encoding, a name or a dictionary with /BaseEncoding
// and /Differences.
func (s *PDFSource) simpleDecoder(font types.Dict) *fontDecoder {
	o, ok := font.Find("Encoding")
	if !ok {
		return newSimpleDecoder("")
	}
	enc, err := s.ctx.Dereference(o)
	if err != nil {
		return newSimpleDecoder("")
	}

	switch enc := enc.(type) {
	case types.Name:
		return newSimpleDecoder(string(enc))
	case types.Dict:
		base := ""
		if n := enc.NameEntry("BaseEncoding"); n != nil {
			base = *n
		}
		f := newSimpleDecoder(base)
		if diffs, err := s.ctx.DereferenceArray(enc["Differences"]); err == nil {
			f.applyDifferences(operands(diffs))
		}
		return f
	}
	return newSimpleDecoder("")
}

// operands converts the numbers and names of a PDF array.
func operands(arr types.Array) []operand {
	out := make([]operand, 0, len(arr))
	for _, o := range arr {
		switch v := o.(type) {
		case types.Integer:
			out = append(out, operand{kind: kindNumber, num: float64(v)})
		case types.Float:
			out = append(out, operand{kind: kindNumber, num: float64(v)})
		case types.Name:
			out = append(out, operand{kind: kindName, str: []byte(v)})
		}
	}
	return out
}

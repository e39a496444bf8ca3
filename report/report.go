package report

import (
	"errors"
	"fmt"
	"time"

	"github.com/dsm122n/lab-hll/catalog"
	"github.com/dsm122n/lab-hll/resolver"
)

// Header layout of the built-in template: "DD/MM/YYYY HH:MM".
const (
	DateLayout = "02/01/2006"
	TimeLayout = "15:04"
)

// ErrMissingHeader is returned when the date/time token is absent or malformed.
var ErrMissingHeader = errors.New("report header not found")

// Value is an optional field value.
type Value struct {
	Text  string
	Valid bool
}

// Item is a set field, in display order.
type Item struct {
	Field string
	Value string
}

// LabReport holds the values of one report.
type LabReport struct {
	// Date is the sampling date, with the header time applied.
	Date time.Time
	// Time is the sampling time exactly as printed ("HH:MM").
	Time string

	cat     *catalog.Catalog
	values  map[catalog.Category]map[string]Value
	derived bool
	skipped []string
}

// New returns an empty report for the given date and time.
func New(date time.Time, clock string, cat *catalog.Catalog) *LabReport {
	r := &LabReport{
		Date:   date,
		Time:   clock,
		cat:    cat,
		values: make(map[catalog.Category]map[string]Value),
	}
	for _, s := range cat.Sections() {
		fields := make(map[string]Value, len(s.Fields))
		for _, f := range s.Fields {
			fields[f] = Value{}
		}
		r.values[s.Category] = fields
	}
	return r
}

// ParseHeader reads the date and time from the header token of the catalog's
// template. Characters 0-10 hold the date and 11-16 the time.
func ParseHeader(pages [][]string, cat *catalog.Catalog) (time.Time, string, error) {
	h := cat.Header()
	if h.Page >= len(pages) {
		return time.Time{}, "", fmt.Errorf("%w: document has %d pages", ErrMissingHeader, len(pages))
	}
	page := pages[h.Page]
	if h.Index >= len(page) {
		return time.Time{}, "", fmt.Errorf("%w: page %d has %d tokens", ErrMissingHeader, h.Page+1, len(page))
	}

	token := []rune(page[h.Index])
	if len(token) < 16 {
		return time.Time{}, "", fmt.Errorf("%w: token %q is too short", ErrMissingHeader, string(token))
	}
	date := string(token[0:10])
	clock := string(token[11:16])

	t, err := time.Parse(DateLayout+" "+TimeLayout, date+" "+clock)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("%w: %v", ErrMissingHeader, err)
	}
	return t, clock, nil
}

// NewFromPages returns an empty report dated from the header token.
func NewFromPages(pages [][]string, cat *catalog.Catalog) (*LabReport, error) {
	date, clock, err := ParseHeader(pages, cat)
	if err != nil {
		return nil, err
	}
	return New(date, clock, cat), nil
}

// Build parses the header, scans the pages, applies every match and computes
// the derived fields. The scan result is returned for diagnostics.
func Build(pages [][]string, cat *catalog.Catalog) (*LabReport, resolver.Result, error) {
	r, err := NewFromPages(pages, cat)
	if err != nil {
		return nil, resolver.Result{}, err
	}
	res := resolver.Scan(pages, cat)
	r.Apply(res)
	r.ApplyDerived()
	return r, res, nil
}

// Catalog returns the template the report was built with.
func (r *LabReport) Catalog() *catalog.Catalog {
	return r.cat
}

// SetValue stores raw+unit in the given field. Empty values are ignored, so a
// set field is never cleared. It reports whether a value was stored.
func (r *LabReport) SetValue(cat catalog.Category, field, raw, unit string) bool {
	if raw == "" {
		return false
	}
	fields, ok := r.values[cat]
	if !ok {
		return false
	}
	if _, ok := fields[field]; !ok {
		return false
	}
	fields[field] = Value{Text: raw + unit, Valid: true}
	return true
}

// Apply stores every match of a scan in order. It returns the number of
// values stored.
func (r *LabReport) Apply(res resolver.Result) int {
	n := 0
	for _, m := range res.Matches {
		if r.SetValue(m.Entry.Category, m.Entry.Field, m.Value, m.Entry.Unit) {
			n++
		}
	}
	return n
}

// Get returns the value of a field.
func (r *LabReport) Get(cat catalog.Category, field string) (string, bool) {
	v := r.values[cat][field]
	return v.Text, v.Valid
}

// Value returns the optional value of a field.
func (r *LabReport) Value(cat catalog.Category, field string) Value {
	return r.values[cat][field]
}

// Fields returns the set fields of a category in declaration order.
func (r *LabReport) Fields(cat catalog.Category) []Item {
	s, ok := r.cat.Section(cat)
	if !ok {
		return nil
	}
	var items []Item
	for _, f := range s.Fields {
		if v := r.values[cat][f]; v.Valid {
			items = append(items, Item{Field: f, Value: v.Text})
		}
	}
	return items
}

// Len returns the number of set fields.
func (r *LabReport) Len() int {
	n := 0
	for _, fields := range r.values {
		for _, v := range fields {
			if v.Valid {
				n++
			}
		}
	}
	return n
}

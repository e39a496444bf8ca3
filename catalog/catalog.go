package catalog

import (
	"errors"
	"fmt"
)

// DefaultOffset is the value offset used by most rows of the built-in template.
const DefaultOffset = -3

// ErrInvalidCatalog is returned when a template violates a catalog invariant.
var ErrInvalidCatalog = errors.New("invalid catalog")

// Entry maps one exam name to the field it fills.
type Entry struct {
	// Name is matched against page tokens by exact equality. Whitespace is
	// significant ("LINFOCITOS " carries a trailing space).
	Name     string
	Category Category
	Field    string
	// Unit is appended to the captured value when it is stored.
	Unit string
	// Offset is the signed displacement from the name token to the value token.
	Offset int
}

// Section is the display layout of one category: its title and the order of
// its fields. A section may declare fields that no entry fills directly
// (derived or unused fields).
type Section struct {
	Category Category
	Title    string
	Fields   []string
}

// Header is the position of the token that carries the report date and time.
type Header struct {
	Page  int
	Index int
}

// Catalog is an immutable report template.
type Catalog struct {
	sections []Section
	entries  []Entry
	byName   map[string]int
	header   Header
}

// New validates the given template and returns a Catalog.
// Sections are kept in the given order, which is the display order.
func New(sections []Section, entries []Entry, header Header) (*Catalog, error) {
	if header.Page < 0 || header.Index < 0 {
		return nil, fmt.Errorf("%w: header position %d/%d is negative", ErrInvalidCatalog, header.Page, header.Index)
	}

	c := &Catalog{
		sections: make([]Section, 0, len(sections)),
		entries:  make([]Entry, 0, len(entries)),
		byName:   make(map[string]int, len(entries)),
		header:   header,
	}

	declared := make(map[Category]map[string]bool, len(sections))
	for _, s := range sections {
		if !s.Category.Valid() {
			return nil, fmt.Errorf("%w: section %q has invalid category", ErrInvalidCatalog, s.Title)
		}
		if _, dup := declared[s.Category]; dup {
			return nil, fmt.Errorf("%w: duplicate section for %s", ErrInvalidCatalog, s.Category)
		}
		fields := make(map[string]bool, len(s.Fields))
		for _, f := range s.Fields {
			if f == "" {
				return nil, fmt.Errorf("%w: empty field name in %s", ErrInvalidCatalog, s.Category)
			}
			if fields[f] {
				return nil, fmt.Errorf("%w: duplicate field %q in %s", ErrInvalidCatalog, f, s.Category)
			}
			fields[f] = true
		}
		declared[s.Category] = fields
		c.sections = append(c.sections, Section{
			Category: s.Category,
			Title:    s.Title,
			Fields:   append([]string(nil), s.Fields...),
		})
	}

	filled := make(map[Category]map[string]string)
	for _, e := range entries {
		if e.Name == "" {
			return nil, fmt.Errorf("%w: entry with empty name", ErrInvalidCatalog)
		}
		if _, dup := c.byName[e.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate exam name %q", ErrInvalidCatalog, e.Name)
		}
		fields, ok := declared[e.Category]
		if !ok {
			return nil, fmt.Errorf("%w: exam %q uses category %s without a section", ErrInvalidCatalog, e.Name, e.Category)
		}
		if !fields[e.Field] {
			return nil, fmt.Errorf("%w: exam %q fills undeclared field %s.%s", ErrInvalidCatalog, e.Name, e.Category, e.Field)
		}
		if filled[e.Category] == nil {
			filled[e.Category] = make(map[string]string)
		}
		if other, dup := filled[e.Category][e.Field]; dup {
			return nil, fmt.Errorf("%w: exams %q and %q both fill %s.%s", ErrInvalidCatalog, other, e.Name, e.Category, e.Field)
		}
		filled[e.Category][e.Field] = e.Name

		c.byName[e.Name] = len(c.entries)
		c.entries = append(c.entries, e)
	}

	return c, nil
}

// Lookup returns the entry whose name equals name exactly.
func (c *Catalog) Lookup(name string) (Entry, bool) {
	i, ok := c.byName[name]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// Entries returns a copy of the entries in declaration order.
func (c *Catalog) Entries() []Entry {
	return append([]Entry(nil), c.entries...)
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Sections returns a copy of the sections in display order.
func (c *Catalog) Sections() []Section {
	out := make([]Section, len(c.sections))
	for i, s := range c.sections {
		out[i] = Section{
			Category: s.Category,
			Title:    s.Title,
			Fields:   append([]string(nil), s.Fields...),
		}
	}
	return out
}

// Section returns the section of category cat.
func (c *Catalog) Section(cat Category) (Section, bool) {
	for _, s := range c.sections {
		if s.Category == cat {
			return Section{
				Category: s.Category,
				Title:    s.Title,
				Fields:   append([]string(nil), s.Fields...),
			}, true
		}
	}
	return Section{}, false
}

// Header returns the date/time token position.
func (c *Catalog) Header() Header {
	return c.header
}

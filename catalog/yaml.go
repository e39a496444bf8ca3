package catalog

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type templateFile struct {
	Header   *headerFile   `yaml:"header,omitempty"`
	Sections []sectionFile `yaml:"sections"`
	Exams    []examFile    `yaml:"exams"`
}

type headerFile struct {
	Page  int `yaml:"page"`
	Index int `yaml:"index"`
}

type sectionFile struct {
	Category Category `yaml:"category"`
	Title    string   `yaml:"title"`
	Fields   []string `yaml:"fields,flow"`
}

type examFile struct {
	Name     string   `yaml:"name"`
	Category Category `yaml:"category"`
	Field    string   `yaml:"field"`
	Unit     string   `yaml:"unit,omitempty"`
	Offset   *int     `yaml:"offset,omitempty"`
}

// Load reads a YAML template. Exams without an offset use DefaultOffset and a
// missing header block uses DefaultHeader.
//
// Example template:
//
//	header: {page: 0, index: 13}
//	sections:
//	  - category: hemograma
//	    title: Hemograma
//	    fields: [Hb, Hto]
//	exams:
//	  - {name: HEMOGLOBINA, category: hemograma, field: Hb}
//	  - {name: HEMATOCRITO, category: hemograma, field: Hto, unit: "%"}
func Load(r io.Reader) (*Catalog, error) {
	var tf templateFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&tf); err != nil {
		return nil, fmt.Errorf("decode template: %w", err)
	}

	header := DefaultHeader
	if tf.Header != nil {
		header = Header{Page: tf.Header.Page, Index: tf.Header.Index}
	}

	sections := make([]Section, len(tf.Sections))
	for i, s := range tf.Sections {
		sections[i] = Section{Category: s.Category, Title: s.Title, Fields: s.Fields}
	}

	entries := make([]Entry, len(tf.Exams))
	for i, e := range tf.Exams {
		offset := DefaultOffset
		if e.Offset != nil {
			offset = *e.Offset
		}
		entries[i] = Entry{
			Name:     e.Name,
			Category: e.Category,
			Field:    e.Field,
			Unit:     e.Unit,
			Offset:   offset,
		}
	}

	return New(sections, entries, header)
}

// LoadFile reads a YAML template from path.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open template: %w", err)
	}
	defer f.Close()

	c, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// WriteYAML writes the catalog in the format accepted by Load. Offsets are
// always written, so the output documents every value position explicitly.
func (c *Catalog) WriteYAML(w io.Writer) error {
	tf := templateFile{
		Header:   &headerFile{Page: c.header.Page, Index: c.header.Index},
		Sections: make([]sectionFile, len(c.sections)),
		Exams:    make([]examFile, len(c.entries)),
	}
	for i, s := range c.sections {
		tf.Sections[i] = sectionFile{Category: s.Category, Title: s.Title, Fields: s.Fields}
	}
	for i, e := range c.entries {
		offset := e.Offset
		tf.Exams[i] = examFile{
			Name:     e.Name,
			Category: e.Category,
			Field:    e.Field,
			Unit:     e.Unit,
			Offset:   &offset,
		}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&tf); err != nil {
		return fmt.Errorf("encode template: %w", err)
	}
	return enc.Close()
}

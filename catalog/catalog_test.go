package catalog

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestDefaultEntries(t *testing.T) {
	cat := Default()

	if cat.Len() != 32 {
		t.Fatalf("Len() = %d, want 32", cat.Len())
	}

	tests := []struct {
		name     string
		category Category
		field    string
		unit     string
		offset   int
	}{
		{"HEMOGLOBINA", Hemograma, "Hb", "", -3},
		{"HEMATOCRITO", Hemograma, "Hto", "%", -3},
		{"LEUCOCITOS", Hemograma, "Leucocitos", "0", -3},
		{"RCTO. DE PLAQUETAS", Hemograma, "Plaquetas", ".000", -3},
		{"SEGMENTADO", Hemograma, "Segmentados", "", 21},
		{"LINFOCITOS ", Hemograma, "Linfocitos", "", 20},
		{"INR", Coagulacion, "INR", "", -2},
		{"TTPK", Coagulacion, "TTPK", " s", -3},
		{"% ACTIV. DE PROTROMBINA", Coagulacion, "TP", "%", -3},
		{"CREATININA, sangre", FuncionRenal, "Crea", "", -3},
		{"TIROXINA LIBRE: T4L", Otros, "T4L", "", -3},
	}

	for _, tt := range tests {
		e, ok := cat.Lookup(tt.name)
		if !ok {
			t.Errorf("Lookup(%q) not found", tt.name)
			continue
		}
		if e.Category != tt.category || e.Field != tt.field || e.Unit != tt.unit || e.Offset != tt.offset {
			t.Errorf("Lookup(%q) = %+v, want %s.%s unit %q offset %d", tt.name, e, tt.category, tt.field, tt.unit, tt.offset)
		}
	}
}

func TestLookupIsExact(t *testing.T) {
	cat := Default()

	for _, name := range []string{"LINFOCITOS", "hemoglobina", " HEMOGLOBINA", "HEMOGLOBINA ", ""} {
		if _, ok := cat.Lookup(name); ok {
			t.Errorf("Lookup(%q) matched, want no match", name)
		}
	}
}

func TestDefaultSectionOrder(t *testing.T) {
	want := []string{"Hemograma", "Función Renal", "Electrolitos", "Función Hepática", "Coagulación", "Otros"}

	sections := Default().Sections()
	if len(sections) != len(want) {
		t.Fatalf("got %d sections, want %d", len(sections), len(want))
	}
	for i, s := range sections {
		if s.Title != want[i] {
			t.Errorf("section %d = %q, want %q", i, s.Title, want[i])
		}
	}

	hemo, ok := Default().Section(Hemograma)
	if !ok {
		t.Fatal("Section(Hemograma) not found")
	}
	if got := strings.Join(hemo.Fields, " "); got != "Hb Hto VCM CHCM Leucocitos Segmentados RAN Linfocitos RAL Plaquetas" {
		t.Errorf("hemograma fields = %q", got)
	}
}

func TestSectionsReturnsCopy(t *testing.T) {
	cat := Default()
	s := cat.Sections()
	s[0].Fields[0] = "changed"
	s[0].Title = "changed"

	again := cat.Sections()
	if again[0].Title != "Hemograma" || again[0].Fields[0] != "Hb" {
		t.Error("Sections() exposed internal state")
	}
}

func TestNewValidation(t *testing.T) {
	sections := []Section{{Category: Otros, Title: "Otros", Fields: []string{"A", "B"}}}

	tests := []struct {
		name     string
		sections []Section
		entries  []Entry
		header   Header
	}{
		{
			name:     "duplicate name",
			sections: sections,
			entries: []Entry{
				{Name: "X", Category: Otros, Field: "A"},
				{Name: "X", Category: Otros, Field: "B"},
			},
		},
		{
			name:     "duplicate field in category",
			sections: sections,
			entries: []Entry{
				{Name: "X", Category: Otros, Field: "A"},
				{Name: "Y", Category: Otros, Field: "A"},
			},
		},
		{
			name:     "undeclared field",
			sections: sections,
			entries:  []Entry{{Name: "X", Category: Otros, Field: "C"}},
		},
		{
			name:     "category without section",
			sections: sections,
			entries:  []Entry{{Name: "X", Category: Hemograma, Field: "A"}},
		},
		{
			name:     "duplicate section",
			sections: append(append([]Section(nil), sections...), sections...),
		},
		{
			name:     "negative header",
			sections: sections,
			header:   Header{Page: 0, Index: -1},
		},
		{
			name:     "empty name",
			sections: sections,
			entries:  []Entry{{Category: Otros, Field: "A"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.sections, tt.entries, tt.header)
			if !errors.Is(err, ErrInvalidCatalog) {
				t.Errorf("New() error = %v, want ErrInvalidCatalog", err)
			}
		})
	}
}

func TestParseCategory(t *testing.T) {
	for _, c := range Categories() {
		got, err := ParseCategory(c.String())
		if err != nil {
			t.Errorf("ParseCategory(%q): %v", c.String(), err)
			continue
		}
		if got != c {
			t.Errorf("ParseCategory(%q) = %v, want %v", c.String(), got, c)
		}
	}

	if _, err := ParseCategory("gases"); err == nil {
		t.Error("expected error for unknown category")
	}
}

func TestLoad(t *testing.T) {
	src := `
header: {page: 1, index: 4}
sections:
  - category: hemograma
    title: Hemograma
    fields: [Hb, Hto]
  - category: otros
    title: Otros
    fields: [PCR]
exams:
  - {name: HEMOGLOBINA, category: hemograma, field: Hb}
  - {name: HEMATOCRITO, category: hemograma, field: Hto, unit: "%", offset: 2}
  - {name: "PCR ", category: otros, field: PCR, offset: -1}
`
	cat, err := Load(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if h := cat.Header(); h.Page != 1 || h.Index != 4 {
		t.Errorf("Header() = %+v, want {1 4}", h)
	}

	hb, _ := cat.Lookup("HEMOGLOBINA")
	if hb.Offset != DefaultOffset {
		t.Errorf("HEMOGLOBINA offset = %d, want default %d", hb.Offset, DefaultOffset)
	}
	hto, _ := cat.Lookup("HEMATOCRITO")
	if hto.Offset != 2 || hto.Unit != "%" {
		t.Errorf("HEMATOCRITO = %+v", hto)
	}
	if _, ok := cat.Lookup("PCR "); !ok {
		t.Error("trailing space in quoted name was not preserved")
	}
}

func TestLoadDefaultHeader(t *testing.T) {
	src := "sections:\n  - {category: otros, title: Otros, fields: [LDH]}\nexams:\n  - {name: LDH, category: otros, field: LDH}\n"
	cat, err := Load(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cat.Header() != DefaultHeader {
		t.Errorf("Header() = %+v, want %+v", cat.Header(), DefaultHeader)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unknown category", "sections:\n  - {category: gases, title: Gases, fields: [pH]}\n"},
		{"unknown key", "sectionz: []\n"},
		{"invalid template", "sections:\n  - {category: otros, title: Otros, fields: [LDH]}\nexams:\n  - {name: LDH, category: otros, field: PCR}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(strings.NewReader(tt.src)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := Default().WriteYAML(&buf); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}

	cat, err := Load(&buf)
	if err != nil {
		t.Fatalf("Load(WriteYAML()): %v", err)
	}

	want := Default().Entries()
	got := cat.Entries()
	if len(got) != len(want) {
		t.Fatalf("got %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}
	if cat.Header() != Default().Header() {
		t.Errorf("header = %+v, want %+v", cat.Header(), Default().Header())
	}
}

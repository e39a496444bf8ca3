package catalog

import "fmt"

// Category is one of the clinical groupings a field belongs to.
type Category int

const (
	// Hemograma is the complete blood count.
	Hemograma Category = iota
	// Electrolitos groups serum electrolytes.
	Electrolitos
	// FuncionHepatica groups liver function tests.
	FuncionHepatica
	// Coagulacion groups coagulation tests.
	Coagulacion
	// FuncionRenal groups kidney function tests.
	FuncionRenal
	// Otros holds everything else.
	Otros
)

var categoryNames = map[Category]string{
	Hemograma:       "hemograma",
	Electrolitos:    "electrolitos",
	FuncionHepatica: "funcion_hepatica",
	Coagulacion:     "coagulacion",
	FuncionRenal:    "funcion_renal",
	Otros:           "otros",
}

// Categories returns every category in declaration order.
func Categories() []Category {
	return []Category{Hemograma, Electrolitos, FuncionHepatica, Coagulacion, FuncionRenal, Otros}
}

// String returns the identifier used for the category in YAML templates.
func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// Valid reports whether c is one of the declared categories.
func (c Category) Valid() bool {
	_, ok := categoryNames[c]
	return ok
}

// ParseCategory returns the category whose identifier is name.
func ParseCategory(name string) (Category, error) {
	for c, n := range categoryNames {
		if n == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown category %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid category %d", int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

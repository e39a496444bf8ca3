package catalog

// Built-in template field names referenced by derived computations.
const (
	FieldLeucocitos  = "Leucocitos"
	FieldSegmentados = "Segmentados"
	FieldLinfocitos  = "Linfocitos"
	FieldRAN         = "RAN"
	FieldRAL         = "RAL"
)

var defaultSections = []Section{
	{Hemograma, "Hemograma", []string{"Hb", "Hto", "VCM", "CHCM", FieldLeucocitos, FieldSegmentados, FieldRAN, FieldLinfocitos, FieldRAL, "Plaquetas"}},
	{FuncionRenal, "Función Renal", []string{"BUN", "Crea", "AcUrico"}},
	{Electrolitos, "Electrolitos", []string{"Na", "K", "Cl", "Ca", "P", "Mg"}},
	{FuncionHepatica, "Función Hepática", []string{"GOT", "GPT", "GGT", "FA", "BiliT", "BiliD", "Proteinas", "Albumina"}},
	{Coagulacion, "Coagulación", []string{"TTPK", "TP", "INR"}},
	{Otros, "Otros", []string{"LDH", "PCR", "Glucosa", "TSH", "T4L"}},
}

var defaultEntries = []Entry{
	{Name: "HEMOGLOBINA", Category: Hemograma, Field: "Hb", Offset: DefaultOffset},
	{Name: "HEMATOCRITO", Category: Hemograma, Field: "Hto", Unit: "%", Offset: DefaultOffset},
	{Name: "V.C.M", Category: Hemograma, Field: "VCM", Offset: DefaultOffset},
	{Name: "C.H.C.M", Category: Hemograma, Field: "CHCM", Offset: DefaultOffset},
	{Name: "RCTO. DE PLAQUETAS", Category: Hemograma, Field: "Plaquetas", Unit: ".000", Offset: DefaultOffset},
	// The report prints leukocytes divided by ten; the "0" restores the
	// displayed magnitude without reinterpreting the number.
	{Name: "LEUCOCITOS", Category: Hemograma, Field: FieldLeucocitos, Unit: "0", Offset: DefaultOffset},
	{Name: "RAN", Category: Hemograma, Field: FieldRAN, Offset: DefaultOffset},
	{Name: "SEGMENTADO", Category: Hemograma, Field: FieldSegmentados, Offset: 21},
	{Name: "LINFOCITOS ", Category: Hemograma, Field: FieldLinfocitos, Offset: 20},
	{Name: "SODIO", Category: Electrolitos, Field: "Na", Offset: DefaultOffset},
	{Name: "POTASIO", Category: Electrolitos, Field: "K", Offset: DefaultOffset},
	{Name: "CLORO", Category: Electrolitos, Field: "Cl", Offset: DefaultOffset},
	{Name: "CALCIO IONICO", Category: Electrolitos, Field: "Ca", Offset: DefaultOffset},
	{Name: "FOSFORO", Category: Electrolitos, Field: "P", Offset: DefaultOffset},
	{Name: "MAGNESIO", Category: Electrolitos, Field: "Mg", Offset: DefaultOffset},
	{Name: "CREATININA, sangre", Category: FuncionRenal, Field: "Crea", Offset: DefaultOffset},
	{Name: "NITROGENO UREICO", Category: FuncionRenal, Field: "BUN", Offset: DefaultOffset},
	{Name: "LDH", Category: Otros, Field: "LDH", Offset: DefaultOffset},
	{Name: "PROTEINA C REACTIVA", Category: Otros, Field: "PCR", Offset: DefaultOffset},
	{Name: "% ACTIV. DE PROTROMBINA", Category: Coagulacion, Field: "TP", Unit: "%", Offset: DefaultOffset},
	{Name: "INR", Category: Coagulacion, Field: "INR", Offset: -2},
	{Name: "TTPK", Category: Coagulacion, Field: "TTPK", Unit: " s", Offset: DefaultOffset},
	{Name: "BILIRRUBINA TOTAL", Category: FuncionHepatica, Field: "BiliT", Offset: DefaultOffset},
	{Name: "BILIRRUBINA DIRECTA", Category: FuncionHepatica, Field: "BiliD", Offset: DefaultOffset},
	{Name: "PROTEINAS TOTALES", Category: FuncionHepatica, Field: "Proteinas", Offset: DefaultOffset},
	{Name: "ALBUMINA", Category: FuncionHepatica, Field: "Albumina", Offset: DefaultOffset},
	{Name: "GGT", Category: FuncionHepatica, Field: "GGT", Offset: DefaultOffset},
	{Name: "FOSFATASA ALCALINA", Category: FuncionHepatica, Field: "FA", Offset: DefaultOffset},
	{Name: "GPT", Category: FuncionHepatica, Field: "GPT", Offset: DefaultOffset},
	{Name: "GOT", Category: FuncionHepatica, Field: "GOT", Offset: DefaultOffset},
	{Name: "HORMONA TIROESTIMULANTE (TSH)", Category: Otros, Field: "TSH", Offset: DefaultOffset},
	{Name: "TIROXINA LIBRE: T4L", Category: Otros, Field: "T4L", Offset: DefaultOffset},
}

// DefaultHeader is the date/time token position of the built-in template.
var DefaultHeader = Header{Page: 0, Index: 13}

var defaultCatalog = mustNew(defaultSections, defaultEntries, DefaultHeader)

// Default returns the built-in template. The returned catalog is shared.
func Default() *Catalog {
	return defaultCatalog
}

func mustNew(sections []Section, entries []Entry, header Header) *Catalog {
	c, err := New(sections, entries, header)
	if err != nil {
		panic(err)
	}
	return c
}

// Package catalog holds the exam catalog: the static table that maps the exam
// names printed on a laboratory report to the category and field they fill,
// the unit suffix appended to the captured value, and the signed token offset
// at which the value sits relative to the name.
//
// # Templates
//
// A [Catalog] describes one report template. Besides the exam entries it
// carries the display [Section] list (category title and field order) and the
// [Header] position of the date/time token. The built-in template is returned
// by [Default]:
//
//	cat := catalog.Default()
//	entry, ok := cat.Lookup("HEMOGLOBINA")
//
// Other templates are plain data and can be loaded from YAML:
//
//	cat, err := catalog.LoadFile("template.yaml")
//
// # Offsets
//
// Offsets are counted in tokens of the page's text stream, not in visual
// positions. Most rows of the built-in template place the value three tokens
// before the name; SEGMENTADO (+21), "LINFOCITOS " (+20) and INR (-2) differ.
// The numbers were measured on one template and are not derived from layout.
//
// A Catalog is immutable after construction and safe for concurrent use.
package catalog

package render

import (
	"golang.org/x/text/unicode/norm"

	"github.com/dsm122n/lab-hll/report"
)

// Document is the JSON form of a report.
type Document struct {
	Date     string    `json:"date"`
	Time     string    `json:"time"`
	Sections []Section `json:"sections"`
	Summary  string    `json:"summary"`
}

// Section is one category of a Document.
type Section struct {
	Category string `json:"category"`
	Title    string `json:"title"`
	Items    []Item `json:"items"`
}

// Item is one set field of a Section.
type Item struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// JSON returns the JSON document for r. Every section is present; Items is
// empty, not null, when nothing was found.
func JSON(r *report.LabReport) Document {
	doc := Document{
		Date:    r.Date.Format(report.DateLayout),
		Time:    r.Time,
		Summary: Text(r),
	}

	for _, s := range r.Catalog().Sections() {
		section := Section{
			Category: s.Category.String(),
			Title:    norm.NFC.String(s.Title),
			Items:    []Item{},
		}
		for _, it := range r.Fields(s.Category) {
			section.Items = append(section.Items, Item{Field: it.Field, Value: it.Value})
		}
		doc.Sections = append(doc.Sections, section)
	}

	return doc
}

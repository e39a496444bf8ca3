package render

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/dsm122n/lab-hll/report"
)

// Text returns the summary of r. The result has no trailing newline.
func Text(r *report.LabReport) string {
	var sb strings.Builder

	sb.WriteByte('>')
	sb.WriteString(r.Date.Format(report.DateLayout))
	sb.WriteByte(' ')
	sb.WriteString(r.Time)
	sb.WriteByte(':')

	for _, s := range r.Catalog().Sections() {
		sb.WriteString("\n - ")
		sb.WriteString(norm.NFC.String(s.Title))
		sb.WriteString(": ")
		sb.WriteString(items(r.Fields(s.Category)))
	}

	return sb.String()
}

// items joins items as "field value, field value".
func items(list []report.Item) string {
	parts := make([]string, len(list))
	for i, it := range list {
		parts[i] = it.Field + " " + it.Value
	}
	return strings.Join(parts, ", ")
}

// Package pdftest builds small PDF documents for tests.
package pdftest

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// Build returns a PDF with one page per content stream. Every page has the
// WinAnsi Helvetica font as /F1.
func Build(contents ...string) []byte {
	var objs []string
	objs = append(objs, "<< /Type /Catalog /Pages 2 0 R >>")

	kids := make([]string, len(contents))
	for i := range contents {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	objs = append(objs, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(contents)))
	objs = append(objs, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	for i, c := range contents {
		objs = append(objs,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(c), c),
		)
	}

	return write(objs)
}

// Form is a form XObject of BuildForms. Its resources hold /F1 and the
// forms named in Uses.
type Form struct {
	Name    string
	Content string
	Uses    []string
}

// BuildForms returns a one-page PDF whose page can paint every form. Uses
// must name forms listed earlier.
func BuildForms(page string, forms ...Form) []byte {
	objs := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [4 0 R] /Count 1 >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	}

	refs := make(map[string]string, len(forms))
	var all []string
	for i, f := range forms {
		refs[f.Name] = fmt.Sprintf("%d 0 R", 6+i)
		all = append(all, "/"+f.Name+" "+refs[f.Name])
	}

	objs = append(objs,
		fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> /XObject << %s >> >> /Contents 5 0 R >>", strings.Join(all, " ")),
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(page), page),
	)
	for _, f := range forms {
		var uses []string
		for _, u := range f.Uses {
			uses = append(uses, "/"+u+" "+refs[u])
		}
		objs = append(objs, fmt.Sprintf(
			"<< /Type /XObject /Subtype /Form /BBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> /XObject << %s >> >> /Length %d >>\nstream\n%s\nendstream",
			strings.Join(uses, " "), len(f.Content), f.Content))
	}

	return write(objs)
}

// write numbers objs from 1 and adds the cross-reference table.
func write(objs []string) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, o := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, o)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)

	return buf.Bytes()
}

// Page returns a content stream that shows each token with Tj on its own
// line, in order. Tokens are encoded as WinAnsi.
func Page(tokens ...string) string {
	var sb strings.Builder
	sb.WriteString("BT\n/F1 9 Tf\n72 760 Td\n")
	for _, t := range tokens {
		sb.WriteString("0 -10 Td (")
		sb.WriteString(escape(t))
		sb.WriteString(") Tj\n")
	}
	sb.WriteString("ET")
	return sb.String()
}

var escaper = strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)

func escape(s string) string {
	if enc, err := charmap.Windows1252.NewEncoder().String(s); err == nil {
		s = enc
	}
	return escaper.Replace(s)
}

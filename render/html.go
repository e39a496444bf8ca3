package render

import (
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// OutputID is the id of the text area that holds the summary.
const OutputID = "outputDiv"

// Page describes the HTML page written by WritePage.
type Page struct {
	Title string
	// Summary is shown in the output text area.
	Summary string
	// Error, when set, is shown above the text area.
	Error string
	// Action, when set, adds a form that posts a PDF upload or a PDF URL to it.
	Action string
}

// HTML writes a page that shows summary in a text area.
func HTML(w io.Writer, summary string) error {
	return WritePage(w, Page{Summary: summary})
}

// WritePage renders p as a complete HTML document.
func WritePage(w io.Writer, p Page) error {
	title := p.Title
	if title == "" {
		title = "Resumen de laboratorio"
	}

	head := element(atom.Head)
	head.AppendChild(element(atom.Meta, attr("charset", "utf-8")))
	head.AppendChild(withText(element(atom.Title), title))

	body := element(atom.Body)
	body.AppendChild(withText(element(atom.H1), title))

	if p.Action != "" {
		body.AppendChild(form(p.Action))
	}
	if p.Error != "" {
		body.AppendChild(withText(element(atom.P, attr("class", "error"), attr("role", "alert")), p.Error))
	}

	output := element(atom.Textarea,
		attr("id", OutputID),
		attr("rows", "10"),
		attr("cols", "100"),
		attr("readonly", ""),
	)
	if p.Summary != "" {
		output.AppendChild(text(p.Summary + "\n"))
	}
	body.AppendChild(output)

	root := element(atom.Html, attr("lang", "es"))
	root.AppendChild(head)
	root.AppendChild(body)

	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	doc.AppendChild(root)

	return html.Render(w, doc)
}

func form(action string) *html.Node {
	f := element(atom.Form,
		attr("method", "post"),
		attr("action", action),
		attr("enctype", "multipart/form-data"),
	)

	f.AppendChild(withText(element(atom.Label, attr("for", "pdfUrl")), "URL del PDF"))
	f.AppendChild(element(atom.Input,
		attr("type", "url"),
		attr("id", "pdfUrl"),
		attr("name", "url"),
	))
	f.AppendChild(withText(element(atom.Label, attr("for", "pdfFile")), "Archivo"))
	f.AppendChild(element(atom.Input,
		attr("type", "file"),
		attr("id", "pdfFile"),
		attr("name", "file"),
		attr("accept", "application/pdf"),
	))
	f.AppendChild(withText(element(atom.Button, attr("type", "submit")), "Procesar"))

	return f
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     a.String(),
		Attr:     attrs,
	}
}

func attr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func withText(n *html.Node, s string) *html.Node {
	n.AppendChild(text(s))
	return n
}

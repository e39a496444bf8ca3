// Package labhll extracts lab results from hospital lab report PDFs and
// renders them as a one-paragraph clinical summary.
//
// Basic usage:
//
//	summary, warnings, err := labhll.Open("informe.pdf").Summary()
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", labhll.FormatWarnings(warnings))
//	}
//	fmt.Println(summary)
//
// The summary looks like:
//
//	>15/03/2024 08:30:
//	 - Hemograma: Hb 13.5, Hto 40%, Leucocitos 4500, Segmentados 60%, RAN 2700.000
//	 - Función Renal: Crea 0.9
//	 - Electrolitos: Na 140, K 4.1
//	 - Función Hepática:
//	 - Coagulación: INR 1.1
//	 - Otros: PCR 2.3
//
// A section with no values, like Función Hepática above, still ends with the
// space after its colon: " - Función Hepática: ".
//
// With options:
//
//	r, _, err := labhll.FromURL("https://lab.example.org/informe.pdf").
//	    WithContext(ctx).
//	    WithCatalog(cat).
//	    Pages(1, 2).
//	    Report()
//
// The lower-level packages (tokens, catalog, resolver, report, render) can be
// used directly for other pipelines.
package labhll

import (
	"io"

	"github.com/dsm122n/lab-hll/tokens"
)

// Open returns an Extractor for the PDF file at path. The file is read by the
// first terminal operation.
//
// Example:
//
//	summary, warnings, err := labhll.Open("informe.pdf").Summary()
func Open(path string) *Extractor {
	return &Extractor{
		path:    path,
		options: defaultOptions(),
	}
}

// FromReader returns an Extractor for a PDF held by rs.
func FromReader(rs io.ReadSeeker) *Extractor {
	return &Extractor{
		reader:  rs,
		options: defaultOptions(),
	}
}

// FromURL returns an Extractor for a PDF downloaded from url with GET.
//
// Example:
//
//	summary, _, err := labhll.FromURL(u).WithHTTPClient(client).Summary()
func FromURL(url string) *Extractor {
	return &Extractor{
		url:     url,
		options: defaultOptions(),
	}
}

// FromSource returns an Extractor over any token source.
func FromSource(src tokens.Source) *Extractor {
	return &Extractor{
		source:  src,
		options: defaultOptions(),
	}
}

// FromPages returns an Extractor over tokens already split into pages.
//
// Example:
//
//	r, _, err := labhll.FromPages(pages).Report()
func FromPages(pages [][]string) *Extractor {
	return FromSource(tokens.NewStaticSource(pages))
}

// Must wraps a call returning (T, error) and panics on error. It is meant
// for scripts and tests.
//
// Example:
//
//	count := labhll.Must(labhll.Open("informe.pdf").PageCount())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustText wraps a terminal operation returning (T, []Warning, error),
// discards the warnings and panics on error.
//
// Example:
//
//	summary := labhll.MustText(labhll.Open("informe.pdf").Summary())
func MustText[T any](val T, _ []Warning, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

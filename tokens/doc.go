// Package tokens turns documents into positional token sequences: for each
// page, the ordered list of text items its content stream shows.
//
// Token boundaries follow the text-showing operators of the content stream.
// Tj, ' and " each produce one token; a TJ array produces one token, with
// wide negative adjustments read as a space. Form XObjects are expanded
// where they are painted. Tokens are NFC normalized and never empty.
//
// Three sources are provided:
//
//   - PDFSource reads the text layer of a PDF (via pdfcpu).
//   - OCRSource recognizes page images of scanned PDFs (via package ocr).
//   - StaticSource serves tokens already in memory.
//
// Example:
//
//	src, err := tokens.OpenPDF("informe.pdf")
//	if err != nil {
//		log.Fatal(err)
//	}
//	page, err := src.Page(ctx, 0)
package tokens

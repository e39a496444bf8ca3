// Package ocr recognizes text in page images of scanned lab reports.
//
// Recognition wraps the Tesseract engine via gosseract and is only compiled
// in with the "ocr" build tag:
//
//	go build -tags ocr
//
// Tesseract and its Spanish language data must be installed. On
// Ubuntu/Debian:
//
//	apt-get install tesseract-ocr tesseract-ocr-spa
//
// Without the tag every Client operation returns ErrOCRNotEnabled. Image
// preparation (Prepare) and line splitting (Lines) are always available.
package ocr

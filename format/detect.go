// Package format identifies report inputs from their leading bytes.
package format

import (
	"bytes"
	"io"
	"strings"
)

// Format is the kind of an input document.
type Format int

const (
	// Unknown indicates an unrecognized input.
	Unknown Format = iota
	// PDF indicates a PDF document.
	PDF
	// PNG indicates a PNG image, typically a scanned report.
	PNG
	// JPEG indicates a JPEG image.
	JPEG
	// TIFF indicates a TIFF image, as written by most scanners.
	TIFF
	// BMP indicates a Windows bitmap.
	BMP
	// HTML indicates an HTML page, usually a login or error page served in
	// place of the report.
	HTML
)

// sniffLen is how many leading bytes Detect looks at. PDF readers accept
// the %PDF- marker anywhere in the first kilobyte.
const sniffLen = 1024

// String returns the name of the format.
func (f Format) String() string {
	switch f {
	case PDF:
		return "PDF"
	case PNG:
		return "PNG"
	case JPEG:
		return "JPEG"
	case TIFF:
		return "TIFF"
	case BMP:
		return "BMP"
	case HTML:
		return "HTML"
	default:
		return "Unknown"
	}
}

// MediaType returns the MIME type of the format.
func (f Format) MediaType() string {
	switch f {
	case PDF:
		return "application/pdf"
	case PNG:
		return "image/png"
	case JPEG:
		return "image/jpeg"
	case TIFF:
		return "image/tiff"
	case BMP:
		return "image/bmp"
	case HTML:
		return "text/html"
	default:
		return "application/octet-stream"
	}
}

// IsImage reports whether f is a raster image format.
func (f Format) IsImage() bool {
	switch f {
	case PNG, JPEG, TIFF, BMP:
		return true
	}
	return false
}

// Detect checks the magic bytes of data.
func Detect(data []byte) Format {
	head := data
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}

	switch {
	case bytes.Contains(head, []byte("%PDF-")):
		return PDF
	case bytes.HasPrefix(head, []byte("\x89PNG\r\n\x1a\n")):
		return PNG
	case bytes.HasPrefix(head, []byte{0xff, 0xd8, 0xff}):
		return JPEG
	case bytes.HasPrefix(head, []byte("II*\x00")), bytes.HasPrefix(head, []byte("MM\x00*")):
		return TIFF
	case bytes.HasPrefix(head, []byte("BM")) && len(head) >= 14:
		return BMP
	case detectHTML(head):
		return HTML
	}
	return Unknown
}

// detectHTML checks whether data starts like an HTML document.
func detectHTML(data []byte) bool {
	data = bytes.TrimLeft(data, " \t\r\n\ufeff")
	if len(data) == 0 {
		return false
	}

	upper := strings.ToUpper(string(data))
	switch {
	case strings.HasPrefix(upper, "<!DOCTYPE HTML"), strings.HasPrefix(upper, "<HTML"):
		return true
	// XHTML
	case strings.HasPrefix(upper, "<?XML") && strings.Contains(upper, "<HTML"):
		return true
	}
	return false
}

// DetectReader checks the leading bytes of rs and rewinds it.
func DetectReader(rs io.ReadSeeker) (Format, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(rs, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return Unknown, err
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return Unknown, err
	}
	return Detect(head[:n]), nil
}

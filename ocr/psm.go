package ocr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrOCRNotEnabled is returned when OCR support was not compiled in.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// DefaultLanguage is the Tesseract language used by New.
const DefaultLanguage = "spa"

// PageSegMode selects how Tesseract analyzes the page layout. The values
// match Tesseract's own.
type PageSegMode int

const (
	PSMAuto         PageSegMode = 3  // fully automatic (Tesseract default)
	PSMSingleColumn PageSegMode = 4  // single column of variable sizes
	PSMSingleBlock  PageSegMode = 6  // single uniform block of text
	PSMSparseText   PageSegMode = 11 // as much text as possible, no order
)

var pageSegModeNames = map[string]PageSegMode{
	"auto":          PSMAuto,
	"single_column": PSMSingleColumn,
	"single_block":  PSMSingleBlock,
	"sparse_text":   PSMSparseText,
}

// String returns the configuration name of m, or its number.
func (m PageSegMode) String() string {
	for name, v := range pageSegModeNames {
		if v == m {
			return name
		}
	}
	return strconv.Itoa(int(m))
}

// ParsePageSegMode accepts a mode name ("auto", "single_column",
// "single_block", "sparse_text") or a Tesseract mode number from 1 to 13.
// The empty string is PSMAuto. Mode 0 only detects orientation and yields
// no text, so it is rejected.
func ParsePageSegMode(s string) (PageSegMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return PSMAuto, nil
	}
	if m, ok := pageSegModeNames[s]; ok {
		return m, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 13 {
		return 0, fmt.Errorf("invalid page segmentation mode %q", s)
	}
	return PageSegMode(n), nil
}

package labhll

import (
	"fmt"
	"strings"
)

// WarningCode classifies a non-fatal issue.
type WarningCode int

const (
	// WarnLayoutMismatch: an exam name was found but its value position was
	// outside the page or held a sentinel.
	WarnLayoutMismatch WarningCode = iota + 1
	// WarnDerivedSkipped: RAN or RAL could not be computed.
	WarnDerivedSkipped
	// WarnEmptyPage: a page produced no tokens (often a scanned page).
	WarnEmptyPage
)

func (c WarningCode) String() string {
	switch c {
	case WarnLayoutMismatch:
		return "layout mismatch"
	case WarnDerivedSkipped:
		return "derived value skipped"
	case WarnEmptyPage:
		return "empty page"
	}
	return fmt.Sprintf("WarningCode(%d)", int(c))
}

// Warning is a non-fatal issue met during extraction.
type Warning struct {
	Code WarningCode
	// Page is the 1-based page number, or 0 when not tied to a page.
	Page    int
	Message string
}

func (w Warning) String() string {
	if w.Page > 0 {
		return fmt.Sprintf("page %d: %s: %s", w.Page, w.Code, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Code, w.Message)
}

// FormatWarnings joins warnings one per line.
func FormatWarnings(warnings []Warning) string {
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = w.String()
	}
	return strings.Join(lines, "\n")
}

package tokens

import (
	"context"
	"errors"
	"fmt"
)

// ErrPageRange is returned for a page index outside the document.
var ErrPageRange = errors.New("page index out of range")

// Source provides the text tokens of a document, one page at a time. Page
// indexes are 0-based. Implementations must allow concurrent Page calls.
type Source interface {
	// PageCount returns the number of pages.
	PageCount(ctx context.Context) (int, error)
	// Page returns the tokens of a page in content order.
	Page(ctx context.Context, index int) ([]string, error)
}

// StaticSource serves tokens held in memory.
type StaticSource struct {
	pages [][]string
}

// NewStaticSource returns a source over a copy of pages.
func NewStaticSource(pages [][]string) *StaticSource {
	cp := make([][]string, len(pages))
	for i, p := range pages {
		cp[i] = append([]string(nil), p...)
	}
	return &StaticSource{pages: cp}
}

// PageCount returns the number of pages.
func (s *StaticSource) PageCount(ctx context.Context) (int, error) {
	return len(s.pages), nil
}

// Page returns a copy of the tokens of a page.
func (s *StaticSource) Page(ctx context.Context, index int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkIndex(index, len(s.pages)); err != nil {
		return nil, err
	}
	return append([]string(nil), s.pages[index]...), nil
}

func checkIndex(index, count int) error {
	if index < 0 || index >= count {
		return fmt.Errorf("%w: %d (document has %d pages)", ErrPageRange, index, count)
	}
	return nil
}

package resolver

import (
	"errors"
	"strings"
	"unicode"

	"github.com/dsm122n/lab-hll/catalog"
)

// Tokens that mark a label cell rather than a value.
const (
	SentinelReference = "Valor Referencia"
	SentinelNull      = "null"
)

// Flag is the character the report uses to mark out-of-range results.
const Flag = "*"

var (
	// ErrOutOfBounds means the value offset points outside the page.
	ErrOutOfBounds = errors.New("value offset out of bounds")
	// ErrSentinel means the value offset points at a label cell.
	ErrSentinel = errors.New("value offset landed on a label cell")
)

// MatchKey returns the comparison key for a candidate name token: the token
// with its leading whitespace run removed.
func MatchKey(token string) string {
	return strings.TrimLeftFunc(token, unicode.IsSpace)
}

// ValueIndex returns the index of the value token for an exam name found at
// nameIndex.
func ValueIndex(nameIndex int, entry catalog.Entry) int {
	return nameIndex + entry.Offset
}

// Resolve returns the value of entry whose name token sits at nameIndex in
// page. Out-of-range flags are removed from the returned value.
func Resolve(page []string, nameIndex int, entry catalog.Entry) (string, error) {
	i := ValueIndex(nameIndex, entry)
	if i < 0 || i >= len(page) {
		return "", ErrOutOfBounds
	}

	token := page[i]
	if token == SentinelReference || token == SentinelNull {
		return "", ErrSentinel
	}

	return strings.ReplaceAll(token, Flag, ""), nil
}

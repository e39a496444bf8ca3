package resolver

import "github.com/dsm122n/lab-hll/catalog"

// Match is a resolved exam value.
type Match struct {
	Page       int
	NameIndex  int
	ValueIndex int
	Entry      catalog.Entry
	Value      string
}

// Mismatch is an exam name whose value could not be resolved.
type Mismatch struct {
	Page       int
	NameIndex  int
	ValueIndex int
	Entry      catalog.Entry
	Err        error
}

// Result holds the outcome of a Scan.
type Result struct {
	// Matches in scan order (page by page, token by token).
	Matches []Match
	// Mismatches in scan order.
	Mismatches []Mismatch
}

// Scan tests every token of every page against the catalog and resolves each
// exam name it finds. A name that appears more than once produces one match
// per occurrence; consumers apply them in order, so the last one wins.
//
// Catalog names are unique, so the per-token lookup is equivalent to testing
// the token against every entry in turn.
func Scan(pages [][]string, cat *catalog.Catalog) Result {
	var res Result

	for p, page := range pages {
		for k, token := range page {
			entry, ok := cat.Lookup(MatchKey(token))
			if !ok {
				continue
			}

			value, err := Resolve(page, k, entry)
			if err != nil {
				res.Mismatches = append(res.Mismatches, Mismatch{
					Page:       p,
					NameIndex:  k,
					ValueIndex: ValueIndex(k, entry),
					Entry:      entry,
					Err:        err,
				})
				continue
			}

			res.Matches = append(res.Matches, Match{
				Page:       p,
				NameIndex:  k,
				ValueIndex: ValueIndex(k, entry),
				Entry:      entry,
				Value:      value,
			})
		}
	}

	return res
}

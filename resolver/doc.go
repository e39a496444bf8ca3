// Package resolver locates exam names in page token sequences and resolves
// each one to its value token.
//
// A page is the ordered list of text fragments taken from the page's text
// stream. The value of an exam is found at a fixed signed offset from the
// name token, as declared by the exam's [catalog.Entry]:
//
//	value, err := resolver.Resolve(page, nameIndex, entry)
//
// Resolution fails with [ErrOutOfBounds] when the offset leaves the page and
// with [ErrSentinel] when it lands on a label cell ("Valor Referencia" or
// "null"). Both mean the page does not follow the expected layout for that
// row; they are field-level problems and [Scan] collects them as
// [Mismatch] values instead of failing.
//
// # Name Matching
//
// Candidate tokens are compared with [MatchKey], which only drops leading
// whitespace. Trailing and internal whitespace are significant, so the
// catalog name "LINFOCITOS " matches a token that ends with a space and
// nothing else.
package resolver

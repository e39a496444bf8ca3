// Package report accumulates the values found on one laboratory report.
//
// A [LabReport] is created from the date/time header token, filled from a
// [resolver.Result] and finished with [LabReport.ApplyDerived], which
// computes the absolute neutrophil (RAN) and lymphocyte (RAL) counts:
//
//	r, err := report.NewFromPages(pages, cat)
//	if err != nil {
//	    // no header: the document is not a report of this template
//	}
//	r.Apply(resolver.Scan(pages, cat))
//	r.ApplyDerived()
//
// [Build] runs the whole sequence.
//
// Every field declared by the catalog starts unset. Stored values already
// carry the unit suffix of their catalog entry.
package report

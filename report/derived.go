package report

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/dsm122n/lab-hll/catalog"
)

// absolute pairs a differential percentage with the absolute count derived
// from it.
type absolute struct {
	percent string
	count   string
}

var absolutes = []absolute{
	{catalog.FieldSegmentados, catalog.FieldRAN},
	{catalog.FieldLinfocitos, catalog.FieldRAL},
}

// ApplyDerived computes RAN and RAL from the leukocyte count and the
// Segmentados/Linfocitos percentages, then marks the percentages with "%".
//
// A count is only written when both numbers parse; otherwise it is left as
// it was. The names of counts that could not be computed are returned. Only
// the first call has an effect.
func (r *LabReport) ApplyDerived() []string {
	if r.derived {
		return append([]string(nil), r.skipped...)
	}
	r.derived = true

	hemo := r.values[catalog.Hemograma]
	if hemo == nil {
		return nil
	}

	leukocytes, leukoErr := strconv.ParseFloat(numericPart(hemo[catalog.FieldLeucocitos].Text), 64)

	for _, a := range absolutes {
		pct, ok := hemo[a.percent]
		if !ok || !pct.Valid {
			continue
		}

		if _, declared := hemo[a.count]; declared {
			p, err := strconv.ParseFloat(strings.TrimSpace(pct.Text), 64)
			if leukoErr == nil && err == nil {
				hemo[a.count] = Value{
					Text:  toFixed3(leukocytes * p / 100),
					Valid: true,
				}
			} else {
				r.skipped = append(r.skipped, a.count)
			}
		}

		hemo[a.percent] = Value{Text: pct.Text + "%", Valid: true}
	}

	return append([]string(nil), r.skipped...)
}

// numericPart keeps only digits and dots.
func numericPart(s string) string {
	return strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, s)
}

// toFixed3 formats x with three decimals. The rounding is done on the exact
// binary value of x and ties go away from zero, so 0.0625 gives "0.063"
// where strconv would give "0.062".
func toFixed3(x float64) string {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return strconv.FormatFloat(x, 'f', 3, 64)
	}

	r := new(big.Rat).SetFloat64(math.Abs(x))
	r.Mul(r, big.NewRat(1000, 1))
	r.Add(r, big.NewRat(1, 2))
	n := new(big.Int).Quo(r.Num(), r.Denom())

	digits := n.String()
	if len(digits) < 4 {
		digits = strings.Repeat("0", 4-len(digits)) + digits
	}
	out := digits[:len(digits)-3] + "." + digits[len(digits)-3:]
	if x < 0 {
		out = "-" + out
	}
	return out
}

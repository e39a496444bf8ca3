package report

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dsm122n/lab-hll/catalog"
)

// headerPage returns a page whose token 13 is the given header.
func headerPage(header string, extra ...string) []string {
	page := make([]string, 13, 14+len(extra))
	for i := range page {
		page[i] = fmt.Sprintf("h%d", i)
	}
	page = append(page, header)
	return append(page, extra...)
}

func newReport() *LabReport {
	return New(time.Date(2024, 3, 15, 8, 30, 0, 0, time.UTC), "08:30", catalog.Default())
}

func TestParseHeader(t *testing.T) {
	date, clock, err := ParseHeader([][]string{headerPage("15/03/2024 08:30")}, catalog.Default())
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	if clock != "08:30" {
		t.Errorf("clock = %q, want 08:30", clock)
	}
	want := time.Date(2024, 3, 15, 8, 30, 0, 0, time.UTC)
	if !date.Equal(want) {
		t.Errorf("date = %v, want %v", date, want)
	}
}

func TestParseHeaderIgnoresTrailingText(t *testing.T) {
	_, clock, err := ParseHeader([][]string{headerPage("01/12/2023 23:59 hrs.")}, catalog.Default())
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	if clock != "23:59" {
		t.Errorf("clock = %q, want 23:59", clock)
	}
}

func TestParseHeaderErrors(t *testing.T) {
	tests := []struct {
		name  string
		pages [][]string
	}{
		{"no pages", nil},
		{"short page", [][]string{{"a", "b"}}},
		{"short token", [][]string{headerPage("15/03/2024")}},
		{"bad date", [][]string{headerPage("32/13/2024 08:30")}},
		{"bad time", [][]string{headerPage("15/03/2024 8:300")}},
		{"not a date", [][]string{headerPage("PACIENTE: JUAN PEREZ")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseHeader(tt.pages, catalog.Default())
			if !errors.Is(err, ErrMissingHeader) {
				t.Errorf("ParseHeader = %v, want ErrMissingHeader", err)
			}
		})
	}
}

func TestNewStartsUnset(t *testing.T) {
	r := newReport()
	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0", r.Len())
	}
	for _, s := range catalog.Default().Sections() {
		for _, f := range s.Fields {
			if v := r.Value(s.Category, f); v.Valid {
				t.Errorf("%s.%s is set on a new report", s.Category, f)
			}
		}
		if items := r.Fields(s.Category); len(items) != 0 {
			t.Errorf("Fields(%s) = %v, want none", s.Category, items)
		}
	}
}

func TestSetValue(t *testing.T) {
	r := newReport()

	if !r.SetValue(catalog.Hemograma, "Hto", "40", "%") {
		t.Fatal("SetValue returned false")
	}
	if got, ok := r.Get(catalog.Hemograma, "Hto"); !ok || got != "40%" {
		t.Errorf("Hto = %q (%v), want 40%%", got, ok)
	}

	// Empty never overwrites.
	if r.SetValue(catalog.Hemograma, "Hto", "", "%") {
		t.Error("SetValue with empty value returned true")
	}
	if got, _ := r.Get(catalog.Hemograma, "Hto"); got != "40%" {
		t.Errorf("Hto after empty set = %q, want 40%%", got)
	}

	// Later values win.
	r.SetValue(catalog.Hemograma, "Hto", "41", "%")
	if got, _ := r.Get(catalog.Hemograma, "Hto"); got != "41%" {
		t.Errorf("Hto after second set = %q, want 41%%", got)
	}

	if r.SetValue(catalog.Hemograma, "pH", "7.4", "") {
		t.Error("SetValue on undeclared field returned true")
	}
}

func TestFieldsOrder(t *testing.T) {
	r := newReport()
	r.SetValue(catalog.FuncionHepatica, "Albumina", "3.9", "")
	r.SetValue(catalog.FuncionHepatica, "GOT", "30", "")
	r.SetValue(catalog.FuncionHepatica, "FA", "90", "")

	items := r.Fields(catalog.FuncionHepatica)
	want := []Item{{"GOT", "30"}, {"FA", "90"}, {"Albumina", "3.9"}}
	if len(items) != len(want) {
		t.Fatalf("Fields = %v, want %v", items, want)
	}
	for i := range want {
		if items[i] != want[i] {
			t.Errorf("item %d = %v, want %v", i, items[i], want[i])
		}
	}
}

func TestApplyDerived(t *testing.T) {
	r := newReport()
	r.SetValue(catalog.Hemograma, "Leucocitos", "450", "0")
	r.SetValue(catalog.Hemograma, "Segmentados", "60", "")
	r.SetValue(catalog.Hemograma, "Linfocitos", "30", "")

	if skipped := r.ApplyDerived(); len(skipped) != 0 {
		t.Errorf("skipped = %v, want none", skipped)
	}

	tests := []struct {
		field, want string
	}{
		{"Leucocitos", "4500"},
		{"Segmentados", "60%"},
		{"RAN", "2700.000"},
		{"Linfocitos", "30%"},
		{"RAL", "1350.000"},
	}
	for _, tt := range tests {
		if got, ok := r.Get(catalog.Hemograma, tt.field); !ok || got != tt.want {
			t.Errorf("%s = %q (%v), want %q", tt.field, got, ok, tt.want)
		}
	}
}

func TestApplyDerivedRoundsTiesUp(t *testing.T) {
	r := newReport()
	r.SetValue(catalog.Hemograma, "Leucocitos", "1.25", "0")
	r.SetValue(catalog.Hemograma, "Segmentados", "5", "")

	r.ApplyDerived()

	// 1.250 * 5 / 100 is exactly 0.0625.
	if got, _ := r.Get(catalog.Hemograma, "RAN"); got != "0.063" {
		t.Errorf("RAN = %q, want 0.063", got)
	}
}

func TestToFixed3(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.000"},
		{2700, "2700.000"},
		{4051.5, "4051.500"},
		{0.0625, "0.063"},
		{0.0005, "0.001"},
		{2.5e-4, "0.000"},
		{1.0005, "1.000"}, // stored just below the tie
		{1.2345678, "1.235"},
		{-0.0625, "-0.063"},
		{123456789.0125, "123456789.013"},
	}

	for _, tt := range tests {
		if got := toFixed3(tt.in); got != tt.want {
			t.Errorf("toFixed3(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestApplyDerivedIdempotent(t *testing.T) {
	r := newReport()
	r.SetValue(catalog.Hemograma, "Leucocitos", "450", "0")
	r.SetValue(catalog.Hemograma, "Segmentados", "60", "")

	r.ApplyDerived()
	r.ApplyDerived()

	if got, _ := r.Get(catalog.Hemograma, "Segmentados"); got != "60%" {
		t.Errorf("Segmentados = %q, want 60%%", got)
	}
	if got, _ := r.Get(catalog.Hemograma, "RAN"); got != "2700.000" {
		t.Errorf("RAN = %q, want 2700.000", got)
	}
}

func TestApplyDerivedUnparseable(t *testing.T) {
	tests := []struct {
		name       string
		leucocitos string
		segmentos  string
	}{
		{"no leukocytes", "", "60"},
		{"leukocytes without digits", "n/a", "60"},
		{"percent not numeric", "450", "sesenta"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newReport()
			r.SetValue(catalog.Hemograma, "Leucocitos", tt.leucocitos, "")
			r.SetValue(catalog.Hemograma, "Segmentados", tt.segmentos, "")

			skipped := r.ApplyDerived()
			if len(skipped) != 1 || skipped[0] != "RAN" {
				t.Errorf("skipped = %v, want [RAN]", skipped)
			}
			if _, ok := r.Get(catalog.Hemograma, "RAN"); ok {
				t.Error("RAN set from unparseable input")
			}
			if got, _ := r.Get(catalog.Hemograma, "Segmentados"); got != tt.segmentos+"%" {
				t.Errorf("Segmentados = %q, want %q", got, tt.segmentos+"%")
			}
		})
	}
}

func TestApplyDerivedKeepsScannedRAN(t *testing.T) {
	r := newReport()
	r.SetValue(catalog.Hemograma, "RAN", "2.1", "")
	r.SetValue(catalog.Hemograma, "Segmentados", "60", "")

	r.ApplyDerived()

	if got, _ := r.Get(catalog.Hemograma, "RAN"); got != "2.1" {
		t.Errorf("RAN = %q, want scanned value 2.1", got)
	}
}

func TestApplyDerivedLeukocyteCleanup(t *testing.T) {
	r := newReport()
	r.SetValue(catalog.Hemograma, "Leucocitos", "8 x10^3", "")
	r.SetValue(catalog.Hemograma, "Linfocitos", "50", "")

	r.ApplyDerived()

	// "8 x10^3" keeps digits and dots only: "8103".
	if got, _ := r.Get(catalog.Hemograma, "RAL"); got != "4051.500" {
		t.Errorf("RAL = %q, want 4051.500", got)
	}
}

func TestBuild(t *testing.T) {
	segmentado := []string{"SEGMENTADO"}
	for i := 0; i < 20; i++ {
		segmentado = append(segmentado, fmt.Sprintf("s%d", i))
	}
	segmentado = append(segmentado, "72*")

	page := headerPage("15/03/2024 08:30", "450", "x10^3", "4.5-11", "LEUCOCITOS")
	page = append(page, segmentado...)

	r, res, err := Build([][]string{page}, catalog.Default())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(res.Matches) != 2 {
		t.Errorf("got %d matches, want 2", len(res.Matches))
	}
	if got, _ := r.Get(catalog.Hemograma, "Segmentados"); got != "72%" {
		t.Errorf("Segmentados = %q, want 72%%", got)
	}
	if got, _ := r.Get(catalog.Hemograma, "RAN"); got != "3240.000" {
		t.Errorf("RAN = %q, want 3240.000", got)
	}
}

func TestBuildMissingHeader(t *testing.T) {
	_, _, err := Build([][]string{{"HEMOGLOBINA"}}, catalog.Default())
	if !errors.Is(err, ErrMissingHeader) {
		t.Errorf("Build = %v, want ErrMissingHeader", err)
	}
}

package ocr

import "testing"

func TestParsePageSegMode(t *testing.T) {
	tests := []struct {
		in      string
		want    PageSegMode
		wantErr bool
	}{
		{"", PSMAuto, false},
		{"auto", PSMAuto, false},
		{"Single_Column", PSMSingleColumn, false},
		{"single_block", PSMSingleBlock, false},
		{" sparse_text ", PSMSparseText, false},
		{"7", PageSegMode(7), false},
		{"13", PageSegMode(13), false},
		{"0", 0, true},
		{"14", 0, true},
		{"columns", 0, true},
	}

	for _, tt := range tests {
		got, err := ParsePageSegMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePageSegMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePageSegMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPageSegModeString(t *testing.T) {
	tests := []struct {
		mode PageSegMode
		want string
	}{
		{PSMAuto, "auto"},
		{PSMSingleColumn, "single_column"},
		{PSMSparseText, "sparse_text"},
		{PageSegMode(7), "7"},
	}

	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.want {
			t.Errorf("PageSegMode(%d).String() = %q, want %q", int(tt.mode), got, tt.want)
		}
	}
}

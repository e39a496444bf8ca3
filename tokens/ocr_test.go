package tokens

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"reflect"
	"sync"
	"testing"

	"github.com/dsm122n/lab-hll/ocr"
)

type fakeImages struct {
	pages [][][]byte
	err   error
}

func (f *fakeImages) PageCount(ctx context.Context) (int, error) {
	return len(f.pages), nil
}

func (f *fakeImages) PageImages(ctx context.Context, index int) ([][]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	if err := checkIndex(index, len(f.pages)); err != nil {
		return nil, err
	}
	return f.pages[index], nil
}

// fakeRecognizer returns one scripted result per image.
type fakeRecognizer struct {
	mu      sync.Mutex
	results [][]string
	calls   int
	closed  int
}

func (f *fakeRecognizer) RecognizeLines(image []byte) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls >= len(f.results) {
		return nil, errors.New("unexpected image")
	}
	lines := f.results[f.calls]
	f.calls++
	return lines, nil
}

func (f *fakeRecognizer) Close() error {
	f.mu.Lock()
	f.closed++
	f.mu.Unlock()
	return nil
}

func pngImage(t *testing.T) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 40, 20))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func TestOCRSourcePage(t *testing.T) {
	img := pngImage(t)
	images := &fakeImages{pages: [][][]byte{{img, img}, nil}}
	rec := &fakeRecognizer{results: [][]string{
		{"HEMOGLOBINA", "13.5"},
		{"g/dL"},
	}}

	var gotLang string
	src := NewOCRSource(images, "").WithRecognizer(func(lang string) (Recognizer, error) {
		gotLang = lang
		return rec, nil
	})

	n, err := src.PageCount(context.Background())
	if err != nil || n != 2 {
		t.Fatalf("PageCount = %d, %v; want 2", n, err)
	}

	page, err := src.Page(context.Background(), 0)
	if err != nil {
		t.Fatalf("Page(0): %v", err)
	}
	if want := []string{"HEMOGLOBINA", "13.5", "g/dL"}; !reflect.DeepEqual(page, want) {
		t.Errorf("Page(0) = %q, want %q", page, want)
	}
	if gotLang != ocr.DefaultLanguage {
		t.Errorf("language = %q, want %q", gotLang, ocr.DefaultLanguage)
	}
	if rec.closed != 1 {
		t.Errorf("recognizer closed %d times, want 1", rec.closed)
	}

	// A page without images needs no recognizer.
	empty, err := src.Page(context.Background(), 1)
	if err != nil || len(empty) != 0 {
		t.Errorf("Page(1) = %q, %v; want no tokens", empty, err)
	}
}

func TestOCRSourceErrors(t *testing.T) {
	img := pngImage(t)
	boom := errors.New("boom")

	tests := []struct {
		name   string
		images *fakeImages
		open   func(string) (Recognizer, error)
		want   error
	}{
		{
			name:   "image extraction fails",
			images: &fakeImages{err: boom},
			want:   boom,
		},
		{
			name:   "recognizer unavailable",
			images: &fakeImages{pages: [][][]byte{{img}}},
			open:   func(string) (Recognizer, error) { return nil, ocr.ErrOCRNotEnabled },
			want:   ocr.ErrOCRNotEnabled,
		},
		{
			name:   "out of range",
			images: &fakeImages{pages: [][][]byte{{img}}},
			want:   ErrPageRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := NewOCRSource(tt.images, "spa")
			if tt.open != nil {
				src = src.WithRecognizer(tt.open)
			}
			index := 0
			if tt.want == ErrPageRange {
				index = 3
			}
			if _, err := src.Page(context.Background(), index); !errors.Is(err, tt.want) {
				t.Errorf("Page error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestOCRSourceBadImage(t *testing.T) {
	images := &fakeImages{pages: [][][]byte{{[]byte("garbage")}}}
	src := NewOCRSource(images, "").WithRecognizer(func(string) (Recognizer, error) {
		return &fakeRecognizer{}, nil
	})
	if _, err := src.Page(context.Background(), 0); err == nil {
		t.Error("Page accepted an undecodable image")
	}
}

// segmentingRecognizer also accepts a page segmentation mode.
type segmentingRecognizer struct {
	fakeRecognizer
	modes   []ocr.PageSegMode
	modeErr error
}

func (s *segmentingRecognizer) SetPageSegMode(mode ocr.PageSegMode) error {
	s.modes = append(s.modes, mode)
	return s.modeErr
}

func TestOCRSourcePageSegMode(t *testing.T) {
	img := pngImage(t)

	tests := []struct {
		name      string
		mode      ocr.PageSegMode
		modeErr   error
		wantModes []ocr.PageSegMode
		wantErr   bool
	}{
		{"default mode untouched", 0, nil, nil, false},
		{"single column", ocr.PSMSingleColumn, nil, []ocr.PageSegMode{ocr.PSMSingleColumn}, false},
		{"mode rejected", ocr.PSMSparseText, errors.New("unsupported"), []ocr.PageSegMode{ocr.PSMSparseText}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &segmentingRecognizer{
				fakeRecognizer: fakeRecognizer{results: [][]string{{"SODIO"}}},
				modeErr:        tt.modeErr,
			}
			src := NewOCRSource(&fakeImages{pages: [][][]byte{{img}}}, "").
				WithRecognizer(func(string) (Recognizer, error) { return rec, nil }).
				WithPageSegMode(tt.mode)

			_, err := src.Page(context.Background(), 0)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Page error = %v, wantErr %v", err, tt.wantErr)
			}
			if !reflect.DeepEqual(rec.modes, tt.wantModes) {
				t.Errorf("modes set = %v, want %v", rec.modes, tt.wantModes)
			}
		})
	}
}

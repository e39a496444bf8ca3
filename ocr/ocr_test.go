//go:build ocr

package ocr

import (
	"testing"
)

func TestNew(t *testing.T) {
	client, err := New()
	if err != nil {
		t.Skipf("Tesseract not available: %v", err)
	}
	defer client.Close()
}

func TestRecognizeLines(t *testing.T) {
	client, err := New()
	if err != nil {
		t.Skipf("Tesseract not available: %v", err)
	}
	defer client.Close()

	data, err := Prepare(encodePNG(t, testImage(100, 50)))
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}

	// The image holds no text; only check that recognition runs.
	if _, err := client.RecognizeLines(data); err != nil {
		t.Errorf("RecognizeLines failed: %v", err)
	}
}

func TestSetLanguage(t *testing.T) {
	client, err := New()
	if err != nil {
		t.Skipf("Tesseract not available: %v", err)
	}
	defer client.Close()

	if err := client.SetLanguage("eng"); err != nil {
		t.Errorf("SetLanguage failed: %v", err)
	}
	if err := client.SetPageSegMode(PSMSingleColumn); err != nil {
		t.Errorf("SetPageSegMode failed: %v", err)
	}
}

func TestCloseTwice(t *testing.T) {
	client, err := New()
	if err != nil {
		t.Skipf("Tesseract not available: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}

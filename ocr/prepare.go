package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"

	// Image formats produced by PDF image extraction.
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
)

// MinWidth is the width Prepare upscales narrower images to. Tesseract reads
// small table print poorly below roughly 300 dpi.
const MinWidth = 2000

// Prepare decodes an image, converts it to grayscale and upscales it to at
// least MinWidth pixels wide. The result is PNG encoded.
func Prepare(data []byte) ([]byte, error) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	b := src.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("empty %s image", format)
	}

	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), src, b.Min, draw.Src)

	out := gray
	if b.Dx() < MinWidth {
		h := b.Dy() * MinWidth / b.Dx()
		out = image.NewGray(image.Rect(0, 0, MinWidth, h))
		draw.CatmullRom.Scale(out, out.Bounds(), gray, gray.Bounds(), draw.Src, nil)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// Lines splits recognized text into trimmed, non-empty lines.
func Lines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

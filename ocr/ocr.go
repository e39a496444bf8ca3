//go:build ocr

package ocr

import (
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// Client wraps a Tesseract instance. A Client is not safe for concurrent use;
// create one per goroutine.
type Client struct {
	client *gosseract.Client
}

// New returns a client set to DefaultLanguage. Close it when done.
func New() (*Client, error) {
	client := gosseract.NewClient()
	if err := client.SetLanguage(DefaultLanguage); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	return &Client{client: client}, nil
}

// Close releases the Tesseract instance. It is safe on a nil client.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	err := c.client.Close()
	c.client = nil
	return err
}

// RecognizeImage returns the text of an encoded image (PNG, TIFF, JPEG...).
func (c *Client) RecognizeImage(imageData []byte) (string, error) {
	if err := c.client.SetImageFromBytes(imageData); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := c.client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return text, nil
}

// RecognizeLines returns the non-empty lines of an encoded image.
func (c *Client) RecognizeLines(imageData []byte) ([]string, error) {
	text, err := c.RecognizeImage(imageData)
	if err != nil {
		return nil, err
	}
	return Lines(text), nil
}

// SetLanguage sets the recognition language(s), "+" separated ("spa+eng").
func (c *Client) SetLanguage(lang string) error {
	return c.client.SetLanguage(lang)
}

// SetPageSegMode sets the page segmentation mode.
func (c *Client) SetPageSegMode(mode PageSegMode) error {
	return c.client.SetPageSegMode(gosseract.PageSegMode(mode))
}

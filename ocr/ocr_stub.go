//go:build !ocr

package ocr

// Client is the stub used without the "ocr" build tag.
type Client struct{}

// New returns ErrOCRNotEnabled.
func New() (*Client, error) {
	return nil, ErrOCRNotEnabled
}

// Close is a no-op. It is safe on a nil client.
func (c *Client) Close() error {
	return nil
}

// RecognizeImage returns ErrOCRNotEnabled.
func (c *Client) RecognizeImage(imageData []byte) (string, error) {
	return "", ErrOCRNotEnabled
}

// RecognizeLines returns ErrOCRNotEnabled.
func (c *Client) RecognizeLines(imageData []byte) ([]string, error) {
	return nil, ErrOCRNotEnabled
}

// SetLanguage returns ErrOCRNotEnabled.
func (c *Client) SetLanguage(lang string) error {
	return ErrOCRNotEnabled
}

// SetPageSegMode returns ErrOCRNotEnabled.
func (c *Client) SetPageSegMode(mode PageSegMode) error {
	return ErrOCRNotEnabled
}

package pixel

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	"image/png"
	"io"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder
)

// ErrEmptyData is returned when image data is empty.
var ErrEmptyData = errors.New("pixel: empty data")

// Decode decodes an image from r, auto-detecting the format, and returns its
// pixels at natural resolution. The detected format name is returned too.
func Decode(r io.Reader) (*Buffer, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("pixel: decode: %w", err)
	}
	buf := FromImage(img)
	if buf == nil {
		return nil, format, fmt.Errorf("pixel: decode %s: %w", format, ErrInvalidDimensions)
	}
	return buf, format, nil
}

// DecodeBytes decodes an in-memory image.
func DecodeBytes(data []byte) (*Buffer, string, error) {
	if len(data) == 0 {
		return nil, "", ErrEmptyData
	}
	return Decode(bytes.NewReader(data))
}

// Load reads and decodes an image file.
// Supported formats: PNG, JPEG, GIF, BMP, TIFF, WebP.
func Load(path string) (*Buffer, string, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, "", fmt.Errorf("pixel: open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Decode(f)
}

// EncodePNG encodes the buffer as PNG to w.
func (b *Buffer) EncodePNG(w io.Writer) error {
	if err := png.Encode(w, b.ToImage()); err != nil {
		return fmt.Errorf("pixel: encode PNG: %w", err)
	}
	return nil
}

// SavePNG writes the buffer to a PNG file.
func (b *Buffer) SavePNG(path string) error {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("pixel: create file: %w", err)
	}

	if err := b.EncodePNG(f); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}

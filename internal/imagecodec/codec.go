// Package imagecodec turns uploaded bytes into an RGB pixel buffer and
// materializes that buffer for collaborators that need a file or JPEG bytes.
package imagecodec

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

const jpegQuality = 90

// ErrDecode is returned when the uploaded bytes are not a supported image.
var ErrDecode = errors.New("cannot identify image file")

// Decode parses image bytes and flattens them to opaque RGB.
func Decode(data []byte) (*image.NRGBA, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrDecode)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	return ToRGB(src), nil
}

// ToRGB composites src over a white canvas so every pixel is fully opaque.
func ToRGB(src image.Image) *image.NRGBA {
	bounds := src.Bounds()
	canvas := imaging.New(bounds.Dx(), bounds.Dy(), color.White)
	return imaging.Overlay(canvas, src, image.Pt(0, 0), 1.0)
}

// EncodeJPEG re-encodes the buffer in a lossy format for network transfer.
func EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// WithTempFile writes img as JPEG to a fresh temporary file, calls fn with
// its path and removes the file on every exit path, including a panic in fn.
func WithTempFile(img image.Image, fn func(path string) error) error {
	f, err := os.CreateTemp("", "ki-metadata-*.jpg")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	path := f.Name()
	defer func() {
		_ = os.Remove(path)
	}()

	if err := imaging.Encode(f, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		_ = f.Close()
		return fmt.Errorf("write temp image: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp image: %w", err)
	}

	return fn(path)
}

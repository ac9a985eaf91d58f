package loaders

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// ImageFormat is an encoding supported for lightmap export
type ImageFormat int

const (
	PNG ImageFormat = iota
	TIFF
	BMP
)

// String returns the canonical extension of the format, without the dot
func (f ImageFormat) String() string {
	switch f {
	case PNG:
		return "png"
	case TIFF:
		return "tiff"
	case BMP:
		return "bmp"
	default:
		return fmt.Sprintf("ImageFormat(%d)", int(f))
	}
}

// ErrUnsupportedFormat is returned for file extensions no encoder or decoder handles
var ErrUnsupportedFormat = errors.New("unsupported format")

// FormatFromExtension maps a file extension, with or without the leading dot, to an image format
func FormatFromExtension(ext string) (ImageFormat, error) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	switch ext {
	case "png":
		return PNG, nil
	case "tif", "tiff":
		return TIFF, nil
	case "bmp":
		return BMP, nil
	}
	return PNG, fmt.Errorf("image extension %q: %w", ext, ErrUnsupportedFormat)
}

// WriteImage encodes img to w in the given format
func WriteImage(w io.Writer, img image.Image, format ImageFormat) error {
	switch format {
	case PNG:
		return png.Encode(w, img)
	case TIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case BMP:
		return bmp.Encode(w, img)
	default:
		return fmt.Errorf("image format %v: %w", format, ErrUnsupportedFormat)
	}
}

// SaveImage writes img to path, choosing the format from the extension
func SaveImage(path string, img image.Image) error {
	format, err := FormatFromExtension(filepath.Ext(path))
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create image file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	if err := WriteImage(writer, img, format); err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to write image file: %w", err)
	}
	return nil
}

// LoadImage decodes a PNG, TIFF or BMP image
func LoadImage(filename string) (image.Image, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	// Decoders are registered by the format imports
	img, _, err := image.Decode(bufio.NewReader(file))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

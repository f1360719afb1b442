// Package toolset selects the largest raster of a page and transcodes it to
// the requested image format.
package toolset

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hhrutter/tiff"
	"github.com/ternarybob/arbor"
	"golang.org/x/image/draw"
)

// Supported target formats.
const (
	FormatTIFF = "tiff"
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
)

// DefaultJPEGQuality is used when Options.JPEGQuality is unset.
const DefaultJPEGQuality = 90

// Options tune the encoders.
type Options struct {
	JPEGQuality int
}

// Buffer pool for encoding buffers to reduce allocations
var bufferPool = sync.Pool{
	New: func() interface{} {
		return new(bytes.Buffer)
	},
}

// getBuffer gets a buffer from the pool
func getBuffer() *bytes.Buffer {
	return bufferPool.Get().(*bytes.Buffer)
}

// putBuffer returns a buffer to the pool
func putBuffer(buf *bytes.Buffer) {
	buf.Reset()
	bufferPool.Put(buf)
}

// ImageEncoder interface for encoding images
type ImageEncoder interface {
	Encode(w io.Writer, img image.Image) error
	Extension() string
}

// TIFF encoder, LZW compressed, any color model
type TIFFEncoder struct{}

func (e TIFFEncoder) Encode(w io.Writer, img image.Image) error {
	return tiff.Encode(w, img, &tiff.Options{Compression: tiff.LZW})
}

func (e TIFFEncoder) Extension() string { return ".tiff" }

// PNG encoder, lossless, any color model
type PNGEncoder struct{}

func (e PNGEncoder) Encode(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

func (e PNGEncoder) Extension() string { return ".png" }

// JPEG encoder, opaque RGB only
type JPEGEncoder struct {
	Quality int
}

func (e JPEGEncoder) Encode(w io.Writer, img image.Image) error {
	return jpeg.Encode(w, img, &jpeg.Options{Quality: e.Quality})
}

func (e JPEGEncoder) Extension() string { return ".jpg" }

// Formats lists the supported target formats.
func Formats() []string {
	return []string{FormatTIFF, FormatPNG, FormatJPEG}
}

// GetEncoder returns encoder for the given format
func GetEncoder(format string, opts Options) (ImageEncoder, error) {
	switch strings.ToLower(format) {
	case FormatTIFF:
		return TIFFEncoder{}, nil
	case FormatPNG:
		return PNGEncoder{}, nil
	case FormatJPEG:
		q := opts.JPEGQuality
		if q <= 0 {
			q = DefaultJPEGQuality
		}
		return JPEGEncoder{Quality: q}, nil
	}
	return nil, fmt.Errorf("unsupported format: %s", format)
}

// Extension returns the file extension (with dot) for format. Unknown
// formats map to ".tiff".
func Extension(format string, opts Options) string {
	enc, err := GetEncoder(format, opts)
	if err != nil {
		return TIFFEncoder{}.Extension()
	}
	return enc.Extension()
}

// Normalize converts img to a color model the target format can store.
// JPEG has no alpha channel: images with transparency are composited over
// opaque white, every other non-RGB model is converted to RGB.
func Normalize(img image.Image, format string) image.Image {
	switch strings.ToLower(format) {
	case FormatJPEG:
		if hasAlpha(img) {
			return flattenOnWhite(img)
		}
		if _, ok := img.(*image.YCbCr); ok {
			return img
		}
		return toRGBA(img)
	case FormatPNG:
		switch img.(type) {
		case *image.CMYK, *image.YCbCr:
			return toRGBA(img)
		}
		return img
	case FormatTIFF:
		switch img.(type) {
		case *image.Paletted, *image.Gray, *image.Gray16, *image.RGBA, *image.NRGBA,
			*image.RGBA64, *image.NRGBA64, *image.CMYK:
			return img
		}
		return toRGBA(img)
	}
	return img
}

// hasAlpha reports whether img carries any transparency.
func hasAlpha(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	switch img.ColorModel() {
	case color.GrayModel, color.Gray16Model, color.CMYKModel, color.YCbCrModel:
		return false
	}
	return true
}

// Convert image to RGBA
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(b)
	draw.Draw(rgba, b, img, b.Min, draw.Src)
	return rgba
}

// flattenOnWhite composites img over an opaque white canvas, using its alpha
// channel as the blend mask.
func flattenOnWhite(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(b)
	draw.Draw(dst, b, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, b, img, b.Min, draw.Over)
	return dst
}

// Encode decodes data, normalizes its color model for format and encodes it.
func Encode(data []byte, format string, opts Options) ([]byte, error) {
	encoder, err := GetEncoder(format, opts)
	if err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	buf := getBuffer()
	defer putBuffer(buf)

	if err := encoder.Encode(buf, Normalize(img, format)); err != nil {
		return nil, fmt.Errorf("encode %s: %w", format, err)
	}
	return bytes.Clone(buf.Bytes()), nil
}

// SaveLargest writes data to dir/base+ext in the requested format. When that
// fails it makes one explicit TIFF attempt to dir/base.tiff. It returns the
// file name actually written.
func SaveLargest(data []byte, dir, base, format string, opts Options, logger arbor.ILogger) (string, error) {
	name := base + Extension(format, opts)
	err := writeEncoded(data, filepath.Join(dir, name), format, opts)
	if err == nil {
		logger.Debug().Str("path", filepath.Join(dir, name)).Msg("Saved image")
		return name, nil
	}
	if strings.ToLower(format) == FormatTIFF {
		return "", err
	}

	logger.Warn().Err(err).Str("format", format).Str("file", name).Msg("Failed to save image, falling back to TIFF")

	fallback := base + TIFFEncoder{}.Extension()
	if ferr := writeEncoded(data, filepath.Join(dir, fallback), FormatTIFF, opts); ferr != nil {
		return "", fmt.Errorf("save %s as %s: %v; tiff fallback: %w", base, format, err, ferr)
	}
	logger.Info().Str("file", fallback).Msg("Saved image as TIFF instead")
	return fallback, nil
}

func writeEncoded(data []byte, path, format string, opts Options) error {
	encoded, err := Encode(data, format, opts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, encoded, 0644); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	return nil
}

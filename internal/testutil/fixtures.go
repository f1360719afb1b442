// Package testutil builds PDF and image fixtures for tests.
package testutil

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"testing"

	"github.com/go-pdf/fpdf"
)

// PageSpec describes the content of one fixture page.
type PageSpec struct {
	// Lines are drawn with the draw color as "x1 y1 m x2 y2 l S".
	Lines int
	// Rects are stroked rectangles ("re S").
	Rects int
	// DrawColor is the RGB stroke color (0..255).
	DrawColor [3]int
	// JPEGs are embedded as DCT images; each value is the square edge in
	// pixels.
	JPEGs []int
}

// WritePDF writes a PDF with one page per spec to path.
func WritePDF(t *testing.T, path string, pages ...PageSpec) {
	t.Helper()

	pdf := fpdf.New("P", "mm", "A4", "")
	for pi, spec := range pages {
		pdf.AddPage()
		pdf.SetDrawColor(spec.DrawColor[0], spec.DrawColor[1], spec.DrawColor[2])
		for i := 0; i < spec.Lines; i++ {
			y := 10 + float64(i)*5
			pdf.Line(10, y, 100, y)
		}
		for i := 0; i < spec.Rects; i++ {
			y := 100 + float64(i)*20
			pdf.Rect(10, y, 50, 15, "D")
		}
		for i, edge := range spec.JPEGs {
			name := "img_" + string(rune('a'+pi)) + "_" + string(rune('a'+i))
			opt := fpdf.ImageOptions{ImageType: "JPG"}
			pdf.RegisterImageOptionsReader(name, opt, bytes.NewReader(JPEG(t, edge, edge)))
			pdf.ImageOptions(name, 120, 10+float64(i)*60, 50, 50, false, opt, 0, "")
		}
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		t.Fatalf("write fixture pdf %s: %v", path, err)
	}
}

// WriteRawPDF writes a PDF whose objects are given verbatim; objs[i] becomes
// object i+1 and object 1 must be the catalog. It is for layouts fpdf cannot
// produce, such as byte-identical images stored as separate objects.
func WriteRawPDF(t *testing.T, path string, objs ...string) {
	t.Helper()

	var b bytes.Buffer
	b.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, obj := range objs {
		offsets[i] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n0000000000 65535 f \n", len(objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)

	WriteFile(t, path, b.Bytes())
}

// Stream formats a stream object body with its /Length filled in.
func Stream(dict, data string) string {
	return fmt.Sprintf("<< %s /Length %d >>\nstream\n%s\nendstream", dict, len(data), data)
}

// WriteFile writes raw bytes to path, failing the test on error.
func WriteFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// Gradient returns an opaque RGBA test image with a color gradient.
func Gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 255 / max(w-1, 1)), G: uint8(y * 255 / max(h-1, 1)), B: 128, A: 255})
		}
	}
	return img
}

// JPEG encodes a w x h gradient as JPEG.
func JPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, Gradient(w, h), &jpeg.Options{Quality: 95}); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

// PNG encodes img as PNG.
func PNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

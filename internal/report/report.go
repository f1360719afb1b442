// Package report names the per-page output files and writes the statistics
// CSV.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"pdftriage/internal/model"
)

// FileName is the name of the CSV report inside the output directory.
const FileName = "pdf_statistics.csv"

// NotApplicable marks a page without any raster image.
const NotApplicable = "N/A"

// Header is the CSV column order.
var Header = []string{
	"Point Count",
	"Line Count",
	"Polygon Count",
	"Raster Count",
	"Vector Colors",
	"Original File",
	"Output File",
	"Page Number",
	"Total Pages",
	"File Size (KB)",
	"Largest Image File",
}

// PageStatistics is one report row.
type PageStatistics struct {
	PointCount       int
	LineCount        int
	PolygonCount     int
	RasterCount      int
	VectorColors     string
	OriginalFile     string
	OutputFile       string
	PageNumber       int
	TotalPages       int
	FileSizeKB       float64
	LargestImageFile string
}

// Record renders the row in Header order.
func (s PageStatistics) Record() []string {
	return []string{
		strconv.Itoa(s.PointCount),
		strconv.Itoa(s.LineCount),
		strconv.Itoa(s.PolygonCount),
		strconv.Itoa(s.RasterCount),
		s.VectorColors,
		s.OriginalFile,
		s.OutputFile,
		strconv.Itoa(s.PageNumber),
		strconv.Itoa(s.TotalPages),
		model.FormatFloat(s.FileSizeKB),
		s.LargestImageFile,
	}
}

// SplitFileName returns the name of the single-page PDF for page n of total.
func SplitFileName(base string, n, total int) string {
	return fmt.Sprintf("%s_%d_of_%d.pdf", base, n, total)
}

// ImageBaseName returns the extension-less name of the largest image of page
// n of total.
func ImageBaseName(base string, n, total int) string {
	return fmt.Sprintf("%s_%d_of_%d_largest_image", base, n, total)
}

// SizeKB converts a byte count to kilobytes.
func SizeKB(bytes int64) float64 {
	return float64(bytes) / 1024
}

// WriteCSV writes the header and rows to path, replacing any existing file.
func WriteCSV(path string, rows []PageStatistics) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		return fmt.Errorf("write report header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row.Record()); err != nil {
			return fmt.Errorf("write report row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush report: %w", err)
	}
	return f.Close()
}

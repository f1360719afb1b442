// Package batch runs the per-document pipeline over an input directory and
// writes the statistics report.
package batch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"pdftriage/internal/analyzer"
	"pdftriage/internal/config"
	"pdftriage/internal/model"
	"pdftriage/internal/report"
	"pdftriage/internal/toolset"
)

var (
	// ErrNoDocuments is returned when the input directory holds no PDF files.
	ErrNoDocuments = errors.New("no pdf files found")
	// ErrNoStatistics is returned when every document failed.
	ErrNoStatistics = errors.New("no statistics were collected")
)

// Summary describes a finished run.
type Summary struct {
	RunID      string
	Documents  int // discovered files
	Failed     int
	Rows       []report.PageStatistics
	ReportPath string
}

// Processor processes every PDF of the configured input directory.
type Processor struct {
	cfg    *config.Config
	logger arbor.ILogger
	open   model.Opener
	opts   toolset.Options
}

// New returns a Processor that opens documents with open.
func New(cfg *config.Config, logger arbor.ILogger, open model.Opener) *Processor {
	return &Processor{
		cfg:    cfg,
		logger: logger,
		open:   open,
		opts:   toolset.Options{JPEGQuality: cfg.JPEGQuality},
	}
}

// documentResult is the outcome of one document, stored at its discovery index.
type documentResult struct {
	rows []report.PageStatistics
	err  error
}

// Run discovers the input documents, processes them and writes the report.
// It returns ErrNoDocuments or ErrNoStatistics when there is nothing to
// report; neither writes a file.
func (p *Processor) Run() (*Summary, error) {
	summary := &Summary{RunID: uuid.New().String()}
	logger := p.logger.WithCorrelationId(summary.RunID)

	files, err := Discover(p.cfg.Input)
	if err != nil {
		return summary, err
	}
	summary.Documents = len(files)
	if len(files) == 0 {
		logger.Warn().Msgf("No PDF files found in %s", p.cfg.Input)
		return summary, ErrNoDocuments
	}

	logger.Info().
		Int("documents", len(files)).
		Int("workers", p.cfg.Workers).
		Str("format", p.cfg.Format).
		Msg("Starting batch")

	results := p.processAll(files, logger)

	for i, res := range results {
		if res.err != nil {
			summary.Failed++
			logger.Error().Err(res.err).Str("file", files[i]).Msg("Failed to process document")
			continue
		}
		summary.Rows = append(summary.Rows, res.rows...)
	}

	if len(summary.Rows) == 0 {
		logger.Warn().Msg("No statistics were collected. Check for errors above.")
		return summary, ErrNoStatistics
	}

	summary.ReportPath = filepath.Join(p.cfg.Output, report.FileName)
	if err := report.WriteCSV(summary.ReportPath, summary.Rows); err != nil {
		return summary, err
	}

	logger.Info().Str("report", summary.ReportPath).
		Msgf("Processed %d PDF files with a total of %d pages", summary.Documents, len(summary.Rows))
	return summary, nil
}

// processAll runs processDocument for every file and returns the results in
// discovery order.
func (p *Processor) processAll(files []string, logger arbor.ILogger) []documentResult {
	results := make([]documentResult, len(files))

	numWorkers := p.cfg.Workers
	if numWorkers > len(files) {
		numWorkers = len(files)
	}
	if numWorkers <= 1 {
		for i, f := range files {
			results[i].rows, results[i].err = p.processDocument(f, logger)
		}
		return results
	}

	taskChan := make(chan int, len(files))
	var wg sync.WaitGroup

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range taskChan {
				rows, err := p.processDocument(files[idx], logger)
				results[idx] = documentResult{rows: rows, err: err}
			}
		}()
	}

	for i := range files {
		taskChan <- i
	}
	close(taskChan)
	wg.Wait()

	return results
}

// processDocument splits, analyzes and extracts images for every page of one
// document. Any error except an image failure discards the whole document, and
// so does a panic raised while reading it.
func (p *Processor) processDocument(path string, logger arbor.ILogger) (rows []report.PageStatistics, err error) {
	fileName := filepath.Base(path)
	defer func() {
		if r := recover(); r != nil {
			rows, err = nil, fmt.Errorf("%s: panic: %v", fileName, r)
		}
	}()

	doc, err := p.open(path)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	base := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	total := doc.PageCount()

	logger.Info().Str("file", fileName).Int("pages", total).Msg("Processing document")

	rows = make([]report.PageStatistics, 0, total)
	for i := 0; i < total; i++ {
		row, err := p.processPage(doc, i, base, fileName, total, logger)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fileName, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (p *Processor) processPage(doc model.Document, index int, base, fileName string, total int, logger arbor.ILogger) (report.PageStatistics, error) {
	n := index + 1
	outName := report.SplitFileName(base, n, total)
	outPath := filepath.Join(p.cfg.Output, outName)

	if err := doc.WritePage(index, outPath); err != nil {
		return report.PageStatistics{}, fmt.Errorf("split page %d: %w", n, err)
	}
	info, err := os.Stat(outPath)
	if err != nil {
		return report.PageStatistics{}, fmt.Errorf("stat page %d: %w", n, err)
	}

	page, err := doc.Page(index)
	if err != nil {
		return report.PageStatistics{}, err
	}
	res, err := analyzer.Analyze(page)
	if err != nil {
		return report.PageStatistics{}, err
	}

	row := report.PageStatistics{
		PointCount:       res.Points,
		LineCount:        res.Lines,
		PolygonCount:     res.Polygons,
		RasterCount:      res.Rasters,
		VectorColors:     res.ColorList(),
		OriginalFile:     fileName,
		OutputFile:       outName,
		PageNumber:       n,
		TotalPages:       total,
		FileSizeKB:       report.SizeKB(info.Size()),
		LargestImageFile: report.NotApplicable,
	}

	if res.Rasters > 0 {
		row.LargestImageFile = p.saveLargestImage(page, base, n, total, logger)
	}

	logger.Debug().Str("file", outName).Int("points", res.Points).Int("lines", res.Lines).
		Int("polygons", res.Polygons).Int("rasters", res.Rasters).Msg("Page analyzed")
	return row, nil
}

// saveLargestImage writes the page's largest raster and returns its file
// name, or "" when no image could be written.
func (p *Processor) saveLargestImage(page model.Page, base string, n, total int, logger arbor.ILogger) string {
	refs, err := page.Images()
	if err != nil {
		logger.Warn().Err(err).Int("page", n).Msg("Failed to list images")
		return ""
	}

	raw, ok := toolset.SelectLargest(page, refs, logger)
	if !ok {
		logger.Warn().Int("page", n).Str("document", base).Msg("No extractable image on page")
		return ""
	}

	name, err := toolset.SaveLargest(raw.Data, p.cfg.Output, report.ImageBaseName(base, n, total), p.cfg.Format, p.opts, logger)
	if err != nil {
		logger.Error().Err(err).Int("page", n).Str("document", base).Msg("Failed to save largest image")
		return ""
	}
	return name
}

// Discover lists the *.pdf files of dir, sorted by name. The match is case
// sensitive and does not descend into subdirectories.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".pdf" {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// Package analyzer derives per-page vector and raster statistics.
package analyzer

import (
	"fmt"
	"strings"

	"pdftriage/internal/model"
)

// NoColors is reported when a page has no stroked path with a color.
const NoColors = "None"

type bucket int

const (
	bucketIgnored bucket = iota
	bucketPoint
	bucketLine
	bucketPolygon
)

// classification maps every instruction kind to its count bucket. A move is
// counted as a point even when it only starts a subpath.
var classification = map[model.InstructionKind]bucket{
	model.KindMove:       bucketPoint,
	model.KindLine:       bucketLine,
	model.KindRectangle:  bucketPolygon,
	model.KindCurveCubic: bucketPolygon,
	model.KindCurveQuadV: bucketPolygon,
	model.KindCurveQuadY: bucketPolygon,
	model.KindOther:      bucketIgnored,
}

// Result holds the statistics of one page.
type Result struct {
	Points   int
	Lines    int
	Polygons int
	Rasters  int
	Colors   []string // distinct stroke colors in first-seen order
}

// ColorList joins the colors for the report, or returns NoColors.
func (r Result) ColorList() string {
	if len(r.Colors) == 0 {
		return NoColors
	}
	return strings.Join(r.Colors, ", ")
}

// Analyze counts the page's drawing instructions by bucket, collects its
// stroke colors and sizes its image directory.
func Analyze(page model.Page) (Result, error) {
	paths, err := page.Drawings()
	if err != nil {
		return Result{}, fmt.Errorf("page %d drawings: %w", page.Number(), err)
	}
	res := CountPaths(paths)

	images, err := page.Images()
	if err != nil {
		return Result{}, fmt.Errorf("page %d images: %w", page.Number(), err)
	}
	res.Rasters = len(images)

	return res, nil
}

// CountPaths classifies the instructions of paths and deduplicates their
// colors.
func CountPaths(paths []model.Path) Result {
	var res Result
	colors := newOrderedSet()

	for _, p := range paths {
		for _, in := range p.Instructions {
			switch classification[in.Kind] {
			case bucketPoint:
				res.Points++
			case bucketLine:
				res.Lines++
			case bucketPolygon:
				res.Polygons++
			}
		}
		if len(p.Color) > 0 {
			colors.Add(p.Color.String())
		}
	}

	res.Colors = colors.Values()
	return res
}

// orderedSet keeps the insertion order of distinct strings.
type orderedSet struct {
	seen   map[string]struct{}
	values []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: map[string]struct{}{}}
}

func (s *orderedSet) Add(v string) {
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.values = append(s.values, v)
}

func (s *orderedSet) Values() []string {
	return s.values
}

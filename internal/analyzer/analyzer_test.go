package analyzer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdftriage/internal/model"
	"pdftriage/internal/testutil"
)

func path(color model.Color, kinds ...model.InstructionKind) model.Path {
	p := model.Path{Color: color}
	for _, k := range kinds {
		p.Instructions = append(p.Instructions, model.Instruction{Kind: k})
	}
	return p
}

var (
	red   = model.Color{1, 0, 0}
	green = model.Color{0, 1, 0}
	blue  = model.Color{0, 0, 1}
)

func TestCountPaths_Classification(t *testing.T) {
	tests := []struct {
		name                    string
		kinds                   []model.InstructionKind
		points, lines, polygons int
	}{
		{"move is a point", []model.InstructionKind{model.KindMove}, 1, 0, 0},
		{"line", []model.InstructionKind{model.KindLine}, 0, 1, 0},
		{"rectangle", []model.InstructionKind{model.KindRectangle}, 0, 0, 1},
		{"cubic curve", []model.InstructionKind{model.KindCurveCubic}, 0, 0, 1},
		{"v curve", []model.InstructionKind{model.KindCurveQuadV}, 0, 0, 1},
		{"y curve", []model.InstructionKind{model.KindCurveQuadY}, 0, 0, 1},
		{"other is ignored", []model.InstructionKind{model.KindOther}, 0, 0, 0},
		{"open polyline counts every segment", []model.InstructionKind{
			model.KindMove, model.KindLine, model.KindLine, model.KindLine,
		}, 1, 3, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := CountPaths([]model.Path{path(nil, tt.kinds...)})
			assert.Equal(t, tt.points, res.Points)
			assert.Equal(t, tt.lines, res.Lines)
			assert.Equal(t, tt.polygons, res.Polygons)
		})
	}
}

func TestCountPaths_ColorsDeduplicatedInFirstSeenOrder(t *testing.T) {
	res := CountPaths([]model.Path{
		path(red, model.KindMove),
		path(green, model.KindLine),
		path(red, model.KindLine),
		path(blue, model.KindRectangle),
		path(nil, model.KindRectangle),
	})

	assert.Equal(t, []string{"(1.0, 0.0, 0.0)", "(0.0, 1.0, 0.0)", "(0.0, 0.0, 1.0)"}, res.Colors)
	assert.Equal(t, "(1.0, 0.0, 0.0), (0.0, 1.0, 0.0), (0.0, 0.0, 1.0)", res.ColorList())
}

func TestCountPaths_Empty(t *testing.T) {
	res := CountPaths(nil)
	assert.Equal(t, Result{}, res)
	assert.Equal(t, NoColors, res.ColorList())
}

func TestCountPaths_Deterministic(t *testing.T) {
	paths := []model.Path{
		path(red, model.KindMove, model.KindLine, model.KindCurveCubic),
		path(blue, model.KindRectangle, model.KindOther),
	}
	first := CountPaths(paths)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, CountPaths(paths))
	}
}

func TestAnalyze(t *testing.T) {
	page := &testutil.FakePage{
		Nr: 2,
		Paths: []model.Path{
			path(red, model.KindMove, model.KindLine),
			path(nil, model.KindRectangle),
		},
		ImageList: []testutil.FakeImage{
			{Ref: model.ImageRef{Name: "Im0", ObjNr: 5}},
			{Ref: model.ImageRef{Name: "Im1", ObjNr: 6}, Err: errors.New("corrupt")},
		},
	}

	res, err := Analyze(page)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Points)
	assert.Equal(t, 1, res.Lines)
	assert.Equal(t, 1, res.Polygons)
	assert.Equal(t, 2, res.Rasters, "raster count covers unresolvable images too")
	assert.Equal(t, []string{"(1.0, 0.0, 0.0)"}, res.Colors)
	assert.Empty(t, page.Resolved, "analysis never resolves image bytes")
}

func TestAnalyze_Errors(t *testing.T) {
	_, err := Analyze(&testutil.FakePage{Nr: 1, DrawingsErr: errors.New("bad content")})
	assert.ErrorContains(t, err, "page 1 drawings")

	_, err = Analyze(&testutil.FakePage{Nr: 3, ImagesErr: errors.New("bad resources")})
	assert.ErrorContains(t, err, "page 3 images")
}

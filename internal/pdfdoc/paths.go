package pdfdoc

import (
	"pdftriage/internal/contentstream"
	"pdftriage/internal/model"
)

// maxFormDepth bounds form XObject nesting (and breaks reference cycles).
const maxFormDepth = 8

// FormResolver returns the parsed content of the form XObject registered
// under name in the current resources, and the resolver for the form's own
// resources.
type FormResolver func(name string) ([]contentstream.Operation, FormResolver, bool)

type graphicsState struct {
	stroke model.Color
	fill   model.Color
}

type pathBuilder struct {
	gs      graphicsState
	stack   []graphicsState
	current []model.Instruction
	paths   []model.Path
}

// BuildPaths groups the path construction operators of a content stream into
// painted paths carrying the stroke and fill colors in effect when they were
// painted. Clip-only paths (n) are dropped.
func BuildPaths(ops []contentstream.Operation, forms FormResolver) []model.Path {
	b := &pathBuilder{
		gs: graphicsState{stroke: model.Color{0, 0, 0}, fill: model.Color{0, 0, 0}},
	}
	b.run(ops, forms, 0)
	return b.paths
}

func (b *pathBuilder) run(ops []contentstream.Operation, forms FormResolver, depth int) {
	for _, op := range ops {
		switch op.Operator {
		// graphics state
		case "q":
			b.stack = append(b.stack, b.gs)
		case "Q":
			if n := len(b.stack); n > 0 {
				b.gs = b.stack[n-1]
				b.stack = b.stack[:n-1]
			}

		// path construction
		case "m", "l", "c", "v", "y", "re":
			b.current = append(b.current, model.Instruction{
				Kind:     model.KindFromOperator(op.Operator),
				Operands: op.Numbers(),
			})
		case "h":

		// path painting
		case "S", "s":
			b.paint(true, false)
		case "f", "F", "f*":
			b.paint(false, true)
		case "B", "B*", "b", "b*":
			b.paint(true, true)
		case "n":
			b.current = nil

		// color
		case "G":
			b.gs.stroke = grayColor(op.Numbers())
		case "g":
			b.gs.fill = grayColor(op.Numbers())
		case "RG":
			b.gs.stroke = rgbColor(op.Numbers())
		case "rg":
			b.gs.fill = rgbColor(op.Numbers())
		case "K":
			b.gs.stroke = cmykColor(op.Numbers())
		case "k":
			b.gs.fill = cmykColor(op.Numbers())
		case "CS":
			b.gs.stroke = initialColor(op)
		case "cs":
			b.gs.fill = initialColor(op)
		case "SC", "SCN":
			b.gs.stroke = componentColor(op)
		case "sc", "scn":
			b.gs.fill = componentColor(op)

		case "Do":
			if forms == nil || depth >= maxFormDepth || len(op.Operands) == 0 {
				continue
			}
			formOps, formForms, ok := forms(op.Operands[0].Value)
			if !ok {
				continue
			}
			// A form runs on its own state stack so unbalanced q/Q inside it
			// cannot reach the caller's saved states.
			saved, outer := b.gs, b.stack
			b.stack = nil
			b.run(formOps, formForms, depth+1)
			b.gs, b.stack = saved, outer
		}
	}
}

func (b *pathBuilder) paint(stroke, fill bool) {
	if len(b.current) == 0 {
		return
	}
	p := model.Path{Instructions: b.current}
	if stroke {
		p.Color = b.gs.stroke
	}
	if fill {
		p.Fill = b.gs.fill
	}
	b.paths = append(b.paths, p)
	b.current = nil
}

func grayColor(n []float64) model.Color {
	if len(n) != 1 {
		return nil
	}
	return model.Color{n[0], n[0], n[0]}
}

func rgbColor(n []float64) model.Color {
	if len(n) != 3 {
		return nil
	}
	return model.Color{n[0], n[1], n[2]}
}

func cmykColor(n []float64) model.Color {
	if len(n) != 4 {
		return nil
	}
	c, m, y, k := n[0], n[1], n[2], n[3]
	return model.Color{(1 - c) * (1 - k), (1 - m) * (1 - k), (1 - y) * (1 - k)}
}

// initialColor is the color a CS/cs operator installs: black for the device
// spaces, nothing for patterns and spaces we cannot resolve here.
func initialColor(op contentstream.Operation) model.Color {
	if len(op.Operands) == 0 {
		return nil
	}
	switch op.Operands[0].Value {
	case "DeviceGray", "G", "CalGray", "DeviceRGB", "RGB", "CalRGB", "Lab", "DeviceCMYK", "CMYK":
		return model.Color{0, 0, 0}
	}
	return nil
}

// componentColor interprets SC/SCN operands by component count. A trailing
// pattern name means there is no flat color.
func componentColor(op contentstream.Operation) model.Color {
	if n := len(op.Operands); n > 0 && op.Operands[n-1].Kind == contentstream.OperandName {
		return nil
	}
	n := op.Numbers()
	switch len(n) {
	case 1:
		return grayColor(n)
	case 3:
		return rgbColor(n)
	case 4:
		return cmykColor(n)
	}
	return nil
}

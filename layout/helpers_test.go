package layout

import (
	"math"
	"unicode/utf8"
)

// stubMeasurer 按字符数线性测量：width = runes × size × factor。
// 仅用于测试，避免依赖真实字体。
type stubMeasurer struct {
	factor   float64
	degraded bool
}

func (s stubMeasurer) Measure(text string, font string, size float64) Measurement {
	w := float64(utf8.RuneCountInString(text)) * size * s.factor
	if s.degraded {
		return Degraded(w, "font "+font+" unavailable")
	}
	return Ok(w)
}

func eq(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func textBlock(id string, width, available float64, paras ...Paragraph) Block {
	return Block{
		ID:             id,
		BBox:           Rect{X0: 10, Y0: 20, X1: 10 + width, Y1: 60},
		AvailableWidth: available,
		Paragraphs:     paras,
	}
}

func para(id string, runs ...StyledRun) Paragraph {
	return Paragraph{ID: id, Runs: runs}
}

func run(id, text string, size float64) StyledRun {
	return StyledRun{ID: id, Text: text, Font: "Body", Size: size, Color: "#000000"}
}

// lineTops 返回块中各行的顶部坐标（按出现顺序去重）。
func lineTops(spans []PositionedSpan) []float64 {
	var tops []float64
	for _, s := range spans {
		if len(tops) == 0 || !eq(tops[len(tops)-1], s.BBox.Y0) {
			tops = append(tops, s.BBox.Y0)
		}
	}
	return tops
}

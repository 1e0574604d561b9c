package canvasrenderer

import (
	"math"
	"testing"

	"golang.org/x/image/font/gofont/gomono"

	"github.com/ByLCY/reflow/layout"
)

// 当第一行宽度与块宽恰好相等且后面紧跟一个显式换行时，不应产生额外的空行。
func TestNoBlankLineWhenEqualWidthThenNewline(t *testing.T) {
	r, _ := newTestRenderer(t, gomono.TTF)

	first := "SAMPLE-A"
	limit := r.Measure(first, "Body", 12).Width
	if limit <= 0 {
		t.Fatalf("invalid measured width: %g", limit)
	}

	block := layout.Block{
		ID:   "eq",
		BBox: layout.Rect{X0: 0, Y0: 0, X1: limit, Y1: 30},
		Paragraphs: []layout.Paragraph{{ID: "p", Runs: []layout.StyledRun{
			{ID: "r", Text: first + "\n" + "SAMPLE-B", Font: "Body", Size: 12},
		}}},
	}
	got, degs := layout.NewEngine(layout.Options{Measurer: r}).LayoutBlock(block)
	if len(degs) != 0 {
		t.Fatalf("unexpected degradations: %v", degs)
	}
	if len(got.Spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(got.Spans))
	}
	if got.Spans[0].Text != first || got.Spans[1].Text != "SAMPLE-B" {
		t.Fatalf("line content mismatch: %q %q", got.Spans[0].Text, got.Spans[1].Text)
	}
	if math.Abs(got.FinalBBox.Height()-2*12*1.2) > 1e-9 {
		t.Fatalf("expected two lines without blank, height=%g", got.FinalBBox.Height())
	}
}

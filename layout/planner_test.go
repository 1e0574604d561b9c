package layout

import "testing"

// 文本需要 250 宽：25 个字符 × 字号 10 × 系数 1。
const wideText = "aaaa bbbb cccc dddd eeeee"

func TestPlanWidthKeep(t *testing.T) {
	b := textBlock("b1", 200, 200, para("p1", run("r1", "short", 10)))
	plan, _ := PlanWidth(b, stubMeasurer{factor: 1}, DefaultWidthTolerance)
	if plan.Decision != DecisionKeep || plan.Width != 200 {
		t.Fatalf("expected keep at 200, got %+v", plan)
	}
}

func TestPlanWidthExpand(t *testing.T) {
	b := textBlock("b1", 100, 300, para("p1", run("r1", wideText, 10)))
	plan, _ := PlanWidth(b, stubMeasurer{factor: 1}, DefaultWidthTolerance)
	if plan.Decision != DecisionExpand || !eq(plan.Width, 250) {
		t.Fatalf("expected expand to 250, got %+v", plan)
	}
}

func TestPlanWidthExpandWithinTolerance(t *testing.T) {
	b := textBlock("b1", 100, 249.5, para("p1", run("r1", wideText, 10)))
	plan, _ := PlanWidth(b, stubMeasurer{factor: 1}, DefaultWidthTolerance)
	if plan.Decision != DecisionExpand || !eq(plan.Width, 250) {
		t.Fatalf("tolerance should absorb 0.5 overshoot, got %+v", plan)
	}
}

func TestPlanWidthClamp(t *testing.T) {
	b := textBlock("b1", 100, 100, para("p1", run("r1", wideText, 10)))
	plan, _ := PlanWidth(b, stubMeasurer{factor: 1}, DefaultWidthTolerance)
	if plan.Decision != DecisionClamp || plan.Width != 100 {
		t.Fatalf("expected clamp at 100, got %+v", plan)
	}
}

// 可用宽度小于原宽时，上限仍为原宽，块不会被压窄。
func TestPlanWidthCeilingNeverBelowOriginal(t *testing.T) {
	b := textBlock("b1", 120, 80, para("p1", run("r1", wideText, 10)))
	plan, _ := PlanWidth(b, stubMeasurer{factor: 1}, DefaultWidthTolerance)
	if plan.Decision != DecisionClamp || plan.Width != 120 {
		t.Fatalf("expected clamp at original 120, got %+v", plan)
	}
}

func TestPlanWidthUsesWidestHardLine(t *testing.T) {
	b := textBlock("b1", 50, 500,
		para("p1", run("r1", "aaaaaaaaaa\naa", 10)),
		para("p2", run("r2", "aaaaaaaaaaaaaaaaaaaa", 10)),
	)
	plan, _ := PlanWidth(b, stubMeasurer{factor: 1}, DefaultWidthTolerance)
	if !eq(plan.Ideal, 200) {
		t.Fatalf("ideal should be widest line over all paragraphs, got %g", plan.Ideal)
	}
}

func TestPlanWidthDegenerate(t *testing.T) {
	b := Block{ID: "b0", BBox: Rect{X0: 10, X1: 10}, Paragraphs: []Paragraph{para("p1", run("r1", "x", 10))}}
	plan, _ := PlanWidth(b, stubMeasurer{factor: 1}, DefaultWidthTolerance)
	if plan.Decision != DecisionDegenerate {
		t.Fatalf("expected degenerate plan, got %+v", plan)
	}
}

func TestIdealLineUsesFirstRunStyle(t *testing.T) {
	p := para("p1", run("r1", "ab", 10), run("r2", "cd", 40))
	w, line, _ := IdealLine(p, stubMeasurer{factor: 1})
	if line != "abcd" || !eq(w, 40) {
		t.Fatalf("expected 4 runes at size 10, got %q width=%g", line, w)
	}
}

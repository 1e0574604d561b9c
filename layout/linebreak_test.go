package layout

import (
	"testing"
)

func TestTokenizeKeepsWhitespaceAndNewlines(t *testing.T) {
	got := tokenize("ab  cd\r\nef")
	want := []token{
		{"ab", tokenWord},
		{"  ", tokenSpace},
		{"cd", tokenWord},
		{"\n", tokenNewline},
		{"ef", tokenWord},
	}
	if len(got) != len(want) {
		t.Fatalf("token 数量不符: got=%d want=%d (%#v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d 不符: got=%#v want=%#v", i, got[i], want[i])
		}
	}
}

func TestBreakParagraphWrapsWithinWidth(t *testing.T) {
	m := stubMeasurer{factor: 1}
	p := para("p1", run("r1", "aaaa bbbb cccc dddd eeeee", 10))
	lines, st, warnings := BreakParagraph(p, 100, BlockState{}, m, 1.2)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	for i, ln := range lines {
		if ln.Width-100 > 1e-6 {
			t.Fatalf("line %d width exceeds limit: %g", i, ln.Width)
		}
		if ln.Spans[0].Whitespace {
			t.Fatalf("line %d starts with whitespace %q", i, ln.Spans[0].Text)
		}
	}
	if !eq(st.Height, 3*12) {
		t.Fatalf("height mismatch: got=%g want=36", st.Height)
	}
	if st.Lines != 3 || len(st.Spans) == 0 {
		t.Fatalf("state not advanced: %+v", st)
	}
}

func TestBreakParagraphConsumesSpaceAtBreak(t *testing.T) {
	m := stubMeasurer{factor: 1}
	p := para("p1", run("r1", "aaaa bbbb", 10))
	lines, st, _ := BreakParagraph(p, 40, BlockState{}, m, 1.2)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	var joined string
	for _, s := range st.Spans {
		joined += s.Text
	}
	if joined != "aaaabbbb" {
		t.Fatalf("space at the break should produce no span, got %q", joined)
	}
}

func TestBreakParagraphOverwideTokenAlone(t *testing.T) {
	m := stubMeasurer{factor: 1}
	p := para("p1", run("r1", "supercalifragilistic ok", 10))
	lines, _, _ := BreakParagraph(p, 50, BlockState{}, m, 1.2)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if len(lines[0].Spans) != 1 || lines[0].Spans[0].Text != "supercalifragilistic" {
		t.Fatalf("over-wide token must sit alone on its line: %#v", lines[0].Spans)
	}
	if lines[0].Width <= 50 {
		t.Fatalf("over-wide token should overflow, width=%g", lines[0].Width)
	}
	if got := lines[1].Spans[0].Text; got != "ok" {
		t.Fatalf("second line should start with ok, got %q", got)
	}
}

func TestBreakParagraphZeroWidthTerminates(t *testing.T) {
	m := stubMeasurer{factor: 1}
	p := para("p1", run("r1", "a b c d", 10))
	lines, _, _ := BreakParagraph(p, 0, BlockState{}, m, 1.2)
	// 每个 token 独占一行，空白在折行处被吸收
	if len(lines) != 4 {
		t.Fatalf("expected one line per word, got %d", len(lines))
	}
}

func TestBreakParagraphHardNewlines(t *testing.T) {
	m := stubMeasurer{factor: 1}
	p := para("p1", run("r1", "foo\n\nbar", 10))
	lines, st, _ := BreakParagraph(p, 1000, BlockState{}, m, 1.2)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines including blank, got %d", len(lines))
	}
	if len(lines[1].Spans) != 0 {
		t.Fatalf("expected middle line to be blank, got %#v", lines[1].Spans)
	}
	if !eq(st.Height, 3*12) {
		t.Fatalf("blank line must advance the cursor: height=%g", st.Height)
	}
}

func TestBreakParagraphTrailingNewlineNoExtraLine(t *testing.T) {
	m := stubMeasurer{factor: 1}
	lines, _, _ := BreakParagraph(para("p1", run("r1", "foo\n", 10)), 1000, BlockState{}, m, 1.2)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
}

// 行推进量取行内最大字号，而不是最后一个 token 的字号。
func TestBreakParagraphAdvanceUsesMaxFontOnLine(t *testing.T) {
	m := stubMeasurer{factor: 0.5}
	p := para("p1", run("r1", "big ", 20), run("r2", "small", 10))
	lines, st, _ := BreakParagraph(p, 1000, BlockState{}, m, 1.2)
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d", len(lines))
	}
	if !eq(lines[0].Advance, 24) || !eq(st.Height, 24) {
		t.Fatalf("advance should be 20*1.2, got line=%g state=%g", lines[0].Advance, st.Height)
	}
	last := lines[0].Spans[len(lines[0].Spans)-1]
	if last.RunID != "r2" || !eq(last.BBox.Height(), 12) {
		t.Fatalf("span keeps its own run size: %#v", last)
	}
}

func TestBreakParagraphWhitespaceSpansPositioned(t *testing.T) {
	m := stubMeasurer{factor: 1}
	lines, _, _ := BreakParagraph(para("p1", run("r1", "ab cd", 10)), 1000, BlockState{X0: 5}, m, 1.2)
	spans := lines[0].Spans
	if len(spans) != 3 || !spans[1].Whitespace {
		t.Fatalf("whitespace token should be emitted as span: %#v", spans)
	}
	if !eq(spans[1].BBox.X0, 25) || !eq(spans[1].BBox.X1, 35) {
		t.Fatalf("whitespace span geometry wrong: %#v", spans[1].BBox)
	}
	if !eq(spans[2].BBox.X0, 35) {
		t.Fatalf("cursor must advance by whitespace width: %#v", spans[2].BBox)
	}
}

func TestBreakParagraphAllWhitespace(t *testing.T) {
	m := stubMeasurer{factor: 1}
	lines, st, _ := BreakParagraph(para("p1", run("r1", "   ", 10)), 100, BlockState{}, m, 1.2)
	if len(lines) != 1 || !eq(st.Height, 12) {
		t.Fatalf("whitespace paragraph still advances the cursor: lines=%d height=%g", len(lines), st.Height)
	}
}

func TestBreakParagraphEmpty(t *testing.T) {
	lines, st, _ := BreakParagraph(Paragraph{ID: "p0"}, 100, BlockState{Y0: 7}, stubMeasurer{factor: 1}, 1.2)
	if lines != nil || st.Height != 0 || st.CursorY() != 7 {
		t.Fatalf("empty paragraph must produce nothing: lines=%v state=%+v", lines, st)
	}
}

func TestBreakParagraphReportsDegradedOnce(t *testing.T) {
	m := stubMeasurer{factor: 1, degraded: true}
	_, _, warnings := BreakParagraph(para("p1", run("r1", "a b c", 10)), 100, BlockState{}, m, 1.2)
	if len(warnings) != 1 {
		t.Fatalf("expected one deduplicated warning, got %v", warnings)
	}
}

package layout

import (
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokenWord tokenKind = iota
	tokenSpace
	tokenNewline
)

type token struct {
	text string
	kind tokenKind
}

// tokenize 按空白边界切分文本，空白串保留为独立 token，换行单独成 token。
func tokenize(s string) []token {
	var tokens []token
	var builder strings.Builder
	lastWasSpace := false
	flush := func() {
		if builder.Len() == 0 {
			return
		}
		kind := tokenWord
		if lastWasSpace {
			kind = tokenSpace
		}
		tokens = append(tokens, token{text: builder.String(), kind: kind})
		builder.Reset()
	}

	for _, r := range s {
		if r == '\r' {
			continue
		}
		if r == '\n' {
			flush()
			tokens = append(tokens, token{text: "\n", kind: tokenNewline})
			continue
		}
		isSpace := unicode.IsSpace(r)
		if builder.Len() > 0 && lastWasSpace != isSpace {
			flush()
		}
		lastWasSpace = isSpace
		builder.WriteRune(r)
	}
	flush()
	return tokens
}

// Phase 是文本块排版状态机的阶段。
type Phase int

const (
	PhasePlanned Phase = iota
	PhaseBroken
	PhasePositioned
)

func (p Phase) String() string {
	switch p {
	case PhasePlanned:
		return "planned"
	case PhaseBroken:
		return "broken"
	case PhasePositioned:
		return "positioned"
	default:
		return "unknown"
	}
}

// BlockState 是在同一块的各段落之间传递的排版状态：
// 所有段落共享一个纵向游标，依次向下堆叠。
type BlockState struct {
	Phase  Phase
	X0     float64
	Y0     float64
	Width  float64
	Height float64 // 已累计的行推进量，CursorY == Y0 + Height
	Lines  int
	Spans  []PositionedSpan
}

// CursorY 返回下一行的顶部位置。
func (s BlockState) CursorY() float64 { return s.Y0 + s.Height }

// Line 是一行已定位的 token。
type Line struct {
	Spans   []PositionedSpan
	Width   float64
	Advance float64 // 本行的纵向推进量：行内最大字号 × 行高系数
}

// BreakParagraph 对段落做贪心折行，返回行列表与推进后的块状态。
// 行宽仅在单个不可拆分 token 独占一行时被突破。
// 第三个返回值是本段测量中出现的降级原因（已去重）。
// 在非空行上放不下的空白 token 被折行吸收，不产生 span；
// 因此把 span 文本按序拼接并不总能还原输入。
func BreakParagraph(p Paragraph, lineWidth float64, st BlockState, m Measurer, lineHeightFactor float64) ([]Line, BlockState, []string) {
	if p.Empty() {
		return nil, st, nil
	}
	if lineHeightFactor <= 0 {
		lineHeightFactor = DefaultLineHeightFactor
	}

	var (
		lines    []Line
		warnings []string
		cur      Line
		maxSize  float64
	)
	x := st.X0
	limit := st.X0 + lineWidth

	emit := func(fallbackSize float64) {
		size := maxSize
		if size <= 0 {
			size = fallbackSize
		}
		cur.Advance = size * lineHeightFactor
		lines = append(lines, cur)
		st.Spans = append(st.Spans, cur.Spans...)
		st.Height += cur.Advance
		st.Lines++
		cur = Line{}
		maxSize = 0
		x = st.X0
	}

	for _, run := range p.Runs {
		for _, tok := range tokenize(run.Text) {
			if tok.kind == tokenNewline {
				emit(run.Size)
				continue
			}
			meas := m.Measure(tok.text, run.Font, run.Size)
			if meas.Degraded {
				warnings = appendUnique(warnings, meas.Reason)
			}
			w := meas.Width
			if len(cur.Spans) > 0 && x+w > limit+fitEpsilon {
				emit(run.Size)
				if tok.kind == tokenSpace {
					// 折行处的空白由换行吸收
					continue
				}
			}
			top := st.CursorY()
			cur.Spans = append(cur.Spans, PositionedSpan{
				Text:       tok.text,
				RunID:      run.ID,
				Font:       run.Font,
				Size:       run.Size,
				Color:      run.Color,
				Bold:       run.Bold,
				Italic:     run.Italic,
				Whitespace: tok.kind == tokenSpace,
				BBox: Rect{
					X0: x,
					Y0: top,
					X1: x + w,
					Y1: top + run.Size*lineHeightFactor,
				},
			})
			x += w
			cur.Width = x - st.X0
			if run.Size > maxSize {
				maxSize = run.Size
			}
		}
	}
	if len(cur.Spans) > 0 {
		emit(0)
	}
	return lines, st, warnings
}

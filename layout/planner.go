package layout

import (
	"math"
	"strings"
)

// Decision 描述块宽协商的结果。
type Decision int

const (
	// DecisionKeep 文本在原宽度内即可排下。
	DecisionKeep Decision = iota
	// DecisionExpand 将块扩展到最宽行所需的宽度。
	DecisionExpand
	// DecisionClamp 块宽截断到上限，由折行吸收剩余文本。
	DecisionClamp
	// DecisionDegenerate 原宽与可用宽度都不为正，块无法排版。
	DecisionDegenerate
)

func (d Decision) String() string {
	switch d {
	case DecisionKeep:
		return "keep"
	case DecisionExpand:
		return "expand"
	case DecisionClamp:
		return "clamp"
	case DecisionDegenerate:
		return "degenerate"
	default:
		return "unknown"
	}
}

// Plan 是一个块的排版宽度决策，对块内全部段落统一生效。
type Plan struct {
	Width    float64
	Ideal    float64
	Original float64
	Ceiling  float64
	Decision Decision
}

// IdealLine 返回段落按硬换行切分后最宽的一行及其宽度。
// 每行以段落首个 run 的样式为代表进行测量。
func IdealLine(p Paragraph, m Measurer) (float64, string, Measurement) {
	if p.Empty() {
		return 0, "", Ok(0)
	}
	rep := p.Runs[0]
	text := strings.ReplaceAll(p.Text(), "\r", "")
	var (
		widest     float64
		widestLine string
		degraded   Measurement
	)
	for _, line := range strings.Split(text, "\n") {
		meas := m.Measure(line, rep.Font, rep.Size)
		if meas.Degraded && !degraded.Degraded {
			degraded = meas
		}
		if meas.Width > widest {
			widest = meas.Width
			widestLine = line
		}
	}
	degraded.Width = widest
	return widest, widestLine, degraded
}

// PlanWidth 计算块的统一折行宽度：
// 最宽行不超过原宽时保持原宽；不超过上限（含容差）时扩展到最宽行；否则截断到上限。
// 上限取 max(原宽, 可用宽度)，保证块永远不会比原始区域更窄。
func PlanWidth(b Block, m Measurer, tolerance float64) (Plan, []string) {
	original := b.BBox.Width()
	plan := Plan{
		Original: original,
		Ceiling:  math.Max(original, b.AvailableWidth),
	}
	var warnings []string
	for _, p := range b.Paragraphs {
		if p.Empty() {
			continue
		}
		w, _, meas := IdealLine(p, m)
		if meas.Degraded {
			warnings = appendUnique(warnings, meas.Reason)
		}
		if w > plan.Ideal {
			plan.Ideal = w
		}
	}

	switch {
	case plan.Ceiling <= 0:
		plan.Decision = DecisionDegenerate
		plan.Width = original
	case plan.Ideal <= original:
		plan.Decision = DecisionKeep
		plan.Width = original
	case plan.Ideal <= plan.Ceiling+tolerance:
		plan.Decision = DecisionExpand
		plan.Width = plan.Ideal
	default:
		plan.Decision = DecisionClamp
		plan.Width = plan.Ceiling
	}
	return plan, warnings
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}

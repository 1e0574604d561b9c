package layout

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// Engine 串联块宽协商与折行，为每个文本块生成最终定位结果。
type Engine struct {
	opts Options
}

// NewEngine 创建排版引擎；未设置的选项取默认值。
func NewEngine(opts Options) *Engine {
	return &Engine{opts: opts.withDefaults()}
}

// Layout 对所有页面的所有文本块排版。输入不会被修改。
// 块之间相互独立，按 Options.Workers 并发处理，结果按块在输入中的位置回填。
// ctx 被取消时丢弃全部部分结果并返回 ctx.Err()。
func (e *Engine) Layout(ctx context.Context, pages []Page) (*Result, error) {
	if p, ok := e.opts.Measurer.(Preparer); ok {
		if err := p.Prepare(FontNames(pages)); err != nil {
			return nil, fmt.Errorf("layout: 准备字体失败: %w", err)
		}
	}

	out := ClonePages(pages)
	type job struct{ page, block int }
	var jobs []job
	for pi := range out {
		for bi := range out[pi].Blocks {
			jobs = append(jobs, job{pi, bi})
		}
	}

	degradations := make([][]Degradation, len(jobs))
	sem := make(chan struct{}, e.opts.Workers)
	var wg sync.WaitGroup
	for i, j := range jobs {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		go func(idx int, j job) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			if ctx.Err() != nil {
				return
			}
			block, degs := e.LayoutBlock(out[j.page].Blocks[j.block])
			for k := range degs {
				degs[k].Page = out[j.page].Number
			}
			out[j.page].Blocks[j.block] = block
			degradations[idx] = degs
		}(i, j)
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{Pages: out}
	for _, degs := range degradations {
		res.Degradations = append(res.Degradations, degs...)
	}
	e.opts.Logger.Info("layout finished",
		"pages", len(out),
		"blocks", len(jobs),
		"degradations", len(res.Degradations))
	return res, nil
}

// LayoutBlock 对单个块执行 Planned → Broken → Positioned，返回新块，不修改入参。
func (e *Engine) LayoutBlock(b Block) (Block, []Degradation) {
	log := e.opts.Logger.With("block", b.ID)
	out := b.clone()
	var degs []Degradation
	report := func(kind DegradationKind, reason string) {
		degs = append(degs, Degradation{Block: b.ID, Kind: kind, Reason: reason})
		log.Warn("layout degraded", "kind", string(kind), "reason", reason)
	}

	work := out
	work.Paragraphs = work.Paragraphs[:0:0]
	for _, p := range out.Paragraphs {
		if p.Empty() {
			report(DegradedMalformed, fmt.Sprintf("段落 %s 没有任何 run，已跳过", p.ID))
			continue
		}
		runs := p.Runs[:0:0]
		for _, r := range p.Runs {
			if r.Size <= 0 {
				report(DegradedMalformed, fmt.Sprintf("run %s 字号非正 (%g)，已跳过", r.ID, r.Size))
				continue
			}
			runs = append(runs, r)
		}
		if len(runs) == 0 {
			continue
		}
		p.Runs = runs
		work.Paragraphs = append(work.Paragraphs, p)
	}

	out.Paragraphs = nil
	out.Spans = nil
	if len(work.Paragraphs) == 0 {
		final := Rect{X0: b.BBox.X0, Y0: b.BBox.Y0, X1: b.BBox.X0 + math.Max(b.BBox.Width(), 0), Y1: b.BBox.Y0}
		out.FinalBBox = &final
		return out, degs
	}

	plan, warnings := PlanWidth(work, e.opts.Measurer, e.opts.WidthTolerance)
	for _, w := range warnings {
		report(DegradedMeasurement, w)
	}
	if plan.Decision == DecisionDegenerate {
		report(DegradedGeometry, fmt.Sprintf("块宽 %g 且无可用宽度，保留原始区域", plan.Original))
		final := b.BBox
		out.FinalBBox = &final
		return out, degs
	}

	if plan.Decision == DecisionClamp && e.opts.ShrinkToFit {
		e.shrinkParagraphs(work.Paragraphs, plan.Width)
	}

	st := BlockState{
		Phase: PhasePlanned,
		X0:    b.BBox.X0,
		Y0:    b.BBox.Y0,
		Width: plan.Width,
	}
	for _, p := range work.Paragraphs {
		var lineWarnings []string
		_, st, lineWarnings = BreakParagraph(p, plan.Width, st, e.opts.Measurer, e.opts.LineHeightFactor)
		for _, w := range lineWarnings {
			if !containsDegradation(degs, w) {
				report(DegradedMeasurement, w)
			}
		}
	}
	st.Phase = PhaseBroken

	final := Rect{X0: st.X0, Y0: st.Y0, X1: st.X0 + st.Width, Y1: st.Y0 + st.Height}
	out.FinalBBox = &final
	out.Spans = st.Spans
	st.Phase = PhasePositioned
	log.Debug("block positioned",
		"decision", plan.Decision.String(),
		"ideal", plan.Ideal,
		"width", plan.Width,
		"height", st.Height,
		"lines", st.Lines,
		"phase", st.Phase.String())
	return out, degs
}

// shrinkParagraphs 就地缩放工作副本中超宽段落的字号。
func (e *Engine) shrinkParagraphs(paras []Paragraph, width float64) {
	box := Rect{X1: width}
	for i, p := range paras {
		ideal, line, _ := IdealLine(p, e.opts.Measurer)
		if ideal <= width {
			continue
		}
		base := p.Runs[0].Size
		fitted := FitSize(line, box, base, e.opts.Fit)
		if fitted >= base {
			continue
		}
		scale := fitted / base
		runs := append([]StyledRun(nil), p.Runs...)
		for k := range runs {
			runs[k].Size *= scale
		}
		paras[i].Runs = runs
		e.opts.Logger.Debug("paragraph font reduced", "paragraph", p.ID, "from", base, "to", fitted)
	}
}

func containsDegradation(degs []Degradation, reason string) bool {
	for _, d := range degs {
		if d.Kind == DegradedMeasurement && d.Reason == reason {
			return true
		}
	}
	return false
}

// FontNames 收集页面中出现的全部字体名，按字典序返回。
func FontNames(pages []Page) []string {
	set := map[string]struct{}{}
	for _, p := range pages {
		for _, b := range p.Blocks {
			for _, para := range b.Paragraphs {
				for _, r := range para.Runs {
					set[r.Font] = struct{}{}
				}
			}
		}
	}
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

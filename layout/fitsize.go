package layout

// FitConstraints 限制字号缩小的幅度。
// MaxReductionPercent 为 0 时不允许缩小；MinSize 为绝对下限（pt），<=0 表示不限制。
type FitConstraints struct {
	MinSize             float64 `json:"minSize" yaml:"min_font_size"`
	MaxReductionPercent float64 `json:"maxReductionPercent" yaml:"max_font_reduction_percent"`
}

// FitSize 估算让单行文本放进 box 宽度所需的字号。
// 估算宽度采用字符数启发式（runes × size × 0.6），比逐字形测量便宜，
// 用于正式排版之前的快速预估。
func FitSize(text string, box Rect, originalSize float64, c FitConstraints) float64 {
	if originalSize <= 0 {
		return originalSize
	}
	available := box.Width()
	if available <= 0 {
		return originalSize
	}
	estimated := EstimateWidth(text, originalSize, AvgCharWidthFactor)
	if estimated <= available {
		return originalSize
	}

	size := originalSize * (available / estimated)
	pct := c.MaxReductionPercent
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	if floor := originalSize * (1 - pct/100); size < floor {
		size = floor
	}
	if c.MinSize > 0 && size < c.MinSize {
		size = c.MinSize
	}
	if size > originalSize {
		size = originalSize
	}
	return size
}

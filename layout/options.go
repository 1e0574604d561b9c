package layout

import "log/slog"

// Measurement 是测量的标记结果：Degraded 为 true 时 Width 来自估算。
type Measurement struct {
	Width    float64
	Degraded bool
	Reason   string
}

// Ok 构造精确测量结果。
func Ok(width float64) Measurement { return Measurement{Width: width} }

// Degraded 构造降级（估算）测量结果。
func Degraded(width float64, reason string) Measurement {
	return Measurement{Width: width, Degraded: true, Reason: reason}
}

// Measurer 返回字符串在给定字体与字号（pt）下的前进宽度（pt）。
// 实现必须对相同输入给出确定结果，且不得向调用方返回失败。
type Measurer interface {
	Measure(text string, font string, size float64) Measurement
}

// Preparer 是可选能力：在排版开始前一次性解析全部字体。
// 返回错误表示无法测量任何文本（例如系统中没有任何字体）。
type Preparer interface {
	Prepare(fonts []string) error
}

// EstimateMeasurer 不依赖字体数据，总是返回字符数估算值。
type EstimateMeasurer struct {
	Factor float64
}

func (e EstimateMeasurer) Measure(text string, font string, size float64) Measurement {
	return Degraded(EstimateWidth(text, size, e.Factor), "no font backend")
}

// Options 配置排版引擎。
type Options struct {
	Measurer Measurer
	Logger   *slog.Logger

	LineHeightFactor float64 // 默认 1.2
	WidthTolerance   float64 // <=0 时为 1.0
	Workers          int     // <=0 时为 1

	// ShrinkToFit 在块宽被截断时按 FitSize 缩小超宽段落的字号。
	ShrinkToFit bool
	Fit         FitConstraints
}

func (o Options) withDefaults() Options {
	if o.Measurer == nil {
		o.Measurer = EstimateMeasurer{}
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.LineHeightFactor <= 0 {
		o.LineHeightFactor = DefaultLineHeightFactor
	}
	if o.WidthTolerance <= 0 {
		o.WidthTolerance = DefaultWidthTolerance
	}
	if o.Workers <= 0 {
		o.Workers = 1
	}
	return o
}

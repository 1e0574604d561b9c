package layout

// 该文件定义排版输入/输出的数据模型：页面 → 文本块 → 段落 → 样式片段（run），
// 排版后文本块获得 FinalBBox 与扁平的 PositionedSpan 列表。坐标单位均为 pt。

// Rect 是以左上角为原点的矩形 (x0,y0)-(x1,y1)。
type Rect struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

func (r Rect) Width() float64  { return r.X1 - r.X0 }
func (r Rect) Height() float64 { return r.Y1 - r.Y0 }

// StyledRun 是共享同一字体、字号、颜色与字重的最大文本片段。
type StyledRun struct {
	ID     string  `json:"id"`
	Text   string  `json:"text"`
	Font   string  `json:"font"`
	Size   float64 `json:"size"`
	Color  string  `json:"color,omitempty"` // #rrggbb
	Bold   bool    `json:"bold,omitempty"`
	Italic bool    `json:"italic,omitempty"`
}

// Paragraph 是一个逻辑排版单元。列表相关字段不参与排版，只为下游保留。
type Paragraph struct {
	ID         string      `json:"id"`
	Runs       []StyledRun `json:"runs"`
	IsListItem bool        `json:"isListItem,omitempty"`
	ListMarker string      `json:"listMarker,omitempty"`
	TextIndent float64     `json:"textIndent,omitempty"`
}

// Block 是从页面提取出的原始文本区域，也是独立排版的最小单位。
type Block struct {
	ID             string      `json:"id"`
	BBox           Rect        `json:"bbox"`
	AvailableWidth float64     `json:"availableWidth"`
	Alignment      int         `json:"alignment,omitempty"`
	Paragraphs     []Paragraph `json:"paragraphs,omitempty"`

	// 排版结果
	FinalBBox *Rect            `json:"finalBBox,omitempty"`
	Spans     []PositionedSpan `json:"spans,omitempty"`
}

// PositionedSpan 是一个已定位的词或空白 token，继承其所属 run 的样式。
type PositionedSpan struct {
	Text       string  `json:"text"`
	RunID      string  `json:"runId"`
	Font       string  `json:"font"`
	Size       float64 `json:"size"`
	Color      string  `json:"color,omitempty"`
	Bold       bool    `json:"bold,omitempty"`
	Italic     bool    `json:"italic,omitempty"`
	Whitespace bool    `json:"whitespace,omitempty"`
	BBox       Rect    `json:"bbox"`
}

// Page 只是文本块的分组容器；块之间不做跨块重排。
type Page struct {
	Number int     `json:"number"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Blocks []Block `json:"blocks"`
}

// Result 保存一次排版的页面结果与降级事件。
type Result struct {
	Pages        []Page        `json:"pages"`
	Degradations []Degradation `json:"degradations,omitempty"`
}

// DegradationKind 区分可恢复的降级类型。
type DegradationKind string

const (
	DegradedMeasurement DegradationKind = "measurement"
	DegradedMalformed   DegradationKind = "malformed"
	DegradedGeometry    DegradationKind = "geometry"
)

// Degradation 记录一次被局部恢复、不影响调用方的异常情况。
type Degradation struct {
	Page   int             `json:"page"`
	Block  string          `json:"block"`
	Kind   DegradationKind `json:"kind"`
	Reason string          `json:"reason"`
}

// Empty 判断段落是否没有任何 run。
func (p Paragraph) Empty() bool { return len(p.Runs) == 0 }

// Text 拼接段落中所有 run 的文本。
func (p Paragraph) Text() string {
	n := 0
	for _, r := range p.Runs {
		n += len(r.Text)
	}
	buf := make([]byte, 0, n)
	for _, r := range p.Runs {
		buf = append(buf, r.Text...)
	}
	return string(buf)
}

// clone 深拷贝块，保证排版不改动调用方持有的数据。
func (b Block) clone() Block {
	out := b
	if b.FinalBBox != nil {
		fb := *b.FinalBBox
		out.FinalBBox = &fb
	}
	if b.Paragraphs != nil {
		out.Paragraphs = make([]Paragraph, len(b.Paragraphs))
		for i, p := range b.Paragraphs {
			out.Paragraphs[i] = p
			if p.Runs != nil {
				out.Paragraphs[i].Runs = append([]StyledRun(nil), p.Runs...)
			}
		}
	}
	if b.Spans != nil {
		out.Spans = append([]PositionedSpan(nil), b.Spans...)
	}
	return out
}

func (p Page) clone() Page {
	out := p
	if p.Blocks != nil {
		out.Blocks = make([]Block, len(p.Blocks))
		for i, b := range p.Blocks {
			out.Blocks[i] = b.clone()
		}
	}
	return out
}

// ClonePages 深拷贝页面列表。
func ClonePages(pages []Page) []Page {
	if pages == nil {
		return nil
	}
	out := make([]Page, len(pages))
	for i, p := range pages {
		out[i] = p.clone()
	}
	return out
}

package canvasrenderer

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/reflow/fonts"
	"github.com/ByLCY/reflow/layout"
	"github.com/ByLCY/reflow/renderer"
)

const outlineWidth = 0.2

// Renderer measures glyph advances and draws proof pages via github.com/tdewolff/canvas.
type Renderer struct {
	resolver *fonts.Resolver
	logger   *slog.Logger
	outline  bool
	avgChar  float64
	readFile func(string) ([]byte, error)

	mu       sync.RWMutex
	families map[string]*familyEntry // by requested font name
	faces    map[faceKey]*faceEntry
	widths   map[measureKey]float64
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ layout.Measurer   = (*Renderer)(nil)
	_ layout.Preparer   = (*Renderer)(nil)
)

type familyEntry struct {
	family *canvas.FontFamily
	ref    fonts.FontRef
	err    error
}

type faceKey struct {
	font  string
	size  float64
	style canvas.FontStyle
}

// canvas 的 FontFace 内部带有字形缓存，同一字体面的测量需要串行。
type faceEntry struct {
	mu   sync.Mutex
	face *canvas.FontFace
}

type measureKey struct {
	text string
	font string
	size float64
}

// Options configures the canvas renderer.
type Options struct {
	Logger *slog.Logger
	// Outline draws the final bbox of every block on proof pages.
	Outline bool
	// AvgCharWidth is the per-character width factor (em) used when a font
	// cannot be measured. Zero means layout.AvgCharWidthFactor.
	AvgCharWidth float64
}

// NewRenderer creates a renderer that resolves font names through resolver.
func NewRenderer(resolver *fonts.Resolver, opts Options) *Renderer {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.AvgCharWidth <= 0 {
		opts.AvgCharWidth = layout.AvgCharWidthFactor
	}
	return &Renderer{
		resolver: resolver,
		logger:   opts.Logger,
		outline:  opts.Outline,
		avgChar:  opts.AvgCharWidth,
		readFile: os.ReadFile,
		families: map[string]*familyEntry{},
		faces:    map[faceKey]*faceEntry{},
		widths:   map[measureKey]float64{},
	}
}

// Prepare 在排版开始前解析并加载全部字体。
// 单个字体加载失败只记录警告；系统中没有任何字体时返回 fonts.ErrNoFonts。
func (r *Renderer) Prepare(names []string) error {
	if r.resolver == nil || r.resolver.Catalog().Len() == 0 {
		return fonts.ErrNoFonts
	}
	for _, name := range names {
		entry := r.family(name)
		if errors.Is(entry.err, fonts.ErrNoFonts) {
			return entry.err
		}
	}
	return nil
}

// Measure 返回 text 在 font/size（pt）下的前进宽度（pt）。
// 字体不可用时按字符数 × AvgCharWidth 估算并标记为降级，不会返回失败。
// 不区分粗体/斜体：测量接口不携带样式，宽度一律取常规字面。
func (r *Renderer) Measure(text, font string, size float64) layout.Measurement {
	if text == "" || size <= 0 {
		return layout.Ok(0)
	}
	key := measureKey{text: text, font: font, size: size}
	r.mu.RLock()
	w, ok := r.widths[key]
	r.mu.RUnlock()
	if ok {
		return layout.Ok(w)
	}

	fe, err := r.face(font, size, canvas.FontRegular)
	if err != nil {
		return layout.Degraded(
			layout.EstimateWidth(text, size, r.avgChar),
			fmt.Sprintf("font %q unavailable: %v", font, err))
	}
	fe.mu.Lock()
	w = fe.face.TextWidth(text) * layout.MmToPt
	fe.mu.Unlock()

	r.mu.Lock()
	r.widths[key] = w
	r.mu.Unlock()
	return layout.Ok(w)
}

// Render 将排版结果绘制为 PDF 校样：每个非空白 span 按其 bbox 放置。
func (r *Renderer) Render(pages []layout.Page) ([]byte, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}

	var buf bytes.Buffer
	writer := pdf.New(&buf, layout.ToMM(pages[0].Width), layout.ToMM(pages[0].Height), nil)
	writer.SetInfo("reflow proof", "", "", "", "reflow")
	for i, page := range pages {
		w, h := layout.ToMM(page.Width), layout.ToMM(page.Height)
		if i > 0 {
			writer.NewPage(w, h)
		}
		c := canvas.New(w, h)
		ctx := canvas.NewContext(c)
		ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与排版结果保持左上角为原点

		if err := r.drawPage(ctx, page); err != nil {
			return nil, fmt.Errorf("渲染第 %d 页失败: %w", page.Number, err)
		}
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) drawPage(ctx *canvas.Context, page layout.Page) error {
	for _, b := range page.Blocks {
		if r.outline && b.FinalBBox != nil {
			r.drawOutline(ctx, *b.FinalBBox)
		}
		for _, span := range b.Spans {
			if span.Whitespace || strings.TrimSpace(span.Text) == "" {
				continue
			}
			if err := r.drawSpan(ctx, span); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Renderer) drawSpan(ctx *canvas.Context, span layout.PositionedSpan) error {
	entry := r.family(span.Font)
	if errors.Is(entry.err, fonts.ErrNoFonts) {
		return entry.err
	}
	if entry.err != nil {
		// 加载失败已在 family 中告警，校样上留空
		return nil
	}
	// 族内只加载了常规字面，粗体/斜体交给 canvas 以常规字形合成；
	// 合成粗体略宽于测量宽度，校样上可能稍有溢出。
	// 创建字体面使用 pt，其余坐标在画布上统一为 mm
	face := entry.family.Face(span.Size, parseColor(span.Color), spanStyle(span), canvas.FontNormal)
	line := canvas.NewTextLine(face, span.Text, canvas.Left)
	// 基线位置：行顶部加上字体上升部（Ascent，mm）
	baseline := layout.ToMM(span.BBox.Y0) + face.Metrics().Ascent
	ctx.DrawText(layout.ToMM(span.BBox.X0), baseline, line)
	return nil
}

// drawOutline 绘制块的最终区域
func (r *Renderer) drawOutline(ctx *canvas.Context, rc layout.Rect) {
	ctx.SetFillColor(color.RGBA{0, 0, 0, 0})
	ctx.SetStrokeColor(canvas.Hex("#c0c0c0"))
	ctx.SetStrokeWidth(outlineWidth)
	ctx.DrawPath(layout.ToMM(rc.X0), layout.ToMM(rc.Y0),
		canvas.Rectangle(layout.ToMM(rc.Width()), layout.ToMM(rc.Height())))
}

// face 返回用于测量的黑色字体面，按字体名、字号与样式缓存。
func (r *Renderer) face(font string, size float64, style canvas.FontStyle) (*faceEntry, error) {
	entry := r.family(font)
	if entry.err != nil {
		return nil, entry.err
	}
	key := faceKey{font: font, size: size, style: style}
	r.mu.RLock()
	fe, ok := r.faces[key]
	r.mu.RUnlock()
	if ok {
		return fe, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if fe, ok := r.faces[key]; ok {
		return fe, nil
	}
	fe = &faceEntry{face: entry.family.Face(size, canvas.Black, style, canvas.FontNormal)}
	r.faces[key] = fe
	return fe, nil
}

// family 解析并加载字体族；结果（包括失败）按请求的字体名缓存，失败只告警一次。
func (r *Renderer) family(font string) *familyEntry {
	r.mu.RLock()
	entry, ok := r.families[font]
	r.mu.RUnlock()
	if ok {
		return entry
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.families[font]; ok {
		return entry
	}
	entry = r.loadFamily(font)
	r.families[font] = entry
	if entry.err != nil {
		r.logger.Warn("font unavailable, falling back to estimated widths",
			"font", font, "err", entry.err)
	}
	return entry
}

// loadFamily 只把解析到的字体文件作为常规字面载入，不按样式另行解析。
func (r *Renderer) loadFamily(font string) *familyEntry {
	if r.resolver == nil {
		return &familyEntry{err: fonts.ErrNoFonts}
	}
	ref, res, err := r.resolver.Resolve(font)
	if err != nil {
		return &familyEntry{err: err}
	}
	data, err := r.readFile(ref.Path)
	if err != nil {
		return &familyEntry{ref: ref, err: fmt.Errorf("读取字体 %s 失败: %w", ref.Path, err)}
	}
	family := canvas.NewFontFamily(ref.Name)
	if err := family.LoadFont(data, ref.Index, canvas.FontRegular); err != nil {
		return &familyEntry{ref: ref, err: fmt.Errorf("解析字体 %s 失败: %w", ref.Path, err)}
	}
	r.logger.Debug("font loaded", "font", font, "file", ref.Path, "strategy", res.Strategy)
	return &familyEntry{family: family, ref: ref}
}

func spanStyle(span layout.PositionedSpan) canvas.FontStyle {
	style := canvas.FontRegular
	if span.Bold {
		style = canvas.FontBold
	}
	if span.Italic {
		style |= canvas.FontItalic
	}
	return style
}

// parseColor 解析 #rrggbb，无法解析时使用黑色。
func parseColor(s string) color.Color {
	s = strings.TrimSpace(s)
	if len(s) != 7 || s[0] != '#' {
		return canvas.Black
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return canvas.Black
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

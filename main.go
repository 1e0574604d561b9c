// Command reflow lays translated text back into the regions extracted from a
// paginated document.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"

	"github.com/ByLCY/reflow/config"
	"github.com/ByLCY/reflow/fonts"
	"github.com/ByLCY/reflow/layout"
	"github.com/ByLCY/reflow/logging"
	canvasrenderer "github.com/ByLCY/reflow/renderer/canvas"
	"github.com/ByLCY/reflow/translation"
)

// Globals are flags shared by every command.
type Globals struct {
	Config   string `short:"c" help:"YAML 配置文件路径" type:"path" default:"reflow.yaml"`
	LogLevel string `name:"log-level" help:"覆盖配置中的日志级别 (debug/info/warn/error)"`
}

// CLI defines the command-line interface for reflow.
type CLI struct {
	Globals

	Layout      LayoutCmd      `cmd:"" help:"替换译文并重新排版"`
	Export      ExportCmd      `cmd:"" help:"导出待翻译的 Markdown 交换文件"`
	ImportCheck ImportCheckCmd `cmd:"" name:"import-check" help:"校验译文文件而不排版"`
	Fonts       FontsCmd       `cmd:"" help:"列出系统字体、检查缺失字体或维护替换表"`
}

// env 是一次命令执行所需的公共资源。
type env struct {
	cfg    config.Config
	logger *slog.Logger
	ctx    context.Context
}

func newEnv(g *Globals) (*env, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, err
	}
	level := cfg.Log.Level
	if g.LogLevel != "" {
		level = g.LogLevel
	}
	logging.Init(level, cfg.Log.Format, os.Stderr)
	ctx := logging.WithRunID(context.Background(), uuid.NewString())
	return &env{cfg: cfg, logger: logging.FromContext(ctx), ctx: ctx}, nil
}

func (e *env) resolver() (*fonts.Resolver, error) {
	mappings, err := fonts.LoadMappings(e.cfg.Fonts.MappingsFile)
	if err != nil {
		return nil, err
	}
	catalog := fonts.ScanSystemFonts(e.cfg.Fonts.Directories, e.logger)
	return fonts.NewResolver(catalog, fonts.ResolverOptions{
		Mappings:      mappings,
		DefaultFamily: e.cfg.Fonts.DefaultFamily,
		Logger:        e.logger,
	}), nil
}

// LayoutCmd substitutes translations and reflows every block.
type LayoutCmd struct {
	Pages        string `arg:"" help:"提取阶段输出的页面 JSON" type:"existingfile"`
	Translations string `short:"t" help:"译文交换文件（Markdown）" type:"existingfile"`
	Level        string `help:"译文校验级别 (strict/moderate/permissive)" default:"moderate"`
	Out          string `short:"o" help:"排版结果 JSON 输出路径" type:"path" default:"output/layout.json"`
	PDF          string `name:"pdf" help:"校样 PDF 输出路径" type:"path"`
	Workers      int    `help:"并发排版的块数，覆盖配置"`
}

func (c *LayoutCmd) Run(g *Globals) error {
	e, err := newEnv(g)
	if err != nil {
		return err
	}
	pages, err := layout.ReadPagesFile(c.Pages)
	if err != nil {
		return err
	}
	resolver, err := e.resolver()
	if err != nil {
		return err
	}
	r := canvasrenderer.NewRenderer(resolver, canvasrenderer.Options{
		Logger:       e.logger,
		Outline:      true,
		AvgCharWidth: e.cfg.Layout.AvgCharWidth,
	})

	var doc *translation.Document
	if c.Translations != "" {
		if doc, err = parseTranslationFile(c.Translations); err != nil {
			return err
		}
	}
	level, err := translation.ParseLevel(c.Level)
	if err != nil {
		return err
	}
	opts := engineOptions(e.cfg.Layout, r, e.logger)
	if c.Workers > 0 {
		opts.Workers = c.Workers
	}

	ctx, stop := signal.NotifyContext(e.ctx, os.Interrupt)
	defer stop()
	res, report, err := run(ctx, pages, doc, level, opts)
	if err != nil {
		return fmt.Errorf("排版失败: %w", err)
	}
	if report != nil {
		e.logger.Info("translations imported",
			"outcome", string(report.Outcome),
			"valid", len(report.Translations()),
			"missing", len(report.Missing),
			"invalid", len(report.Invalid))
	}

	if err := writeResult(res, c.Out); err != nil {
		return err
	}
	if c.PDF != "" {
		data, err := r.Render(res.Pages)
		if err != nil {
			return fmt.Errorf("渲染 PDF 失败: %w", err)
		}
		if err := writeFile(c.PDF, data); err != nil {
			return err
		}
	}
	fmt.Printf("已生成排版结果：%s（降级 %d 处）\n", c.Out, len(res.Degradations))
	return nil
}

// run 串联译文校验、替换与排版。doc 为 nil 时直接对原文排版。
func run(ctx context.Context, pages []layout.Page, doc *translation.Document, level translation.Level, opts layout.Options) (*layout.Result, *translation.Report, error) {
	var report *translation.Report
	if doc != nil {
		rep := translation.Validate(translation.ElementsFromPages(pages), doc, level)
		report = &rep
		pages, _ = layout.ApplyTranslations(pages, rep.Translations())
	}
	res, err := layout.NewEngine(opts).Layout(ctx, pages)
	if err != nil {
		return nil, report, err
	}
	return res, report, nil
}

func engineOptions(lc config.LayoutConfig, m layout.Measurer, logger *slog.Logger) layout.Options {
	return layout.Options{
		Measurer:         m,
		Logger:           logger,
		LineHeightFactor: lc.LineHeightFactor,
		WidthTolerance:   lc.WidthTolerance,
		Workers:          lc.Workers,
		ShrinkToFit:      lc.ShrinkToFit,
		Fit:              lc.FitConstraints(),
	}
}

// ExportCmd writes the markdown exchange file for translators.
type ExportCmd struct {
	Pages  string `arg:"" help:"提取阶段输出的页面 JSON" type:"existingfile"`
	Out    string `short:"o" help:"导出文件路径" type:"path" default:"output/translation.md"`
	Source string `help:"源语言" default:"auto"`
	Target string `help:"目标语言" default:"en"`
}

func (c *ExportCmd) Run(g *Globals) error {
	e, err := newEnv(g)
	if err != nil {
		return err
	}
	pages, err := layout.ReadPagesFile(c.Pages)
	if err != nil {
		return err
	}
	elements := translation.ElementsFromPages(pages)
	if err := os.MkdirAll(filepath.Dir(c.Out), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	file, err := os.Create(c.Out)
	if err != nil {
		return fmt.Errorf("无法创建导出文件 %s: %w", c.Out, err)
	}
	defer file.Close()
	if err := translation.WriteExport(file, elements, translation.ExportOptions{SourceLang: c.Source, TargetLang: c.Target}); err != nil {
		return fmt.Errorf("写入导出文件失败: %w", err)
	}
	e.logger.Info("export written", "file", c.Out, "elements", len(elements))
	fmt.Printf("已导出：%s\n", c.Out)
	return nil
}

// ImportCheckCmd validates a translation file against the extracted pages.
type ImportCheckCmd struct {
	Pages        string `arg:"" help:"提取阶段输出的页面 JSON" type:"existingfile"`
	Translations string `arg:"" help:"译文交换文件（Markdown）" type:"existingfile"`
	Level        string `help:"译文校验级别 (strict/moderate/permissive)" default:"moderate"`
}

func (c *ImportCheckCmd) Run(g *Globals) error {
	if _, err := newEnv(g); err != nil {
		return err
	}
	pages, err := layout.ReadPagesFile(c.Pages)
	if err != nil {
		return err
	}
	doc, err := parseTranslationFile(c.Translations)
	if err != nil {
		return err
	}
	level, err := translation.ParseLevel(c.Level)
	if err != nil {
		return err
	}
	report := translation.Validate(translation.ElementsFromPages(pages), doc, level)
	if err := printJSON(os.Stdout, report); err != nil {
		return err
	}
	if report.Outcome == translation.OutcomeFailed {
		return fmt.Errorf("译文校验失败")
	}
	return nil
}

// FontsCmd lists system fonts, checks document fonts and edits the override table.
type FontsCmd struct {
	Check string            `help:"检查该页面 JSON 中用到的字体是否可用" type:"existingfile"`
	Map   map[string]string `help:"新增字体替换，形如 原字体=替换字体"`
}

func (c *FontsCmd) Run(g *Globals) error {
	e, err := newEnv(g)
	if err != nil {
		return err
	}
	if len(c.Map) > 0 {
		mappings, err := fonts.LoadMappings(e.cfg.Fonts.MappingsFile)
		if err != nil {
			return err
		}
		for from, to := range c.Map {
			mappings[from] = to
		}
		if err := fonts.SaveMappings(e.cfg.Fonts.MappingsFile, mappings); err != nil {
			return fmt.Errorf("保存字体映射失败: %w", err)
		}
		e.logger.Info("font mappings saved", "file", e.cfg.Fonts.MappingsFile, "entries", len(mappings))
	}

	resolver, err := e.resolver()
	if err != nil {
		return err
	}
	if c.Check == "" {
		for _, name := range resolver.Catalog().Names() {
			fmt.Println(name)
		}
		return nil
	}
	pages, err := layout.ReadPagesFile(c.Check)
	if err != nil {
		return err
	}
	return printJSON(os.Stdout, resolver.Check(layout.FontNames(pages)))
}

func parseTranslationFile(path string) (*translation.Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("无法打开译文文件 %s: %w", path, err)
	}
	defer file.Close()
	return translation.Parse(file)
}

func writeResult(res *layout.Result, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(res, path); err != nil {
		return fmt.Errorf("输出排版 JSON 失败: %w", err)
	}
	return nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("写入文件 %s 失败: %w", path, err)
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("reflow"),
		kong.Description("将译文重新排入原文档的文本区域"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}

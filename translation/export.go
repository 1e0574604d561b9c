package translation

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ByLCY/reflow/layout"
)

// Element 是一条待翻译的原文，ID 与 run ID 一一对应。
type Element struct {
	ID           string `json:"id"`
	Page         int    `json:"page"`
	Type         string `json:"type"`
	Text         string `json:"text"`
	Translatable bool   `json:"translatable"`
}

// Translatable 判断文本是否需要翻译：仅由数字、空白与符号组成的文本保持原样。
func Translatable(text string) bool {
	for _, r := range text {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// ElementsFromPages 为页面中的每个 run 生成一个元素，按页面、块、段落、run 的顺序。
func ElementsFromPages(pages []layout.Page) []Element {
	var out []Element
	for _, p := range pages {
		for _, b := range p.Blocks {
			for _, para := range b.Paragraphs {
				kind := "paragraph"
				if para.IsListItem {
					kind = "list item"
				}
				for _, r := range para.Runs {
					text := strings.TrimSpace(r.Text)
					out = append(out, Element{
						ID:           r.ID,
						Page:         p.Number,
						Type:         kind,
						Text:         text,
						Translatable: Translatable(text),
					})
				}
			}
		}
	}
	return out
}

// ExportOptions 描述导出文件头部的语言信息。
type ExportOptions struct {
	SourceLang string
	TargetLang string
}

const exportHeader = `---
# Document translation
# Source Lang: %s
# Target Lang: %s
---

Translate every entry from %s to %s.
Keep each identifier line of the form **[ID:<id>|Page:<n>|Type:<type>]** exactly as it is,
and put the translation directly below its identifier. Reply with the entries only.

---
`

// WriteExport 写出交换文件：说明头部之后，每个可翻译元素一段。
func WriteExport(w io.Writer, elements []Element, opts ExportOptions) error {
	if opts.SourceLang == "" {
		opts.SourceLang = "auto"
	}
	if opts.TargetLang == "" {
		opts.TargetLang = "en"
	}
	title := cases.Title(language.Und)
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, exportHeader, opts.SourceLang, opts.TargetLang, opts.SourceLang, opts.TargetLang)
	for _, el := range elements {
		if !el.Translatable {
			continue
		}
		m := Marker{ID: el.ID, Page: el.Page, Type: title.String(el.Type)}
		fmt.Fprintf(bw, "\n%s\n%s\n", m, el.Text)
	}
	return bw.Flush()
}

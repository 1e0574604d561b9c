package translation

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"golang.org/x/text/unicode/norm"
)

// 交换文件格式：每条译文以 **[ID:<id>|Page:<n>|Type:<type>]** 开头，
// 其后直到下一个标记为止的全部文本都是该条目的译文。标记之前的内容（说明文字）被忽略。
var (
	exchangeLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Marker", Pattern: `\*\*\[ID:[^|\]]+\|Page:\d+\|Type:[^\]]+\]\*\*`},
		{Name: "Text", Pattern: `[^*]+`},
		{Name: "Star", Pattern: `\*`},
	})

	exchangeParser = participle.MustBuild[exchangeFile](
		participle.Lexer(exchangeLexer),
	)

	markerPattern = regexp.MustCompile(`^\*\*\[ID:([^|\]]+)\|Page:(\d+)\|Type:([^\]]+)\]\*\*$`)
	spaceRun      = regexp.MustCompile(`\s+`)
)

type exchangeFile struct {
	Preamble []string `parser:"( @Text | @Star )*"`
	Entries  []*entry `parser:"@@*"`
}

type entry struct {
	Pos    lexer.Position `parser:""`
	Marker Marker         `parser:"@Marker"`
	Body   []string       `parser:"( @Text | @Star )*"`
}

// Marker 是条目标识。
type Marker struct {
	ID   string `json:"id"`
	Page int    `json:"page"`
	Type string `json:"type"`
}

// Capture implements participle.Capture.
func (m *Marker) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("marker capture requires value")
	}
	groups := markerPattern.FindStringSubmatch(values[0])
	if groups == nil {
		return fmt.Errorf("invalid marker %q", values[0])
	}
	page, err := strconv.Atoi(groups[2])
	if err != nil {
		return err
	}
	*m = Marker{ID: strings.TrimSpace(groups[1]), Page: page, Type: strings.TrimSpace(groups[3])}
	return nil
}

// String renders the marker in exchange-file form.
func (m Marker) String() string {
	return fmt.Sprintf("**[ID:%s|Page:%d|Type:%s]**", m.ID, m.Page, m.Type)
}

// Entry 是一条解析后的译文。
type Entry struct {
	Marker
	Text string `json:"text"`
	Line int    `json:"line"`
}

// Document 是解析后的交换文件，条目保持文件中的顺序。
type Document struct {
	Entries []Entry `json:"entries"`
}

// Parse 解析交换文件。译文中的连续空白折叠为单个空格并去除首尾空白，
// 文本统一为 NFC 形式。
func Parse(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("读取译文失败: %w", err)
	}
	return ParseString(string(data))
}

// ParseString parses exchange content from a string.
func ParseString(input string) (*Document, error) {
	doc := &Document{}
	if strings.TrimSpace(input) == "" {
		return doc, nil
	}
	file, err := exchangeParser.ParseString("", input)
	if err != nil {
		return nil, fmt.Errorf("解析译文失败: %w", err)
	}
	for _, e := range file.Entries {
		doc.Entries = append(doc.Entries, Entry{
			Marker: e.Marker,
			Text:   cleanText(strings.Join(e.Body, "")),
			Line:   e.Pos.Line,
		})
	}
	return doc, nil
}

// Map 返回 ID → 译文；同一 ID 出现多次时以最后一次为准。
func (d *Document) Map() map[string]string {
	out := make(map[string]string, len(d.Entries))
	for _, e := range d.Entries {
		out[e.ID] = e.Text
	}
	return out
}

func cleanText(s string) string {
	return norm.NFC.String(strings.TrimSpace(spaceRun.ReplaceAllString(s, " ")))
}

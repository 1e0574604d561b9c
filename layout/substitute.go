package layout

import "strings"

// ApplyTranslations 在页面副本上把 run 文本替换为译文，返回副本与替换数量。
// translations 以 run ID 为键；空字符串同样会替换原文，未出现的 ID 保持原文。
// 原 run 首尾的空白会保留到译文两侧，保证相邻 run 之间的词间距不变。
// 替换发生在排版之前，原始页面不被修改。
func ApplyTranslations(pages []Page, translations map[string]string) ([]Page, int) {
	out := ClonePages(pages)
	if len(translations) == 0 {
		return out, 0
	}
	replaced := 0
	for pi := range out {
		for bi := range out[pi].Blocks {
			block := &out[pi].Blocks[bi]
			for ki := range block.Paragraphs {
				runs := block.Paragraphs[ki].Runs
				for ri := range runs {
					if text, ok := translations[runs[ri].ID]; ok {
						runs[ri].Text = keepEdgeSpace(runs[ri].Text, text)
						replaced++
					}
				}
			}
		}
	}
	return out, replaced
}

// keepEdgeSpace 把 orig 首尾的空白补回到 text 两侧（text 自带的首尾空白先去掉）。
// 空译文仍然清空整个 run。
func keepEdgeSpace(orig, text string) string {
	core := strings.TrimSpace(orig)
	text = strings.TrimSpace(text)
	if core == "" || text == "" {
		return text
	}
	i := strings.Index(orig, core)
	lead, trail := orig[:i], orig[i+len(core):]
	return lead + text + trail
}

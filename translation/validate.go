package translation

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// Level 控制译文长度校验的严格程度。
type Level string

const (
	LevelStrict     Level = "strict"
	LevelModerate   Level = "moderate"
	LevelPermissive Level = "permissive"
)

// 严格模式下允许的扩展系数区间；中等模式将其放宽一倍。
const (
	minExpansion = 0.2
	maxExpansion = 3.0
)

// ParseLevel 解析命令行或配置中的校验级别。
func ParseLevel(s string) (Level, error) {
	switch l := Level(strings.ToLower(strings.TrimSpace(s))); l {
	case LevelStrict, LevelModerate, LevelPermissive:
		return l, nil
	case "":
		return LevelModerate, nil
	default:
		return "", fmt.Errorf("未知的校验级别 %q", s)
	}
}

func (l Level) bounds() (lo, hi float64, ok bool) {
	switch l {
	case LevelStrict:
		return minExpansion, maxExpansion, true
	case LevelPermissive:
		return 0, 0, false
	default:
		return minExpansion / 2, maxExpansion * 2, true
	}
}

// Outcome 是整体校验结论。
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomePartial Outcome = "partial"
	OutcomeFailed  Outcome = "failed"
)

// Validation 是单个元素的校验结果。
type Validation struct {
	ID         string   `json:"id"`
	Original   string   `json:"original"`
	Translated string   `json:"translated"`
	Valid      bool     `json:"valid"`
	Expansion  float64  `json:"expansion"`
	Issues     []string `json:"issues,omitempty"`
	Confidence float64  `json:"confidence"`
}

// Report 汇总一次导入的校验情况。
type Report struct {
	Outcome         Outcome      `json:"outcome"`
	Total           int          `json:"total"`
	Parsed          int          `json:"parsed"`
	Missing         []string     `json:"missing,omitempty"`
	Extra           []string     `json:"extra,omitempty"`
	Invalid         []string     `json:"invalid,omitempty"`
	Validations     []Validation `json:"validations"`
	MeanExpansion   float64      `json:"meanExpansion"`
	Recommendations []string     `json:"recommendations,omitempty"`
}

// Expansion 返回译文与原文的字符数之比，原文为空时按 1 个字符计。
func Expansion(original, translated string) float64 {
	n := utf8.RuneCountInString(original)
	if n < 1 {
		n = 1
	}
	return float64(utf8.RuneCountInString(translated)) / float64(n)
}

// Validate 对照原文元素检查译文：缺失、多余以及扩展系数超限的条目。
// 只有 Translatable 的元素参与校验。
func Validate(originals []Element, doc *Document, level Level) Report {
	parsed := map[string]string{}
	if doc != nil {
		parsed = doc.Map()
	}
	lo, hi, bounded := level.bounds()

	var rep Report
	known := map[string]bool{}
	for _, el := range originals {
		if !el.Translatable || known[el.ID] {
			continue
		}
		known[el.ID] = true
		rep.Total++

		translated, present := parsed[el.ID]
		v := Validation{ID: el.ID, Original: el.Text, Translated: translated, Valid: true}
		switch {
		case translated == "":
			v.Valid = false
			v.Issues = append(v.Issues, "缺少译文")
		default:
			v.Expansion = Expansion(el.Text, translated)
			if bounded && (v.Expansion < lo || v.Expansion > hi) {
				v.Valid = false
				v.Issues = append(v.Issues, fmt.Sprintf("扩展系数 %.2f 超出 [%.2f, %.2f]", v.Expansion, lo, hi))
			}
		}
		v.Confidence = 1.0
		if !v.Valid {
			v.Confidence = 0.2
		}
		if !present {
			rep.Missing = append(rep.Missing, el.ID)
		} else if !v.Valid {
			rep.Invalid = append(rep.Invalid, el.ID)
		}
		rep.Validations = append(rep.Validations, v)
	}
	for id := range parsed {
		if !known[id] {
			rep.Extra = append(rep.Extra, id)
		}
	}
	sort.Strings(rep.Missing)
	sort.Strings(rep.Extra)
	sort.Strings(rep.Invalid)
	rep.Parsed = len(parsed)

	valid := 0
	sum, n := 0.0, 0
	for _, v := range rep.Validations {
		if v.Valid {
			valid++
		}
		if v.Translated != "" {
			sum += v.Expansion
			n++
		}
	}
	rep.MeanExpansion = 1.0
	if n > 0 {
		rep.MeanExpansion = sum / float64(n)
	}

	switch {
	case valid > 0 && len(rep.Missing) == 0 && float64(len(rep.Invalid)) < float64(rep.Total)*0.1:
		rep.Outcome = OutcomeSuccess
	case valid > 0:
		rep.Outcome = OutcomePartial
	default:
		rep.Outcome = OutcomeFailed
	}

	if rep.Outcome == OutcomeFailed {
		rep.Recommendations = append(rep.Recommendations, "导入失败，请检查译文格式与标识是否被改动")
	}
	if len(rep.Missing) > 0 {
		rep.Recommendations = append(rep.Recommendations, fmt.Sprintf("%d 个元素缺少译文", len(rep.Missing)))
	}
	if len(rep.Invalid) > 0 {
		rep.Recommendations = append(rep.Recommendations, fmt.Sprintf("%d 条译文未通过校验", len(rep.Invalid)))
	}
	return rep
}

// Translations 返回通过校验的译文（run ID → 文本），供排版前替换使用。
func (r Report) Translations() map[string]string {
	out := map[string]string{}
	for _, v := range r.Validations {
		if v.Valid && v.Translated != "" {
			out[v.ID] = v.Translated
		}
	}
	return out
}

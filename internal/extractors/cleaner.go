package extractors

import (
	"strings"

	"github.com/yuji-matsuda-cyber/company-scraper/internal/models"
)

// CleanValue 删除联系方式等尾巴并合并空白
func CleanValue(v string) string {
	return CollapseSpaces(ContactTailPattern.ReplaceAllString(v, ""))
}

// CleanRepresentative 代表者名清洗
// 在第一个非代表头衔处截断 (代表取締役 中的 取締役 不算),再删掉所有代表头衔
func CleanRepresentative(v string) string {
	if cut := firstOtherTitle(v); cut >= 0 {
		v = v[:cut]
	}
	for _, title := range RepresentativeTitles {
		v = strings.ReplaceAll(v, title, "")
	}
	return strings.TrimSpace(v)
}

// Clean 清洗所有字段
func Clean(result models.ExtractionResult) models.ExtractionResult {
	for _, f := range models.Fields {
		v := result.Get(f)
		if v == "" {
			continue
		}
		if f == models.FieldRepresentative {
			v = CleanRepresentative(v)
		}
		result.Set(f, CleanValue(v))
	}
	return result
}

// firstOtherTitle 返回第一个不属于代表头衔的非代表头衔位置,没有则返回-1
func firstOtherTitle(v string) int {
	covered := representativeSpans(v)
	cut := -1
	for _, title := range OtherTitles {
		for from := 0; from < len(v); {
			i := strings.Index(v[from:], title)
			if i < 0 {
				break
			}
			i += from
			if !insideSpan(covered, i, i+len(title)) {
				if cut < 0 || i < cut {
					cut = i
				}
				break
			}
			from = i + len(title)
		}
	}
	return cut
}

type span struct{ start, end int }

func representativeSpans(v string) []span {
	var spans []span
	for _, title := range RepresentativeTitles {
		for from := 0; from < len(v); {
			i := strings.Index(v[from:], title)
			if i < 0 {
				break
			}
			i += from
			spans = append(spans, span{i, i + len(title)})
			from = i + len(title)
		}
	}
	return spans
}

func insideSpan(spans []span, start, end int) bool {
	for _, s := range spans {
		if s.start <= start && end <= s.end {
			return true
		}
	}
	return false
}

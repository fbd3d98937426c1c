package extractors

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/width"
)

// stripPolicy 去掉所有标签,script/style 的内容一并丢弃
var stripPolicy = func() *bluemonday.Policy {
	p := bluemonday.StrictPolicy()
	p.AddSpaceWhenStrippingTag(true)
	return p
}()

// isNarrowTarget 只有这些字符会被转换成半角,其余字符保持原样
func isNarrowTarget(r rune) bool {
	if r >= '０' && r <= '９' {
		return true
	}
	switch r {
	case '（', '）', '－', '　':
		return true
	}
	return false
}

func newNormalizer() transform.Transformer {
	return transform.Chain(
		runes.If(runes.Predicate(isNarrowTarget), width.Narrow, nil),
		runes.Map(func(r rune) rune {
			if r == '‐' {
				return '-'
			}
			return r
		}),
	)
}

// Normalize 全角数字、括号、横线和全角空格转换为半角,不做其他改动
func Normalize(s string) string {
	out, _, err := transform.String(newNormalizer(), s)
	if err != nil {
		return s
	}
	return out
}

// DigitsOnly 规范化后只保留数字
func DigitsOnly(s string) string {
	s = Normalize(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CollapseSpaces 合并连续空白
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// PlainText 去除HTML标签,返回纯文本
func PlainText(markup string) string {
	return html.UnescapeString(stripPolicy.Sanitize(markup))
}

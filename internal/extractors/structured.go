package extractors

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuji-matsuda-cyber/company-scraper/internal/models"
	"golang.org/x/net/html"
)

// ExtractStructured 从 th/td、dt/dd 标签对中提取字段
// 每个字段由第一个命中的标签认领,之后命中同一字段的标签被忽略
func ExtractStructured(doc *goquery.Document, result models.ExtractionResult) {
	doc.Find("th, dt").Each(func(_ int, label *goquery.Selection) {
		labelText := strings.TrimSpace(label.Text())
		if labelText == "" {
			return
		}

		value := label.NextAllFiltered("td, dd").First()
		if value.Length() == 0 {
			return
		}

		for _, rule := range LabelRules {
			if rule.Matches(labelText) && result.Claim(rule.Field, fullText(value)) {
				break
			}
		}
	})
}

// fullText 所有文本节点以空格连接
func fullText(sel *goquery.Selection) string {
	var parts []string
	for _, n := range sel.Nodes {
		collectText(n, &parts)
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

func collectText(n *html.Node, parts *[]string) {
	switch n.Type {
	case html.TextNode:
		*parts = append(*parts, n.Data)
		return
	case html.ElementNode:
		if n.Data == "script" || n.Data == "style" {
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}

package extractors

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuji-matsuda-cyber/company-scraper/internal/models"
	"golang.org/x/net/html"
)

// ExtractProximity 关键字邻近提取,只填充仍为空的字段
func ExtractProximity(doc *goquery.Document, result models.ExtractionResult) {
	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}

	for _, rule := range ProximityRules {
		if result.Get(rule.Field) != "" {
			continue
		}
		for _, keyword := range rule.Keywords {
			if value, ok := valueNearKeyword(root.Nodes[0], keyword); ok {
				result.Claim(rule.Field, value)
				break
			}
		}
	}
}

// valueNearKeyword 找到第一个包含关键字的文本节点,向上最多查找3层祖先,
// 删除关键字后长度在 (1, 100) 之间即接受
func valueNearKeyword(root *html.Node, keyword string) (string, bool) {
	node := findTextNode(root, strings.ToLower(keyword))
	if node == nil {
		return "", false
	}

	pattern := regexp.MustCompile("(?i)" + regexp.QuoteMeta(keyword))
	container := node.Parent
	for level := 0; level < ProximityMaxAncestors && container != nil; level++ {
		text := CollapseSpaces(strippedText(container))
		text = strings.TrimSpace(pattern.ReplaceAllString(text, ""))
		if n := utf8.RuneCountInString(text); n > 1 && n < ProximityMaxRunes {
			return text, true
		}
		container = container.Parent
	}
	return "", false
}

// findTextNode 按文档顺序查找包含关键字的文本节点 (不区分大小写)
func findTextNode(n *html.Node, lowerKeyword string) *html.Node {
	if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
		return nil
	}
	if n.Type == html.TextNode && strings.Contains(strings.ToLower(n.Data), lowerKeyword) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findTextNode(c, lowerKeyword); found != nil {
			return found
		}
	}
	return nil
}

// strippedText 各文本节点去掉首尾空白后直接拼接
func strippedText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(strings.TrimSpace(n.Data))
			return
		case html.ElementNode:
			if n.Data == "script" || n.Data == "style" {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

package extractors

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PageContainsPhone 页面正文(去掉所有非数字后)是否包含目标号码
func PageContainsPhone(pageHTML, phone string) bool {
	target := DigitsOnly(phone)
	if target == "" {
		return false
	}
	return strings.Contains(DigitsOnly(bodyText(pageHTML)), target)
}

func bodyText(pageHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return PlainText(pageHTML)
	}
	body := doc.Find("body")
	if body.Length() == 0 {
		return PlainText(pageHTML)
	}
	markup, err := body.Html()
	if err != nil {
		return body.Text()
	}
	return PlainText(markup)
}

package extractors

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuji-matsuda-cyber/company-scraper/internal/models"
)

// Extract 从页面HTML中提取公司信息
// 先做结构化提取,必需字段不全时再做邻近提取,最后统一清洗
func Extract(pageHTML string) (models.ExtractionResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return nil, fmt.Errorf("解析HTML失败: %w", err)
	}

	result := models.NewExtractionResult()
	ExtractStructured(doc, result)

	if !result.MandatoryComplete() {
		ExtractProximity(doc, result)
	}

	return Clean(result), nil
}

package utils

import (
	"fmt"

	"github.com/yuji-matsuda-cyber/company-scraper/internal/extractors"
	"github.com/yuji-matsuda-cyber/company-scraper/internal/models"
)

// DefaultAreaCodeColumn 市外局番列名
const DefaultAreaCodeColumn = "市外局番"

// LoadAreaCodes 读取市外局番表
// 文件或列不存在时返回 ConfigError,调用方应在处理前中止
func LoadAreaCodes(path, column string) (*extractors.AreaCodes, error) {
	if column == "" {
		column = DefaultAreaCodeColumn
	}

	t, err := readCSV(path)
	if err != nil {
		return nil, &models.ConfigError{FilePath: path, Cause: err}
	}

	col, ok := t.Column(column)
	if !ok {
		return nil, &models.ConfigError{
			FilePath: path,
			Cause:    &models.MissingColumnError{Alternates: []string{column}},
		}
	}

	raw := make([]string, 0, t.Len())
	for i := range t.Rows {
		raw = append(raw, t.Get(i, col))
	}

	codes := extractors.NewAreaCodes(raw)
	if codes.Len() == 0 {
		return nil, &models.ConfigError{FilePath: path, Cause: fmt.Errorf("市外局番列 '%s' 没有有效数据", column)}
	}

	Infof("📞 已加载市外局番: %d 个", codes.Len())
	return codes, nil
}

package utils

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/tealeg/xlsx/v2"
	"github.com/yuji-matsuda-cyber/company-scraper/internal/models"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// SupportedTableExts 支持的表格扩展名
var SupportedTableExts = []string{".csv", ".xlsx"}

// IsSupportedTable 检查扩展名
func IsSupportedTable(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range SupportedTableExts {
		if ext == e {
			return true
		}
	}
	return false
}

// ReadTable 按扩展名读取 CSV 或 XLSX
func ReadTable(path string) (*models.Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSV(path)
	case ".xlsx":
		return readXLSX(path)
	default:
		return nil, fmt.Errorf("不支持的文件格式: %s (仅支持 %s)", path, strings.Join(SupportedTableExts, ", "))
	}
}

// WriteTable 按扩展名写出,CSV 带 BOM
func WriteTable(path string, t *models.Table) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("创建输出目录失败: %w", err)
		}
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return writeCSV(path, t)
	case ".xlsx":
		return writeXLSX(path, t)
	default:
		return fmt.Errorf("不支持的文件格式: %s", path)
	}
}

// DecodeText UTF-8(含BOM) 优先,失败后按 CP932 解码
func DecodeText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data), nil
	}
	decoded, _, err := transform.Bytes(japanese.ShiftJIS.NewDecoder(), data)
	if err != nil {
		return "", fmt.Errorf("无法识别文件编码 (UTF-8/CP932): %w", err)
	}
	Debugf("按 CP932 解码")
	return string(decoded), nil
}

func readCSV(path string) (*models.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取文件失败: %w", err)
	}
	text, err := DecodeText(data)
	if err != nil {
		return nil, err
	}
	return parseCSV(text)
}

func parseCSV(text string) (*models.Table, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("解析CSV失败: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("CSV文件为空")
	}

	t := &models.Table{Headers: records[0], Rows: records[1:]}
	Debugf("读取CSV: %d 列, %d 行", len(t.Headers), len(t.Rows))
	return t, nil
}

func writeCSV(path string, t *models.Table) error {
	var buf bytes.Buffer
	buf.Write(utf8BOM)

	w := csv.NewWriter(&buf)
	if err := w.Write(t.Headers); err != nil {
		return fmt.Errorf("写入CSV失败: %w", err)
	}
	for _, row := range t.Rows {
		if err := w.Write(padRow(row, len(t.Headers))); err != nil {
			return fmt.Errorf("写入CSV失败: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("写入CSV失败: %w", err)
	}

	return os.WriteFile(path, buf.Bytes(), 0644)
}

func readXLSX(path string) (*models.Table, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取XLSX失败: %w", err)
	}
	if len(f.Sheets) == 0 || len(f.Sheets[0].Rows) == 0 {
		return nil, fmt.Errorf("XLSX文件为空")
	}

	sheet := f.Sheets[0]
	t := &models.Table{}
	for i, row := range sheet.Rows {
		if row == nil {
			continue
		}
		values := make([]string, 0, len(row.Cells))
		for _, c := range row.Cells {
			values = append(values, c.String())
		}
		if i == 0 {
			t.Headers = values
			continue
		}
		t.Rows = append(t.Rows, values)
	}

	Debugf("读取XLSX: 工作表 %s, %d 列, %d 行", sheet.Name, len(t.Headers), len(t.Rows))
	return t, nil
}

func writeXLSX(path string, t *models.Table) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Sheet1")
	if err != nil {
		return fmt.Errorf("创建工作表失败: %w", err)
	}

	addRow := func(values []string) {
		row := sheet.AddRow()
		for _, v := range values {
			row.AddCell().SetString(v)
		}
	}
	addRow(t.Headers)
	for _, r := range t.Rows {
		addRow(padRow(r, len(t.Headers)))
	}

	if err := f.Save(path); err != nil {
		return fmt.Errorf("保存XLSX失败: %w", err)
	}
	return nil
}

// padRow 补齐短行,避免输出列错位
func padRow(row []string, width int) []string {
	if len(row) >= width {
		return row
	}
	padded := make([]string, width)
	copy(padded, row)
	return padded
}

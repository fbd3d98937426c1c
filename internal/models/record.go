package models

import "strings"

// Table 表格数据 (CSV/XLSX 的内存表示)
// 行的身份就是行号,行与行之间没有关联
type Table struct {
	Headers []string
	Rows    [][]string
}

// Column 按候选列名顺序查找列,返回第一个存在的列号
func (t *Table) Column(alternates ...string) (int, bool) {
	for _, name := range alternates {
		for i, h := range t.Headers {
			if strings.TrimSpace(h) == name {
				return i, true
			}
		}
	}
	return -1, false
}

// Get 读取单元格,越界时返回空字符串
func (t *Table) Get(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 {
		return ""
	}
	cells := t.Rows[row]
	if col >= len(cells) {
		return ""
	}
	return cells[col]
}

// Set 写入单元格,短行会自动补齐
func (t *Table) Set(row, col int, value string) {
	if row < 0 || row >= len(t.Rows) || col < 0 {
		return
	}
	for len(t.Rows[row]) <= col {
		t.Rows[row] = append(t.Rows[row], "")
	}
	t.Rows[row][col] = value
}

// EnsureColumn 返回列号,列不存在时追加到末尾
func (t *Table) EnsureColumn(name string) int {
	if idx, ok := t.Column(name); ok {
		return idx
	}
	t.Headers = append(t.Headers, name)
	return len(t.Headers) - 1
}

// DropColumns 删除指定列 (输出列会重新追加到末尾)
func (t *Table) DropColumns(names ...string) {
	drop := make(map[int]bool)
	for _, name := range names {
		if idx, ok := t.Column(name); ok {
			drop[idx] = true
		}
	}
	if len(drop) == 0 {
		return
	}

	headers := make([]string, 0, len(t.Headers))
	for i, h := range t.Headers {
		if !drop[i] {
			headers = append(headers, h)
		}
	}
	for r, cells := range t.Rows {
		kept := make([]string, 0, len(cells))
		for i, c := range cells {
			if !drop[i] {
				kept = append(kept, c)
			}
		}
		t.Rows[r] = kept
	}
	t.Headers = headers
}

// Len 行数
func (t *Table) Len() int {
	return len(t.Rows)
}

// Record 单行记录中流水线关心的字段
type Record struct {
	Index       int    `json:"index"`
	Phone       string `json:"phone,omitempty"`
	Website     string `json:"website,omitempty"`
	CompanyName string `json:"company_name,omitempty"`
	Address     string `json:"address,omitempty"`
}

// ColumnSet 各字段的候选列名 (按优先级)
type ColumnSet struct {
	Phone       []string
	Website     []string
	CompanyName []string
	Address     []string
}

var (
	// LookupColumns 网站查找模式的输入列
	LookupColumns = ColumnSet{
		Phone: []string{"電話番号", "発信先電話番号", "TEL"},
	}

	// CompletionColumns 电话补全模式的输入列
	CompletionColumns = ColumnSet{
		Phone:       []string{"電話番号"},
		Website:     []string{"HP", "URL", "ホームページ"},
		CompanyName: []string{"屋号", "会社名", "企業名"},
		Address:     []string{"住所", "所在地"},
	}
)

// ColumnIndex 检测到的列号,-1表示不存在
type ColumnIndex struct {
	Phone       int
	Website     int
	CompanyName int
	Address     int
}

// Detect 在表头中检测列,电话列必须存在
func (cs ColumnSet) Detect(t *Table) (ColumnIndex, error) {
	idx := ColumnIndex{Phone: -1, Website: -1, CompanyName: -1, Address: -1}

	phone, ok := t.Column(cs.Phone...)
	if !ok {
		return idx, &ConfigError{
			FilePath: "input",
			Cause:    &MissingColumnError{Alternates: cs.Phone},
		}
	}
	idx.Phone = phone

	if i, ok := t.Column(cs.Website...); ok {
		idx.Website = i
	}
	if i, ok := t.Column(cs.CompanyName...); ok {
		idx.CompanyName = i
	}
	if i, ok := t.Column(cs.Address...); ok {
		idx.Address = i
	}
	return idx, nil
}

// Records 按检测到的列构建记录
func (ci ColumnIndex) Records(t *Table) []*Record {
	records := make([]*Record, 0, t.Len())
	for row := range t.Rows {
		records = append(records, &Record{
			Index:       row,
			Phone:       cell(t, row, ci.Phone),
			Website:     cell(t, row, ci.Website),
			CompanyName: cell(t, row, ci.CompanyName),
			Address:     cell(t, row, ci.Address),
		})
	}
	return records
}

func cell(t *Table, row, col int) string {
	if col < 0 {
		return ""
	}
	return strings.TrimSpace(t.Get(row, col))
}

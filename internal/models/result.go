package models

import "strings"

// Field 输出字段名 (同时也是输出列名)
type Field string

const (
	FieldCompanyName    Field = "会社名"
	FieldRepresentative Field = "代表者名"
	FieldAddress        Field = "住所"
	FieldCapital        Field = "資本金"
	FieldEmployees      Field = "従業員数"
)

// Fields 全部输出字段,顺序即输出列顺序
var Fields = []Field{
	FieldCompanyName,
	FieldRepresentative,
	FieldAddress,
	FieldCapital,
	FieldEmployees,
}

// MandatoryFields 必需字段,任意一个缺失都会触发浏览器重新渲染
var MandatoryFields = []Field{
	FieldCompanyName,
	FieldRepresentative,
	FieldAddress,
}

// ExtractionResult 提取结果
// 同一轮提取中,字段一旦被填充就不会再被覆盖
type ExtractionResult map[Field]string

// NewExtractionResult 创建空结果
func NewExtractionResult() ExtractionResult {
	return make(ExtractionResult, len(Fields))
}

// Get 读取字段
func (r ExtractionResult) Get(f Field) string {
	return r[f]
}

// Claim 仅在字段为空时写入,返回是否写入成功
func (r ExtractionResult) Claim(f Field, value string) bool {
	value = strings.TrimSpace(value)
	if value == "" || r[f] != "" {
		return false
	}
	r[f] = value
	return true
}

// Merge 用other补齐仍为空的字段
func (r ExtractionResult) Merge(other ExtractionResult) {
	for _, f := range Fields {
		r.Claim(f, other[f])
	}
}

// Missing 返回仍为空的字段
func (r ExtractionResult) Missing() []Field {
	var missing []Field
	for _, f := range Fields {
		if r[f] == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

// MandatoryComplete 必需字段是否全部填充
func (r ExtractionResult) MandatoryComplete() bool {
	for _, f := range MandatoryFields {
		if r[f] == "" {
			return false
		}
	}
	return true
}

// Set 直接写入 (仅供清洗阶段替换已有值)
func (r ExtractionResult) Set(f Field, value string) {
	if value == "" {
		delete(r, f)
		return
	}
	r[f] = value
}

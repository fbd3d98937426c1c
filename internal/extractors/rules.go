package extractors

import (
	"regexp"
	"strings"

	"github.com/yuji-matsuda-cyber/company-scraper/internal/models"
)

// LabelRule 结构化提取规则: 标签文本包含任一同义词即认领该字段
type LabelRule struct {
	Field    models.Field
	Synonyms []string
}

// Matches 标签是否命中
func (r LabelRule) Matches(label string) bool {
	for _, s := range r.Synonyms {
		if strings.Contains(label, s) {
			return true
		}
	}
	return false
}

// ProximityRule 邻近提取规则: 关键字按优先级依次尝试
type ProximityRule struct {
	Field    models.Field
	Keywords []string
}

// LabelRules 标签同义词 (顺序即字段优先级)
var LabelRules = []LabelRule{
	{Field: models.FieldCompanyName, Synonyms: []string{"会社名", "商号"}},
	{Field: models.FieldRepresentative, Synonyms: []string{"代表者", "代表取締役"}},
	{Field: models.FieldAddress, Synonyms: []string{"所在地", "本社"}},
	{Field: models.FieldCapital, Synonyms: []string{"資本金"}},
	{Field: models.FieldEmployees, Synonyms: []string{"従業員"}},
}

// ProximityRules 邻近提取关键字
var ProximityRules = []ProximityRule{
	{Field: models.FieldCompanyName, Keywords: []string{"会社名", "商号", "社名"}},
	{Field: models.FieldRepresentative, Keywords: []string{"代表取締役社長", "代表取締役", "代表者"}},
	{Field: models.FieldAddress, Keywords: []string{"所在地", "本社所在地", "住所"}},
	{Field: models.FieldCapital, Keywords: []string{"資本金"}},
	{Field: models.FieldEmployees, Keywords: []string{"従業員数", "従業員"}},
}

const (
	// ProximityMaxAncestors 邻近提取最多向上查找的祖先层数
	ProximityMaxAncestors = 3

	// ProximityMaxRunes 邻近提取值的长度上限 (不含)
	ProximityMaxRunes = 100
)

// ContactTailPattern 值末尾的联系方式、地图链接和邮编
var ContactTailPattern = regexp.MustCompile(`(?i)TEL.*|FAX.*|URL.*|E-mail.*|→.*|地図.*|ダウンロード.*|〒\d{3}-\d{4}`)

// RepresentativeTitles 代表者头衔,清洗时全部删除 (长的在前)
var RepresentativeTitles = []string{"代表取締役社長", "代表取締役", "代表社員", "代表", "社長", "：", ":"}

// OtherTitles 非代表者头衔,出现时从第一次出现处截断
var OtherTitles = []string{"取締役", "監査役", "執行役員"}

var (
	// 电话号码前缀
	tollFreePrefixes        = []string{"0120", "0800"}
	mobilePrefixes          = []string{"050", "070", "080", "090"}
	preferredMobilePrefixes = []string{"070", "080", "090"}

	// 三种扫描模式,按发现顺序依次使用
	labeledPhonePattern = regexp.MustCompile(`(?i)(?:TEL|電話番号|電話)\s*[.:：]?\s*(0\d{1,4}[-()（）\s]{1,3}\d{1,4}[-()（）\s]{1,3}\d{3,4})`)
	groupedPhonePattern = regexp.MustCompile(`0\d{1,4}[-()（）\s]{1,3}\d{1,4}[-()（）\s]{1,3}\d{3,4}`)
	digitRunPattern     = regexp.MustCompile(`\d+`)

	// 扫描电话号码前删除的页面区域
	phoneNoiseSelector = "script, style, header, nav, aside"
)

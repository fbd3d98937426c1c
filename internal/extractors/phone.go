package extractors

import (
	"slices"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// AreaCodes 市外局番集合,按长度降序保存,保证最长前缀优先匹配
type AreaCodes struct {
	codes []string
}

// NewAreaCodes 从字符串集合构建,去空白并左补零到至少2位
func NewAreaCodes(raw []string) *AreaCodes {
	seen := make(map[string]bool, len(raw))
	codes := make([]string, 0, len(raw))
	for _, c := range raw {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if len(c) < 2 {
			c = strings.Repeat("0", 2-len(c)) + c
		}
		if seen[c] {
			continue
		}
		seen[c] = true
		codes = append(codes, c)
	}

	sort.SliceStable(codes, func(i, j int) bool {
		if len(codes[i]) != len(codes[j]) {
			return len(codes[i]) > len(codes[j])
		}
		return codes[i] < codes[j]
	})
	return &AreaCodes{codes: codes}
}

// Len 市外局番数量
func (a *AreaCodes) Len() int {
	if a == nil {
		return 0
	}
	return len(a.codes)
}

// Match 返回匹配的最长市外局番
func (a *AreaCodes) Match(digits string) (string, bool) {
	if a == nil {
		return "", false
	}
	for _, code := range a.codes {
		if strings.HasPrefix(digits, code) {
			return code, true
		}
	}
	return "", false
}

// Validator 电话号码校验器
type Validator struct {
	areaCodes *AreaCodes
}

// NewValidator 创建校验器,areaCodes 为空时只接受手机号
func NewValidator(areaCodes *AreaCodes) *Validator {
	return &Validator{areaCodes: areaCodes}
}

// Accept 校验纯数字号码,通过时追加到 seen
// 规则顺序: 去重 → 拒绝免费电话 → 接受手机号 → 市外局番前缀
func (v *Validator) Accept(digits string, seen *[]string) bool {
	if seen != nil && slices.Contains(*seen, digits) {
		return false
	}
	if hasAnyPrefix(digits, tollFreePrefixes) {
		return false
	}

	ok := hasAnyPrefix(digits, mobilePrefixes)
	if !ok {
		_, ok = v.areaCodes.Match(digits)
	}
	if ok && seen != nil {
		*seen = append(*seen, digits)
	}
	return ok
}

// ScanPhones 扫描已规范化的文本,按发现顺序返回通过校验的号码
// 模式顺序: "TEL:"标签 → 带分隔符的数字组 → 独立的10/11位数字
func (v *Validator) ScanPhones(text string) []string {
	var found []string

	for _, m := range labeledPhonePattern.FindAllStringSubmatch(text, -1) {
		if d := keepDigits(m[1]); isPhoneLength(d) {
			v.Accept(d, &found)
		}
	}

	for _, m := range groupedPhonePattern.FindAllString(text, -1) {
		if d := keepDigits(m); isPhoneLength(d) {
			v.Accept(d, &found)
		}
	}

	// 数字串本身就是最大连续数字,等价于前后不能紧挨其他数字
	for _, run := range digitRunPattern.FindAllString(text, -1) {
		if isPhoneLength(run) && run[0] == '0' {
			v.Accept(run, &found)
		}
	}

	return found
}

// PhoneFromHTML 从整页HTML中扫描电话号码,去掉页头/导航/侧栏等区域
func (v *Validator) PhoneFromHTML(pageHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return ""
	}
	doc.Find(phoneNoiseSelector).Remove()

	markup, err := doc.Html()
	if err != nil {
		return ""
	}
	return PreferMobile(v.ScanPhones(Normalize(PlainText(markup))))
}

// PreferMobile 有070/080/090开头的号码时优先返回,否则返回第一个
// 050 虽然被视为手机号通过校验,但不参与优先选择
func PreferMobile(candidates []string) string {
	for _, c := range candidates {
		if hasAnyPrefix(c, preferredMobilePrefixes) {
			return c
		}
	}
	if len(candidates) > 0 {
		return candidates[0]
	}
	return ""
}

// isPhoneLength 10位或11位
func isPhoneLength(d string) bool {
	return len(d) == 10 || len(d) == 11
}

func keepDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// Normalize 把任意格式的号码转成通过校验的10/11位数字
func (v *Validator) Normalize(raw string) (string, bool) {
	d := DigitsOnly(raw)
	if !isPhoneLength(d) || !v.Accept(d, nil) {
		return "", false
	}
	return d, true
}

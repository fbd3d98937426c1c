package extractors

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuji-matsuda-cyber/company-scraper/internal/models"
)

const companyTablePage = `<html><body>
<h1>会社概要</h1>
<table>
  <tr><th>会社名</th><td>株式会社テスト</td></tr>
  <tr><th>代表者</th><td>代表取締役　山田太郎　取締役　鈴木一郎</td></tr>
  <tr><th>本社所在地</th><td>〒100-0001 東京都千代田区1-1 <br>TEL 03-1234-5678</td></tr>
  <tr><th>商号</th><td>別名株式会社</td></tr>
</table>
<dl><dt>資本金</dt><dd>1,000万円</dd><dt>従業員数</dt><dd>50名 <a href="/recruit">地図・採用情報</a></dd></dl>
</body></html>`

func mustDoc(t *testing.T, page string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)
	return doc
}

func TestExtractStructured_FirstLabelWins(t *testing.T) {
	result := models.NewExtractionResult()
	ExtractStructured(mustDoc(t, companyTablePage), result)

	assert.Equal(t, "株式会社テスト", result.Get(models.FieldCompanyName), "后出现的商号不应覆盖会社名")
	assert.Equal(t, "代表取締役　山田太郎　取締役　鈴木一郎", result.Get(models.FieldRepresentative))
	assert.Contains(t, result.Get(models.FieldAddress), "東京都千代田区1-1")
	assert.Equal(t, "1,000万円", result.Get(models.FieldCapital))
}

func TestExtract_CleansEveryField(t *testing.T) {
	result, err := Extract(companyTablePage)
	require.NoError(t, err)

	assert.Equal(t, models.ExtractionResult{
		models.FieldCompanyName:    "株式会社テスト",
		models.FieldRepresentative: "山田太郎",
		models.FieldAddress:        "東京都千代田区1-1",
		models.FieldCapital:        "1,000万円",
		models.FieldEmployees:      "50名",
	}, result)
}

func TestExtractProximity_FillsEmptyFields(t *testing.T) {
	page := `<html><body>
		<div><p>会社名</p><p>株式会社サンプル</p></div>
		<div><span>代表取締役社長</span> <span>佐藤花子</span></div>
		<div>所在地：大阪府大阪市北区1-2-3</div>
	</body></html>`

	result := models.NewExtractionResult()
	ExtractProximity(mustDoc(t, page), result)

	assert.Equal(t, "株式会社サンプル", result.Get(models.FieldCompanyName))
	assert.Equal(t, "佐藤花子", result.Get(models.FieldRepresentative))
	assert.Equal(t, "：大阪府大阪市北区1-2-3", result.Get(models.FieldAddress))
	assert.Empty(t, result.Get(models.FieldCapital))
}

func TestExtractProximity_StopsAfterThreeAncestors(t *testing.T) {
	page := `<html><body><section><p>1億円</p><div><div><span>資本金</span></div></div></section></body></html>`

	result := models.NewExtractionResult()
	ExtractProximity(mustDoc(t, page), result)

	assert.Empty(t, result.Get(models.FieldCapital), "值在第4层祖先中,不应被取到")
}

func TestExtract_StructuredValueNotOverwrittenByProximity(t *testing.T) {
	page := `<html><body>
		<table><tr><th>会社名</th><td>株式会社正しい</td></tr></table>
		<p>社名 株式会社まちがい</p>
		<div><span>代表者</span><span>田中一郎</span></div>
	</body></html>`

	result, err := Extract(page)
	require.NoError(t, err)

	assert.Equal(t, "株式会社正しい", result.Get(models.FieldCompanyName))
	assert.Equal(t, "田中一郎", result.Get(models.FieldRepresentative), "空字段仍由邻近提取补齐")
}

func TestCleanRepresentative(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"在取締役处截断", "代表取締役　山田太郎　取締役　鈴木一郎", "山田太郎"},
		{"社长头衔", "代表取締役社長 佐藤花子", "佐藤花子"},
		{"执行役员", "代表 山田太郎 執行役員 田中", "山田太郎"},
		{"冒号分隔", "代表取締役：高橋次郎", "高橋次郎"},
		{"没有头衔", "伊藤三郎", "伊藤三郎"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanRepresentative(tt.input))
		})
	}
}

func TestCleanValue(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"电话尾巴", "東京都港区1-1 TEL:03-1234-5678", "東京都港区1-1"},
		{"邮编", "〒100-0001　東京都千代田区", "東京都千代田区"},
		{"地图链接", "1億円 地図を見る", "1億円"},
		{"大小写不敏感", "株式会社A url: https://a.jp", "株式会社A"},
		{"合并空白", "株式会社\n\t サンプル", "株式会社 サンプル"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanValue(tt.input))
		})
	}
}

func TestPageContainsPhone(t *testing.T) {
	tests := []struct {
		name  string
		page  string
		phone string
		want  bool
	}{
		{"带横线的号码", `<html><body><p>TEL: 03-1234-5678</p></body></html>`, "0312345678", true},
		{"全角号码", `<html><body><p>ＴＥＬ：０３－１２３４－５６７８</p></body></html>`, "0312345678", true},
		{"目标号码带横线", `<html><body>03(1234)5678</body></html>`, "03-1234-5678", true},
		{"号码不存在", `<html><body><p>TEL: 03-1234-0000</p></body></html>`, "0312345678", false},
		{"只在script中", `<html><body><script>var t="0312345678"</script></body></html>`, "0312345678", false},
		{"空号码", `<html><body>0312345678</body></html>`, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PageContainsPhone(tt.page, tt.phone))
		})
	}
}

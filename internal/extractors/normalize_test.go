package extractors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"全角数字和横线", "０３－１２３４－５６７８", "03-1234-5678"},
		{"全角括号和空格", "（０３）　１２３４‐５６７８", "(03) 1234-5678"},
		{"已是半角", "TEL: 03-1234-5678", "TEL: 03-1234-5678"},
		{"其他全角字符不变", "ＡＢＣ株式会社", "ＡＢＣ株式会社"},
		{"空字符串", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, Normalize(got), "规范化应当幂等")
		})
	}
}

func TestDigitsOnly(t *testing.T) {
	assert.Equal(t, "0312345678", DigitsOnly("TEL：０３-1234-５６７８"))
	assert.Equal(t, "", DigitsOnly("電話番号なし"))
}

func TestCollapseSpaces(t *testing.T) {
	assert.Equal(t, "a b c", CollapseSpaces("  a \n\t b　c "))
}

func TestPlainText(t *testing.T) {
	text := PlainText(`<p>TEL<script>var n = "0399998888";</script><b>03</b>&amp;</p><style>.a{}</style>`)

	assert.Contains(t, text, "TEL")
	assert.Contains(t, text, "03")
	assert.Contains(t, text, "&", "实体应当被还原")
	assert.NotContains(t, text, "0399998888", "script 内容应当被丢弃")
	assert.NotContains(t, text, "<b>")
}

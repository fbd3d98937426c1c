package crawlers

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuji-matsuda-cyber/company-scraper/internal/models"
	"github.com/yuji-matsuda-cyber/company-scraper/internal/utils"
)

const answerPanelHTML = `<html><body>
<div class="AnswerLocalSpot">
  <span class="AnswerLocalSpot__subInfoSpotDetail">住所：</span><span>東京都千代田区1-1</span>
  <span class="AnswerLocalSpot__subInfoSpotDetail">電話：</span><span>03-1234-5678</span>
</div></body></html>`

const listingHTML = `<html><body>
<div class="Algo"><p>株式会社テスト 東京都千代田区 の求人情報</p></div>
<div class="Algo"><p>会社概要 TEL: 03-1234-5678 携帯 090-1111-2222</p></div>
<div class="Algo"><p>TEL: 06-9999-8888</p></div>
</body></html>`

// queryFetcher 记录搜索词并按搜索词返回页面
type queryFetcher struct {
	pages   map[string]string
	err     error
	queries []string
}

func (f *queryFetcher) Name() string { return "query" }

func (f *queryFetcher) Fetch(_ context.Context, raw string) (*models.Page, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	q := u.Query().Get("p")
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	return &models.Page{URL: raw, FinalURL: raw, HTML: f.pages[q], StatusCode: http.StatusOK}, nil
}

func newTestYahoo(f PageFetcher) *YahooSearch {
	return NewYahooSearch(f, testValidator(), "", models.DelayConfig{}, utils.NoSleep)
}

func TestYahooSearch_SearchURL(t *testing.T) {
	y := newTestYahoo(&queryFetcher{})
	assert.Equal(t, "https://search.yahoo.co.jp/search?p=%22a%22+%22b%22", y.SearchURL(`"a" "b"`))
}

func TestYahooSearch_AnswerPanelPhone(t *testing.T) {
	f := &queryFetcher{pages: map[string]string{
		`"テスト商店" "東京都千代田区1-1"`: answerPanelHTML,
	}}

	phone, err := newTestYahoo(f).AnswerPanelPhone(context.Background(), "テスト商店【正社員募集】", "東京都千代田区1-1")
	require.NoError(t, err)
	assert.Equal(t, "0312345678", phone)
	assert.Equal(t, []string{`"テスト商店" "東京都千代田区1-1"`}, f.queries)
}

func TestYahooSearch_AnswerPanelFullWidth(t *testing.T) {
	tests := []struct {
		name  string
		shown string
	}{
		{"全角数字", "０３-１２３４-５６７８"},
		{"全角数字和横线", "０３－１２３４－５６７８"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html := `<html><body><span class="AnswerLocalSpot__subInfoSpotDetail">電話：</span><span>` + tt.shown + `</span></body></html>`
			f := &queryFetcher{pages: map[string]string{`"テスト" "東京都千代田区1-1"`: html}}
			phone, err := newTestYahoo(f).AnswerPanelPhone(context.Background(), "テスト", "東京都千代田区1-1")
			require.NoError(t, err)
			assert.Equal(t, "0312345678", phone)
		})
	}
}

func TestYahooSearch_AnswerPanelMissing(t *testing.T) {
	tests := []struct {
		name string
		html string
	}{
		{"没有面板", "<html><body><p>結果なし</p></body></html>"},
		{"号码格式不对", `<html><body><span class="AnswerLocalSpot__subInfoSpotDetail">電話：</span><span>お問い合わせ</span></body></html>`},
		{"免费电话", `<html><body><span class="AnswerLocalSpot__subInfoSpotDetail">電話：</span><span>0120-123-456</span></body></html>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &queryFetcher{pages: map[string]string{`"テスト" "大阪府"`: tt.html}}
			phone, err := newTestYahoo(f).AnswerPanelPhone(context.Background(), "テスト", "大阪府")
			require.NoError(t, err)
			assert.Empty(t, phone)
		})
	}
}

func TestYahooSearch_InvalidInputSkipped(t *testing.T) {
	f := &queryFetcher{}
	y := newTestYahoo(f)

	phone, err := y.AnswerPanelPhone(context.Background(), "NaN", "東京都")
	require.NoError(t, err)
	assert.Empty(t, phone)

	phone, err = y.ListingPhone(context.Background(), "テスト", "抽出エラー")
	require.NoError(t, err)
	assert.Empty(t, phone)

	assert.Empty(t, f.queries)
}

func TestYahooSearch_ListingPhone(t *testing.T) {
	f := &queryFetcher{pages: map[string]string{
		`"テスト" "東京都千代田区" 電話番号`: listingHTML,
	}}

	phone, err := newTestYahoo(f).ListingPhone(context.Background(), "(株)テスト", "東京都千代田区丸の内1-1-1")
	require.NoError(t, err)
	// 第一个含号码的结果块中优先手机号,之后的块不再扫描
	assert.Equal(t, "09011112222", phone)
}

func TestYahooSearch_ListingAddressFallback(t *testing.T) {
	f := &queryFetcher{}
	_, err := newTestYahoo(f).ListingPhone(context.Background(), "テスト", "丸の内1-1")
	require.NoError(t, err)
	assert.Equal(t, []string{`"テスト" "丸の内1-1" 電話番号`}, f.queries)
}

func TestYahooSearch_FetchErrors(t *testing.T) {
	t.Run("会话失效原样返回", func(t *testing.T) {
		_, err := newTestYahoo(&queryFetcher{err: models.ErrSessionInvalid}).AnswerPanelPhone(context.Background(), "テスト", "東京都")
		assert.ErrorIs(t, err, models.ErrSessionInvalid)
	})

	t.Run("超时视为没有结果", func(t *testing.T) {
		f := &queryFetcher{err: &models.FetchError{URL: "yahoo", Err: models.ErrFetchFailed}}
		phone, err := newTestYahoo(f).ListingPhone(context.Background(), "テスト", "東京都")
		assert.NoError(t, err)
		assert.Empty(t, phone)
	})
}

func TestPrefectureCityPattern(t *testing.T) {
	tests := []struct {
		address string
		want    string
	}{
		{"東京都千代田区丸の内1-1", "東京都千代田区"},
		{"大阪府大阪市北区梅田1-1", "大阪府大阪市"},
		{"北海道札幌市中央区", "北海道札幌市"},
		{"神奈川県横浜市西区", "神奈川県横浜市"},
		{"丸の内1-1", ""},
	}
	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			assert.Equal(t, tt.want, prefectureCityPattern.FindString(tt.address))
		})
	}
}

func TestCleanCompanyName(t *testing.T) {
	assert.Equal(t, "テスト商店", cleanCompanyName("テスト商店（本店）"))
	assert.Equal(t, "テスト", cleanCompanyName("テストの正社員求人情報"))
	assert.Equal(t, "【急募】", cleanCompanyName("【急募】"))
}

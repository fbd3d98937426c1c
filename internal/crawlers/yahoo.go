package crawlers

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"github.com/yuji-matsuda-cyber/company-scraper/internal/extractors"
	"github.com/yuji-matsuda-cyber/company-scraper/internal/models"
	"github.com/yuji-matsuda-cyber/company-scraper/internal/utils"
)

// DefaultYahooSearchURL Yahoo! JAPAN 搜索地址
const DefaultYahooSearchURL = "https://search.yahoo.co.jp/search"

const (
	answerPanelXPath = "//span[contains(@class, 'AnswerLocalSpot__subInfoSpotDetail') and text()='電話：']/following-sibling::span[1]"
	listingSelector  = "div.sw-CardBase, div.Algo, section.Algo"
	listingBlocks    = 5
)

var (
	// 招聘标题等噪声: 【...】 (...) （...） の...求人...
	nameNoisePattern = regexp.MustCompile(`【.*?】|\(.*?\)|（.*?）|の.*?求人.*`)
	// (株) (有) (合)
	corporateMarkPattern = regexp.MustCompile(`[（(][株有合][）)]`)
	// 都道府県 + 市区町村
	prefectureCityPattern = regexp.MustCompile(`^(東京都|北海道|(?:京都|大阪)府|.{2,3}県)([^市]+市|[^区]+区|[^郡]+郡[^町]+町|[^郡]+郡[^村]+村|[^町]+町|[^村]+村)`)
	panelPhonePattern     = regexp.MustCompile(`^[\d-]+$`)

	invalidSearchInputs = []string{"", "n/a", "nan", "アクセスエラー", "抽出エラー"}
)

// YahooSearch 用 Yahoo! JAPAN 搜索补全电话号码
type YahooSearch struct {
	fetcher     PageFetcher
	validator   *extractors.Validator
	baseURL     string
	answerWait  models.DelayRange
	listingWait models.DelayRange
	sleep       utils.Sleeper
}

// NewYahooSearch 创建 Yahoo 搜索
func NewYahooSearch(fetcher PageFetcher, validator *extractors.Validator, baseURL string, delays models.DelayConfig, sleep utils.Sleeper) *YahooSearch {
	if baseURL == "" {
		baseURL = DefaultYahooSearchURL
	}
	return &YahooSearch{
		fetcher:     fetcher,
		validator:   validator,
		baseURL:     baseURL,
		answerWait:  delays.AnswerPanel,
		listingWait: delays.Listing,
		sleep:       sleep,
	}
}

// SearchURL 生成搜索地址
func (y *YahooSearch) SearchURL(query string) string {
	return y.baseURL + "?" + url.Values{"p": {query}}.Encode()
}

// AnswerPanelPhone 在搜索结果的店铺信息面板中读取电话号码
// 输入无效、面板不存在或号码不合法时返回空字符串
func (y *YahooSearch) AnswerPanelPhone(ctx context.Context, name, address string) (string, error) {
	if invalidSearchInput(name) || invalidSearchInput(address) {
		utils.Debugf("公司名或地址无效,跳过Yahoo直接搜索")
		return "", nil
	}

	query := `"` + cleanCompanyName(name) + `" "` + strings.TrimSpace(address) + `"`
	utils.Infof("🔎 Yahoo直接搜索: %s", query)

	page, err := y.load(ctx, query, y.answerWait)
	if err != nil || page == nil {
		return "", err
	}

	doc, err := htmlquery.Parse(strings.NewReader(page.HTML))
	if err != nil {
		return "", &models.StageError{Stage: models.StageAnswerPanel, Err: err}
	}
	node := htmlquery.FindOne(doc, answerPanelXPath)
	if node == nil {
		utils.Debugf("搜索结果中没有店铺信息面板")
		return "", nil
	}

	text := strings.TrimSpace(extractors.Normalize(htmlquery.InnerText(node)))
	if !panelPhonePattern.MatchString(text) {
		return "", nil
	}
	phone, ok := y.validator.Normalize(strings.ReplaceAll(text, "-", ""))
	if !ok {
		utils.Debugf("面板号码未通过校验: %s", text)
		return "", nil
	}
	utils.Infof("✅ Yahoo直接搜索で番号取得: %s", phone)
	return phone, nil
}

// ListingPhone 在前几条普通搜索结果中查找电话号码
func (y *YahooSearch) ListingPhone(ctx context.Context, name, address string) (string, error) {
	if invalidSearchInput(name) || invalidSearchInput(address) {
		utils.Debugf("公司名或地址无效,跳过Yahoo一览搜索")
		return "", nil
	}

	cleaned := strings.TrimSpace(corporateMarkPattern.ReplaceAllString(name, ""))
	place := strings.TrimSpace(address)
	if m := prefectureCityPattern.FindString(place); m != "" {
		place = m
	}
	query := `"` + cleaned + `" "` + place + `" 電話番号`
	utils.Infof("🔎 Yahoo一览搜索: %s", query)

	page, err := y.load(ctx, query, y.listingWait)
	if err != nil || page == nil {
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return "", &models.StageError{Stage: models.StageListing, Err: err}
	}

	var found []string
	doc.Find(listingSelector).EachWithBreak(func(i int, block *goquery.Selection) bool {
		if i >= listingBlocks {
			return false
		}
		found = y.validator.ScanPhones(extractors.Normalize(block.Text()))
		return len(found) == 0
	})

	phone := extractors.PreferMobile(found)
	if phone != "" {
		utils.Infof("✅ Yahoo一覧で番号取得: %s", phone)
	}
	return phone, nil
}

// load 获取搜索结果页并等待片刻,普通获取失败返回 nil, nil
func (y *YahooSearch) load(ctx context.Context, query string, wait models.DelayRange) (*models.Page, error) {
	page, err := y.fetcher.Fetch(ctx, y.SearchURL(query))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if models.IsFatal(err) {
			return nil, err
		}
		utils.Warnf("Yahoo搜索失败: %v", err)
		return nil, nil
	}
	if err := utils.SleepJitter(ctx, y.sleep, wait); err != nil {
		return nil, err
	}
	return page, nil
}

func invalidSearchInput(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, invalid := range invalidSearchInputs {
		if s == invalid {
			return true
		}
	}
	return false
}

// cleanCompanyName 去掉招聘标题噪声,清理后为空时保留原名
func cleanCompanyName(name string) string {
	cleaned := strings.TrimSpace(nameNoisePattern.ReplaceAllString(name, ""))
	if cleaned == "" {
		return strings.TrimSpace(name)
	}
	return cleaned
}

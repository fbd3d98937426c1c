package models

// Stage 流水线阶段
type Stage string

const (
	// 网站查找模式的三级搜索
	StageSearchTitle      Stage = "SEARCH_TITLE"
	StageSearchURLPattern Stage = "SEARCH_URL_PATTERN"
	StageSearchBroad      Stage = "SEARCH_BROAD"

	// 电话补全模式
	StageHomepage    Stage = "HP"
	StageOverview    Stage = "OVERVIEW_1"
	StageSubOverview Stage = "OVERVIEW_2"
	StageAnswerPanel Stage = "YAHOO_ANSWER"
	StageListing     Stage = "YAHOO_LISTING"
)

var stageLabels = map[Stage]string{
	StageSearchTitle:      "第1段階(タイトル)",
	StageSearchURLPattern: "第2段階(URL)",
	StageSearchBroad:      "第3段階(広域)",
	StageHomepage:         "HP",
	StageOverview:         "概要1",
	StageSubOverview:      "概要2",
	StageAnswerPanel:      "Yahoo検索",
	StageListing:          "Yahoo一覧",
}

// Label 写入结果表时使用的阶段名
func (s Stage) Label() string {
	if label, ok := stageLabels[s]; ok {
		return label
	}
	return string(s)
}

// Mode 运行模式
type Mode string

const (
	ModeLookup     Mode = "lookup"   // 电话号码 → 官网 + 公司信息
	ModeCompletion Mode = "complete" // 补全缺失的电话号码
)

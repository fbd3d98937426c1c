package models

// 结果表中的哨兵值
const (
	SentinelNotFound    = "見つかりません"
	SentinelNoPhone     = "電話番号なし"
	SentinelBlocked     = "ブロックにより中断"
	SentinelInterrupted = "中断"
)

// ErrorSentinel 阶段出错时写入的哨兵值
func ErrorSentinel(stage Stage) string {
	return "エラー(" + stage.Label() + ")"
}

// Page 获取到的页面 (两种获取策略的统一输出)
type Page struct {
	URL        string `json:"url"`
	FinalURL   string `json:"final_url"`
	HTML       string `json:"-"`
	StatusCode int    `json:"status_code"`
	Via        string `json:"via"` // 获取策略名称
}

// VerifiedPage 已确认包含目标电话号码的候选页面
type VerifiedPage struct {
	Candidate string
	Page      *Page
	Query     string
	Stage     Stage
}

// OutcomeStatus 单条记录的处理结果
type OutcomeStatus string

const (
	OutcomeFound       OutcomeStatus = "found"
	OutcomeNotFound    OutcomeStatus = "not_found"
	OutcomeNoPhone     OutcomeStatus = "no_phone"
	OutcomeSkipped     OutcomeStatus = "skipped"
	OutcomeError       OutcomeStatus = "error"
	OutcomeBlocked     OutcomeStatus = "blocked"
	OutcomeInterrupted OutcomeStatus = "interrupted"
)

// Outcome 单条记录的处理结果
type Outcome struct {
	Index  int              `json:"index"`
	Status OutcomeStatus    `json:"status"`
	URL    string           `json:"url,omitempty"`
	Fields ExtractionResult `json:"fields,omitempty"`
	Phone  string           `json:"phone,omitempty"`
	Stage  Stage            `json:"stage,omitempty"`
	Err    string           `json:"error,omitempty"`
}

// Final 是否为最终结果 (恢复运行时无需再处理)
func (o Outcome) Final() bool {
	switch o.Status {
	case OutcomeBlocked, OutcomeInterrupted, "":
		return false
	}
	return true
}

// URLValue 网站查找模式下写入URL列的值
func (o Outcome) URLValue() string {
	switch o.Status {
	case OutcomeFound:
		return o.URL
	case OutcomeNoPhone:
		return SentinelNoPhone
	case OutcomeBlocked:
		return SentinelBlocked
	case OutcomeInterrupted:
		return SentinelInterrupted
	case OutcomeError:
		return ErrorSentinel(o.Stage)
	}
	return SentinelNotFound
}

// PhoneValue 电话补全模式下写入电话列的值
func (o Outcome) PhoneValue() string {
	switch o.Status {
	case OutcomeFound:
		return o.Phone
	case OutcomeBlocked:
		return SentinelBlocked
	case OutcomeInterrupted:
		return SentinelInterrupted
	case OutcomeError:
		return ErrorSentinel(o.Stage)
	}
	return SentinelNotFound
}

package models

// DrillHop 深入链接时访问过的一跳
//   - Depth 0: 首页
//   - Depth 1: 会社概要类链接
//   - Depth 2: 沿革/拠点/アクセス类链接
type DrillHop struct {
	URL       string `json:"url"`
	Depth     int    `json:"depth"`
	Stage     Stage  `json:"stage"`
	SourceURL string `json:"source_url,omitempty"` // 发现此链接的页面
}

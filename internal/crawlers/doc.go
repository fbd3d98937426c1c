// Package crawlers 提供页面获取、搜索和链接深入功能
//
// # 概述
//
// 所有网络访问都经过 PageFetcher 接口,有两种实现:
// 轻量HTTP (Colly) 和渲染JS的无头浏览器 (go-rod)。
// 使用哪一种由调用方根据上一阶段的结果决定,包内不做切换。
//
// # 核心组件
//
// ## StaticFetcher
//
// 基于Colly的轻量获取器。每次请求克隆基础采集器,
// 处理 gzip/deflate/br 压缩并按 Content-Type 或 <meta charset> 解码 (Shift_JIS/EUC-JP 等)。
// 429 返回 models.ErrBlocked,其余非2xx返回 *models.FetchError。
//
//	fetcher := NewStaticFetcher(15*time.Second, headerManager)
//	page, err := fetcher.Fetch(ctx, "https://example.co.jp/")
//
// ## BrowserSession / BrowserFetcher
//
// 进程内只有一个浏览器会话,首次使用时启动 (stealth页面, ja-JP, 可选代理认证)。
// 启动前由 ResourceMonitor 检查可用内存。
// 导航失败且浏览器已不可用时返回 models.ErrSessionInvalid,之后的调用都会立即失败。
//
//	session := NewBrowserSession(BrowserConfig{Headless: true}, headerManager.UserAgent, monitor)
//	defer session.Close()
//	page, err := NewBrowserFetcher(session, 30*time.Second, 3*time.Second).Fetch(ctx, url)
//
// ## CandidateSearch
//
// 搜索引擎 (Google) 返回候选URL,经过 CandidateFilter 排除名录站点和联系页面后
// 依次获取,第一个正文包含目标电话号码的页面即为结果。
//
// ## DrillDown
//
// 电话补全模式: 首页 → 会社概要类链接 → 沿革/拠点类链接,
// 链接用XPath按优先级查找,只跟随同域链接。
//
// ## YahooSearch
//
// 官网没有号码时,用公司名和地址搜索 Yahoo! JAPAN:
// 先读店铺信息面板,再扫描前5条普通结果。
//
// ## Decoy
//
// 每处理N条记录访问一次无关站点,失败只记录日志。
//
// # 错误约定
//
//   - models.ErrBlocked: 被限流,整批任务停止
//   - models.ErrSessionInvalid: 浏览器会话失效,整批任务停止
//   - *models.FetchError: 普通获取失败,只影响当前阶段
//   - *models.StageError: 阶段内的意外错误,结果记为 エラー(阶段)
package crawlers

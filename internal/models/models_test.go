package models

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"有效的HTTP URL", "http://example.co.jp", false},
		{"有效的HTTPS URL", "https://example.co.jp/company/", false},
		{"无效的协议", "ftp://example.com", true},
		{"无效的URL", "not a url", true},
		{"空URL", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url)
			assert.Equal(t, tt.wantErr, err != nil, "ValidateURL(%q) error = %v", tt.url, err)
		})
	}
}

func TestNormalizeWebsite(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"补全协议", "www.example.co.jp", "http://www.example.co.jp"},
		{"保留https", "https://example.co.jp/", "https://example.co.jp/"},
		{"n/a视为空", "n/a", ""},
		{"nan视为空", "nan", ""},
		{"空白", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeWebsite(tt.raw))
		})
	}
}

func TestTable_ColumnAlternates(t *testing.T) {
	table := &Table{
		Headers: []string{"No", "発信先電話番号", "電話番号"},
		Rows:    [][]string{{"1", "0311112222", "0333334444"}},
	}

	idx, ok := table.Column("電話番号", "発信先電話番号")
	require.True(t, ok)
	assert.Equal(t, 2, idx, "应优先使用第一个候选列名")

	_, ok = table.Column("HP")
	assert.False(t, ok)
}

func TestTable_SetGrowsShortRows(t *testing.T) {
	table := &Table{Headers: []string{"a"}, Rows: [][]string{{"x"}}}
	col := table.EnsureColumn("URL")

	table.Set(0, col, "https://example.co.jp")

	assert.Equal(t, []string{"a", "URL"}, table.Headers)
	assert.Equal(t, "https://example.co.jp", table.Get(0, col))
	assert.Equal(t, "", table.Get(5, col), "越界读取返回空字符串")
}

func TestTable_DropColumns(t *testing.T) {
	table := &Table{
		Headers: []string{"電話番号", "URL", "備考"},
		Rows:    [][]string{{"03", "old", "memo"}, {"06"}},
	}

	table.DropColumns("URL", "存在しない")

	assert.Equal(t, []string{"電話番号", "備考"}, table.Headers)
	assert.Equal(t, []string{"03", "memo"}, table.Rows[0])
	assert.Equal(t, []string{"06"}, table.Rows[1])
}

func TestColumnSet_DetectMissingPhone(t *testing.T) {
	table := &Table{Headers: []string{"会社名", "住所"}}

	_, err := LookupColumns.Detect(table)
	require.Error(t, err)

	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	var colErr *MissingColumnError
	assert.True(t, errors.As(err, &colErr))
}

func TestColumnIndex_Records(t *testing.T) {
	table := &Table{
		Headers: []string{"屋号", "電話番号", "HP", "所在地"},
		Rows: [][]string{
			{"山田商店", "", " example.co.jp ", "東京都千代田区"},
		},
	}

	idx, err := CompletionColumns.Detect(table)
	require.NoError(t, err)

	records := idx.Records(table)
	require.Len(t, records, 1)
	assert.Equal(t, &Record{
		Index:       0,
		Website:     "example.co.jp",
		CompanyName: "山田商店",
		Address:     "東京都千代田区",
	}, records[0])
}

func TestExtractionResult_ClaimIsFirstWins(t *testing.T) {
	r := NewExtractionResult()

	assert.True(t, r.Claim(FieldCompanyName, "株式会社テスト"))
	assert.False(t, r.Claim(FieldCompanyName, "別の会社"), "已填充字段不可覆盖")
	assert.False(t, r.Claim(FieldAddress, "  "), "空值不写入")
	assert.Equal(t, "株式会社テスト", r.Get(FieldCompanyName))
}

func TestExtractionResult_MergeAndMandatory(t *testing.T) {
	r := ExtractionResult{FieldCompanyName: "株式会社テスト"}
	assert.False(t, r.MandatoryComplete())

	r.Merge(ExtractionResult{
		FieldCompanyName:    "上書きされない",
		FieldRepresentative: "山田太郎",
		FieldAddress:        "東京都港区",
	})

	assert.True(t, r.MandatoryComplete())
	assert.Equal(t, "株式会社テスト", r.Get(FieldCompanyName))
	assert.Equal(t, []Field{FieldCapital, FieldEmployees}, r.Missing())
}

func TestFetchError_Is(t *testing.T) {
	blocked := &FetchError{URL: "https://www.google.com/search", StatusCode: 429}
	assert.True(t, errors.Is(blocked, ErrBlocked))
	assert.False(t, errors.Is(blocked, ErrFetchFailed))
	assert.True(t, IsFatal(fmt.Errorf("搜索失败: %w", blocked)))

	notFound := &FetchError{URL: "https://example.co.jp", StatusCode: 404}
	assert.True(t, errors.Is(notFound, ErrFetchFailed))
	assert.True(t, IsTransient(notFound))

	timeout := &FetchError{URL: "https://example.co.jp", Err: context.DeadlineExceeded}
	assert.True(t, IsTransient(timeout))
}

func TestIsTransient_SessionInvalidIsFatal(t *testing.T) {
	err := &StageError{Stage: StageOverview, Err: ErrSessionInvalid}

	assert.True(t, IsFatal(err))
	assert.False(t, IsTransient(err))
}

func TestOutcome_Sentinels(t *testing.T) {
	tests := []struct {
		name      string
		outcome   Outcome
		wantURL   string
		wantPhone string
	}{
		{"找到", Outcome{Status: OutcomeFound, URL: "https://a.jp", Phone: "0312345678"}, "https://a.jp", "0312345678"},
		{"未找到", Outcome{Status: OutcomeNotFound}, SentinelNotFound, SentinelNotFound},
		{"无电话", Outcome{Status: OutcomeNoPhone}, SentinelNoPhone, SentinelNotFound},
		{"限流", Outcome{Status: OutcomeBlocked}, SentinelBlocked, SentinelBlocked},
		{"中断", Outcome{Status: OutcomeInterrupted}, SentinelInterrupted, SentinelInterrupted},
		{"阶段错误", Outcome{Status: OutcomeError, Stage: StageOverview}, "エラー(概要1)", "エラー(概要1)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantURL, tt.outcome.URLValue())
			assert.Equal(t, tt.wantPhone, tt.outcome.PhoneValue())
		})
	}
}

func TestDelayRange_Validate(t *testing.T) {
	assert.NoError(t, DelayRange{Min: 2 * time.Second, Max: 4 * time.Second}.Validate("stage_backoff"))
	assert.Error(t, DelayRange{Min: 4 * time.Second, Max: 2 * time.Second}.Validate("stage_backoff"))
	assert.Error(t, DelayRange{Min: -time.Second}.Validate("decoy"))
}

func TestProxyConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		proxy   ProxyConfig
		wantErr bool
	}{
		{"未配置代理", ProxyConfig{}, false},
		{"完整配置", ProxyConfig{Host: "proxy.local", Port: 8080, User: "u", Password: "p"}, false},
		{"缺少主机", ProxyConfig{Port: 8080}, true},
		{"端口越界", ProxyConfig{Host: "proxy.local", Port: 70000}, true},
		{"只有密码", ProxyConfig{Host: "proxy.local", Port: 8080, Password: "p"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.proxy.Validate()
			assert.Equal(t, tt.wantErr, err != nil, "Validate() error = %v", err)
		})
	}

	assert.Equal(t, "proxy.local:8080", ProxyConfig{Host: "proxy.local", Port: 8080}.Address())
}

func TestCliHeaders_Parse(t *testing.T) {
	h, err := CliHeaders{"Accept-Language: ja-JP", "X-Test:1"}.Parse()
	require.NoError(t, err)
	assert.Equal(t, "ja-JP", h.Get("Accept-Language"))
	assert.Equal(t, "1", h.Get("X-Test"))

	_, err = CliHeaders{"no-colon"}.Parse()
	assert.Error(t, err)
	_, err = CliHeaders{": value"}.Parse()
	assert.Error(t, err)
}

func TestCheckpoint_SaveAndLoad(t *testing.T) {
	cp := NewCheckpoint("run-1", ModeLookup, "input.csv")
	cp.Put(Outcome{Index: 0, Status: OutcomeFound, URL: "https://a.jp"})
	cp.Put(Outcome{Index: 1, Status: OutcomeInterrupted})

	path := filepath.Join(t.TempDir(), "cp", CheckpointFilename("data/input.csv", ModeLookup))
	require.NoError(t, cp.SaveToFile(path))

	loaded, err := LoadCheckpointFromFile(path)
	require.NoError(t, err)

	done, ok := loaded.Done(0)
	assert.True(t, ok)
	assert.Equal(t, "https://a.jp", done.URL)

	_, ok = loaded.Done(1)
	assert.False(t, ok, "中断的行不会写入检查点")
	assert.Equal(t, "checkpoint_input_lookup.json", filepath.Base(path))
}

func TestRunReport_JSON(t *testing.T) {
	report := NewRunReport(ModeCompletion, "in.xlsx", "out.xlsx")
	report.Proxy = ProxyConfig{Host: "proxy.local", Port: 8080, User: "u", Password: "secret"}

	data, err := report.ToJSON()
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret", "代理密码不应写入报告")

	var decoded RunReport
	require.NoError(t, decoded.FromJSON(data))
	assert.Equal(t, report.RunID, decoded.RunID)
	assert.Len(t, decoded.RunID, 36)
}

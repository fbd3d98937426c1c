package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuji-matsuda-cyber/company-scraper/internal/crawlers"
	"github.com/yuji-matsuda-cyber/company-scraper/internal/models"
)

type fakeHomepage struct {
	result *crawlers.DrillResult
	err    error
	pages  []string
}

func (f *fakeHomepage) FindPhone(_ context.Context, homepage string) (*crawlers.DrillResult, error) {
	f.pages = append(f.pages, homepage)
	if f.result == nil {
		return &crawlers.DrillResult{}, f.err
	}
	return f.result, f.err
}

type fakePhones struct {
	answer, listing       string
	answerErr, listingErr error
	calls                 []string
}

func (f *fakePhones) AnswerPanelPhone(context.Context, string, string) (string, error) {
	f.calls = append(f.calls, "answer")
	return f.answer, f.answerErr
}

func (f *fakePhones) ListingPhone(context.Context, string, string) (string, error) {
	f.calls = append(f.calls, "listing")
	if f.listingErr != nil {
		panic(f.listingErr)
	}
	return f.listing, nil
}

func TestCompletionProcessor_IsTarget(t *testing.T) {
	p := NewCompletionProcessor(&fakeHomepage{}, &fakePhones{})
	assert.True(t, p.IsTarget(&models.Record{Phone: "  "}))
	assert.False(t, p.IsTarget(&models.Record{Phone: "0312345678"}))
	assert.False(t, p.IsTarget(&models.Record{Phone: models.SentinelNotFound}))
}

func TestCompletionProcessor_StageOrder(t *testing.T) {
	tests := []struct {
		name      string
		website   string
		homepage  *crawlers.DrillResult
		phones    *fakePhones
		wantPhone string
		wantStage models.Stage
		wantCalls []string
		wantPages int
	}{
		{
			name:      "官网深入找到",
			website:   "example.co.jp",
			homepage:  &crawlers.DrillResult{Phone: "0312345678", Stage: models.StageOverview},
			phones:    &fakePhones{answer: "0699998888"},
			wantPhone: "0312345678",
			wantStage: models.StageOverview,
			wantPages: 1,
		},
		{
			name:      "官网没有则用直接搜索",
			website:   "https://example.co.jp/",
			phones:    &fakePhones{answer: "0699998888", listing: "09011112222"},
			wantPhone: "0699998888",
			wantStage: models.StageAnswerPanel,
			wantCalls: []string{"answer"},
			wantPages: 1,
		},
		{
			name:      "HP无效时跳过深入",
			website:   "N/A",
			phones:    &fakePhones{listing: "09011112222"},
			wantPhone: "09011112222",
			wantStage: models.StageListing,
			wantCalls: []string{"answer", "listing"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hp := &fakeHomepage{result: tt.homepage}
			out, err := NewCompletionProcessor(hp, tt.phones).Process(context.Background(), &models.Record{
				Index: 2, Website: tt.website, CompanyName: "株式会社テスト", Address: "東京都千代田区1-1",
			})
			require.NoError(t, err)
			assert.Equal(t, models.OutcomeFound, out.Status)
			assert.Equal(t, tt.wantPhone, out.Phone)
			assert.Equal(t, tt.wantStage, out.Stage)
			assert.Equal(t, tt.wantCalls, tt.phones.calls)
			assert.Len(t, hp.pages, tt.wantPages)
		})
	}
}

func TestCompletionProcessor_HTTPPrefixAdded(t *testing.T) {
	hp := &fakeHomepage{}
	_, err := NewCompletionProcessor(hp, &fakePhones{}).Process(context.Background(), &models.Record{Website: "www.example.co.jp"})
	require.NoError(t, err)
	assert.Equal(t, []string{"http://www.example.co.jp"}, hp.pages)
}

func TestCompletionProcessor_NotFound(t *testing.T) {
	out, err := NewCompletionProcessor(&fakeHomepage{}, &fakePhones{}).Process(context.Background(), &models.Record{Website: "https://example.co.jp/"})
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeNotFound, out.Status)
	assert.Equal(t, models.SentinelNotFound, out.PhoneValue())
}

func TestCompletionProcessor_Errors(t *testing.T) {
	t.Run("会话失效原样返回", func(t *testing.T) {
		hp := &fakeHomepage{err: models.ErrSessionInvalid}
		phones := &fakePhones{}
		_, err := NewCompletionProcessor(hp, phones).Process(context.Background(), &models.Record{Website: "https://example.co.jp/"})
		assert.ErrorIs(t, err, models.ErrSessionInvalid)
		assert.Empty(t, phones.calls)
	})

	t.Run("深入阶段错误标记最后访问的层级", func(t *testing.T) {
		hp := &fakeHomepage{
			result: &crawlers.DrillResult{Hops: []models.DrillHop{
				{Depth: 0, Stage: models.StageHomepage},
				{Depth: 1, Stage: models.StageOverview},
			}},
			err: errors.New("boom"),
		}
		_, err := NewCompletionProcessor(hp, &fakePhones{}).Process(context.Background(), &models.Record{Website: "https://example.co.jp/"})
		var se *models.StageError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, models.StageOverview, se.Stage)
	})

	t.Run("直接搜索的普通错误", func(t *testing.T) {
		phones := &fakePhones{answerErr: errors.New("boom")}
		_, err := NewCompletionProcessor(&fakeHomepage{}, phones).Process(context.Background(), &models.Record{})
		var se *models.StageError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, models.StageAnswerPanel, se.Stage)
		assert.Equal(t, "エラー(Yahoo検索)", models.ErrorSentinel(se.Stage))
	})

	t.Run("panic转为阶段错误", func(t *testing.T) {
		phones := &fakePhones{listingErr: errors.New("nil pointer")}
		_, err := NewCompletionProcessor(&fakeHomepage{}, phones).Process(context.Background(), &models.Record{})
		var se *models.StageError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, models.StageListing, se.Stage)
	})
}

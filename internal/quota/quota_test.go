package quota

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HanTheDev/review-reply-gateway/internal/db"
	"github.com/HanTheDev/review-reply-gateway/internal/models"
)

var fixedNow = time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)

type fakeStore struct {
	mu       sync.Mutex
	quotas   map[string]*models.UsageQuota
	byWindow map[time.Time]models.UsageTotals
	quotaErr error
	usageErr error
	insertFn func(*models.UsageQuota) error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		quotas:   map[string]*models.UsageQuota{},
		byWindow: map[time.Time]models.UsageTotals{},
	}
}

func (f *fakeStore) GetUsageQuota(ctx context.Context, userID string) (*models.UsageQuota, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.quotaErr != nil {
		return nil, f.quotaErr
	}
	q, ok := f.quotas[userID]
	if !ok {
		return nil, db.ErrNotFound
	}
	return q, nil
}

func (f *fakeStore) InsertUsageQuota(ctx context.Context, q *models.UsageQuota) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertFn != nil {
		return f.insertFn(q)
	}
	if _, ok := f.quotas[q.UserID]; ok {
		return &pgconn.PgError{Code: "23505"}
	}
	f.quotas[q.UserID] = q
	return nil
}

func (f *fakeStore) UsageSince(ctx context.Context, userID string, since time.Time) (models.UsageTotals, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.usageErr != nil {
		return models.UsageTotals{}, f.usageErr
	}
	return f.byWindow[since], nil
}

func newTestService(store Store) *Service {
	s := NewService(store)
	s.now = func() time.Time { return fixedNow }
	return s
}

var (
	todayStart = time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	monthBegin = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
)

func standardQuota(userID string) *models.UsageQuota {
	return &models.UsageQuota{
		UserID:            userID,
		DailyReplyLimit:   10,
		MonthlyReplyLimit: 100,
		MonthlyTokenLimit: 100000,
	}
}

func TestCheckNoQuotaAllows(t *testing.T) {
	d := newTestService(newFakeStore()).Check(context.Background(), "u1")
	assert.True(t, d.Allowed)
	assert.Nil(t, d.Usage)
	assert.Nil(t, d.Quota)
}

func TestCheckDailyBoundary(t *testing.T) {
	store := newFakeStore()
	store.quotas["u1"] = standardQuota("u1")
	svc := newTestService(store)

	store.byWindow[todayStart] = models.UsageTotals{Requests: 9}
	store.byWindow[monthBegin] = models.UsageTotals{Requests: 9}
	d := svc.Check(context.Background(), "u1")
	assert.True(t, d.Allowed)
	require.NotNil(t, d.Usage)
	assert.Equal(t, 9, d.Usage.DailyReplies)
	assert.Equal(t, 10, d.Quota.DailyLimit)

	store.byWindow[todayStart] = models.UsageTotals{Requests: 10}
	store.byWindow[monthBegin] = models.UsageTotals{Requests: 10}
	d = svc.Check(context.Background(), "u1")
	assert.False(t, d.Allowed)
	assert.Equal(t, "일일 답글 생성 한도(10개)를 초과했습니다.", d.Reason)
}

func TestCheckMonthlyReplyLimit(t *testing.T) {
	store := newFakeStore()
	store.quotas["u1"] = standardQuota("u1")
	store.byWindow[todayStart] = models.UsageTotals{Requests: 1}
	store.byWindow[monthBegin] = models.UsageTotals{Requests: 100}

	d := newTestService(store).Check(context.Background(), "u1")
	assert.False(t, d.Allowed)
	assert.Equal(t, "월간 답글 생성 한도(100개)를 초과했습니다.", d.Reason)
}

func TestCheckMonthlyTokenLimitFormatsNumber(t *testing.T) {
	store := newFakeStore()
	store.quotas["u1"] = standardQuota("u1")
	store.byWindow[monthBegin] = models.UsageTotals{Requests: 5, Tokens: 100000}

	d := newTestService(store).Check(context.Background(), "u1")
	assert.False(t, d.Allowed)
	assert.Equal(t, "월간 토큰 사용 한도(100,000)를 초과했습니다.", d.Reason)
	assert.Equal(t, 100000, d.Usage.MonthlyTokens)
}

func TestCheckDailyWinsOverMonthly(t *testing.T) {
	store := newFakeStore()
	store.quotas["u1"] = standardQuota("u1")
	store.byWindow[todayStart] = models.UsageTotals{Requests: 10}
	store.byWindow[monthBegin] = models.UsageTotals{Requests: 100, Tokens: 200000}

	d := newTestService(store).Check(context.Background(), "u1")
	assert.Contains(t, d.Reason, "일일")
}

func TestCheckFailsOpen(t *testing.T) {
	store := newFakeStore()
	store.quotaErr = errors.New("too many connections")
	assert.True(t, newTestService(store).Check(context.Background(), "u1").Allowed)

	store = newFakeStore()
	store.quotas["u1"] = standardQuota("u1")
	store.usageErr = errors.New("statement timeout")
	d := newTestService(store).Check(context.Background(), "u1")
	assert.True(t, d.Allowed)
	assert.Empty(t, d.Reason)
}

func TestStats(t *testing.T) {
	store := newFakeStore()
	store.quotas["u1"] = standardQuota("u1")
	store.byWindow[todayStart] = models.UsageTotals{Requests: 2, Tokens: 300, Cost: 0.0002}
	store.byWindow[monthBegin] = models.UsageTotals{Requests: 20, Tokens: 3000, Cost: 0.002}

	stats, err := newTestService(store).Stats(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Today.Requests)
	assert.Equal(t, 3000, stats.ThisMonth.Tokens)
	require.NotNil(t, stats.Quota)
	assert.Equal(t, 100, stats.Quota.MonthlyReplyLimit)
}

func TestStatsWithoutQuota(t *testing.T) {
	stats, err := newTestService(newFakeStore()).Stats(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, stats.Quota)
	assert.Zero(t, stats.Today.Requests)
}

func TestStatsPropagatesErrors(t *testing.T) {
	store := newFakeStore()
	store.usageErr = errors.New("boom")
	_, err := newTestService(store).Stats(context.Background(), "u1")
	assert.Error(t, err)
}

func TestInitDefaultsAndDuplicate(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	require.NoError(t, svc.Init(ctx, "u1", models.QuotaLimits{}))
	q := store.quotas["u1"]
	require.NotNil(t, q)
	assert.Equal(t, DefaultDailyLimit, q.DailyReplyLimit)
	assert.Equal(t, DefaultMonthlyReplyLimit, q.MonthlyReplyLimit)
	assert.Equal(t, DefaultMonthlyTokenLimit, q.MonthlyTokenLimit)
	assert.Equal(t, todayStart, q.QuotaResetDate)

	assert.NoError(t, svc.Init(ctx, "u1", models.QuotaLimits{DailyLimit: 5}))
	assert.Equal(t, DefaultDailyLimit, store.quotas["u1"].DailyReplyLimit)
}

func TestInitCustomLimits(t *testing.T) {
	store := newFakeStore()
	require.NoError(t, newTestService(store).Init(context.Background(), "u2", models.QuotaLimits{
		DailyLimit: 5, MonthlyReplyLimit: 50, MonthlyTokenLimit: 5000,
	}))
	assert.Equal(t, 5, store.quotas["u2"].DailyReplyLimit)
	assert.Equal(t, 5000, store.quotas["u2"].MonthlyTokenLimit)
}

func TestInitOtherErrors(t *testing.T) {
	store := newFakeStore()
	store.insertFn = func(*models.UsageQuota) error { return errors.New("permission denied") }
	assert.Error(t, newTestService(store).Init(context.Background(), "u1", models.QuotaLimits{}))
}

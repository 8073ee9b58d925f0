//go:build integration

package db

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HanTheDev/review-reply-gateway/internal/models"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	database, err := NewDB(ctx, url)
	require.NoError(t, err)
	t.Cleanup(database.Close)

	require.NoError(t, database.Migrate(ctx))
	return database
}

func TestSentimentCacheInsertIsUniquePerHash(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	hash := fmt.Sprintf("%x", sha256.Sum256([]byte(uuid.NewString())))
	entry := &models.SentimentCacheEntry{
		ContentHash:       hash,
		ContentPreview:    "친절하고 맛있어요",
		Sentiment:         models.SentimentPositive,
		SentimentStrength: 0.8,
		AnalysisModel:     models.AnalysisModelRuleBased,
	}

	require.NoError(t, database.InsertSentimentCache(ctx, entry))
	err := database.InsertSentimentCache(ctx, entry)
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))

	require.NoError(t, database.TouchSentimentCache(ctx, hash))
	got, err := database.GetSentimentCache(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, 1, got.HitCount)
	assert.NotNil(t, got.LastUsedAt)

	t.Cleanup(func() {
		database.Pool.Exec(ctx, `DELETE FROM sentiment_analysis_cache WHERE content_hash = $1`, hash)
	})
}

func TestGetSentimentCacheMiss(t *testing.T) {
	database := openTestDB(t)

	_, err := database.GetSentimentCache(context.Background(), "0000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUsageSinceCountsSuccessfulRepliesOnly(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()
	userID := "it-" + uuid.NewString()

	for _, success := range []bool{true, true, false} {
		require.NoError(t, database.InsertUsageLog(ctx, &models.UsageLog{
			ID:          uuid.NewString(),
			UserID:      userID,
			APIType:     models.APITypeOpenAIChat,
			Endpoint:    "/reply/generate",
			ModelUsed:   "gpt-4o-mini",
			TotalTokens: 100,
			Success:     success,
		}))
	}

	totals, err := database.UsageSince(ctx, userID, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, totals.Requests)
	assert.Equal(t, 200, totals.Tokens)

	t.Cleanup(func() {
		database.Pool.Exec(ctx, `DELETE FROM api_usage_logs WHERE user_id = $1`, userID)
	})
}

func TestUsageQuotaDuplicateInsert(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()
	userID := "it-" + uuid.NewString()

	quota := &models.UsageQuota{
		UserID:            userID,
		DailyReplyLimit:   100,
		MonthlyReplyLimit: 1000,
		MonthlyTokenLimit: 100000,
		QuotaResetDate:    time.Now().UTC().Truncate(24 * time.Hour),
	}
	require.NoError(t, database.InsertUsageQuota(ctx, quota))
	assert.True(t, IsUniqueViolation(database.InsertUsageQuota(ctx, quota)))

	got, err := database.GetUsageQuota(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 100, got.DailyReplyLimit)

	t.Cleanup(func() {
		database.Pool.Exec(ctx, `DELETE FROM usage_quotas WHERE user_id = $1`, userID)
	})
}

func TestUserProfileRoundTrip(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()
	userID := "it-" + uuid.NewString()

	require.NoError(t, database.EnsureUser(ctx, userID, userID, models.RoleCustomer))

	got, err := database.GetUserProfile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, models.UserProfile{}, *got)

	require.NoError(t, database.UpdateUserProfile(ctx, userID, models.UserProfile{
		BusinessName: "달빛카페", BusinessType: "cafe", BrandTone: "warm",
	}))
	got, err = database.GetUserProfile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "달빛카페", got.BusinessName)
	assert.Equal(t, "warm", got.BrandTone)

	assert.ErrorIs(t, database.UpdateUserProfile(ctx, "missing-"+userID, *got), ErrNotFound)

	t.Cleanup(func() {
		database.Pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	})
}

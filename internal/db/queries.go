package db

import (
	"context"
	"time"

	"github.com/HanTheDev/review-reply-gateway/internal/models"
)

func (db *DB) GetSentimentCache(ctx context.Context, contentHash string) (*models.SentimentCacheEntry, error) {
	query := `
        SELECT content_hash, content_preview, sentiment, sentiment_strength, analysis_model,
               hit_count, last_used_at, created_at
        FROM sentiment_analysis_cache
        WHERE content_hash = $1
    `

	var entry models.SentimentCacheEntry
	err := db.Pool.QueryRow(ctx, query, contentHash).Scan(
		&entry.ContentHash,
		&entry.ContentPreview,
		&entry.Sentiment,
		&entry.SentimentStrength,
		&entry.AnalysisModel,
		&entry.HitCount,
		&entry.LastUsedAt,
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}

	return &entry, nil
}

// TouchSentimentCache records one cache hit.
func (db *DB) TouchSentimentCache(ctx context.Context, contentHash string) error {
	query := `
        UPDATE sentiment_analysis_cache
        SET hit_count = hit_count + 1, last_used_at = NOW()
        WHERE content_hash = $1
    `

	_, err := db.Pool.Exec(ctx, query, contentHash)
	return err
}

// InsertSentimentCache inserts a new entry. A concurrent insert of the same
// hash surfaces as a unique violation, see IsUniqueViolation.
func (db *DB) InsertSentimentCache(ctx context.Context, entry *models.SentimentCacheEntry) error {
	query := `
        INSERT INTO sentiment_analysis_cache
            (content_hash, content_preview, sentiment, sentiment_strength, topics, keywords,
             analysis_model, hit_count, last_used_at)
        VALUES ($1, $2, $3, $4, '[]', '[]', $5, 0, NULL)
    `

	_, err := db.Pool.Exec(ctx, query,
		entry.ContentHash,
		entry.ContentPreview,
		entry.Sentiment,
		entry.SentimentStrength,
		entry.AnalysisModel,
	)

	return err
}

func (db *DB) GetCacheStats(ctx context.Context) (*models.CacheStats, error) {
	query := `
        SELECT sentiment, COUNT(*), COALESCE(SUM(hit_count), 0)
        FROM sentiment_analysis_cache
        GROUP BY sentiment
    `

	rows, err := db.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := &models.CacheStats{BySentiment: map[string]int{}}
	for rows.Next() {
		var sentiment string
		var count, hits int
		if err := rows.Scan(&sentiment, &count, &hits); err != nil {
			return nil, err
		}
		stats.BySentiment[sentiment] = count
		stats.Entries += count
		stats.TotalHits += hits
	}

	return stats, rows.Err()
}

func (db *DB) InsertUsageLog(ctx context.Context, log *models.UsageLog) error {
	query := `
        INSERT INTO api_usage_logs
            (id, user_id, api_type, endpoint, model_used, prompt_tokens, completion_tokens,
             total_tokens, estimated_cost, request_size, response_size, success, error_message,
             execution_time_ms)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
    `

	_, err := db.Pool.Exec(ctx, query,
		log.ID,
		log.UserID,
		log.APIType,
		log.Endpoint,
		log.ModelUsed,
		log.PromptTokens,
		log.CompletionTokens,
		log.TotalTokens,
		log.EstimatedCost,
		log.RequestSize,
		log.ResponseSize,
		log.Success,
		log.ErrorMessage,
		log.ExecutionTimeMs,
	)

	return err
}

// UsageSince sums successful reply generations for a user from since onward.
func (db *DB) UsageSince(ctx context.Context, userID string, since time.Time) (models.UsageTotals, error) {
	query := `
        SELECT COUNT(*), COALESCE(SUM(total_tokens), 0), COALESCE(SUM(estimated_cost), 0)
        FROM api_usage_logs
        WHERE user_id = $1 AND api_type = 'openai_chat' AND success AND created_at >= $2
    `

	var totals models.UsageTotals
	err := db.Pool.QueryRow(ctx, query, userID, since).Scan(
		&totals.Requests,
		&totals.Tokens,
		&totals.Cost,
	)

	return totals, err
}

func (db *DB) GetUsageQuota(ctx context.Context, userID string) (*models.UsageQuota, error) {
	query := `
        SELECT user_id, daily_reply_limit, monthly_reply_limit, monthly_token_limit, quota_reset_date
        FROM usage_quotas
        WHERE user_id = $1
    `

	var quota models.UsageQuota
	err := db.Pool.QueryRow(ctx, query, userID).Scan(
		&quota.UserID,
		&quota.DailyReplyLimit,
		&quota.MonthlyReplyLimit,
		&quota.MonthlyTokenLimit,
		&quota.QuotaResetDate,
	)
	if err != nil {
		return nil, notFound(err)
	}

	return &quota, nil
}

func (db *DB) InsertUsageQuota(ctx context.Context, quota *models.UsageQuota) error {
	query := `
        INSERT INTO usage_quotas (user_id, daily_reply_limit, monthly_reply_limit, monthly_token_limit, quota_reset_date)
        VALUES ($1, $2, $3, $4, $5)
    `

	_, err := db.Pool.Exec(ctx, query,
		quota.UserID,
		quota.DailyReplyLimit,
		quota.MonthlyReplyLimit,
		quota.MonthlyTokenLimit,
		quota.QuotaResetDate,
	)

	return err
}

func (db *DB) GetUserProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	query := `
        SELECT COALESCE(business_name, ''), COALESCE(business_type, ''), COALESCE(brand_tone, '')
        FROM users
        WHERE id = $1
    `

	var profile models.UserProfile
	err := db.Pool.QueryRow(ctx, query, userID).Scan(
		&profile.BusinessName,
		&profile.BusinessType,
		&profile.BrandTone,
	)
	if err != nil {
		return nil, notFound(err)
	}

	return &profile, nil
}

func (db *DB) UpdateUserProfile(ctx context.Context, userID string, profile models.UserProfile) error {
	query := `
        UPDATE users
        SET business_name = NULLIF($2, ''), business_type = $3, brand_tone = $4, updated_at = NOW()
        WHERE id = $1
    `

	tag, err := db.Pool.Exec(ctx, query, userID, profile.BusinessName, profile.BusinessType, profile.BrandTone)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// EnsureUser creates the account row if it does not exist yet.
func (db *DB) EnsureUser(ctx context.Context, userID, username string, role models.Role) error {
	query := `
        INSERT INTO users (id, username, role)
        VALUES ($1, $2, $3)
        ON CONFLICT (id) DO UPDATE SET role = EXCLUDED.role, updated_at = NOW()
    `

	_, err := db.Pool.Exec(ctx, query, userID, username, role)
	return err
}

func (db *DB) InsertReplyHistory(ctx context.Context, history *models.ReplyHistory) error {
	query := `
        INSERT INTO reply_history
            (id, user_id, review_content, generated_reply, sentiment, sentiment_strength, topics, keywords)
        VALUES ($1, $2, $3, $4, $5, $6, '[]', '[]')
    `

	_, err := db.Pool.Exec(ctx, query,
		history.ID,
		history.UserID,
		history.ReviewContent,
		history.GeneratedReply,
		history.Sentiment,
		history.SentimentStrength,
	)

	return err
}

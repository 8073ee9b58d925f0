package models

import "time"

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

func (s Sentiment) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNegative, SentimentNeutral:
		return true
	}
	return false
}

type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleSubAdmin   Role = "sub_admin"
	RoleCustomer   Role = "customer"
)

type APIType string

const (
	APITypeOpenAIChat        APIType = "openai_chat"
	APITypeSentimentAnalysis APIType = "sentiment_analysis"
)

const AnalysisModelRuleBased = "rule-based"

// SentimentCacheEntry is keyed by the normalized content hash.
type SentimentCacheEntry struct {
	ContentHash       string     `json:"content_hash"`
	ContentPreview    string     `json:"content_preview"`
	Sentiment         Sentiment  `json:"sentiment"`
	SentimentStrength float64    `json:"sentiment_strength"`
	AnalysisModel     string     `json:"analysis_model"`
	HitCount          int        `json:"hit_count"`
	LastUsedAt        *time.Time `json:"last_used_at"`
	CreatedAt         time.Time  `json:"created_at"`
}

type UsageLog struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	APIType          APIType   `json:"api_type"`
	Endpoint         string    `json:"endpoint"`
	ModelUsed        string    `json:"model_used"`
	PromptTokens     int       `json:"prompt_tokens"`
	CompletionTokens int       `json:"completion_tokens"`
	TotalTokens      int       `json:"total_tokens"`
	EstimatedCost    float64   `json:"estimated_cost"`
	RequestSize      int64     `json:"request_size"`
	ResponseSize     int64     `json:"response_size"`
	Success          bool      `json:"success"`
	ErrorMessage     *string   `json:"error_message"`
	ExecutionTimeMs  int64     `json:"execution_time_ms"`
	CreatedAt        time.Time `json:"created_at"`
}

type UsageQuota struct {
	UserID            string    `json:"user_id"`
	DailyReplyLimit   int       `json:"daily_reply_limit"`
	MonthlyReplyLimit int       `json:"monthly_reply_limit"`
	MonthlyTokenLimit int       `json:"monthly_token_limit"`
	QuotaResetDate    time.Time `json:"quota_reset_date"`
}

// UsageTotals aggregates usage_logs over one window.
type UsageTotals struct {
	Requests int     `json:"requests"`
	Tokens   int     `json:"tokens"`
	Cost     float64 `json:"cost"`
}

type UserProfile struct {
	BusinessName string `json:"business_name"`
	BusinessType string `json:"business_type"`
	BrandTone    string `json:"brand_tone"`
}

const (
	DefaultBusinessType = "cafe"
	DefaultBrandTone    = "friendly"
)

// WithDefaults fills unset business type and tone.
func (p UserProfile) WithDefaults() UserProfile {
	if p.BusinessType == "" {
		p.BusinessType = DefaultBusinessType
	}
	if p.BrandTone == "" {
		p.BrandTone = DefaultBrandTone
	}
	return p
}

type ReplyHistory struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	ReviewContent     string    `json:"review_content"`
	GeneratedReply    string    `json:"generated_reply"`
	Sentiment         Sentiment `json:"sentiment"`
	SentimentStrength float64   `json:"sentiment_strength"`
	CreatedAt         time.Time `json:"created_at"`
}

type CacheStats struct {
	Entries     int            `json:"entries"`
	TotalHits   int            `json:"total_hits"`
	BySentiment map[string]int `json:"by_sentiment"`
}

package models

type GenerateReplyRequest struct {
	ReviewContent string `json:"review_content"`
}

type GenerateReplyResponse struct {
	Success           bool      `json:"success"`
	Reply             string    `json:"reply"`
	Sentiment         Sentiment `json:"sentiment"`
	SentimentStrength float64   `json:"sentiment_strength"`
	Topics            []string  `json:"topics"`
	Keywords          []string  `json:"keywords"`
}

type QuotaLimits struct {
	DailyLimit        int `json:"dailyLimit"`
	MonthlyReplyLimit int `json:"monthlyReplyLimit"`
	MonthlyTokenLimit int `json:"monthlyTokenLimit"`
}

type CurrentUsage struct {
	DailyReplies   int `json:"dailyReplies"`
	MonthlyReplies int `json:"monthlyReplies"`
	MonthlyTokens  int `json:"monthlyTokens"`
}

type QuotaExceededResponse struct {
	Success      bool          `json:"success"`
	Error        string        `json:"error"`
	Quota        *QuotaLimits  `json:"quota"`
	CurrentUsage *CurrentUsage `json:"currentUsage"`
}

type UsageStats struct {
	Today     UsageTotals  `json:"today"`
	ThisMonth UsageTotals  `json:"thisMonth"`
	Quota     *QuotaLimits `json:"quota,omitempty"`
}

type UpdateProfileRequest struct {
	BusinessName string `json:"business_name" validate:"max=100"`
	BusinessType string `json:"business_type" validate:"required,business_type"`
	BrandTone    string `json:"brand_tone" validate:"required,brand_tone"`
}

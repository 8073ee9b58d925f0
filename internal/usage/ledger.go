package usage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/HanTheDev/review-reply-gateway/internal/async"
	"github.com/HanTheDev/review-reply-gateway/internal/logger"
	"github.com/HanTheDev/review-reply-gateway/internal/models"
)

type Store interface {
	InsertUsageLog(ctx context.Context, log *models.UsageLog) error
}

// Record describes one generation attempt.
type Record struct {
	UserID           string
	APIType          models.APIType
	Endpoint         string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	RequestSize      int64
	ResponseSize     int64
	Success          bool
	Error            string
	Elapsed          time.Duration
}

// Ledger appends usage rows. Failures are logged and never returned.
type Ledger struct {
	store Store
	tasks *async.Group
	now   func() time.Time
}

func NewLedger(store Store, tasks *async.Group) *Ledger {
	return &Ledger{store: store, tasks: tasks, now: time.Now}
}

// Log writes rec in the background.
func (l *Ledger) Log(rec Record) {
	l.tasks.Go("usage log", func(ctx context.Context) {
		l.LogSync(ctx, rec)
	})
}

// LogSync writes rec before returning.
func (l *Ledger) LogSync(ctx context.Context, rec Record) {
	defer func() {
		if r := recover(); r != nil {
			logger.Log.WithField("panic", r).Error("usage log panicked")
		}
	}()

	row := l.toRow(rec)
	if err := l.store.InsertUsageLog(ctx, row); err != nil {
		logger.Log.WithFields(logrus.Fields{
			"user_id": rec.UserID,
			"error":   err,
		}).Warn("failed to log api usage")
	}
}

func (l *Ledger) toRow(rec Record) *models.UsageLog {
	total := rec.TotalTokens
	if total == 0 {
		total = rec.PromptTokens + rec.CompletionTokens
	}

	row := &models.UsageLog{
		ID:               uuid.NewString(),
		UserID:           rec.UserID,
		APIType:          rec.APIType,
		Endpoint:         rec.Endpoint,
		ModelUsed:        rec.Model,
		PromptTokens:     rec.PromptTokens,
		CompletionTokens: rec.CompletionTokens,
		TotalTokens:      total,
		RequestSize:      rec.RequestSize,
		ResponseSize:     rec.ResponseSize,
		Success:          rec.Success,
		ExecutionTimeMs:  rec.Elapsed.Milliseconds(),
		CreatedAt:        l.now(),
	}
	if row.APIType == "" {
		row.APIType = models.APITypeOpenAIChat
	}
	if rec.PromptTokens > 0 || rec.CompletionTokens > 0 {
		row.EstimatedCost = EstimateCost(rec.Model, rec.PromptTokens, rec.CompletionTokens)
	}
	if rec.Error != "" {
		msg := rec.Error
		row.ErrorMessage = &msg
	}

	return row
}

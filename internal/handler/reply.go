package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/HanTheDev/review-reply-gateway/internal/apperr"
	"github.com/HanTheDev/review-reply-gateway/internal/async"
	"github.com/HanTheDev/review-reply-gateway/internal/auth"
	"github.com/HanTheDev/review-reply-gateway/internal/cache"
	"github.com/HanTheDev/review-reply-gateway/internal/db"
	"github.com/HanTheDev/review-reply-gateway/internal/logger"
	"github.com/HanTheDev/review-reply-gateway/internal/models"
	"github.com/HanTheDev/review-reply-gateway/internal/quota"
	"github.com/HanTheDev/review-reply-gateway/internal/reply"
	"github.com/HanTheDev/review-reply-gateway/internal/sentiment"
	"github.com/HanTheDev/review-reply-gateway/internal/usage"
)

const (
	replyEndpoint   = "/reply/generate"
	maxRequestBytes = 64 << 10
)

type SentimentCache interface {
	Lookup(ctx context.Context, contentHash string) (*models.SentimentCacheEntry, bool)
	Store(ctx context.Context, entry *models.SentimentCacheEntry)
}

type QuotaGuard interface {
	Check(ctx context.Context, userID string) quota.Decision
}

type Synthesizer interface {
	Synthesize(ctx context.Context, review string, analysis sentiment.Result, profile models.UserProfile) reply.Result
}

type Ledger interface {
	Log(rec usage.Record)
	LogSync(ctx context.Context, rec usage.Record)
}

type ProfileReader interface {
	GetUserProfile(ctx context.Context, userID string) (*models.UserProfile, error)
}

type HistoryWriter interface {
	InsertReplyHistory(ctx context.Context, history *models.ReplyHistory) error
}

type Limiter interface {
	Allow(ctx context.Context, userID string, limit int) (bool, error)
}

// ReplyHandler serves POST /reply/generate.
type ReplyHandler struct {
	cache       SentimentCache
	quota       QuotaGuard
	synthesizer Synthesizer
	ledger      Ledger
	profiles    ProfileReader
	history     HistoryWriter
	limiter     Limiter
	hourlyLimit int
	tasks       *async.Group
}

type ReplyDeps struct {
	Cache       SentimentCache
	Quota       QuotaGuard
	Synthesizer Synthesizer
	Ledger      Ledger
	Profiles    ProfileReader
	History     HistoryWriter
	// Limiter is optional.
	Limiter     Limiter
	HourlyLimit int
	Tasks       *async.Group
}

func NewReplyHandler(d ReplyDeps) *ReplyHandler {
	return &ReplyHandler{
		cache:       d.Cache,
		quota:       d.Quota,
		synthesizer: d.Synthesizer,
		ledger:      d.Ledger,
		profiles:    d.Profiles,
		history:     d.History,
		limiter:     d.Limiter,
		hourlyLimit: d.HourlyLimit,
		tasks:       d.Tasks,
	}
}

func (h *ReplyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()

	claims, ok := auth.GetUserFromContext(r.Context())
	if !ok {
		apperr.Write(w, apperr.New(apperr.ErrUnauthorized, apperr.MsgAuthRequired))
		return
	}
	userID := claims.UserID
	log := logger.Log.WithField("user_id", userID)

	// Once the reply is on the wire a panic can only be logged.
	var written bool
	defer func() {
		rec := recover()
		if rec == nil {
			return
		}
		if written {
			log.WithField("panic", fmt.Sprint(rec)).Error("panic after reply was sent")
			return
		}
		h.fail(w, r, userID, startTime, fmt.Errorf("panic: %v", rec))
	}()

	if !h.allowBurst(r.Context(), userID, log) {
		apperr.Write(w, apperr.New(apperr.ErrRateLimited, apperr.MsgRateLimited))
		return
	}

	decision := h.quota.Check(r.Context(), userID)
	if !decision.Allowed {
		h.ledger.LogSync(r.Context(), usage.Record{
			UserID:      userID,
			APIType:     models.APITypeOpenAIChat,
			Endpoint:    replyEndpoint,
			RequestSize: max(r.ContentLength, 0),
			Success:     false,
			Error:       decision.Reason,
			Elapsed:     time.Since(startTime),
		})
		apperr.WriteJSON(w, http.StatusTooManyRequests, models.QuotaExceededResponse{
			Success:      false,
			Error:        decision.Reason,
			Quota:        decision.Quota,
			CurrentUsage: decision.Usage,
		})
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err != nil {
		apperr.Write(w, apperr.New(apperr.ErrValidation, apperr.MsgBadRequest))
		return
	}
	var req models.GenerateReplyRequest
	if err := json.Unmarshal(body, &req); err != nil {
		apperr.Write(w, apperr.New(apperr.ErrValidation, apperr.MsgBadRequest))
		return
	}
	review := req.ReviewContent
	if strings.TrimSpace(review) == "" {
		apperr.Write(w, apperr.New(apperr.ErrValidation, apperr.MsgEmptyReview))
		return
	}

	profile, err := h.profiles.GetUserProfile(r.Context(), userID)
	if errors.Is(err, db.ErrNotFound) {
		apperr.Write(w, apperr.New(apperr.ErrNotFound, apperr.MsgUserNotFound))
		return
	}
	if err != nil {
		h.fail(w, r, userID, startTime, fmt.Errorf("load profile: %w", err))
		return
	}

	contentHash := cache.ContentHash(review)
	var analysis sentiment.Result
	if cached, hit := h.cache.Lookup(r.Context(), contentHash); hit {
		analysis = sentiment.Result{Sentiment: cached.Sentiment, Strength: cached.SentimentStrength}
	} else {
		analysis = sentiment.Classify(review)
		entry := cache.NewEntry(review, contentHash, analysis.Sentiment, analysis.Strength)
		h.tasks.Go("sentiment cache store", func(ctx context.Context) {
			h.cache.Store(ctx, entry)
		})
	}

	result := h.synthesizer.Synthesize(r.Context(), review, analysis, profile.WithDefaults())

	h.saveHistory(r.Context(), userID, review, result.Reply, analysis, log)

	resp, err := json.Marshal(models.GenerateReplyResponse{
		Success:           true,
		Reply:             result.Reply,
		Sentiment:         analysis.Sentiment,
		SentimentStrength: analysis.Strength,
		Topics:            []string{},
		Keywords:          []string{},
	})
	if err != nil {
		h.fail(w, r, userID, startTime, fmt.Errorf("encode response: %w", err))
		return
	}

	written = true
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(resp)

	rec := usage.Record{
		UserID:           userID,
		APIType:          models.APITypeOpenAIChat,
		Endpoint:         replyEndpoint,
		Model:            result.Model,
		PromptTokens:     result.PromptTokens,
		CompletionTokens: result.CompletionTokens,
		TotalTokens:      result.TotalTokens,
		RequestSize:      int64(len(body)),
		ResponseSize:     int64(len(resp)),
		Success:          true,
		Elapsed:          time.Since(startTime),
	}
	if result.Err != nil && !errors.Is(result.Err, reply.ErrNoModel) {
		rec.Error = result.Err.Error()
	}
	h.ledger.Log(rec)

	log.WithFields(logrus.Fields{
		"content_hash": contentHash[:8],
		"sentiment":    analysis.Sentiment,
		"fallback":     result.Fallback,
		"latency_ms":   time.Since(startTime).Milliseconds(),
	}).Info("reply generated")
}

// allowBurst applies the hourly limiter. Limiter errors allow the request.
func (h *ReplyHandler) allowBurst(ctx context.Context, userID string, log *logrus.Entry) bool {
	if h.limiter == nil {
		return true
	}
	allowed, err := h.limiter.Allow(ctx, userID, h.hourlyLimit)
	if err != nil {
		log.WithError(err).Warn("rate limit check failed, allowing request")
		return true
	}
	if !allowed {
		log.Info("hourly rate limit exceeded")
	}
	return allowed
}

func (h *ReplyHandler) saveHistory(ctx context.Context, userID, review, generated string, analysis sentiment.Result, log *logrus.Entry) {
	err := h.history.InsertReplyHistory(ctx, &models.ReplyHistory{
		ID:                uuid.NewString(),
		UserID:            userID,
		ReviewContent:     review,
		GeneratedReply:    generated,
		Sentiment:         analysis.Sentiment,
		SentimentStrength: analysis.Strength,
	})
	if err != nil {
		log.WithError(err).Warn("failed to save reply history")
	}
}

func (h *ReplyHandler) fail(w http.ResponseWriter, r *http.Request, userID string, startTime time.Time, err error) {
	logger.Log.WithFields(logrus.Fields{
		"user_id": userID,
		"error":   err,
	}).Error("reply generation failed")

	h.ledger.Log(usage.Record{
		UserID:      userID,
		APIType:     models.APITypeOpenAIChat,
		Endpoint:    replyEndpoint,
		RequestSize: max(r.ContentLength, 0),
		Success:     false,
		Error:       err.Error(),
		Elapsed:     time.Since(startTime),
	})
	apperr.Write(w, apperr.New(apperr.ErrInternal, apperr.MsgServerError))
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/HanTheDev/review-reply-gateway/internal/async"
	"github.com/HanTheDev/review-reply-gateway/internal/db"
	"github.com/HanTheDev/review-reply-gateway/internal/logger"
	"github.com/HanTheDev/review-reply-gateway/internal/models"
)

const previewLength = 100

// Repository is the durable tier of the sentiment cache.
type Repository interface {
	GetSentimentCache(ctx context.Context, contentHash string) (*models.SentimentCacheEntry, error)
	TouchSentimentCache(ctx context.Context, contentHash string) error
	InsertSentimentCache(ctx context.Context, entry *models.SentimentCacheEntry) error
}

// SentimentCache maps content hashes to sentiment results. Postgres is the
// source of truth; Redis, when configured, answers repeat lookups first.
// Every failure is treated as a miss.
type SentimentCache struct {
	repo  Repository
	redis *redis.Client
	ttl   time.Duration
	tasks *async.Group
}

func NewSentimentCache(repo Repository, redisURL string, ttl time.Duration, tasks *async.Group) (*SentimentCache, error) {
	sc := &SentimentCache{repo: repo, ttl: ttl, tasks: tasks}
	if redisURL == "" {
		return sc, nil
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	sc.redis = redis.NewClient(opt)

	return sc, nil
}

type redisEntry struct {
	Sentiment     models.Sentiment `json:"sentiment"`
	Strength      float64          `json:"strength"`
	AnalysisModel string           `json:"analysis_model"`
}

func redisKey(contentHash string) string {
	return "sentiment:" + contentHash
}

func shortHash(contentHash string) string {
	if len(contentHash) > 8 {
		return contentHash[:8]
	}
	return contentHash
}

// Lookup returns the cached analysis for contentHash. On a hit the hit counter
// is bumped in the background.
func (sc *SentimentCache) Lookup(ctx context.Context, contentHash string) (*models.SentimentCacheEntry, bool) {
	log := logger.Log.WithField("content_hash", shortHash(contentHash))

	if entry, ok := sc.lookupRedis(ctx, contentHash, log); ok {
		sc.touch(contentHash)
		log.Debug("sentiment cache hit (redis)")
		return entry, true
	}

	entry, err := sc.repo.GetSentimentCache(ctx, contentHash)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			log.WithError(err).Warn("sentiment cache lookup failed, treating as miss")
		}
		log.Debug("sentiment cache miss")
		return nil, false
	}

	sc.touch(contentHash)
	sc.setRedis(ctx, entry)
	log.WithField("hit_count", entry.HitCount+1).Debug("sentiment cache hit")
	return entry, true
}

// Store inserts entry if no row exists for its hash. A unique violation
// means a concurrent request cached it first and counts as success. Other
// errors are logged.
func (sc *SentimentCache) Store(ctx context.Context, entry *models.SentimentCacheEntry) {
	log := logger.Log.WithField("content_hash", shortHash(entry.ContentHash))

	err := sc.repo.InsertSentimentCache(ctx, entry)
	switch {
	case err == nil:
		log.Debug("sentiment cached")
	case db.IsUniqueViolation(err):
		log.Debug("sentiment already cached")
	default:
		log.WithError(err).Warn("failed to store sentiment cache entry")
		return
	}

	sc.setRedis(ctx, entry)
}

// NewEntry builds a cache row for content analyzed by the rule classifier.
func NewEntry(content, contentHash string, sentiment models.Sentiment, strength float64) *models.SentimentCacheEntry {
	return &models.SentimentCacheEntry{
		ContentHash:       contentHash,
		ContentPreview:    preview(content),
		Sentiment:         sentiment,
		SentimentStrength: strength,
		AnalysisModel:     models.AnalysisModelRuleBased,
	}
}

func preview(content string) string {
	runes := []rune(content)
	if len(runes) <= previewLength {
		return content
	}
	return string(runes[:previewLength])
}

func (sc *SentimentCache) touch(contentHash string) {
	sc.tasks.Go("sentiment cache touch", func(ctx context.Context) {
		if err := sc.repo.TouchSentimentCache(ctx, contentHash); err != nil {
			logger.Log.WithFields(logrus.Fields{
				"content_hash": shortHash(contentHash),
				"error":        err,
			}).Warn("failed to record sentiment cache hit")
		}
	})
}

func (sc *SentimentCache) lookupRedis(ctx context.Context, contentHash string, log *logrus.Entry) (*models.SentimentCacheEntry, bool) {
	if sc.redis == nil {
		return nil, false
	}

	raw, err := sc.redis.Get(ctx, redisKey(contentHash)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.WithError(err).Warn("redis sentiment lookup failed")
		}
		return nil, false
	}

	var cached redisEntry
	if err := json.Unmarshal(raw, &cached); err != nil || !cached.Sentiment.Valid() {
		return nil, false
	}

	return &models.SentimentCacheEntry{
		ContentHash:       contentHash,
		Sentiment:         cached.Sentiment,
		SentimentStrength: cached.Strength,
		AnalysisModel:     cached.AnalysisModel,
	}, true
}

func (sc *SentimentCache) setRedis(ctx context.Context, entry *models.SentimentCacheEntry) {
	if sc.redis == nil {
		return
	}

	payload, _ := json.Marshal(redisEntry{
		Sentiment:     entry.Sentiment,
		Strength:      entry.SentimentStrength,
		AnalysisModel: entry.AnalysisModel,
	})
	if err := sc.redis.Set(ctx, redisKey(entry.ContentHash), payload, sc.ttl).Err(); err != nil {
		logger.Log.WithError(err).Warn("redis sentiment store failed")
	}
}

func (sc *SentimentCache) Ping(ctx context.Context) error {
	if sc.redis == nil {
		return nil
	}
	return sc.redis.Ping(ctx).Err()
}

func (sc *SentimentCache) Close() error {
	if sc.redis == nil {
		return nil
	}
	return sc.redis.Close()
}

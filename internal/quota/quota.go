package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/HanTheDev/review-reply-gateway/internal/db"
	"github.com/HanTheDev/review-reply-gateway/internal/logger"
	"github.com/HanTheDev/review-reply-gateway/internal/models"
)

const (
	DefaultDailyLimit        = 100
	DefaultMonthlyReplyLimit = 1000
	DefaultMonthlyTokenLimit = 100000
)

type Store interface {
	GetUsageQuota(ctx context.Context, userID string) (*models.UsageQuota, error)
	InsertUsageQuota(ctx context.Context, quota *models.UsageQuota) error
	UsageSince(ctx context.Context, userID string, since time.Time) (models.UsageTotals, error)
}

// Decision is the outcome of a quota check. Usage and Quota are nil when the
// user has no quota row or when accounting failed.
type Decision struct {
	Allowed bool
	Reason  string
	Usage   *models.CurrentUsage
	Quota   *models.QuotaLimits
}

type Service struct {
	store   Store
	now     func() time.Time
	printer *message.Printer
}

func NewService(store Store) *Service {
	return &Service{
		store:   store,
		now:     func() time.Time { return time.Now().UTC() },
		printer: message.NewPrinter(language.Korean),
	}
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func limitsOf(q *models.UsageQuota) *models.QuotaLimits {
	return &models.QuotaLimits{
		DailyLimit:        q.DailyReplyLimit,
		MonthlyReplyLimit: q.MonthlyReplyLimit,
		MonthlyTokenLimit: q.MonthlyTokenLimit,
	}
}

// Check decides whether userID may generate another reply. Users without a
// quota row are always allowed, and so is everyone when the accounting
// queries fail.
func (s *Service) Check(ctx context.Context, userID string) Decision {
	log := logger.Log.WithField("user_id", userID)

	q, err := s.store.GetUsageQuota(ctx, userID)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			log.WithError(err).Warn("failed to fetch quota, allowing request")
		}
		return Decision{Allowed: true}
	}

	now := s.now()
	var today, month models.UsageTotals
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		today, err = s.store.UsageSince(gctx, userID, dayStart(now))
		return err
	})
	g.Go(func() (err error) {
		month, err = s.store.UsageSince(gctx, userID, monthStart(now))
		return err
	})
	if err := g.Wait(); err != nil {
		log.WithError(err).Warn("failed to fetch usage, allowing request")
		return Decision{Allowed: true}
	}

	usage := &models.CurrentUsage{
		DailyReplies:   today.Requests,
		MonthlyReplies: month.Requests,
		MonthlyTokens:  month.Tokens,
	}
	d := Decision{Allowed: true, Usage: usage, Quota: limitsOf(q)}

	switch {
	case q.DailyReplyLimit > 0 && usage.DailyReplies >= q.DailyReplyLimit:
		d.Allowed = false
		d.Reason = fmt.Sprintf("일일 답글 생성 한도(%d개)를 초과했습니다.", q.DailyReplyLimit)
	case q.MonthlyReplyLimit > 0 && usage.MonthlyReplies >= q.MonthlyReplyLimit:
		d.Allowed = false
		d.Reason = fmt.Sprintf("월간 답글 생성 한도(%d개)를 초과했습니다.", q.MonthlyReplyLimit)
	case q.MonthlyTokenLimit > 0 && usage.MonthlyTokens >= q.MonthlyTokenLimit:
		d.Allowed = false
		d.Reason = s.printer.Sprintf("월간 토큰 사용 한도(%d)를 초과했습니다.", q.MonthlyTokenLimit)
	}

	if !d.Allowed {
		log.WithFields(logrus.Fields{
			"daily":          usage.DailyReplies,
			"monthly":        usage.MonthlyReplies,
			"monthly_tokens": usage.MonthlyTokens,
		}).Info("quota exceeded")
	}

	return d
}

// Stats reports today's and this month's usage with the quota, if any.
func (s *Service) Stats(ctx context.Context, userID string) (*models.UsageStats, error) {
	now := s.now()
	stats := &models.UsageStats{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.Today, err = s.store.UsageSince(gctx, userID, dayStart(now))
		return err
	})
	g.Go(func() (err error) {
		stats.ThisMonth, err = s.store.UsageSince(gctx, userID, monthStart(now))
		return err
	})
	g.Go(func() error {
		q, err := s.store.GetUsageQuota(gctx, userID)
		if errors.Is(err, db.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		stats.Quota = limitsOf(q)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("usage stats: %w", err)
	}

	return stats, nil
}

// Init creates the quota row for userID. Zero limits take the defaults. An
// existing row is left untouched and reported as success.
func (s *Service) Init(ctx context.Context, userID string, limits models.QuotaLimits) error {
	if limits.DailyLimit <= 0 {
		limits.DailyLimit = DefaultDailyLimit
	}
	if limits.MonthlyReplyLimit <= 0 {
		limits.MonthlyReplyLimit = DefaultMonthlyReplyLimit
	}
	if limits.MonthlyTokenLimit <= 0 {
		limits.MonthlyTokenLimit = DefaultMonthlyTokenLimit
	}

	err := s.store.InsertUsageQuota(ctx, &models.UsageQuota{
		UserID:            userID,
		DailyReplyLimit:   limits.DailyLimit,
		MonthlyReplyLimit: limits.MonthlyReplyLimit,
		MonthlyTokenLimit: limits.MonthlyTokenLimit,
		QuotaResetDate:    dayStart(s.now()),
	})
	if err != nil && !db.IsUniqueViolation(err) {
		return fmt.Errorf("initialize quota: %w", err)
	}

	return nil
}

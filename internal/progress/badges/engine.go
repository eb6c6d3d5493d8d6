package badges

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/2beens/gymprogress/internal/progress/streaks"
	"github.com/2beens/gymprogress/internal/telemetry/metrics"
	"github.com/2beens/gymprogress/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

const DefaultSweepWorkers = 4

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=badges_test
type progressStore interface {
	GetOrCreateProgress(ctx context.Context, key ProgressKey, now time.Time) (UserBadgeProgress, error)
	SaveProgress(ctx context.Context, p UserBadgeProgress) (UserBadgeProgress, error)
}

type metricsSource interface {
	Metrics(ctx context.Context, userID int, now time.Time) (streaks.Metrics, error)
}

type usersSource interface {
	ListUserIDsWithActivity(ctx context.Context) ([]int, error)
}

type BadgeStatus struct {
	Badge           Badge      `json:"badge"`
	CurrentProgress int        `json:"currentProgress"`
	IsUnlocked      bool       `json:"isUnlocked"`
	UnlockedAt      *time.Time `json:"unlockedAt,omitempty"`
}

// Summary is the outcome of evaluating every badge for one user.
type Summary struct {
	UserID        int             `json:"userId"`
	Metrics       streaks.Metrics `json:"metrics"`
	Badges        []BadgeStatus   `json:"badges"`
	NewlyUnlocked []Badge         `json:"newlyUnlocked"`
	EvaluatedAt   time.Time       `json:"evaluatedAt"`
}

type SweepResult struct {
	Users     int           `json:"users"`
	Success   int           `json:"success"`
	Errors    int           `json:"errors"`
	Cancelled bool          `json:"cancelled"`
	Duration  time.Duration `json:"duration"`
}

type EngineParams struct {
	Catalog        badgeLister
	Progress       progressStore
	Metrics        metricsSource
	Users          usersSource
	SweepWorkers   int
	MetricsManager *metrics.Manager
}

// Engine keeps per user badge progress in line with the user's streak metrics.
type Engine struct {
	catalog        badgeLister
	progress       progressStore
	metrics        metricsSource
	users          usersSource
	sweepWorkers   int
	metricsManager *metrics.Manager
	userLocks      *keyedMutex
}

func NewEngine(params EngineParams) *Engine {
	workers := params.SweepWorkers
	if workers <= 0 {
		workers = DefaultSweepWorkers
	}
	return &Engine{
		catalog:        params.Catalog,
		progress:       params.Progress,
		metrics:        params.Metrics,
		users:          params.Users,
		sweepWorkers:   workers,
		metricsManager: params.MetricsManager,
		userLocks:      newKeyedMutex(),
	}
}

// EvaluateBadgesForUser recomputes the user's metrics and moves every badge's
// progress forward. It always reads fresh data. streaks.ErrUserNotFound is
// returned for users without any activity.
func (e *Engine) EvaluateBadgesForUser(ctx context.Context, userID int, now time.Time) (*Summary, error) {
	summary, err := e.evaluateUser(ctx, userID, now)
	if err != nil && !errors.Is(err, streaks.ErrUserNotFound) {
		e.metricsManager.CounterBadgeEvaluationErrors.WithLabelValues(metrics.ModeOnDemand).Inc()
	}
	return summary, err
}

func (e *Engine) evaluateUser(ctx context.Context, userID int, now time.Time) (_ *Summary, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "badges.evaluateUser")
	span.SetAttributes(attribute.Int("user.id", userID))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	// postgres keeps microseconds
	now = now.UTC().Truncate(time.Microsecond)
	userMetrics, err := e.metrics.Metrics(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	catalog, err := e.catalog.ListBadges(ctx)
	if err != nil {
		return nil, fmt.Errorf("badge catalog: %w", err)
	}

	unlock := e.userLocks.Lock(userID)
	defer unlock()

	summary := &Summary{
		UserID:        userID,
		Metrics:       userMetrics,
		Badges:        make([]BadgeStatus, 0, len(catalog)),
		NewlyUnlocked: make([]Badge, 0),
		EvaluatedAt:   now,
	}

	var errs error
	for _, badge := range catalog {
		status, unlockedNow, err := e.evaluateBadge(ctx, userID, badge, userMetrics, now)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("badge %d: %w", badge.ID, err))
			continue
		}

		summary.Badges = append(summary.Badges, status)
		if unlockedNow {
			summary.NewlyUnlocked = append(summary.NewlyUnlocked, badge)
			e.metricsManager.CounterBadgeUnlocks.WithLabelValues(string(badge.Category)).Inc()
			log.WithFields(log.Fields{
				"user_id":  userID,
				"badge_id": badge.ID,
			}).Infof("badge unlocked: %s (%s/%s)", badge.Name, badge.Category, badge.Tier)
		}
	}
	if errs != nil {
		return nil, errs
	}

	span.SetAttributes(attribute.Int("badges.unlocked", len(summary.NewlyUnlocked)))
	return summary, nil
}

func (e *Engine) evaluateBadge(
	ctx context.Context,
	userID int,
	badge Badge,
	userMetrics streaks.Metrics,
	now time.Time,
) (BadgeStatus, bool, error) {
	metric, err := MetricFor(badge.Category, userMetrics)
	if err != nil {
		return BadgeStatus{}, false, err
	}

	p, err := e.progress.GetOrCreateProgress(ctx, ProgressKey{UserID: userID, BadgeID: badge.ID}, now)
	if err != nil {
		return BadgeStatus{}, false, fmt.Errorf("get progress: %w", err)
	}

	unlockedNow := p.Apply(metric, badge.Criteria, now)
	saved, err := e.progress.SaveProgress(ctx, p)
	if err != nil {
		return BadgeStatus{}, false, fmt.Errorf("save progress: %w", err)
	}

	// another writer may have unlocked it first, its unlock time wins
	if unlockedNow && saved.UnlockedAt != nil && !saved.UnlockedAt.Equal(now) {
		unlockedNow = false
	}

	return BadgeStatus{
		Badge:           badge,
		CurrentProgress: saved.CurrentProgress,
		IsUnlocked:      saved.IsUnlocked,
		UnlockedAt:      saved.UnlockedAt,
	}, unlockedNow, nil
}

// EvaluateBadgesForAllUsers runs the per user evaluation for everyone with
// activity. Failing users are logged and counted, the rest carry on. Once ctx
// is done no new users are started; progress already written is kept.
func (e *Engine) EvaluateBadgesForAllUsers(ctx context.Context, now time.Time) (result SweepResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "badges.sweep")
	defer func() {
		span.SetAttributes(
			attribute.Int("users", result.Users),
			attribute.Int("errors", result.Errors),
			attribute.Bool("cancelled", result.Cancelled),
		)
		tracing.EndSpanWithErrCheck(span, err)
	}()

	start := time.Now()
	defer func() {
		result.Duration = time.Since(start)
		e.metricsManager.HistogramJobDuration.WithLabelValues(metrics.JobBadgeSweep).Observe(result.Duration.Seconds())
	}()

	userIDs, err := e.users.ListUserIDsWithActivity(ctx)
	if err != nil {
		return result, fmt.Errorf("list users: %w", err)
	}
	result.Users = len(userIDs)

	var mu sync.Mutex
	var errs error
	g := new(errgroup.Group)
	g.SetLimit(e.sweepWorkers)
	for _, userID := range userIDs {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			_, err := e.evaluateUser(ctx, userID, now)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Errors++
				errs = multierr.Append(errs, fmt.Errorf("user %d: %w", userID, err))
				e.metricsManager.CounterBadgeEvaluationErrors.WithLabelValues(metrics.ModeSweep).Inc()
				return nil
			}
			result.Success++
			return nil
		})
	}
	_ = g.Wait()

	result.Cancelled = ctx.Err() != nil
	if errs != nil {
		log.Errorf("badge sweep: %d of %d users failed: %s", result.Errors, result.Users, errs)
	}
	log.Infof(
		"badge sweep done: users %d, success %d, errors %d, cancelled %t",
		result.Users, result.Success, result.Errors, result.Cancelled,
	)

	return result, nil
}

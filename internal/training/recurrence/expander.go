package recurrence

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/2beens/gymprogress/internal/telemetry/metrics"
	"github.com/2beens/gymprogress/internal/telemetry/tracing"
	"github.com/2beens/gymprogress/internal/training"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

const DefaultWorkers = 4

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=recurrence_test
type sessionsStore interface {
	ListActiveRecurringSessionsDueOn(ctx context.Context, day time.Time) ([]training.TrainingSession, error)
	CloneAndDeactivate(ctx context.Context, sourceID int, clone training.TrainingSession) (bool, error)
}

// Result counts what happened to each candidate of a single expansion pass.
type Result struct {
	Candidates int `json:"candidates"`
	Cloned     int `json:"cloned"`
	// Duplicate counts sources whose next occurrence already existed
	Duplicate int `json:"duplicate"`
	// Skipped counts broken rows and sources already handled by a concurrent pass
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Expander projects active recurring sessions forward, one occurrence per pass.
type Expander struct {
	store          sessionsStore
	workers        int
	metricsManager *metrics.Manager
}

func NewExpander(store sessionsStore, workers int, metricsManager *metrics.Manager) *Expander {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Expander{
		store:          store,
		workers:        workers,
		metricsManager: metricsManager,
	}
}

// RunRecurrenceExpansion clones every active recurring session whose recurrence
// end falls on now's UTC day. A failing source never stops the others; an error
// is returned only when candidates cannot be read or ctx is done before all
// candidates were dispatched.
func (e *Expander) RunRecurrenceExpansion(ctx context.Context, now time.Time) (result Result, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "recurrence.expand")
	defer func() {
		span.SetAttributes(
			attribute.Int("candidates", result.Candidates),
			attribute.Int("cloned", result.Cloned),
			attribute.Int("failed", result.Failed),
		)
		tracing.EndSpanWithErrCheck(span, err)
	}()

	start := time.Now()
	defer func() {
		e.metricsManager.HistogramJobDuration.WithLabelValues(metrics.JobRecurrenceExpansion).Observe(time.Since(start).Seconds())
	}()

	now = now.UTC()
	candidates, err := e.store.ListActiveRecurringSessionsDueOn(ctx, now)
	if err != nil {
		return result, fmt.Errorf("list due sessions: %w", err)
	}
	result.Candidates = len(candidates)
	if len(candidates) == 0 {
		return result, nil
	}

	var mu sync.Mutex
	record := func(o outcome) {
		mu.Lock()
		defer mu.Unlock()
		switch o {
		case outcomeCloned:
			result.Cloned++
		case outcomeDuplicate:
			result.Duplicate++
		case outcomeSkipped:
			result.Skipped++
		case outcomeFailed:
			result.Failed++
		}
	}

	g := new(errgroup.Group)
	g.SetLimit(e.workers)
	for _, source := range candidates {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			record(e.expandOne(ctx, source, now))
			return nil
		})
	}
	_ = g.Wait()

	log.Infof(
		"recurrence expansion for %s: candidates %d, cloned %d, duplicate %d, skipped %d, failed %d",
		now.Format(time.DateOnly), result.Candidates, result.Cloned, result.Duplicate, result.Skipped, result.Failed,
	)

	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, fmt.Errorf("recurrence expansion interrupted: %w", ctxErr)
	}
	return result, nil
}

type outcome int

const (
	outcomeCloned outcome = iota
	outcomeDuplicate
	outcomeSkipped
	outcomeFailed
)

func (e *Expander) expandOne(ctx context.Context, source training.TrainingSession, now time.Time) outcome {
	logger := log.WithFields(log.Fields{
		"session_id": source.ID,
		"user_id":    source.UserID,
	})

	clone, err := source.NextOccurrence(now)
	if err != nil {
		logger.Errorf("recurring session is broken, not expanding it: %s", err)
		return outcomeSkipped
	}

	created, err := e.store.CloneAndDeactivate(ctx, source.ID, clone)
	switch {
	case errors.Is(err, training.ErrSourceNotActive):
		logger.Debugln("recurring session already expanded by another pass")
		return outcomeSkipped
	case err != nil:
		logger.Errorf("expand recurring session: %s", err)
		e.metricsManager.CounterRecurrenceFailures.Inc()
		return outcomeFailed
	case !created:
		logger.Warnf("occurrence on %s already existed, source deactivated", clone.Date.Format(time.DateOnly))
		e.metricsManager.CounterRecurrenceDuplicates.Inc()
		return outcomeDuplicate
	}

	logger.Debugf("recurring session cloned, next occurrence due %s", clone.RecurrenceEndDate.Format(time.RFC3339))
	e.metricsManager.CounterRecurrenceClones.Inc()
	return outcomeCloned
}

package scheduler

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/2beens/gymprogress/internal/progress/badges"
	"github.com/2beens/gymprogress/internal/telemetry/metrics"
	"github.com/2beens/gymprogress/internal/training/recurrence"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultExpansionInterval = time.Minute
	// lock outlives the job deadline by this much, covering cleanup after cancellation
	LockTTLMargin = time.Minute
)

var (
	ErrAlreadyRunning = errors.New("scheduler already running")
	ErrJobRunning     = errors.New("job is already running")
	ErrLockHeld       = errors.New("job lock is held by another instance")
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=scheduler_test
type expansionRunner interface {
	RunRecurrenceExpansion(ctx context.Context, now time.Time) (recurrence.Result, error)
}

type sweepRunner interface {
	EvaluateBadgesForAllUsers(ctx context.Context, now time.Time) (badges.SweepResult, error)
}

type Locker interface {
	Acquire(ctx context.Context, name string, ttl time.Duration) (release func(), acquired bool, err error)
}

type Params struct {
	ExpansionInterval time.Duration
	// zero disables the periodic sweep, RunSweep still works
	SweepInterval time.Duration
	SweepTimeout  time.Duration
	// defaults to time.Now
	Clock func() time.Time
	// optional, guards jobs across instances
	Lock Locker
	// deadline of a locked expansion run, zero leaves it unbounded
	LockTTL        time.Duration
	MetricsManager *metrics.Manager
}

// Scheduler drives recurrence expansion and the badge sweep on fixed periods.
// Each job runs at most once at a time, a tick that finds it busy is dropped.
type Scheduler struct {
	expander expansionRunner
	sweeper  sweepRunner
	params   Params

	expansionBusy atomic.Bool
	sweepBusy     atomic.Bool

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func New(expander expansionRunner, sweeper sweepRunner, params Params) *Scheduler {
	if params.ExpansionInterval <= 0 {
		params.ExpansionInterval = DefaultExpansionInterval
	}
	if params.Clock == nil {
		params.Clock = time.Now
	}
	return &Scheduler{
		expander: expander,
		sweeper:  sweeper,
		params:   params,
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrAlreadyRunning
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true

	s.wg.Add(1)
	go s.loop(loopCtx, s.params.ExpansionInterval, s.TickExpansion)

	if s.params.SweepInterval > 0 {
		s.wg.Add(1)
		go s.loop(loopCtx, s.params.SweepInterval, s.TickSweep)
	}

	log.Infof(
		"scheduler started, expansion every %s, sweep every %s",
		s.params.ExpansionInterval, s.params.SweepInterval,
	)
	return nil
}

// Stop cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.cancel()
	s.mu.Unlock()

	s.wg.Wait()
	log.Infoln("scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context, interval time.Duration, tick func(ctx context.Context) bool) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				tick(ctx)
			}()
		}
	}
}

// TickExpansion runs one expansion pass, false means the tick was skipped.
func (s *Scheduler) TickExpansion(ctx context.Context) bool {
	_, err := s.RunExpansion(ctx)
	return !isSkip(err)
}

// TickSweep runs one badge sweep, false means the tick was skipped.
func (s *Scheduler) TickSweep(ctx context.Context) bool {
	_, err := s.RunSweep(ctx)
	return !isSkip(err)
}

func (s *Scheduler) RunExpansion(ctx context.Context) (result recurrence.Result, err error) {
	// a locked run may not outlive its lock
	var timeout time.Duration
	if s.params.Lock != nil {
		timeout = s.params.LockTTL
	}
	err = s.guard(ctx, metrics.JobRecurrenceExpansion, &s.expansionBusy, timeout, func(ctx context.Context) error {
		var runErr error
		result, runErr = s.expander.RunRecurrenceExpansion(ctx, s.params.Clock())
		return runErr
	})
	return result, err
}

func (s *Scheduler) RunSweep(ctx context.Context) (result badges.SweepResult, err error) {
	err = s.guard(ctx, metrics.JobBadgeSweep, &s.sweepBusy, s.params.SweepTimeout, func(ctx context.Context) error {
		var runErr error
		result, runErr = s.sweeper.EvaluateBadgesForAllUsers(ctx, s.params.Clock())
		return runErr
	})
	return result, err
}

// guard runs the job at most once at a time, across instances when a lock is
// set. A positive timeout is the run deadline, and the lock is held for that
// long plus LockTTLMargin so it cannot expire under a running job.
func (s *Scheduler) guard(
	ctx context.Context,
	job string,
	busy *atomic.Bool,
	timeout time.Duration,
	run func(ctx context.Context) error,
) (err error) {
	if !busy.CompareAndSwap(false, true) {
		s.skipped(job, "previous run still in progress")
		return ErrJobRunning
	}
	defer busy.Store(false)

	logger := log.WithFields(log.Fields{
		"job":    job,
		"run_id": uuid.NewString(),
	})

	if s.params.Lock != nil {
		var ttl time.Duration
		if timeout > 0 {
			ttl = timeout + LockTTLMargin
		}
		release, acquired, lockErr := s.params.Lock.Acquire(ctx, job, ttl)
		if lockErr != nil {
			logger.Errorf("acquire job lock: %s", lockErr)
			return fmt.Errorf("%w: %w", ErrLockHeld, lockErr)
		}
		if !acquired {
			s.skipped(job, "lock held by another instance")
			return ErrLockHeld
		}
		defer release()
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("job panicked: %v\n%s", r, debug.Stack())
			err = fmt.Errorf("job %s panicked: %v", job, r)
		}
	}()

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	logger.Debugln("job started")
	if err := run(ctx); err != nil {
		logger.Errorf("job failed after %s: %s", time.Since(start), err)
		return err
	}
	logger.Debugf("job done in %s", time.Since(start))
	return nil
}

func (s *Scheduler) skipped(job, reason string) {
	log.Debugf("%s tick skipped: %s", job, reason)
	if s.params.MetricsManager != nil {
		s.params.MetricsManager.CounterSkippedTicks.WithLabelValues(job).Inc()
	}
}

func isSkip(err error) bool {
	return errors.Is(err, ErrJobRunning) || errors.Is(err, ErrLockHeld)
}

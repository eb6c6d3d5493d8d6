package streaks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/gymprogress/internal/telemetry/tracing"
	"github.com/2beens/gymprogress/internal/training"

	"go.opentelemetry.io/otel/attribute"
)

var ErrUserNotFound = errors.New("user has no training activity")

// Metrics are the numbers badges are measured against.
type Metrics struct {
	DailyStreak     int `json:"dailyStreak"`
	ConsistentWeeks int `json:"consistentWeeks"`
	CompletedGoals  int `json:"completedGoals"`

	LongestDailyStreak int        `json:"longestDailyStreak"`
	LastTrainingDay    *time.Time `json:"lastTrainingDay,omitempty"`
}

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=streaks_test
type activityStore interface {
	ListTrainingDatesForUser(ctx context.Context, userID int) ([]time.Time, error)
	ListAttendanceGoalsForUser(ctx context.Context, userID int) ([]training.AttendanceGoal, error)
}

type Service struct {
	store      activityStore
	calculator *Calculator
}

func NewService(store activityStore, calculator *Calculator) *Service {
	return &Service{
		store:      store,
		calculator: calculator,
	}
}

func (s *Service) Calculator() *Calculator {
	return s.calculator
}

// Metrics reads the user's activity and derives all streak metrics relative to now.
func (s *Service) Metrics(ctx context.Context, userID int, now time.Time) (_ Metrics, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "streaks.metrics")
	span.SetAttributes(attribute.Int("user.id", userID))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	dates, err := s.store.ListTrainingDatesForUser(ctx, userID)
	if err != nil {
		return Metrics{}, fmt.Errorf("list training dates: %w", err)
	}
	goals, err := s.store.ListAttendanceGoalsForUser(ctx, userID)
	if err != nil {
		return Metrics{}, fmt.Errorf("list attendance goals: %w", err)
	}

	if len(dates) == 0 && len(goals) == 0 {
		return Metrics{}, ErrUserNotFound
	}

	return s.Compute(dates, goals, now), nil
}

// Compute is the pure part of Metrics.
func (s *Service) Compute(dates []time.Time, goals []training.AttendanceGoal, now time.Time) Metrics {
	m := Metrics{
		DailyStreak:        s.calculator.DailyStreak(dates, now),
		ConsistentWeeks:    s.calculator.WeeklyConsistency(dates, now),
		CompletedGoals:     CompletedGoals(goals, now),
		LongestDailyStreak: s.calculator.LongestDailyStreak(dates, now),
	}

	if days := distinctDays(dates, now); len(days) > 0 {
		last := days[len(days)-1]
		m.LastTrainingDay = &last
	}

	return m
}

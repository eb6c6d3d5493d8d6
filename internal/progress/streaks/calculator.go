package streaks

import (
	"sort"
	"time"

	"github.com/2beens/gymprogress/internal/training"
)

const (
	DefaultWeeklyThreshold   = 4
	DefaultMaxDailyGapDays   = 1
	DefaultMaxWeeklyGapWeeks = 1
)

type Config struct {
	// WeeklyThreshold is the number of distinct training days that makes a week consistent
	WeeklyThreshold int
	// MaxDailyGapDays is how far back the latest training day may be before the daily streak breaks
	MaxDailyGapDays int
	// MaxWeeklyGapWeeks is the same rule for consistent weeks
	MaxWeeklyGapWeeks int
}

func DefaultConfig() Config {
	return Config{
		WeeklyThreshold:   DefaultWeeklyThreshold,
		MaxDailyGapDays:   DefaultMaxDailyGapDays,
		MaxWeeklyGapWeeks: DefaultMaxWeeklyGapWeeks,
	}
}

// Calculator derives streaks from raw training dates. It holds no state
// besides its config, every result can be recomputed at any time.
type Calculator struct {
	cfg Config
}

func NewCalculator(cfg Config) *Calculator {
	if cfg.WeeklyThreshold <= 0 {
		cfg.WeeklyThreshold = DefaultWeeklyThreshold
	}
	if cfg.MaxDailyGapDays < 0 {
		cfg.MaxDailyGapDays = DefaultMaxDailyGapDays
	}
	if cfg.MaxWeeklyGapWeeks < 0 {
		cfg.MaxWeeklyGapWeeks = DefaultMaxWeeklyGapWeeks
	}
	return &Calculator{cfg: cfg}
}

func (c *Calculator) Config() Config {
	return c.cfg
}

// DailyStreak counts consecutive training days ending at the latest training day,
// or zero when that day is more than MaxDailyGapDays before now.
func (c *Calculator) DailyStreak(dates []time.Time, now time.Time) int {
	days := distinctDays(dates, now)
	if len(days) == 0 {
		return 0
	}

	latest := days[len(days)-1]
	if training.DaysBetween(latest, now) > c.cfg.MaxDailyGapDays {
		return 0
	}

	return trailingRun(days, func(prev, next time.Time) bool {
		return training.DaysBetween(prev, next) == 1
	})
}

// LongestDailyStreak is the longest run of consecutive training days up to now.
func (c *Calculator) LongestDailyStreak(dates []time.Time, now time.Time) int {
	days := distinctDays(dates, now)
	if len(days) == 0 {
		return 0
	}

	longest, current := 1, 1
	for i := 1; i < len(days); i++ {
		if training.DaysBetween(days[i-1], days[i]) == 1 {
			current++
		} else {
			current = 1
		}
		if current > longest {
			longest = current
		}
	}
	return longest
}

// WeeklyConsistency counts consecutive ISO weeks with at least WeeklyThreshold
// distinct training days, ending at the latest such week. Zero when that week
// is more than MaxWeeklyGapWeeks before the current one.
func (c *Calculator) WeeklyConsistency(dates []time.Time, now time.Time) int {
	days := distinctDays(dates, now)
	if len(days) == 0 {
		return 0
	}

	perWeek := map[time.Time]int{}
	for _, d := range days {
		perWeek[training.ISOWeekStart(d)]++
	}

	weeks := make([]time.Time, 0, len(perWeek))
	for week, count := range perWeek {
		if count >= c.cfg.WeeklyThreshold {
			weeks = append(weeks, week)
		}
	}
	if len(weeks) == 0 {
		return 0
	}
	sort.Slice(weeks, func(i, j int) bool {
		return weeks[i].Before(weeks[j])
	})

	latest := weeks[len(weeks)-1]
	if training.WeeksBetween(latest, now) > c.cfg.MaxWeeklyGapWeeks {
		return 0
	}

	return trailingRun(weeks, func(prev, next time.Time) bool {
		return training.WeeksBetween(prev, next) == 1
	})
}

// CompletedGoals counts goals whose end date is not after now. Whether the goal
// target was reached is not looked at: an ended goal counts as completed.
func CompletedGoals(goals []training.AttendanceGoal, now time.Time) int {
	completed := 0
	for _, g := range goals {
		if IsGoalCompleted(g, now) {
			completed++
		}
	}
	return completed
}

func IsGoalCompleted(goal training.AttendanceGoal, now time.Time) bool {
	return goal.EndDate != nil && !goal.EndDate.After(now)
}

// distinctDays returns sorted UTC days, one per calendar day, skipping days after now.
func distinctDays(dates []time.Time, now time.Time) []time.Time {
	today := training.Day(now)
	seen := make(map[time.Time]struct{}, len(dates))
	days := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		day := training.Day(d)
		if day.After(today) {
			continue
		}
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}

	sort.Slice(days, func(i, j int) bool {
		return days[i].Before(days[j])
	})
	return days
}

// trailingRun walks a sorted slice backwards from its end while adjacent
// elements stay consecutive.
func trailingRun(units []time.Time, consecutive func(prev, next time.Time) bool) int {
	run := 1
	for i := len(units) - 1; i > 0; i-- {
		if !consecutive(units[i-1], units[i]) {
			break
		}
		run++
	}
	return run
}

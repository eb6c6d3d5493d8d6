package badges

import (
	"errors"
	"fmt"
	"sort"

	"github.com/2beens/gymprogress/internal/progress/streaks"
)

var (
	ErrInvalidCatalog = errors.New("invalid badge catalog")
	ErrBadgeNotFound  = errors.New("badge not found")
)

type Category string

const (
	CategoryDailyUsage          Category = "daily_usage"
	CategoryTrainingConsistency Category = "training_consistency"
	CategoryGoalCompletion      Category = "goal_completion"
)

var categoryOrder = map[Category]int{
	CategoryDailyUsage:          1,
	CategoryTrainingConsistency: 2,
	CategoryGoalCompletion:      3,
}

func (c Category) IsValid() bool {
	_, ok := categoryOrder[c]
	return ok
}

type Tier string

const (
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
)

var tierRank = map[Tier]int{
	TierBronze:   1,
	TierSilver:   2,
	TierGold:     3,
	TierPlatinum: 4,
}

func (t Tier) IsValid() bool {
	_, ok := tierRank[t]
	return ok
}

type Badge struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Category Category `json:"category"`
	Tier     Tier     `json:"tier"`
	// Criteria is the metric value that unlocks the badge
	Criteria int `json:"criteria"`
}

// MetricFor picks the metric a badge category is measured against.
func MetricFor(category Category, m streaks.Metrics) (int, error) {
	switch category {
	case CategoryDailyUsage:
		return m.DailyStreak, nil
	case CategoryTrainingConsistency:
		return m.ConsistentWeeks, nil
	case CategoryGoalCompletion:
		return m.CompletedGoals, nil
	default:
		return 0, fmt.Errorf("%w: unknown category %q", ErrInvalidCatalog, category)
	}
}

func DefaultCatalog() []Badge {
	return []Badge{
		{Name: "Warming Up", Category: CategoryDailyUsage, Tier: TierBronze, Criteria: 3},
		{Name: "Week Warrior", Category: CategoryDailyUsage, Tier: TierSilver, Criteria: 7},
		{Name: "Fortnight Force", Category: CategoryDailyUsage, Tier: TierGold, Criteria: 14},
		{Name: "Iron Habit", Category: CategoryDailyUsage, Tier: TierPlatinum, Criteria: 30},

		{Name: "Steady Start", Category: CategoryTrainingConsistency, Tier: TierBronze, Criteria: 2},
		{Name: "Monthly Regular", Category: CategoryTrainingConsistency, Tier: TierSilver, Criteria: 4},
		{Name: "Committed", Category: CategoryTrainingConsistency, Tier: TierGold, Criteria: 8},
		{Name: "Unstoppable", Category: CategoryTrainingConsistency, Tier: TierPlatinum, Criteria: 12},

		{Name: "Goal Getter", Category: CategoryGoalCompletion, Tier: TierBronze, Criteria: 1},
		{Name: "High Five", Category: CategoryGoalCompletion, Tier: TierSilver, Criteria: 5},
		{Name: "Perfect Ten", Category: CategoryGoalCompletion, Tier: TierGold, Criteria: 10},
		{Name: "Goal Machine", Category: CategoryGoalCompletion, Tier: TierPlatinum, Criteria: 25},
	}
}

// ValidateCatalog returns the usable part of the catalog, ordered by category
// and tier. Entries with an unknown category or tier, a non positive criteria,
// a duplicated (category, tier) pair, or a criteria not above the lower tier of
// the same category are dropped and reported in the returned error.
func ValidateCatalog(catalog []Badge) ([]Badge, error) {
	var errs []error
	seen := map[Category]map[Tier]bool{}
	candidates := make([]Badge, 0, len(catalog))
	for _, b := range catalog {
		switch {
		case !b.Category.IsValid():
			errs = append(errs, fmt.Errorf("badge %d: unknown category %q", b.ID, b.Category))
			continue
		case !b.Tier.IsValid():
			errs = append(errs, fmt.Errorf("badge %d: unknown tier %q", b.ID, b.Tier))
			continue
		case b.Criteria <= 0:
			errs = append(errs, fmt.Errorf("badge %d: criteria must be positive, got %d", b.ID, b.Criteria))
			continue
		case seen[b.Category][b.Tier]:
			errs = append(errs, fmt.Errorf("badge %d: duplicate %s/%s", b.ID, b.Category, b.Tier))
			continue
		}
		if seen[b.Category] == nil {
			seen[b.Category] = map[Tier]bool{}
		}
		seen[b.Category][b.Tier] = true
		candidates = append(candidates, b)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		ci, cj := categoryOrder[candidates[i].Category], categoryOrder[candidates[j].Category]
		if ci != cj {
			return ci < cj
		}
		return tierRank[candidates[i].Tier] < tierRank[candidates[j].Tier]
	})

	valid := make([]Badge, 0, len(candidates))
	lastCriteria := map[Category]int{}
	for _, b := range candidates {
		if b.Criteria <= lastCriteria[b.Category] {
			errs = append(errs, fmt.Errorf(
				"badge %d: %s/%s criteria %d not above lower tier criteria %d",
				b.ID, b.Category, b.Tier, b.Criteria, lastCriteria[b.Category],
			))
			continue
		}
		lastCriteria[b.Category] = b.Criteria
		valid = append(valid, b)
	}

	if len(errs) > 0 {
		return valid, fmt.Errorf("%w: %w", ErrInvalidCatalog, errors.Join(errs...))
	}
	return valid, nil
}

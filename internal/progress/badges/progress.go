package badges

import "time"

type ProgressKey struct {
	UserID  int `json:"userId"`
	BadgeID int `json:"badgeId"`
}

// UserBadgeProgress moves one way only: once unlocked, a badge stays unlocked
// and keeps its first unlock time, while CurrentProgress follows the metric.
type UserBadgeProgress struct {
	Key             ProgressKey `json:"key"`
	CurrentProgress int         `json:"currentProgress"`
	IsUnlocked      bool        `json:"isUnlocked"`
	UnlockedAt      *time.Time  `json:"unlockedAt,omitempty"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// Apply records metric as the current progress and reports whether this call
// unlocked the badge.
func (p *UserBadgeProgress) Apply(metric, criteria int, now time.Time) (unlockedNow bool) {
	p.CurrentProgress = metric
	p.UpdatedAt = now
	if p.IsUnlocked || metric < criteria {
		return false
	}

	unlockedAt := now
	p.IsUnlocked = true
	p.UnlockedAt = &unlockedAt
	return true
}

// merge folds next into p the way the database upsert does.
func (p UserBadgeProgress) merge(next UserBadgeProgress) UserBadgeProgress {
	merged := next
	merged.IsUnlocked = p.IsUnlocked || next.IsUnlocked
	if p.UnlockedAt != nil {
		merged.UnlockedAt = p.UnlockedAt
	}
	return merged
}

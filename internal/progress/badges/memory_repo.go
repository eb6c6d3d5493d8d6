package badges

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryProgressRepo applies the same merge rules as ProgressRepo, kept in memory.
type MemoryProgressRepo struct {
	Badges   []Badge
	Progress map[ProgressKey]UserBadgeProgress

	// SaveErrors makes SaveProgress fail for the given users
	SaveErrors map[int]error

	mutex sync.Mutex
}

func NewMemoryProgressRepo() *MemoryProgressRepo {
	return &MemoryProgressRepo{
		Progress:   map[ProgressKey]UserBadgeProgress{},
		SaveErrors: map[int]error{},
	}
}

func (r *MemoryProgressRepo) ListBadges(_ context.Context) ([]Badge, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return append([]Badge(nil), r.Badges...), nil
}

func (r *MemoryProgressRepo) SeedBadges(_ context.Context, catalog []Badge) (int, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	added := 0
	for _, b := range catalog {
		exists := false
		for _, existing := range r.Badges {
			if existing.Category == b.Category && existing.Tier == b.Tier {
				exists = true
				break
			}
		}
		if exists {
			continue
		}
		b.ID = len(r.Badges) + 1
		r.Badges = append(r.Badges, b)
		added++
	}
	return added, nil
}

func (r *MemoryProgressRepo) GetOrCreateProgress(_ context.Context, key ProgressKey, now time.Time) (UserBadgeProgress, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if !r.badgeExists(key.BadgeID) {
		return UserBadgeProgress{}, fmt.Errorf("%w: %d", ErrBadgeNotFound, key.BadgeID)
	}
	if p, ok := r.Progress[key]; ok {
		return p, nil
	}

	p := UserBadgeProgress{Key: key, UpdatedAt: now}
	r.Progress[key] = p
	return p, nil
}

func (r *MemoryProgressRepo) SaveProgress(_ context.Context, p UserBadgeProgress) (UserBadgeProgress, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if err, ok := r.SaveErrors[p.Key.UserID]; ok {
		return UserBadgeProgress{}, err
	}
	if !r.badgeExists(p.Key.BadgeID) {
		return UserBadgeProgress{}, fmt.Errorf("%w: %d", ErrBadgeNotFound, p.Key.BadgeID)
	}

	saved := p
	if existing, ok := r.Progress[p.Key]; ok {
		saved = existing.merge(p)
	}
	r.Progress[p.Key] = saved
	return saved, nil
}

func (r *MemoryProgressRepo) ListProgressForUser(_ context.Context, userID int) ([]UserBadgeProgress, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	progress := make([]UserBadgeProgress, 0)
	for key, p := range r.Progress {
		if key.UserID == userID {
			progress = append(progress, p)
		}
	}
	sort.Slice(progress, func(i, j int) bool {
		return progress[i].Key.BadgeID < progress[j].Key.BadgeID
	})
	return progress, nil
}

func (r *MemoryProgressRepo) badgeExists(id int) bool {
	for _, b := range r.Badges {
		if b.ID == id {
			return true
		}
	}
	return false
}

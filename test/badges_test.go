//go:build integration_test || all_tests

package test

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/2beens/gymprogress/internal/progress"
	"github.com/2beens/gymprogress/internal/progress/badges"
)

func badgeNames(list []badges.Badge) []string {
	names := make([]string, 0, len(list))
	for _, b := range list {
		names = append(names, b.Name)
	}
	return names
}

func (s *IntegrationTestSuite) TestUserBadges_OnDemand() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	userID := newTestUserID()
	today := time.Now().UTC()
	for i := 0; i < 7; i++ {
		s.insertTraining(userID, today.AddDate(0, 0, -i))
	}
	// second session on the same day does not extend the streak
	s.insertTraining(userID, today.Add(-time.Minute))
	s.insertGoal(userID, today.AddDate(0, 0, -1))
	// still running, not completed
	s.insertGoal(userID, today.AddDate(0, 0, 10))

	path := fmt.Sprintf("/progress/users/%d/badges", userID)

	var summary badges.Summary
	s.doJSON(ctx, "GET", path, "", http.StatusOK, &summary)
	s.Equal(userID, summary.UserID)
	s.Equal(7, summary.Metrics.DailyStreak)
	s.Equal(1, summary.Metrics.CompletedGoals)
	s.Len(summary.Badges, len(badges.DefaultCatalog()))
	s.Subset(badgeNames(summary.NewlyUnlocked), []string{"Warming Up", "Week Warrior", "Goal Getter"})
	s.NotContains(badgeNames(summary.NewlyUnlocked), "Fortnight Force")

	// unlocks are reported once
	var again badges.Summary
	s.doJSON(ctx, "GET", path, "", http.StatusOK, &again)
	s.Empty(again.NewlyUnlocked)
	for _, status := range again.Badges {
		if status.Badge.Name == "Week Warrior" {
			s.True(status.IsUnlocked)
			s.Require().NotNil(status.UnlockedAt)
		}
	}

	var unlockedRows int
	s.Require().NoError(s.DB.QueryRow(
		`SELECT count(*) FROM user_badge_progress WHERE user_id = $1 AND is_unlocked`, userID,
	).Scan(&unlockedRows))
	s.GreaterOrEqual(unlockedRows, 3)
}

func (s *IntegrationTestSuite) TestUserBadges_UnknownUserAndRateLimit() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	path := fmt.Sprintf("/progress/users/%d/badges", newTestUserID())
	codes := make([]int, 0, 6)
	for i := 0; i < 6; i++ {
		resp := s.doRequest(ctx, "GET", path, "")
		resp.Body.Close()
		codes = append(codes, resp.StatusCode)
	}

	// 5 per minute in the test config
	s.Equal([]int{404, 404, 404, 404, 404, 429}, codes)
}

func (s *IntegrationTestSuite) TestUserStreaks() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	userID := newTestUserID()
	today := time.Now().UTC()
	for _, daysAgo := range []int{0, 1, 2, 5, 6, 7, 8} {
		s.insertTraining(userID, today.AddDate(0, 0, -daysAgo))
	}

	var resp progress.StreaksResponse
	s.doJSON(ctx, "GET", fmt.Sprintf("/progress/users/%d/streaks", userID), "", http.StatusOK, &resp)
	s.Equal(3, resp.Metrics.DailyStreak)
	s.Equal(4, resp.Metrics.LongestDailyStreak)
	s.Equal(0, resp.Metrics.CompletedGoals)

	// reading streaks never writes progress
	var progressRows int
	s.Require().NoError(s.DB.QueryRow(
		`SELECT count(*) FROM user_badge_progress WHERE user_id = $1`, userID,
	).Scan(&progressRows))
	s.Zero(progressRows)
}

func (s *IntegrationTestSuite) TestBadgeSweep() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	today := time.Now().UTC()
	users := []int{newTestUserID(), newTestUserID() + 1_000_000}
	for _, userID := range users {
		for i := 0; i < 3; i++ {
			s.insertTraining(userID, today.AddDate(0, 0, -i))
		}
	}
	// goal but no training, not part of the sweep
	goalOnlyUser := newTestUserID() + 2_000_000
	s.insertGoal(goalOnlyUser, today.AddDate(0, 0, 10))

	var resp progress.SweepResponse
	s.doJSON(ctx, "POST", "/progress/admin/badges/sweep", testAdminToken, http.StatusOK, &resp)
	s.Equal(2, resp.Result.Users)
	s.Equal(2, resp.Result.Success)
	s.Zero(resp.Result.Errors)
	s.False(resp.Result.Cancelled)

	for _, userID := range users {
		var warmingUpUnlocked bool
		s.Require().NoError(s.DB.QueryRow(
			`SELECT p.is_unlocked FROM user_badge_progress p JOIN badge b ON b.id = p.badge_id
			WHERE p.user_id = $1 AND b.category = 'daily_usage' AND b.tier = 'bronze'`, userID,
		).Scan(&warmingUpUnlocked))
		s.True(warmingUpUnlocked, "user %d", userID)
	}

	var goalOnlyRows int
	s.Require().NoError(s.DB.QueryRow(
		`SELECT count(*) FROM user_badge_progress WHERE user_id = $1`, goalOnlyUser,
	).Scan(&goalOnlyRows))
	s.Zero(goalOnlyRows)
}

func (s *IntegrationTestSuite) TestProgressRepo_UnlockIsSticky() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo := badges.NewProgressRepo(s.dbPool)
	catalog, err := repo.ListBadges(ctx)
	s.Require().NoError(err)
	s.Require().Len(catalog, len(badges.DefaultCatalog()))

	// seeding twice adds nothing
	added, err := repo.SeedBadges(ctx, badges.DefaultCatalog())
	s.Require().NoError(err)
	s.Zero(added)

	key := badges.ProgressKey{UserID: newTestUserID(), BadgeID: catalog[0].ID}
	unlockedAt := time.Now().UTC().Truncate(time.Microsecond)

	fresh, err := repo.GetOrCreateProgress(ctx, key, unlockedAt)
	s.Require().NoError(err)
	s.False(fresh.IsUnlocked)
	s.Zero(fresh.CurrentProgress)

	saved, err := repo.SaveProgress(ctx, badges.UserBadgeProgress{
		Key:             key,
		CurrentProgress: catalog[0].Criteria,
		IsUnlocked:      true,
		UnlockedAt:      &unlockedAt,
		UpdatedAt:       unlockedAt,
	})
	s.Require().NoError(err)
	s.True(saved.IsUnlocked)

	// a stale writer that never saw the unlock cannot revert it
	later := unlockedAt.Add(time.Hour)
	saved, err = repo.SaveProgress(ctx, badges.UserBadgeProgress{
		Key:             key,
		CurrentProgress: 1,
		IsUnlocked:      false,
		UpdatedAt:       later,
	})
	s.Require().NoError(err)
	s.True(saved.IsUnlocked)
	s.Require().NotNil(saved.UnlockedAt)
	s.True(unlockedAt.Equal(*saved.UnlockedAt))
	s.Equal(1, saved.CurrentProgress)

	_, err = repo.SaveProgress(ctx, badges.UserBadgeProgress{
		Key:       badges.ProgressKey{UserID: key.UserID, BadgeID: 999999},
		UpdatedAt: later,
	})
	s.ErrorIs(err, badges.ErrBadgeNotFound)
}

//go:build integration_test || all_tests

package test

import (
	"context"
	"net/http"
	"time"

	"github.com/2beens/gymprogress/internal/progress"
	"github.com/2beens/gymprogress/internal/scheduler"
	"github.com/2beens/gymprogress/internal/telemetry/metrics"
	"github.com/2beens/gymprogress/internal/training"

	"github.com/brianvoe/gofakeit/v6"
)

func (s *IntegrationTestSuite) newWeeklySource(ctx context.Context, userID int, end time.Time) *training.TrainingSession {
	repo := training.NewRepo(s.dbPool)
	source, err := repo.CreateTrainingSession(ctx, training.TrainingSession{
		UserID:            userID,
		Name:              gofakeit.HipsterSentence(3),
		Sport:             "bjj",
		Coaches:           []int{gofakeit.Number(1, 50)},
		Attendees:         []int{userID},
		Date:              end.AddDate(0, 0, -7),
		Recurrence:        training.RecurrenceWeekly,
		RecurrenceEndDate: &end,
	})
	s.Require().NoError(err)
	s.Require().Equal(training.RecurrenceStatusActive, source.RecurrenceStatus)
	return source
}

func (s *IntegrationTestSuite) TestRecurrenceExpansion_AdminTrigger() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	userID := newTestUserID()
	end := time.Now().UTC().Truncate(time.Second)
	source := s.newWeeklySource(ctx, userID, end)

	var first progress.ExpansionResponse
	s.doJSON(ctx, "POST", "/progress/admin/recurrence/expand", testAdminToken, http.StatusOK, &first)
	s.Equal(1, first.Result.Candidates)
	s.Equal(1, first.Result.Cloned)

	// the source is inactive now, a second pass has nothing to do
	var second progress.ExpansionResponse
	s.doJSON(ctx, "POST", "/progress/admin/recurrence/expand", testAdminToken, http.StatusOK, &second)
	s.Equal(0, second.Result.Candidates)
	s.Equal(0, second.Result.Cloned)

	repo := training.NewRepo(s.dbPool)
	storedSource, err := repo.GetTrainingSession(ctx, source.ID)
	s.Require().NoError(err)
	s.Equal(training.RecurrenceStatusInactive, storedSource.RecurrenceStatus)

	var cloneID int
	var clonesCount int
	s.Require().NoError(s.DB.QueryRow(
		`SELECT count(*), max(id) FROM training_session WHERE parent_training_id = $1`, source.ID,
	).Scan(&clonesCount, &cloneID))
	s.Require().Equal(1, clonesCount)

	clone, err := repo.GetTrainingSession(ctx, cloneID)
	s.Require().NoError(err)
	s.True(clone.IsRecurringInstance)
	s.Equal(training.RecurrenceStatusActive, clone.RecurrenceStatus)
	s.True(end.Equal(clone.Date))
	s.Require().NotNil(clone.RecurrenceEndDate)
	s.True(end.AddDate(0, 0, 7).Equal(*clone.RecurrenceEndDate))
	s.Equal(source.Coaches, clone.Coaches)
	s.Equal(source.Name, clone.Name)
}

func (s *IntegrationTestSuite) TestRecurrenceExpansion_CloneAlreadyPresent() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo := training.NewRepo(s.dbPool)
	end := time.Now().UTC().Truncate(time.Second)
	source := s.newWeeklySource(ctx, newTestUserID(), end)

	clone, err := source.NextOccurrence(end)
	s.Require().NoError(err)

	// a crashed earlier pass left the clone behind but never flipped the source
	_, err = repo.CreateTrainingSession(ctx, clone)
	s.Require().NoError(err)
	_, err = repo.CreateTrainingSession(ctx, clone)
	s.ErrorIs(err, training.ErrDuplicateOccurrence)

	created, err := repo.CloneAndDeactivate(ctx, source.ID, clone)
	s.Require().NoError(err)
	s.False(created)

	storedSource, err := repo.GetTrainingSession(ctx, source.ID)
	s.Require().NoError(err)
	s.Equal(training.RecurrenceStatusInactive, storedSource.RecurrenceStatus)

	_, err = repo.CloneAndDeactivate(ctx, source.ID, clone)
	s.ErrorIs(err, training.ErrSourceNotActive)
}

func (s *IntegrationTestSuite) TestRecurrenceExpansion_LockHeldElsewhere() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.newWeeklySource(ctx, newTestUserID(), time.Now().UTC())

	otherInstance := scheduler.NewRedisLock(s.redisClient, time.Minute)
	release, acquired, err := otherInstance.Acquire(ctx, metrics.JobRecurrenceExpansion, time.Minute)
	s.Require().NoError(err)
	s.Require().True(acquired)

	resp := s.doRequest(ctx, "POST", "/progress/admin/recurrence/expand", testAdminToken)
	resp.Body.Close()
	s.Equal(http.StatusConflict, resp.StatusCode)

	release()

	var result progress.ExpansionResponse
	s.doJSON(ctx, "POST", "/progress/admin/recurrence/expand", testAdminToken, http.StatusOK, &result)
	s.Equal(1, result.Result.Cloned)
}

func (s *IntegrationTestSuite) TestAdminEndpoints_RequireToken() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for _, path := range []string{"/progress/admin/recurrence/expand", "/progress/admin/badges/sweep"} {
		resp := s.doRequest(ctx, "POST", path, "")
		resp.Body.Close()
		s.Equal(http.StatusUnauthorized, resp.StatusCode, path)

		resp = s.doRequest(ctx, "POST", path, "not-the-token")
		resp.Body.Close()
		s.Equal(http.StatusUnauthorized, resp.StatusCode, path)
	}
}

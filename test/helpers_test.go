//go:build integration_test || all_tests

package test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/2beens/gymprogress/internal/middleware"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/lib/pq"
)

func (s *IntegrationTestSuite) doRequest(ctx context.Context, method, path string, adminToken string) *http.Response {
	req, err := http.NewRequestWithContext(ctx, method, serverEndpoint+path, nil)
	s.Require().NoError(err)
	req.Header.Set("User-Agent", "test-agent")
	if adminToken != "" {
		req.Header.Set(middleware.AdminTokenHeader, adminToken)
	}

	resp, err := s.httpClient.Do(req)
	s.Require().NoError(err)
	return resp
}

func (s *IntegrationTestSuite) doJSON(ctx context.Context, method, path, adminToken string, expectedStatus int, target any) {
	resp := s.doRequest(ctx, method, path, adminToken)
	defer resp.Body.Close()

	s.Require().Equal(expectedStatus, resp.StatusCode, "%s %s", method, path)
	if target != nil {
		s.Require().NoError(json.NewDecoder(resp.Body).Decode(target))
	}
}

// insertTraining writes a one-off session through lib/pq and returns its id.
func (s *IntegrationTestSuite) insertTraining(userID int, date time.Time) int {
	var id int
	err := s.DB.QueryRow(
		`INSERT INTO training_session (user_id, name, sport, coaches, date, recurrence, recurrence_status)
		VALUES ($1, $2, $3, $4, $5, 'none', 'inactive') RETURNING id`,
		userID,
		fmt.Sprintf("%s with %s", gofakeit.HipsterWord(), gofakeit.FirstName()),
		gofakeit.RandomString([]string{"bjj", "boxing", "crossfit", "judo"}),
		pq.Array([]int64{int64(gofakeit.Number(1, 50))}),
		date,
	).Scan(&id)
	s.Require().NoError(err)
	return id
}

func (s *IntegrationTestSuite) insertGoal(userID int, endDate time.Time) {
	_, err := s.DB.Exec(
		`INSERT INTO attendance_goal (user_id, type, status, target, end_date) VALUES ($1, 'sessions', 'open', $2, $3)`,
		userID, gofakeit.Number(4, 20), endDate,
	)
	s.Require().NoError(err)
}

func newTestUserID() int {
	return gofakeit.Number(1000, 999999)
}

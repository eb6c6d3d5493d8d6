package training

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/gymprogress/internal/telemetry/tracing"
	"github.com/2beens/gymprogress/pkg"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const sessionColumns = `id, user_id, name, sport, category, skill, scope, notes, coaches, attendees, date,
	recurrence, recurrence_end_date, recurrence_day, recurrence_status, parent_training_id,
	is_recurring_instance, created_at`

// Repo is the postgres backed activity store.
type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) CreateTrainingSession(ctx context.Context, s TrainingSession) (_ *TrainingSession, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.training.create")
	span.SetAttributes(attribute.Int("user.id", s.UserID))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if !s.Recurrence.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRecurrence, s.Recurrence)
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	if s.RecurrenceStatus == "" {
		s.RecurrenceStatus = RecurrenceStatusInactive
		if s.Recurrence.IsRepeating() {
			s.RecurrenceStatus = RecurrenceStatusActive
		}
	}

	id, err := insertSession(ctx, r.db, s, false)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return nil, ErrDuplicateOccurrence
		}
		return nil, err
	}

	s.ID = id
	return &s, nil
}

func (r *Repo) GetTrainingSession(ctx context.Context, id int) (*TrainingSession, error) {
	rows, err := r.db.Query(
		ctx,
		`SELECT `+sessionColumns+` FROM training_session WHERE id = $1;`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions, err := rows2sessions(rows)
	if err != nil {
		return nil, err
	}
	if len(sessions) != 1 {
		return nil, ErrSessionNotFound
	}

	return &sessions[0], nil
}

func (r *Repo) DeactivateSession(ctx context.Context, id int) error {
	tag, err := r.db.Exec(
		ctx,
		`UPDATE training_session SET recurrence_status = 'inactive' WHERE id = $1;`,
		id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// ListActiveRecurringSessionsDueOn returns active chain heads whose recurrence end
// falls on the UTC day of day. Unknown recurrence values are returned too, so
// the caller can report them instead of silently ignoring broken rows.
func (r *Repo) ListActiveRecurringSessionsDueOn(ctx context.Context, day time.Time) (_ []TrainingSession, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.training.due")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	from, to := DayBounds(day)
	rows, err := r.db.Query(
		ctx,
		`
			SELECT `+sessionColumns+`
			FROM training_session
			WHERE recurrence_status = 'active'
				AND recurrence <> 'none'
				AND recurrence_end_date BETWEEN $1 AND $2
			ORDER BY id;`,
		from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions, err := rows2sessions(rows)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("sessions.due", len(sessions)))

	return sessions, nil
}

// CloneAndDeactivate inserts the next occurrence and flips its source to inactive
// in one transaction. When the occurrence already exists the insert is skipped,
// the source is still deactivated and created is false.
func (r *Repo) CloneAndDeactivate(ctx context.Context, sourceID int, clone TrainingSession) (created bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.training.clone")
	span.SetAttributes(attribute.Int("source.id", sourceID))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(context.Background()); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			log.Errorf("clone session %d: rollback: %s", sourceID, rbErr)
		}
	}()

	_, err = insertSession(ctx, tx, clone, true)
	switch {
	case err == nil:
		created = true
	case errors.Is(err, pgx.ErrNoRows):
		log.Debugf("clone session %d: occurrence on %s already exists", sourceID, clone.Date.Format(time.DateOnly))
	default:
		return false, fmt.Errorf("insert clone: %w", err)
	}

	tag, err := tx.Exec(
		ctx,
		`UPDATE training_session SET recurrence_status = 'inactive' WHERE id = $1 AND recurrence_status = 'active';`,
		sourceID,
	)
	if err != nil {
		return false, fmt.Errorf("deactivate source: %w", err)
	}
	if tag.RowsAffected() == 0 {
		err = ErrSourceNotActive
		return false, err
	}

	if err = tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}

	span.SetAttributes(attribute.Bool("clone.created", created))
	return created, nil
}

func (r *Repo) ListTrainingDatesForUser(ctx context.Context, userID int) ([]time.Time, error) {
	rows, err := r.db.Query(
		ctx,
		`SELECT date FROM training_session WHERE user_id = $1 ORDER BY date;`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dates := make([]time.Time, 0)
	for rows.Next() {
		var date time.Time
		if err := rows.Scan(&date); err != nil {
			return nil, err
		}
		dates = append(dates, date.UTC())
	}

	return dates, rows.Err()
}

func (r *Repo) CreateAttendanceGoal(ctx context.Context, goal AttendanceGoal) (*AttendanceGoal, error) {
	var id int
	if err := r.db.QueryRow(
		ctx,
		`INSERT INTO attendance_goal (user_id, type, status, target, end_date)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id;`,
		goal.UserID, goal.Type, goal.Status, goal.Target, goal.EndDate,
	).Scan(&id); err != nil {
		return nil, err
	}

	goal.ID = id
	return &goal, nil
}

func (r *Repo) ListAttendanceGoalsForUser(ctx context.Context, userID int) ([]AttendanceGoal, error) {
	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, type, status, target, end_date FROM attendance_goal WHERE user_id = $1 ORDER BY id;`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	goals := make([]AttendanceGoal, 0)
	for rows.Next() {
		var g AttendanceGoal
		var endDate *time.Time
		if err := rows.Scan(&g.ID, &g.UserID, &g.Type, &g.Status, &g.Target, &endDate); err != nil {
			return nil, err
		}
		if endDate != nil {
			utc := endDate.UTC()
			g.EndDate = &utc
		}
		goals = append(goals, g)
	}

	return goals, rows.Err()
}

// ListUserIDsWithActivity returns every user that has at least one training
// session. Users with only attendance goals are left out.
func (r *Repo) ListUserIDsWithActivity(ctx context.Context) ([]int, error) {
	rows, err := r.db.Query(
		ctx,
		`
			SELECT DISTINCT user_id FROM training_session
			ORDER BY user_id;`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int, 0)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// insertSession returns pgx.ErrNoRows when skipOnConflict is set and the
// (parent, date) pair is already taken.
func insertSession(ctx context.Context, q querier, s TrainingSession, skipOnConflict bool) (int, error) {
	onConflict := ""
	if skipOnConflict {
		onConflict = `ON CONFLICT (parent_training_id, date) WHERE parent_training_id IS NOT NULL DO NOTHING`
	}

	coaches := s.Coaches
	if coaches == nil {
		coaches = []int{}
	}
	attendees := s.Attendees
	if attendees == nil {
		attendees = []int{}
	}

	var id int
	err := q.QueryRow(
		ctx,
		`INSERT INTO training_session
				(user_id, name, sport, category, skill, scope, notes, coaches, attendees, date,
				recurrence, recurrence_end_date, recurrence_day, recurrence_status, parent_training_id,
				is_recurring_instance, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
			`+onConflict+`
			RETURNING id;`,
		s.UserID, s.Name, s.Sport, s.Category, s.Skill, s.Scope, s.Notes, coaches, attendees, s.Date.UTC(),
		string(s.Recurrence), s.RecurrenceEndDate, s.RecurrenceDay, string(s.RecurrenceStatus), s.ParentTrainingID,
		s.IsRecurringInstance, s.CreatedAt,
	).Scan(&id)

	return id, err
}

func rows2sessions(rows pgx.Rows) ([]TrainingSession, error) {
	sessions := make([]TrainingSession, 0)
	for rows.Next() {
		var s TrainingSession
		var recurrence, status string
		var endDate *time.Time
		if err := rows.Scan(
			&s.ID, &s.UserID, &s.Name, &s.Sport, &s.Category, &s.Skill, &s.Scope, &s.Notes,
			&s.Coaches, &s.Attendees, &s.Date,
			&recurrence, &endDate, &s.RecurrenceDay, &status, &s.ParentTrainingID,
			&s.IsRecurringInstance, &s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}

		s.Recurrence = Recurrence(recurrence)
		s.RecurrenceStatus = RecurrenceStatus(status)
		s.Date = s.Date.UTC()
		if endDate != nil {
			utc := endDate.UTC()
			s.RecurrenceEndDate = &utc
		}
		sessions = append(sessions, s)
	}

	return sessions, rows.Err()
}

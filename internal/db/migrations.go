package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// Schema is applied on every startup, so every statement must stay idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS training_session
(
    id                    SERIAL PRIMARY KEY,
    user_id               INTEGER     NOT NULL,
    name                  VARCHAR     NOT NULL DEFAULT '',
    sport                 VARCHAR     NOT NULL DEFAULT '',
    category              VARCHAR     NOT NULL DEFAULT '',
    skill                 VARCHAR     NOT NULL DEFAULT '',
    scope                 VARCHAR     NOT NULL DEFAULT '',
    notes                 TEXT        NOT NULL DEFAULT '',
    coaches               INTEGER[]   NOT NULL DEFAULT '{}',
    attendees             INTEGER[]   NOT NULL DEFAULT '{}',
    date                  TIMESTAMPTZ NOT NULL,
    recurrence            VARCHAR     NOT NULL DEFAULT 'none',
    recurrence_end_date   TIMESTAMPTZ,
    recurrence_day        INTEGER     NOT NULL DEFAULT 0,
    recurrence_status     VARCHAR     NOT NULL DEFAULT 'inactive',
    parent_training_id    INTEGER REFERENCES training_session (id),
    is_recurring_instance BOOLEAN     NOT NULL DEFAULT FALSE,
    created_at            TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS ix_training_session_user_date ON training_session (user_id, date);
CREATE INDEX IF NOT EXISTS ix_training_session_due
    ON training_session (recurrence_end_date) WHERE recurrence_status = 'active';
CREATE UNIQUE INDEX IF NOT EXISTS ux_training_session_parent_date
    ON training_session (parent_training_id, date) WHERE parent_training_id IS NOT NULL;

CREATE TABLE IF NOT EXISTS attendance_goal
(
    id       SERIAL PRIMARY KEY,
    user_id  INTEGER NOT NULL,
    type     VARCHAR NOT NULL DEFAULT '',
    status   VARCHAR NOT NULL DEFAULT '',
    target   INTEGER NOT NULL DEFAULT 0,
    end_date TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS ix_attendance_goal_user ON attendance_goal (user_id);

CREATE TABLE IF NOT EXISTS badge
(
    id       SERIAL PRIMARY KEY,
    name     VARCHAR NOT NULL,
    category VARCHAR NOT NULL,
    tier     VARCHAR NOT NULL,
    criteria INTEGER NOT NULL,
    UNIQUE (category, tier)
);

CREATE TABLE IF NOT EXISTS user_badge_progress
(
    user_id          INTEGER     NOT NULL,
    badge_id         INTEGER     NOT NULL REFERENCES badge (id),
    current_progress INTEGER     NOT NULL DEFAULT 0,
    is_unlocked      BOOLEAN     NOT NULL DEFAULT FALSE,
    unlocked_at      TIMESTAMPTZ,
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (user_id, badge_id)
);
`

func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	log.Debugln("db schema applied")
	return nil
}

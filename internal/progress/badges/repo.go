package badges

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/gymprogress/internal/telemetry/tracing"
	"github.com/2beens/gymprogress/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// ProgressRepo stores the badge catalog and per user progress in postgres.
type ProgressRepo struct {
	db *pgxpool.Pool
}

func NewProgressRepo(db *pgxpool.Pool) *ProgressRepo {
	return &ProgressRepo{
		db: db,
	}
}

func (r *ProgressRepo) ListBadges(ctx context.Context) ([]Badge, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, category, tier, criteria FROM badge ORDER BY id;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	badges := make([]Badge, 0)
	for rows.Next() {
		var b Badge
		var category, tier string
		if err := rows.Scan(&b.ID, &b.Name, &category, &tier, &b.Criteria); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		b.Category = Category(category)
		b.Tier = Tier(tier)
		badges = append(badges, b)
	}

	return badges, rows.Err()
}

// SeedBadges adds catalog entries that are missing. Existing (category, tier)
// rows are left alone, so edited criteria survive restarts.
func (r *ProgressRepo) SeedBadges(ctx context.Context, catalog []Badge) (added int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.badges.seed")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	batch := &pgx.Batch{}
	for _, b := range catalog {
		batch.Queue(
			`INSERT INTO badge (name, category, tier, criteria) VALUES ($1, $2, $3, $4)
				ON CONFLICT (category, tier) DO NOTHING;`,
			b.Name, string(b.Category), string(b.Tier), b.Criteria,
		)
	}

	results := r.db.SendBatch(ctx, batch)
	defer func() {
		if closeErr := results.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	for range catalog {
		tag, err := results.Exec()
		if err != nil {
			return added, fmt.Errorf("seed badge: %w", err)
		}
		added += int(tag.RowsAffected())
	}

	log.Debugf("badge catalog seeded, %d new badges", added)
	return added, nil
}

// GetOrCreateProgress returns the stored progress for key, creating a locked
// zero row first when there is none.
func (r *ProgressRepo) GetOrCreateProgress(ctx context.Context, key ProgressKey, now time.Time) (UserBadgeProgress, error) {
	p := UserBadgeProgress{Key: key}
	err := r.db.QueryRow(
		ctx,
		`
			WITH created AS (
				INSERT INTO user_badge_progress (user_id, badge_id, current_progress, is_unlocked, updated_at)
				VALUES ($1, $2, 0, FALSE, $3)
				ON CONFLICT (user_id, badge_id) DO NOTHING
				RETURNING current_progress, is_unlocked, unlocked_at, updated_at
			)
			SELECT current_progress, is_unlocked, unlocked_at, updated_at FROM created
			UNION ALL
			SELECT current_progress, is_unlocked, unlocked_at, updated_at
				FROM user_badge_progress
				WHERE user_id = $1 AND badge_id = $2
			LIMIT 1;`,
		key.UserID, key.BadgeID, now,
	).Scan(&p.CurrentProgress, &p.IsUnlocked, &p.UnlockedAt, &p.UpdatedAt)
	if err != nil {
		if pkg.IsForeignKeyViolationError(err) {
			return UserBadgeProgress{}, fmt.Errorf("%w: %d", ErrBadgeNotFound, key.BadgeID)
		}
		return UserBadgeProgress{}, err
	}

	return normalizeTimes(p), nil
}

// SaveProgress upserts p without ever re-locking a badge or moving its first
// unlock time. The stored row after the merge is returned.
func (r *ProgressRepo) SaveProgress(ctx context.Context, p UserBadgeProgress) (_ UserBadgeProgress, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.badges.save")
	span.SetAttributes(
		attribute.Int("user.id", p.Key.UserID),
		attribute.Int("badge.id", p.Key.BadgeID),
	)
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	saved := UserBadgeProgress{Key: p.Key}
	err = r.db.QueryRow(
		ctx,
		`
			INSERT INTO user_badge_progress (user_id, badge_id, current_progress, is_unlocked, unlocked_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (user_id, badge_id) DO UPDATE SET
				current_progress = EXCLUDED.current_progress,
				is_unlocked = user_badge_progress.is_unlocked OR EXCLUDED.is_unlocked,
				unlocked_at = COALESCE(user_badge_progress.unlocked_at, EXCLUDED.unlocked_at),
				updated_at = EXCLUDED.updated_at
			RETURNING current_progress, is_unlocked, unlocked_at, updated_at;`,
		p.Key.UserID, p.Key.BadgeID, p.CurrentProgress, p.IsUnlocked, p.UnlockedAt, p.UpdatedAt,
	).Scan(&saved.CurrentProgress, &saved.IsUnlocked, &saved.UnlockedAt, &saved.UpdatedAt)
	if err != nil {
		if pkg.IsForeignKeyViolationError(err) {
			return UserBadgeProgress{}, fmt.Errorf("%w: %d", ErrBadgeNotFound, p.Key.BadgeID)
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return UserBadgeProgress{}, errors.New("unexpected error [no rows returned from upsert]")
		}
		return UserBadgeProgress{}, err
	}

	return normalizeTimes(saved), nil
}

func (r *ProgressRepo) ListProgressForUser(ctx context.Context, userID int) ([]UserBadgeProgress, error) {
	rows, err := r.db.Query(
		ctx,
		`
			SELECT badge_id, current_progress, is_unlocked, unlocked_at, updated_at
			FROM user_badge_progress
			WHERE user_id = $1
			ORDER BY badge_id;`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	progress := make([]UserBadgeProgress, 0)
	for rows.Next() {
		p := UserBadgeProgress{Key: ProgressKey{UserID: userID}}
		if err := rows.Scan(&p.Key.BadgeID, &p.CurrentProgress, &p.IsUnlocked, &p.UnlockedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		progress = append(progress, normalizeTimes(p))
	}

	return progress, rows.Err()
}

func normalizeTimes(p UserBadgeProgress) UserBadgeProgress {
	p.UpdatedAt = p.UpdatedAt.UTC()
	if p.UnlockedAt != nil {
		utc := p.UnlockedAt.UTC()
		p.UnlockedAt = &utc
	}
	return p
}

package internal

import (
	"context"
	"fmt"

	"github.com/2beens/gymprogress/internal/config"
	"github.com/2beens/gymprogress/internal/progress/badges"
	"github.com/2beens/gymprogress/internal/progress/streaks"
	"github.com/2beens/gymprogress/internal/telemetry/metrics"
	"github.com/2beens/gymprogress/internal/training"
	"github.com/2beens/gymprogress/internal/training/recurrence"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// Components are the domain services built on one db pool, shared by the
// long running service and the one-shot progress cmd.
type Components struct {
	SessionsRepo *training.Repo
	ProgressRepo *badges.ProgressRepo
	Catalog      *badges.CatalogCache
	Streaks      *streaks.Service
	Expander     *recurrence.Expander
	BadgeEngine  *badges.Engine
}

func NewComponents(dbPool *pgxpool.Pool, cfg *config.Config, metricsManager *metrics.Manager) *Components {
	sessionsRepo := training.NewRepo(dbPool)
	progressRepo := badges.NewProgressRepo(dbPool)
	catalog := badges.NewCatalogCache(progressRepo, cfg.Badges.CatalogCacheTTL)

	streaksService := streaks.NewService(sessionsRepo, streaks.NewCalculator(streaks.Config{
		WeeklyThreshold:   cfg.Streaks.WeeklyThreshold,
		MaxDailyGapDays:   cfg.Streaks.MaxDailyGapDays,
		MaxWeeklyGapWeeks: cfg.Streaks.MaxWeeklyGapWeeks,
	}))

	return &Components{
		SessionsRepo: sessionsRepo,
		ProgressRepo: progressRepo,
		Catalog:      catalog,
		Streaks:      streaksService,
		Expander:     recurrence.NewExpander(sessionsRepo, cfg.Scheduler.ExpansionWorkers, metricsManager),
		BadgeEngine: badges.NewEngine(badges.EngineParams{
			Catalog:        catalog,
			Progress:       progressRepo,
			Metrics:        streaksService,
			Users:          sessionsRepo,
			SweepWorkers:   cfg.Scheduler.SweepWorkers,
			MetricsManager: metricsManager,
		}),
	}
}

// SeedCatalog inserts the default badges that are missing. Existing rows
// keep their criteria, so tuning done in the db survives restarts.
func (c *Components) SeedCatalog(ctx context.Context) error {
	added, err := c.ProgressRepo.SeedBadges(ctx, badges.DefaultCatalog())
	if err != nil {
		return fmt.Errorf("seed badge catalog: %w", err)
	}
	if added > 0 {
		log.Infof("badge catalog seeded with %d new badges", added)
		c.Catalog.Invalidate()
	}
	return nil
}

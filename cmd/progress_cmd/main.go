package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/2beens/gymprogress/internal"
	"github.com/2beens/gymprogress/internal/config"
	"github.com/2beens/gymprogress/internal/db"
	"github.com/2beens/gymprogress/internal/logging"
	"github.com/2beens/gymprogress/internal/telemetry/metrics"
	"github.com/2beens/gymprogress/pkg"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

// one-shot progress jobs, meant for cron or manual fixes:
//   progress_cmd -job expand
//   progress_cmd -job sweep
//   progress_cmd -job user -user 42
//   progress_cmd -job hash-token -token <admin token>

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	job := flag.String("job", "", "job to run [expand | sweep | user | hash-token]")
	userID := flag.Int("user", 0, "user id, for the user job")
	token := flag.String("token", "", "admin token to hash, for the hash-token job")
	flag.Parse()

	if *job == "hash-token" {
		hash, err := pkg.HashToken(*token)
		if err != nil || *token == "" {
			log.Fatalf("hash token: empty token or %v", err)
		}
		fmt.Println(hash)
		return
	}

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("load config: %s", err)
	}

	logging.Setup(logging.LoggerSetupParams{
		LogFileName:      "",
		LogToStdout:      true,
		LogLevel:         cfg.LogLevel,
		Environment:      cfg.Environment,
		SentryEnabled:    cfg.SentryEnabled,
		SentryDSN:        os.Getenv("SENTRY_DSN"),
		SentryServerName: "gymprogress-cmd",
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:   cfg.PostgresHost,
		DBPort:   cfg.PostgresPort,
		DBName:   cfg.PostgresDBName,
		MaxConns: int32(cfg.Scheduler.SweepWorkers + 2),
	})
	if err != nil {
		log.Fatalf("new db pool: %s", err)
	}
	defer dbPool.Close()

	if err := db.Migrate(ctx, dbPool); err != nil {
		log.Fatalf("migrate: %s", err)
	}

	// metrics are not scraped here, the manager only has to exist
	metricsManager := metrics.NewManager("gymprogress", "cmd", prometheus.NewRegistry())
	components := internal.NewComponents(dbPool, cfg, metricsManager)
	if cfg.Badges.SeedDefaultCatalog {
		if err := components.SeedCatalog(ctx); err != nil {
			log.Fatalf("seed catalog: %s", err)
		}
	}

	now := time.Now().UTC()
	var result any
	switch *job {
	case "expand":
		result, err = components.Expander.RunRecurrenceExpansion(ctx, now)
	case "sweep":
		sweepCtx, sweepCancel := context.WithTimeout(ctx, cfg.Scheduler.SweepTimeout)
		defer sweepCancel()
		result, err = components.BadgeEngine.EvaluateBadgesForAllUsers(sweepCtx, now)
	case "user":
		if *userID <= 0 {
			log.Fatalln("user job needs a positive -user id")
		}
		result, err = components.BadgeEngine.EvaluateBadgesForUser(ctx, *userID, now)
	default:
		log.Fatalf("unknown job [%s], use one of: expand, sweep, user, hash-token", *job)
	}
	if err != nil {
		log.Fatalf("job %s failed: %s", *job, err)
	}

	resultJson, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("marshal result: %s", err)
	}
	fmt.Println(string(resultJson))
}

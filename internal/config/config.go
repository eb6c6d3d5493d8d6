package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Environment string `toml:"-"`

	Host string `toml:"host"`
	Port int    `toml:"port"`
	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`
	// prometheus
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`
	// postgres
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`
	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`

	// per user, per minute, for the on-demand badges endpoint
	OnDemandRateLimitPerMin int `toml:"on_demand_rate_limit_per_min"`

	Scheduler SchedulerConfig `toml:"scheduler"`
	Streaks   StreaksConfig   `toml:"streaks"`
	Badges    BadgesConfig    `toml:"badges"`
}

type SchedulerConfig struct {
	Enabled           bool          `toml:"enabled"`
	ExpansionInterval time.Duration `toml:"expansion_interval"`
	// zero disables the periodic badge sweep
	SweepInterval    time.Duration `toml:"sweep_interval"`
	SweepTimeout     time.Duration `toml:"sweep_timeout"`
	ExpansionWorkers int           `toml:"expansion_workers"`
	SweepWorkers     int           `toml:"sweep_workers"`
	DistributedLock  bool          `toml:"distributed_lock"`
	LockTTL          time.Duration `toml:"lock_ttl"`
}

type StreaksConfig struct {
	WeeklyThreshold   int `toml:"weekly_threshold"`
	MaxDailyGapDays   int `toml:"max_daily_gap_days"`
	MaxWeeklyGapWeeks int `toml:"max_weekly_gap_weeks"`
}

type BadgesConfig struct {
	SeedDefaultCatalog bool          `toml:"seed_default_catalog"`
	CatalogCacheTTL    time.Duration `toml:"catalog_cache_ttl"`
}

type Toml struct {
	Development *Config `toml:"development"`
	Production  *Config `toml:"production"`
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch sectionName(env) {
	case "development":
		cfg = t.Development
	case "production":
		cfg = t.Production
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
	if cfg == nil {
		return nil, fmt.Errorf("no config section for env: %s", env)
	}
	return cfg, nil
}

func sectionName(env string) string {
	switch strings.ToLower(env) {
	case "dev", "development":
		return "development"
	case "prod", "production":
		return "production"
	}
	return ""
}

// Load reads the TOML file, picks the section for env and fills in defaults.
func Load(env, path string) (*Config, error) {
	var t Toml
	md, err := toml.DecodeFile(path, &t)
	if err != nil {
		return nil, fmt.Errorf("decode toml config %s: %w", path, err)
	}
	return fromToml(&t, md, env)
}

// Parse is Load for an in-memory TOML document.
func Parse(env, data string) (*Config, error) {
	var t Toml
	md, err := toml.Decode(data, &t)
	if err != nil {
		return nil, fmt.Errorf("decode toml config: %w", err)
	}
	return fromToml(&t, md, env)
}

func fromToml(t *Toml, md toml.MetaData, env string) (*Config, error) {
	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}
	cfg.Environment = strings.ToLower(env)

	// zero is a valid gap ("train today"), only missing keys get the default
	section := sectionName(env)
	dailyGapSet := md.IsDefined(section, "streaks", "max_daily_gap_days")
	weeklyGapSet := md.IsDefined(section, "streaks", "max_weekly_gap_weeks")
	dailyGap, weeklyGap := cfg.Streaks.MaxDailyGapDays, cfg.Streaks.MaxWeeklyGapWeeks

	cfg.ApplyDefaults()
	if dailyGapSet {
		cfg.Streaks.MaxDailyGapDays = dailyGap
	}
	if weeklyGapSet {
		cfg.Streaks.MaxWeeklyGapWeeks = weeklyGap
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) ApplyDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 9100
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.PrometheusMetricsHost == "" {
		c.PrometheusMetricsHost = "localhost"
	}
	if c.PrometheusMetricsPort == "" {
		c.PrometheusMetricsPort = "2112"
	}
	if c.PostgresPort == "" {
		c.PostgresPort = "5432"
	}
	if c.RedisPort == "" {
		c.RedisPort = "6379"
	}
	if c.OnDemandRateLimitPerMin == 0 {
		c.OnDemandRateLimitPerMin = 30
	}

	if c.Scheduler.ExpansionInterval == 0 {
		c.Scheduler.ExpansionInterval = time.Minute
	}
	if c.Scheduler.SweepTimeout == 0 {
		c.Scheduler.SweepTimeout = 30 * time.Minute
	}
	if c.Scheduler.ExpansionWorkers == 0 {
		c.Scheduler.ExpansionWorkers = 4
	}
	if c.Scheduler.SweepWorkers == 0 {
		c.Scheduler.SweepWorkers = 4
	}
	if c.Scheduler.LockTTL == 0 {
		c.Scheduler.LockTTL = time.Hour
	}

	if c.Streaks.WeeklyThreshold == 0 {
		c.Streaks.WeeklyThreshold = 4
	}
	if c.Streaks.MaxDailyGapDays == 0 {
		c.Streaks.MaxDailyGapDays = 1
	}
	if c.Streaks.MaxWeeklyGapWeeks == 0 {
		c.Streaks.MaxWeeklyGapWeeks = 1
	}

	if c.Badges.CatalogCacheTTL == 0 {
		c.Badges.CatalogCacheTTL = 10 * time.Minute
	}
}

func (c *Config) Validate() error {
	var errs []error
	if c.PostgresHost == "" || c.PostgresDBName == "" {
		errs = append(errs, errors.New("postgres host and db name must be set"))
	}
	// expansion looks for sessions due "today", so it has to tick more than once a day
	if c.Scheduler.ExpansionInterval >= 24*time.Hour {
		errs = append(errs, fmt.Errorf("expansion interval must be under a day, got %s", c.Scheduler.ExpansionInterval))
	}
	if c.Scheduler.SweepInterval < 0 {
		errs = append(errs, errors.New("sweep interval cannot be negative"))
	}
	// lock_ttl bounds every locked run, the sweep included
	if c.Scheduler.DistributedLock {
		if c.Scheduler.SweepTimeout <= 0 {
			errs = append(errs, errors.New("sweep timeout must be set when the distributed lock is on"))
		}
		if c.Scheduler.LockTTL < c.Scheduler.SweepTimeout {
			errs = append(errs, fmt.Errorf(
				"lock ttl %s is shorter than sweep timeout %s",
				c.Scheduler.LockTTL, c.Scheduler.SweepTimeout,
			))
		}
	}
	if c.Streaks.WeeklyThreshold < 1 || c.Streaks.WeeklyThreshold > 7 {
		errs = append(errs, fmt.Errorf("weekly threshold must be within 1..7, got %d", c.Streaks.WeeklyThreshold))
	}
	if c.Streaks.MaxDailyGapDays < 0 || c.Streaks.MaxWeeklyGapWeeks < 0 {
		errs = append(errs, errors.New("streak gaps cannot be negative"))
	}
	return errors.Join(errs...)
}

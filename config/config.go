package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DatabaseURL string
	SQLitePath  string
	LogLevel    string
	Scheduler   SchedulerConfig
	Source      SourceConfig
}

type SchedulerConfig struct {
	Cron              string
	Interval          time.Duration
	ScheduleInterval  time.Duration
	AnalyticsInterval time.Duration
}

// SourceConfig describes the scraped site. Defaults target the live game
// pages; config/source.yaml can override them (e.g. for a mirror).
type SourceConfig struct {
	RankingURL      string `yaml:"ranking_url"`
	NewsURL         string `yaml:"news_url"`
	Pages           int    `yaml:"pages"`
	Timezone        string `yaml:"timezone"`
	ScheduleKeyword string `yaml:"schedule_keyword"`
	InitialYear     int    `yaml:"initial_year"`
	QuietHourStart  int    `yaml:"quiet_hour_start"`
	QuietHourEnd    int    `yaml:"quiet_hour_end"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		SQLitePath:  getEnv("SQLITE_PATH", "tracker.db"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Scheduler: SchedulerConfig{
			Cron:              os.Getenv("SCRAPE_CRON"),
			Interval:          getEnvDuration("SCRAPE_INTERVAL", 3*time.Minute),
			ScheduleInterval:  getEnvDuration("SCHEDULE_INTERVAL", 6*time.Hour),
			AnalyticsInterval: getEnvDuration("ANALYTICS_INTERVAL", 1*time.Hour),
		},
		Source: SourceConfig{
			RankingURL:      "https://p.eagate.573.jp/game/chase2jokers/ccj/ranking/index.html",
			NewsURL:         "https://p.eagate.573.jp/game/chase2jokers/ccj/news/index.html",
			Pages:           4,
			Timezone:        "Asia/Tokyo",
			ScheduleKeyword: "スケジュール",
			InitialYear:     2023,
			QuietHourStart:  1,
			QuietHourEnd:    5,
		},
	}

	if tz := os.Getenv("SOURCE_TIMEZONE"); tz != "" {
		cfg.Source.Timezone = tz
	}

	if err := cfg.loadSourceConfig(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadSourceConfig() error {
	data, err := os.ReadFile("config/source.yaml")
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, &c.Source)
}

// Location resolves the source site's time zone. Page timestamps and
// schedule dates are local to the site, not to wherever this runs.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Source.Timezone)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

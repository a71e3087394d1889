package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Catalog struct {
		Path        string `yaml:"path"`
		RulesPath   string `yaml:"rules_path"`
		URL         string `yaml:"url"`
		Token       string `yaml:"token"`
		RefreshCron string `yaml:"refresh_cron"`
		CacheSize   int64  `yaml:"cache_size"`
	} `yaml:"catalog"`
	Optimizer struct {
		ExhaustiveLimit int `yaml:"exhaustive_limit"`
		Workers         int `yaml:"workers"`
	} `yaml:"optimizer"`
	Schedule struct {
		DigestCron string `yaml:"digest_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides (a .env file in the working directory is loaded first, without
// replacing variables already set).
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	setString(&cfg.Telegram.BotToken, "TELEGRAM_BOT_TOKEN")
	setString(&cfg.Telegram.ChatID, "TELEGRAM_CHAT_ID")
	setString(&cfg.Catalog.Path, "CATALOG_PATH")
	setString(&cfg.Catalog.RulesPath, "CATALOG_RULES_PATH")
	setString(&cfg.Catalog.URL, "CATALOG_URL")
	setString(&cfg.Catalog.Token, "CATALOG_TOKEN")
	setString(&cfg.Catalog.RefreshCron, "CATALOG_REFRESH_CRON")
	setString(&cfg.Schedule.DigestCron, "CRON_DIGEST")
	setString(&cfg.Database.SQLitePath, "SQLITE_PATH")
	setString(&cfg.Metrics.Addr, "METRICS_ADDR")
	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.Log.Format, "LOG_FORMAT")
	setString(&cfg.Proxy, "HTTPS_PROXY")
	if v := os.Getenv("OPTIMIZER_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("OPTIMIZER_WORKERS: %w", err)
		}
		cfg.Optimizer.Workers = n
	}

	// Defaults
	if cfg.Catalog.Path == "" && cfg.Catalog.URL == "" {
		cfg.Catalog.Path = "data/card_data.csv"
	}
	if cfg.Catalog.RulesPath == "" {
		cfg.Catalog.RulesPath = "configs/cards.yaml"
	}
	if cfg.Catalog.RefreshCron == "" {
		cfg.Catalog.RefreshCron = "0 0 6 * * *"
	}
	if cfg.Catalog.CacheSize == 0 {
		cfg.Catalog.CacheSize = 16
	}
	if cfg.Optimizer.ExhaustiveLimit == 0 {
		cfg.Optimizer.ExhaustiveLimit = 3
	}
	if cfg.Optimizer.Workers == 0 {
		cfg.Optimizer.Workers = 1
	}
	if cfg.Schedule.DigestCron == "" {
		cfg.Schedule.DigestCron = "0 0 9 * * 1"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/card_optimizer.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}

	return cfg, nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

var cronParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Validate checks the settings the optimizer itself needs.
func (c *Config) Validate() error {
	if c.Catalog.Path == "" && c.Catalog.URL == "" {
		return fmt.Errorf("catalog.path or catalog.url is required")
	}
	if c.Optimizer.ExhaustiveLimit < 1 || c.Optimizer.ExhaustiveLimit > 4 {
		return fmt.Errorf("optimizer.exhaustive_limit must be between 1 and 4, got %d", c.Optimizer.ExhaustiveLimit)
	}
	if c.Optimizer.Workers < 1 {
		return fmt.Errorf("optimizer.workers must be positive, got %d", c.Optimizer.Workers)
	}
	if c.Catalog.CacheSize < 0 {
		return fmt.Errorf("catalog.cache_size must not be negative")
	}
	if _, err := cronParser.Parse(c.Catalog.RefreshCron); err != nil {
		return fmt.Errorf("catalog.refresh_cron: %w", err)
	}
	if _, err := cronParser.Parse(c.Schedule.DigestCron); err != nil {
		return fmt.Errorf("schedule.digest_cron: %w", err)
	}
	return nil
}

// ValidateBot additionally checks the Telegram settings the bot needs.
func (c *Config) ValidateBot() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	if _, err := strconv.ParseInt(c.Telegram.ChatID, 10, 64); err != nil {
		return fmt.Errorf("telegram.chat_id must be numeric")
	}
	return nil
}

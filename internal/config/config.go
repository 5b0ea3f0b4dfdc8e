package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token" envconfig:"TELEGRAM_BOT_TOKEN"`
		ChatID   string `yaml:"chat_id" envconfig:"TELEGRAM_CHAT_ID"`
	} `yaml:"telegram"`
	DataSource struct {
		Provider  string  `yaml:"provider" envconfig:"DATA_PROVIDER"` // vndirect | mock
		BaseURL   string  `yaml:"base_url" envconfig:"VNDIRECT_BASE_URL"`
		MockPrice float64 `yaml:"mock_price" envconfig:"MOCK_PRICE"`
	} `yaml:"data_source"`
	Cache struct {
		Backend       string        `yaml:"backend" envconfig:"CACHE_BACKEND"` // memory | redis | none
		TTL           time.Duration `yaml:"ttl" envconfig:"CACHE_TTL"`
		RedisAddr     string        `yaml:"redis_addr" envconfig:"REDIS_ADDR"`
		RedisPassword string        `yaml:"redis_password" envconfig:"REDIS_PASSWORD"`
		RedisDB       int           `yaml:"redis_db" envconfig:"REDIS_DB"`
	} `yaml:"cache"`
	Screener struct {
		Watchlist   []string `yaml:"watchlist" envconfig:"SCREENER_WATCHLIST"`
		Workers     int      `yaml:"workers" envconfig:"SCREENER_WORKERS"`
		RSIMin      float64  `yaml:"rsi_min" envconfig:"SCREENER_RSI_MIN"`
		RSIMax      float64  `yaml:"rsi_max" envconfig:"SCREENER_RSI_MAX"`
		RequireMA50 bool     `yaml:"require_ma50" envconfig:"SCREENER_REQUIRE_MA50"`
		RequireMACD bool     `yaml:"require_macd" envconfig:"SCREENER_REQUIRE_MACD"`
	} `yaml:"screener"`
	Portfolio struct {
		StateFile string `yaml:"state_file" envconfig:"PORTFOLIO_STATE_FILE"`
	} `yaml:"portfolio"`
	Schedule struct {
		ScreenCron    string `yaml:"screen_cron" envconfig:"CRON_SCREEN"`
		PortfolioCron string `yaml:"portfolio_cron" envconfig:"CRON_PORTFOLIO"`
		RunOnStart    bool   `yaml:"run_on_start" envconfig:"RUN_ON_START"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path" envconfig:"SQLITE_PATH"`
	} `yaml:"database"`
	Metrics struct {
		Listen string `yaml:"listen" envconfig:"METRICS_LISTEN"`
	} `yaml:"metrics"`
	Proxy string `yaml:"proxy" envconfig:"HTTPS_PROXY"`
}

// Default returns the configuration used for any key the file and
// environment leave unset.
func Default() *Config {
	cfg := &Config{}
	cfg.DataSource.Provider = "vndirect"
	cfg.DataSource.MockPrice = 25
	cfg.Cache.Backend = "memory"
	cfg.Cache.TTL = 30 * time.Minute
	cfg.Cache.RedisAddr = "localhost:6379"
	cfg.Screener.Workers = 4
	cfg.Screener.RSIMin = 40
	cfg.Screener.RSIMax = 70
	cfg.Screener.RequireMA50 = true
	cfg.Portfolio.StateFile = "data/portfolio.json"
	cfg.Schedule.ScreenCron = "0 30 15 * * 1-5"
	cfg.Schedule.PortfolioCron = "0 0 10,14 * * 1-5"
	cfg.Database.SQLitePath = "data/wolfdesk.db"
	cfg.Metrics.Listen = ":9108"
	return cfg
}

// Load starts from Default, overlays the YAML file at path and a .env file
// when present, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Existing environment variables win over .env entries.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	return cfg, nil
}

var cronParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Validate checks that all fields are consistent.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case "vndirect", "mock":
	default:
		return fmt.Errorf("data_source.provider must be vndirect or mock, got %q", c.DataSource.Provider)
	}
	if c.DataSource.Provider == "mock" && c.DataSource.MockPrice <= 0 {
		return fmt.Errorf("data_source.mock_price must be positive")
	}
	switch c.Cache.Backend {
	case "memory", "none":
	case "redis":
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("cache.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("cache.backend must be memory, redis or none, got %q", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative")
	}
	if c.Screener.Workers < 1 {
		return fmt.Errorf("screener.workers must be at least 1")
	}
	if c.Screener.RSIMin < 0 || c.Screener.RSIMax > 100 || c.Screener.RSIMin > c.Screener.RSIMax {
		return fmt.Errorf("screener rsi range [%g, %g] must lie within [0, 100]", c.Screener.RSIMin, c.Screener.RSIMax)
	}
	if c.Portfolio.StateFile == "" {
		return fmt.Errorf("portfolio.state_file is required")
	}
	if _, err := cronParser.Parse(c.Schedule.ScreenCron); err != nil {
		return fmt.Errorf("schedule.screen_cron: %w", err)
	}
	if _, err := cronParser.Parse(c.Schedule.PortfolioCron); err != nil {
		return fmt.Errorf("schedule.portfolio_cron: %w", err)
	}
	if c.Telegram.BotToken != "" && c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required when bot_token is set")
	}
	return nil
}

// TelegramEnabled reports whether messages go to Telegram rather than the log.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != ""
}

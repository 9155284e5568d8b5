package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"GoldSentinel/internal/session"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
		Commands bool   `yaml:"commands"`
	} `yaml:"telegram"`
	DataSource struct {
		Provider string `yaml:"provider"` // "twelvedata" or "yahoo"
		BaseURL  string `yaml:"base_url"`
		APIKey   string `yaml:"api_key"`
		Symbol   string `yaml:"symbol"`
	} `yaml:"data_source"`
	Risk struct {
		LotSize        float64 `yaml:"lot_size"`
		StopLossPips   float64 `yaml:"stop_loss_pips"`
		TakeProfitPips float64 `yaml:"take_profit_pips"`
		PipSize        float64 `yaml:"pip_size"`
	} `yaml:"risk"`
	Levels         []float64 `yaml:"levels"`
	LevelTolerance float64   `yaml:"level_tolerance"`
	Sessions       struct {
		Timezone string           `yaml:"timezone"`
		Windows  []session.Window `yaml:"windows"`
	} `yaml:"sessions"`
	Schedule struct {
		PollInterval time.Duration `yaml:"poll_interval"`
	} `yaml:"schedule"`
	HTTP struct {
		Addr               string `yaml:"addr"`
		WebhookTriggersRun bool   `yaml:"webhook_triggers_run"`
	} `yaml:"http"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error; defaults and environment fill the gaps.
func Load(path string) (*Config, error) {
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
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("TWELVEDATA_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.HTTP.Addr = ":" + v
	}
	if v := os.Getenv("WEBHOOK_TRIGGERS_RUN"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.HTTP.WebhookTriggersRun = b
		}
	}
	if v := os.Getenv("POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Schedule.PollInterval = d
		}
	}

	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.DataSource.Provider == "" {
		if cfg.DataSource.APIKey != "" {
			cfg.DataSource.Provider = "twelvedata"
		} else {
			cfg.DataSource.Provider = "yahoo"
		}
	}
	if cfg.DataSource.Symbol == "" {
		cfg.DataSource.Symbol = "XAU/USD"
	}
	if cfg.Risk.LotSize == 0 {
		cfg.Risk.LotSize = 0.01
	}
	if cfg.Risk.StopLossPips == 0 {
		cfg.Risk.StopLossPips = 25
	}
	if cfg.Risk.TakeProfitPips == 0 {
		cfg.Risk.TakeProfitPips = 85
	}
	if cfg.Risk.PipSize == 0 {
		cfg.Risk.PipSize = 0.1 // gold: 1 pip = 0.1
	}
	if len(cfg.Levels) == 0 {
		cfg.Levels = []float64{1920, 1945, 1980, 2000}
	}
	if cfg.LevelTolerance == 0 {
		cfg.LevelTolerance = 1.0
	}
	if cfg.Sessions.Timezone == "" {
		cfg.Sessions.Timezone = "Asia/Karachi"
	}
	if len(cfg.Sessions.Windows) == 0 {
		cfg.Sessions.Windows = []session.Window{
			{Name: "London", Start: 12, End: 16},
			{Name: "New York", Start: 17.5, End: 22.5},
		}
	}
	if cfg.Schedule.PollInterval == 0 {
		cfg.Schedule.PollInterval = 60 * time.Second
	}
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":10000"
	}
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	switch c.DataSource.Provider {
	case "twelvedata":
		if c.DataSource.APIKey == "" {
			return fmt.Errorf("data_source.api_key is required for twelvedata")
		}
	case "yahoo":
	default:
		return fmt.Errorf("data_source.provider %q is not supported", c.DataSource.Provider)
	}
	if c.Risk.PipSize <= 0 || c.Risk.StopLossPips <= 0 || c.Risk.TakeProfitPips <= 0 {
		return fmt.Errorf("risk.pip_size, stop_loss_pips and take_profit_pips must be positive")
	}
	if c.Risk.LotSize <= 0 {
		return fmt.Errorf("risk.lot_size must be positive")
	}
	if c.LevelTolerance <= 0 {
		return fmt.Errorf("level_tolerance must be positive")
	}
	if c.Schedule.PollInterval < time.Second {
		return fmt.Errorf("schedule.poll_interval must be at least 1s")
	}
	if _, err := time.LoadLocation(c.Sessions.Timezone); err != nil {
		return fmt.Errorf("sessions.timezone: %w", err)
	}
	if err := session.ValidateWindows(c.Sessions.Windows); err != nil {
		return fmt.Errorf("sessions.windows: %w", err)
	}
	return nil
}

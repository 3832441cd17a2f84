package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
	Strategy struct {
		Lead             string  `yaml:"lead"`
		Lag              string  `yaml:"lag"`
		Capital          float64 `yaml:"capital"`
		GapThreshold     float64 `yaml:"gap_threshold"`
		VolumeMultiplier float64 `yaml:"volume_multiplier"`
		ZScoreThreshold  float64 `yaml:"zscore_threshold"`
		UseVolSizing     bool    `yaml:"use_vol_sizing"`
		MaxLeverage      float64 `yaml:"max_leverage"`
		Lookback         int     `yaml:"lookback"`
		HoldDays         int     `yaml:"hold_days"`
	} `yaml:"strategy"`
	Scheduler struct {
		Interval time.Duration `yaml:"interval"`
		RunOnce  bool          `yaml:"run_once"`
	} `yaml:"scheduler"`
	Journal struct {
		Backend string `yaml:"backend"` // kafka or clickhouse
	} `yaml:"journal"`
	Alpaca struct {
		APIKey         string        `yaml:"api_key"`
		SecretKey      string        `yaml:"secret_key"`
		BaseURL        string        `yaml:"base_url"`
		DataURL        string        `yaml:"data_url"`
		StreamURL      string        `yaml:"stream_url"`
		StreamEnabled  bool          `yaml:"stream_enabled"`
		Timeout        time.Duration `yaml:"timeout"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay"`
		PingInterval   time.Duration `yaml:"ping_interval"`
	} `yaml:"alpaca"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		TradesTopic  string   `yaml:"trades_topic"`
		ActionsTopic string   `yaml:"actions_topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			BufferSize int           `yaml:"buffer_size"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			DLQTopic   string        `yaml:"dlq_topic"`
			MinBytes   int           `yaml:"min_bytes"`
			MaxBytes   int           `yaml:"max_bytes"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Cache struct {
		Enabled    bool          `yaml:"enabled"`
		Addr       string        `yaml:"addr"`
		Password   string        `yaml:"password"`
		DB         int           `yaml:"db"`
		HistoryTTL time.Duration `yaml:"history_ttl"`
	} `yaml:"cache"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		c.Alpaca.APIKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		c.Alpaca.SecretKey = v
	}
	if v := os.Getenv("APCA_API_BASE_URL"); v != "" {
		c.Alpaca.BaseURL = v
	}
	if v := os.Getenv("JOURNAL_BACKEND"); v != "" {
		c.Journal.Backend = v
	}
	if v := os.Getenv("LEAD_SYMBOL"); v != "" {
		c.Strategy.Lead = v
	}
	if v := os.Getenv("LAG_SYMBOL"); v != "" {
		c.Strategy.Lag = v
	}

	return c, nil
}

// applyDefaults fills the research defaults for unset strategy knobs.
// A zero value is indistinguishable from unset, so thresholds cannot be
// configured to exactly 0; switch to pointer fields if that is ever needed.
func (c *Config) applyDefaults() {
	s := &c.Strategy
	if s.Capital == 0 {
		s.Capital = 1_000_000
	}
	if s.GapThreshold == 0 {
		s.GapThreshold = 0.01
	}
	if s.VolumeMultiplier == 0 {
		s.VolumeMultiplier = 1.2
	}
	if s.ZScoreThreshold == 0 {
		s.ZScoreThreshold = 1
	}
	if s.MaxLeverage == 0 {
		s.MaxLeverage = 3
	}
	if s.Lookback == 0 {
		s.Lookback = 20
	}
	if s.HoldDays == 0 {
		s.HoldDays = 1
	}
	if c.Scheduler.Interval == 0 {
		c.Scheduler.Interval = 24 * time.Hour
	}
	if c.Cache.HistoryTTL == 0 {
		c.Cache.HistoryTTL = 10 * time.Minute
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Journal.Backend == "" {
		return fmt.Errorf("journal.backend is required")
	}
	if c.Journal.Backend != "kafka" && c.Journal.Backend != "clickhouse" {
		return fmt.Errorf("journal.backend must be 'kafka' or 'clickhouse', got '%s'", c.Journal.Backend)
	}
	if c.Strategy.Lead == "" || c.Strategy.Lag == "" {
		return fmt.Errorf("strategy.lead and strategy.lag are required")
	}
	if c.Strategy.Lead == c.Strategy.Lag {
		return fmt.Errorf("strategy.lead and strategy.lag must differ")
	}
	if c.Strategy.Lookback < 2 {
		return fmt.Errorf("strategy.lookback must be at least 2, got %d", c.Strategy.Lookback)
	}
	if c.Strategy.HoldDays < 1 {
		return fmt.Errorf("strategy.hold_days must be at least 1, got %d", c.Strategy.HoldDays)
	}
	if c.Strategy.MaxLeverage <= 0 {
		return fmt.Errorf("strategy.max_leverage must be positive")
	}
	if c.Alpaca.APIKey == "" || c.Alpaca.SecretKey == "" {
		return fmt.Errorf("alpaca.api_key and alpaca.secret_key are required")
	}
	return nil
}

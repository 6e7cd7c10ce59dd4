package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"FxPilot/internal/domain/models"

	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Log         struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`
	Server struct {
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"15s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		AllowOrigins    []string      `yaml:"allow_origins" default:"[\"*\"]"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Strategy  models.StrategyParameters `yaml:"strategy"`
	Autopilot struct {
		Symbols            []string      `yaml:"symbols" default:"[\"EURUSD\"]"`
		Interval           time.Duration `yaml:"interval" default:"8s"`
		ExecutionThreshold float64       `yaml:"execution_threshold" default:"0.6"`
		CycleTimeout       time.Duration `yaml:"cycle_timeout" default:"30s"`
		JournalSize        int           `yaml:"journal_size" default:"200"`
	} `yaml:"autopilot"`
	Monitor struct {
		Enabled         bool          `yaml:"enabled" default:"true"`
		MetricsInterval time.Duration `yaml:"metrics_interval" default:"10s"`
		TradesInterval  time.Duration `yaml:"trades_interval" default:"12s"`
		StatusInterval  time.Duration `yaml:"status_interval" default:"15s"`
	} `yaml:"monitor"`
	Fallback struct {
		Bars int   `yaml:"bars" default:"120"`
		Seed int64 `yaml:"seed"`
	} `yaml:"fallback"`
	Market struct {
		Source    string        `yaml:"source" default:"none"`
		Timeframe string        `yaml:"timeframe" default:"1h"`
		CacheTTL  time.Duration `yaml:"cache_ttl" default:"5s"`
		MaxBars   int           `yaml:"max_bars" default:"500"`
	} `yaml:"market"`
	Bridge struct {
		BaseURL string        `yaml:"base_url"`
		APIKey  string        `yaml:"api_key"`
		Timeout time.Duration `yaml:"timeout" default:"5s"`
		Retries int           `yaml:"retries" default:"2"`
	} `yaml:"bridge"`
	Execution struct {
		RateCapacity  int     `yaml:"rate_capacity" default:"3"`
		RatePerSecond float64 `yaml:"rate_per_second" default:"0.5"`
	} `yaml:"execution"`
	Kafka struct {
		Enabled        bool     `yaml:"enabled"`
		Brokers        []string `yaml:"brokers" default:"[\"localhost:9092\"]"`
		SignalTopic    string   `yaml:"signal_topic" default:"fxpilot.signals"`
		ExecutionTopic string   `yaml:"execution_topic" default:"fxpilot.executions"`
		TickTopic      string   `yaml:"tick_topic" default:"fxpilot.ticks"`
		RequiredAcks   int      `yaml:"required_acks" default:"1"`
		Compression    string   `yaml:"compression" default:"snappy"`
		Producer       struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			BatchTimeout time.Duration `yaml:"batch_timeout" default:"20ms"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id" default:"fxpilot"`
			Workers    int           `yaml:"workers" default:"2"`
			BufferSize int           `yaml:"buffer_size" default:"256"`
			RetryMax   int           `yaml:"retry_max" default:"3"`
			BackoffMin time.Duration `yaml:"backoff_min" default:"100ms"`
			BackoffMax time.Duration `yaml:"backoff_max" default:"2s"`
			DLQTopic   string        `yaml:"dlq_topic"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled     bool          `yaml:"enabled"`
		Host        string        `yaml:"host" default:"localhost"`
		Port        int           `yaml:"port" default:"9000"`
		Database    string        `yaml:"database" default:"fxpilot"`
		User        string        `yaml:"user" default:"default"`
		Password    string        `yaml:"password"`
		UseHTTP     bool          `yaml:"use_http"`
		DialTimeout time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout time.Duration `yaml:"read_timeout" default:"10s"`
		InitSchema  bool          `yaml:"init_schema" default:"true"`
	} `yaml:"clickhouse"`
	Redis struct {
		Enabled  bool          `yaml:"enabled"`
		Host     string        `yaml:"host" default:"localhost"`
		Port     int           `yaml:"port" default:"6379"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		Prefix   string        `yaml:"prefix" default:"fxpilot"`
		LocalTTL time.Duration `yaml:"local_ttl" default:"2s"`
	} `yaml:"redis"`
	Stream struct {
		URL            string            `yaml:"url" default:"wss://ws.finnhub.io"`
		APIKey         string            `yaml:"api_key"`
		Symbols        map[string]string `yaml:"symbols"`
		ReconnectDelay time.Duration     `yaml:"reconnect_delay" default:"5s"`
		PingInterval   time.Duration     `yaml:"ping_interval" default:"30s"`
		MaxRPS         int               `yaml:"max_rps" default:"20"`
	} `yaml:"stream"`
}

// Market sources accepted in market.source.
const (
	SourceNone       = "none"
	SourceBridge     = "bridge"
	SourceClickHouse = "clickhouse"
	SourceStream     = "stream"
	SourceKafka      = "kafka"
)

// Default returns a config with every default applied.
func Default() (*Config, error) {
	var c Config
	if err := setDefaults(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Load reads and parses a YAML configuration file on top of the defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML on top of the defaults and validates the result.
func Parse(b []byte) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads .env (if present), then the YAML file, then applies
// environment overrides.
func LoadWithEnv(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := c.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("BRIDGE_URL"); v != "" {
		c.Bridge.BaseURL = v
	}
	if v := getenv("BRIDGE_API_KEY"); v != "" {
		c.Bridge.APIKey = v
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = splitList(v)
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		host, port, ok := strings.Cut(v, ":")
		c.Redis.Host = host
		if ok {
			p, err := strconv.Atoi(port)
			if err != nil {
				return fmt.Errorf("REDIS_ADDR port: %w", err)
			}
			c.Redis.Port = p
		}
	}
	if v := getenv("MARKET_SOURCE"); v != "" {
		c.Market.Source = v
	}
	if v := getenv("AUTOPILOT_SYMBOLS"); v != "" {
		c.Autopilot.Symbols = splitList(v)
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := getenv("STREAM_API_KEY"); v != "" {
		c.Stream.APIKey = v
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be positive")
	}
	if len(c.Autopilot.Symbols) == 0 {
		return fmt.Errorf("autopilot.symbols cannot be empty")
	}
	for _, s := range c.Autopilot.Symbols {
		if !models.IsSupportedSymbol(s) {
			return fmt.Errorf("autopilot.symbols: unsupported symbol %q", s)
		}
	}
	if c.Autopilot.Interval <= 0 {
		return fmt.Errorf("autopilot.interval must be positive")
	}
	if c.Autopilot.ExecutionThreshold < 0 || c.Autopilot.ExecutionThreshold > 1 {
		return fmt.Errorf("autopilot.execution_threshold must be within [0,1]")
	}
	if c.Autopilot.JournalSize <= 0 {
		return fmt.Errorf("autopilot.journal_size must be positive")
	}
	if c.Fallback.Bars < c.Strategy.LongWindow {
		return fmt.Errorf("fallback.bars (%d) must cover strategy.long_window (%d)", c.Fallback.Bars, c.Strategy.LongWindow)
	}
	switch c.Market.Source {
	case SourceNone, SourceBridge:
	case SourceClickHouse:
		if !c.ClickHouse.Enabled {
			return fmt.Errorf("market.source clickhouse requires clickhouse.enabled")
		}
	case SourceKafka:
		if !c.Kafka.Enabled {
			return fmt.Errorf("market.source kafka requires kafka.enabled")
		}
	case SourceStream:
		if c.Stream.APIKey == "" {
			return fmt.Errorf("market.source stream requires stream.api_key")
		}
	default:
		return fmt.Errorf("market.source must be one of none, bridge, clickhouse, stream, kafka; got %q", c.Market.Source)
	}
	if c.Market.Source == SourceBridge && c.Bridge.BaseURL == "" {
		return fmt.Errorf("market.source bridge requires bridge.base_url")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty")
	}
	if c.Execution.RateCapacity <= 0 || c.Execution.RatePerSecond <= 0 {
		return fmt.Errorf("execution rate limits must be positive")
	}
	return nil
}

// Addr is the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

func setDefaults(c *Config) error {
	if err := defaults.Set(c); err != nil {
		return fmt.Errorf("config defaults: %w", err)
	}
	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

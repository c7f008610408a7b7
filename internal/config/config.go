package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable read by Load
const EnvPrefix = "F1"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	WebSocket WebSocketConfig `yaml:"websocket" envconfig:"WEBSOCKET"`
	Analytics AnalyticsConfig `yaml:"analytics" envconfig:"ANALYTICS"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"90s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" default:"60s"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8080"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"50"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"25"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/f1insights.log"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	DataDir string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data"`
	LogsDir string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs"`
}

// WebSocketConfig contains WebSocket configuration
type WebSocketConfig struct {
	ReadBufferSize  int           `yaml:"read_buffer_size" envconfig:"READ_BUFFER_SIZE" default:"1024"`
	WriteBufferSize int           `yaml:"write_buffer_size" envconfig:"WRITE_BUFFER_SIZE" default:"4096"`
	MaxMessageSize  int64         `yaml:"max_message_size" envconfig:"MAX_MESSAGE_SIZE" default:"4096"`
	PongWait        time.Duration `yaml:"pong_wait" envconfig:"PONG_WAIT" default:"60s"`
}

// AnalyticsConfig tunes the models and thresholds of the analytics actions
type AnalyticsConfig struct {
	TargetYear          int     `yaml:"target_year" envconfig:"TARGET_YEAR" default:"2025"`
	ForecastHorizon     int     `yaml:"forecast_horizon" envconfig:"FORECAST_HORIZON" default:"3"`
	MinForecastSeasons  int     `yaml:"min_forecast_seasons" envconfig:"MIN_FORECAST_SEASONS" default:"5"`
	MinConsistencyRaces int     `yaml:"min_consistency_races" envconfig:"MIN_CONSISTENCY_RACES" default:"20"`
	HeadToHeadTopN      int     `yaml:"head_to_head_top_n" envconfig:"HEAD_TO_HEAD_TOP_N" default:"20"`
	ForestTrees         int     `yaml:"forest_trees" envconfig:"FOREST_TREES" default:"100"`
	ForestSeed          uint64  `yaml:"forest_seed" envconfig:"FOREST_SEED" default:"42"`
	TestFraction        float64 `yaml:"test_fraction" envconfig:"TEST_FRACTION" default:"0.2"`
}

// TelemetryConfig contains OpenTelemetry configuration
type TelemetryConfig struct {
	Environment   string `yaml:"environment" envconfig:"ENVIRONMENT" default:"development"`
	TraceExporter string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" default:"none"`
	EnableTracing bool   `yaml:"enable_tracing" envconfig:"ENABLE_TRACING" default:"true"`
	EnableMetrics bool   `yaml:"enable_metrics" envconfig:"ENABLE_METRICS" default:"true"`
}

// Load loads configuration from environment variables and config file.
// Environment variables win over the file, the file wins over defaults.
func Load() (*Config, error) {
	var cfg Config

	// Load from environment variables first
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	// Load from config file if exists
	if configFile := getConfigFilePath(); configFile != "" {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs copies file values over env/default values unless the matching
// environment variable was set explicitly
func mergeConfigs(fileConfig, envConfig Config) Config {
	override(&envConfig.Server.Port, fileConfig.Server.Port, "SERVER_PORT")
	override(&envConfig.Server.ReadTimeout, fileConfig.Server.ReadTimeout, "SERVER_READ_TIMEOUT")
	override(&envConfig.Server.WriteTimeout, fileConfig.Server.WriteTimeout, "SERVER_WRITE_TIMEOUT")
	override(&envConfig.Server.IdleTimeout, fileConfig.Server.IdleTimeout, "SERVER_IDLE_TIMEOUT")
	override(&envConfig.Server.ShutdownTimeout, fileConfig.Server.ShutdownTimeout, "SERVER_SHUTDOWN_TIMEOUT")
	override(&envConfig.Server.RequestTimeout, fileConfig.Server.RequestTimeout, "SERVER_REQUEST_TIMEOUT")

	if _, set := os.LookupEnv(envKey("SECURITY_ALLOWED_ORIGINS")); !set && len(fileConfig.Security.AllowedOrigins) > 0 {
		envConfig.Security.AllowedOrigins = fileConfig.Security.AllowedOrigins
	}
	override(&envConfig.Security.RateLimit.RPS, fileConfig.Security.RateLimit.RPS, "SECURITY_RATE_LIMIT_RPS")
	override(&envConfig.Security.RateLimit.Burst, fileConfig.Security.RateLimit.Burst, "SECURITY_RATE_LIMIT_BURST")

	override(&envConfig.Logging.Level, fileConfig.Logging.Level, "LOGGING_LEVEL")
	override(&envConfig.Logging.Output, fileConfig.Logging.Output, "LOGGING_OUTPUT")
	override(&envConfig.Logging.FilePath, fileConfig.Logging.FilePath, "LOGGING_FILE_PATH")

	override(&envConfig.Paths.DataDir, fileConfig.Paths.DataDir, "PATHS_DATA_DIR")
	override(&envConfig.Paths.LogsDir, fileConfig.Paths.LogsDir, "PATHS_LOGS_DIR")

	override(&envConfig.WebSocket.ReadBufferSize, fileConfig.WebSocket.ReadBufferSize, "WEBSOCKET_READ_BUFFER_SIZE")
	override(&envConfig.WebSocket.WriteBufferSize, fileConfig.WebSocket.WriteBufferSize, "WEBSOCKET_WRITE_BUFFER_SIZE")
	override(&envConfig.WebSocket.MaxMessageSize, fileConfig.WebSocket.MaxMessageSize, "WEBSOCKET_MAX_MESSAGE_SIZE")
	override(&envConfig.WebSocket.PongWait, fileConfig.WebSocket.PongWait, "WEBSOCKET_PONG_WAIT")

	override(&envConfig.Analytics.TargetYear, fileConfig.Analytics.TargetYear, "ANALYTICS_TARGET_YEAR")
	override(&envConfig.Analytics.ForecastHorizon, fileConfig.Analytics.ForecastHorizon, "ANALYTICS_FORECAST_HORIZON")
	override(&envConfig.Analytics.MinForecastSeasons, fileConfig.Analytics.MinForecastSeasons, "ANALYTICS_MIN_FORECAST_SEASONS")
	override(&envConfig.Analytics.MinConsistencyRaces, fileConfig.Analytics.MinConsistencyRaces, "ANALYTICS_MIN_CONSISTENCY_RACES")
	override(&envConfig.Analytics.HeadToHeadTopN, fileConfig.Analytics.HeadToHeadTopN, "ANALYTICS_HEAD_TO_HEAD_TOP_N")
	override(&envConfig.Analytics.ForestTrees, fileConfig.Analytics.ForestTrees, "ANALYTICS_FOREST_TREES")
	override(&envConfig.Analytics.ForestSeed, fileConfig.Analytics.ForestSeed, "ANALYTICS_FOREST_SEED")
	override(&envConfig.Analytics.TestFraction, fileConfig.Analytics.TestFraction, "ANALYTICS_TEST_FRACTION")

	override(&envConfig.Telemetry.Environment, fileConfig.Telemetry.Environment, "TELEMETRY_ENVIRONMENT")
	override(&envConfig.Telemetry.TraceExporter, fileConfig.Telemetry.TraceExporter, "TELEMETRY_TRACE_EXPORTER")

	return envConfig
}

func override[T comparable](dst *T, fileValue T, key string) {
	var zero T
	if fileValue == zero {
		return
	}
	if _, set := os.LookupEnv(envKey(key)); set {
		return
	}
	*dst = fileValue
}

func envKey(key string) string {
	return EnvPrefix + "_" + key
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}

	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return fmt.Errorf("data directory must be specified")
	}

	if c.Analytics.ForestTrees <= 0 {
		return fmt.Errorf("forest trees must be positive: %d", c.Analytics.ForestTrees)
	}

	if c.Analytics.TestFraction <= 0 || c.Analytics.TestFraction >= 1 {
		return fmt.Errorf("test fraction must be in (0, 1): %g", c.Analytics.TestFraction)
	}

	// JSON is the only supported log format
	c.Logging.Format = "json"

	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		c.Logging.Output = "console"
	}

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/f1insights.log"
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if explicit := os.Getenv(envKey("CONFIG_FILE")); explicit != "" {
		return explicit
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    90 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  60 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     50,
				Burst:   25,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/f1insights.log",
		},
		Paths: PathsConfig{
			DataDir: "data",
			LogsDir: "logs",
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			MaxMessageSize:  4096,
			PongWait:        60 * time.Second,
		},
		Analytics: DefaultAnalytics(),
		Telemetry: TelemetryConfig{
			Environment:   "development",
			TraceExporter: "none",
			EnableTracing: true,
			EnableMetrics: true,
		},
	}
}

// DefaultAnalytics returns the default analytics tuning
func DefaultAnalytics() AnalyticsConfig {
	return AnalyticsConfig{
		TargetYear:          2025,
		ForecastHorizon:     3,
		MinForecastSeasons:  5,
		MinConsistencyRaces: 20,
		HeadToHeadTopN:      20,
		ForestTrees:         100,
		ForestSeed:          42,
		TestFraction:        0.2,
	}
}

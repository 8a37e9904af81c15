package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. GRANTFLOW_DB_PATH.
const EnvPrefix = "GRANTFLOW_"

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" envPrefix:"SERVER_"`
	Transport TransportConfig `yaml:"transport" envPrefix:"TRANSPORT_"`
	Auth      AuthConfig      `yaml:"auth" envPrefix:"AUTH_"`
	DB        DBConfig        `yaml:"db" envPrefix:"DB_"`
	Log       LogConfig       `yaml:"log" envPrefix:"LOG_"`
	Metrics   MetricsConfig   `yaml:"metrics" envPrefix:"METRICS_"`
	Queue     QueueConfig     `yaml:"queue" envPrefix:"QUEUE_"`
}

type ServerConfig struct {
	Host string `yaml:"host" env:"HOST"`
	Port int    `yaml:"port" env:"PORT"`
}

type TransportConfig struct {
	// Mode is "http" or "stdio".
	Mode string `yaml:"mode" env:"MODE"`
}

type AuthConfig struct {
	Enabled bool `yaml:"enabled" env:"ENABLED"`
}

type DBConfig struct {
	Path string `yaml:"path" env:"PATH"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"LEVEL"`
	// Format is "json" or "console".
	Format string `yaml:"format" env:"FORMAT"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" env:"ENABLED"`
	Host    string `yaml:"host" env:"HOST"`
	Port    int    `yaml:"port" env:"PORT"`
}

// QueueConfig configures the AMQP event publisher. Events are dropped when disabled.
type QueueConfig struct {
	Enabled       bool          `yaml:"enabled" env:"ENABLED"`
	URL           string        `yaml:"url" env:"URL"`
	Exchange      string        `yaml:"exchange" env:"EXCHANGE"`
	RoutingPrefix string        `yaml:"routing_prefix" env:"ROUTING_PREFIX"`
	MaxRetryTimes uint          `yaml:"max_retry_times" env:"MAX_RETRY_TIMES"`
	RetryInterval time.Duration `yaml:"retry_interval" env:"RETRY_INTERVAL"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Transport: TransportConfig{
			Mode: "http",
		},
		DB: DBConfig{
			Path: "grantflow.db",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Host: "0.0.0.0",
			Port: 2112,
		},
		Queue: QueueConfig{
			Exchange:      "grantflow.events",
			RoutingPrefix: "grantflow",
			MaxRetryTimes: 3,
			RetryInterval: 500 * time.Millisecond,
		},
	}
}

// Load reads configuration from an optional YAML file and environment
// variables, in that order. An empty path falls back to GRANTFLOW_CONFIG_PATH.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvPrefix + "CONFIG_PATH")
	}
	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

// Validate checks the configuration for values the server cannot start with.
func (c Config) Validate() error {
	var errs []error
	if c.Transport.Mode != "http" && c.Transport.Mode != "stdio" {
		errs = append(errs, fmt.Errorf("transport.mode must be http or stdio, got %q", c.Transport.Mode))
	}
	if c.Transport.Mode == "http" && (c.Server.Port <= 0 || c.Server.Port > 65535) {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	if c.DB.Path == "" {
		errs = append(errs, errors.New("db.path is required"))
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		errs = append(errs, fmt.Errorf("log.format must be json or console, got %q", c.Log.Format))
	}
	if c.Metrics.Enabled && (c.Metrics.Port <= 0 || c.Metrics.Port > 65535) {
		errs = append(errs, fmt.Errorf("metrics.port out of range: %d", c.Metrics.Port))
	}
	if c.Queue.Enabled {
		if c.Queue.URL == "" {
			errs = append(errs, errors.New("queue.url is required when the queue is enabled"))
		}
		if c.Queue.Exchange == "" {
			errs = append(errs, errors.New("queue.exchange is required when the queue is enabled"))
		}
		if c.Queue.RetryInterval <= 0 {
			errs = append(errs, fmt.Errorf("queue.retry_interval must be positive, got %s", c.Queue.RetryInterval))
		}
	}
	return errors.Join(errs...)
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/kiteflow/pkg/adapters/memory"
	"github.com/aretw0/kiteflow/pkg/ports"
)

// Environment variables overriding file values.
const (
	EnvLogLevel  = "KITEFLOW_LOG_LEVEL"
	EnvRedisAddr = "KITEFLOW_REDIS_ADDR"
	EnvHTTPPort  = "KITEFLOW_HTTP_PORT"
	EnvJournal   = "KITEFLOW_JOURNAL"
)

// Config is the process configuration of the kiteflow binary.
type Config struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	StrictIDs bool   `mapstructure:"strict_ids"`
	Journal   string `mapstructure:"journal"`

	HTTP  HTTPConfig  `mapstructure:"http"`
	Redis RedisConfig `mapstructure:"redis"`

	// Plugin is the key-value configuration handed to the engine.
	Plugin map[string]string `mapstructure:"plugin"`
}

// HTTPConfig configures the serve command.
type HTTPConfig struct {
	Port    int  `mapstructure:"port"`
	Metrics bool `mapstructure:"metrics"`
}

// RedisConfig configures the redis adapters.
type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	FlowKey   string `mapstructure:"flow_key"`
	ConfigKey string `mapstructure:"config_key"`
	QueueKey  string `mapstructure:"queue_key"`
	// Drain makes the queue report io.EOF when empty instead of blocking.
	Drain     bool   `mapstructure:"drain"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		LogLevel:  "info",
		LogFormat: "text",
		HTTP:      HTTPConfig{Port: 8080, Metrics: true},
		Redis: RedisConfig{
			FlowKey:   "kiteflow:flow",
			ConfigKey: "kiteflow:config",
			QueueKey:  "kiteflow:events",
		},
		Plugin: map[string]string{},
	}
}

// Load reads an optional .env file, then the YAML file at path (if any),
// then applies environment overrides on top of Default.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		if err := Decode(data, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Decode merges a YAML document into cfg. Scalars are converted loosely,
// so `port: "9000"` and `plugin: {limit: 3}` both decode.
func Decode(data []byte, cfg *Config) error {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	if raw == nil {
		return nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           cfg,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(EnvRedisAddr); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv(EnvJournal); v != "" {
		cfg.Journal = v
	}
	if v := os.Getenv(EnvHTTPPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvHTTPPort, v, err)
		}
		cfg.HTTP.Port = port
	}
	return nil
}

// PluginSource exposes the plugin section as a ports.ConfigSource.
func (c Config) PluginSource() ports.ConfigSource {
	return memory.StaticConfig(c.Plugin)
}

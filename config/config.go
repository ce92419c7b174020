// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config keeps the runtime configuration for the server.
type Config struct {
	Env     string
	HTTP    HTTPConfig
	Engine  EngineConfig
	Journal JournalConfig
	Kafka   KafkaConfig
}

// HTTPConfig holds HTTP server related settings.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr renders the listen address in host:port form.
func (h HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

// EngineConfig holds matching engine parameters.
type EngineConfig struct {
	TickSize  float64
	MaxLevels int
}

// JournalConfig holds the trade journal location.
type JournalConfig struct {
	Dir string
}

// KafkaConfig holds broker settings for the trade and depth topics. Both
// jobs stay disabled when no brokers are configured.
type KafkaConfig struct {
	Brokers       []string
	TradeTopic    string
	DepthTopic    string
	DepthInterval time.Duration
	DepthLevels   int
	DrainInterval time.Duration
}

// Enabled reports whether Kafka publishing should run.
func (k KafkaConfig) Enabled() bool { return len(k.Brokers) > 0 }

// Load builds Config from environment variables (ODIN_HTTP_PORT and so on).
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("odin")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("env", "development")
	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("engine.tick_size", 0.01)
	v.SetDefault("engine.max_levels", 20)
	v.SetDefault("journal.dir", "./journal")
	v.SetDefault("kafka.brokers", "")
	v.SetDefault("kafka.trade_topic", "trades")
	v.SetDefault("kafka.depth_topic", "book-depth")
	v.SetDefault("kafka.depth_interval", "2s")
	v.SetDefault("kafka.depth_levels", 10)
	v.SetDefault("kafka.drain_interval", "250ms")

	cfg := &Config{
		Env: v.GetString("env"),
		HTTP: HTTPConfig{
			Host: v.GetString("http.host"),
			Port: v.GetInt("http.port"),
		},
		Engine: EngineConfig{
			TickSize:  v.GetFloat64("engine.tick_size"),
			MaxLevels: v.GetInt("engine.max_levels"),
		},
		Journal: JournalConfig{
			Dir: v.GetString("journal.dir"),
		},
		Kafka: KafkaConfig{
			Brokers:       splitBrokers(v.GetString("kafka.brokers")),
			TradeTopic:    v.GetString("kafka.trade_topic"),
			DepthTopic:    v.GetString("kafka.depth_topic"),
			DepthInterval: v.GetDuration("kafka.depth_interval"),
			DepthLevels:   v.GetInt("kafka.depth_levels"),
			DrainInterval: v.GetDuration("kafka.drain_interval"),
		},
	}

	if cfg.Engine.TickSize <= 0 {
		return nil, fmt.Errorf("engine.tick_size must be > 0, got %v", cfg.Engine.TickSize)
	}
	if cfg.Engine.MaxLevels <= 0 {
		return nil, fmt.Errorf("engine.max_levels must be > 0, got %d", cfg.Engine.MaxLevels)
	}
	if cfg.Journal.Dir == "" {
		return nil, fmt.Errorf("journal.dir is required")
	}
	return cfg, nil
}

func splitBrokers(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/leadgen-cli/internal/source/b2b"
	"github.com/sells-group/leadgen-cli/internal/source/localdir"
	"github.com/sells-group/leadgen-cli/internal/source/maps"
	"github.com/sells-group/leadgen-cli/internal/source/reviews"
	"github.com/sells-group/leadgen-cli/internal/store"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Quota     QuotaConfig     `yaml:"quota" mapstructure:"quota"`
	Enrich    EnrichConfig    `yaml:"enrich" mapstructure:"enrich"`
	Heuristic HeuristicConfig `yaml:"heuristic" mapstructure:"heuristic"`
	Sources   SourcesConfig   `yaml:"sources" mapstructure:"sources"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string           `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string           `yaml:"database_url" mapstructure:"database_url"`
	Path        string           `yaml:"path" mapstructure:"path"`
	Pool        store.PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// QuotaConfig bounds AI usage per UTC day.
type QuotaConfig struct {
	DailyLimit int `yaml:"daily_limit" mapstructure:"daily_limit"`
}

// EnrichConfig configures enrichment retry, pacing and the hot threshold.
type EnrichConfig struct {
	MaxRetries        int `yaml:"max_retries" mapstructure:"max_retries"`
	BaseBackoffMs     int `yaml:"base_backoff_ms" mapstructure:"base_backoff_ms"`
	PacingMs          int `yaml:"pacing_ms" mapstructure:"pacing_ms"`
	HotScoreThreshold int `yaml:"hot_score_threshold" mapstructure:"hot_score_threshold"`
}

// HeuristicConfig configures the deterministic fallback scorer.
type HeuristicConfig struct {
	MinRating  float64 `yaml:"min_rating" mapstructure:"min_rating"`
	MinReviews int     `yaml:"min_reviews" mapstructure:"min_reviews"`
}

// SourcesConfig holds the per-adapter API settings.
type SourcesConfig struct {
	Maps     maps.Config     `yaml:"maps" mapstructure:"maps"`
	LocalDir localdir.Config `yaml:"localdir" mapstructure:"localdir"`
	B2B      b2b.Config      `yaml:"b2b" mapstructure:"b2b"`
	Reviews  reviews.Config  `yaml:"reviews" mapstructure:"reviews"`
}

// ServerConfig configures the webhook server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEADGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "leads.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("quota.daily_limit", 240)
	v.SetDefault("enrich.max_retries", 3)
	v.SetDefault("enrich.base_backoff_ms", 600)
	v.SetDefault("enrich.pacing_ms", 150)
	v.SetDefault("enrich.hot_score_threshold", 80)
	v.SetDefault("heuristic.min_rating", 4.0)
	v.SetDefault("heuristic.min_reviews", 50)
	v.SetDefault("sources.maps.base_url", "https://maps.googleapis.com/maps/api/place")
	v.SetDefault("sources.maps.timeout_secs", 20)
	v.SetDefault("sources.maps.min_delay_ms", 200)
	v.SetDefault("sources.localdir.timeout_secs", 20)
	v.SetDefault("sources.localdir.min_delay_ms", 200)
	v.SetDefault("sources.b2b.timeout_secs", 20)
	v.SetDefault("sources.b2b.min_delay_ms", 200)
	v.SetDefault("sources.reviews.base_url", "https://api.yelp.com")
	v.SetDefault("sources.reviews.timeout_secs", 20)
	v.SetDefault("sources.reviews.min_delay_ms", 200)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

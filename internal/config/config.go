// Package config loads application configuration from file and environment.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Serp      SerpConfig      `yaml:"serp" mapstructure:"serp"`
	Cohere    CohereConfig    `yaml:"cohere" mapstructure:"cohere"`
	Jina      JinaConfig      `yaml:"jina" mapstructure:"jina"`
	Firecrawl FirecrawlConfig `yaml:"firecrawl" mapstructure:"firecrawl"`
	Hunter    HunterConfig    `yaml:"hunter" mapstructure:"hunter"`
	Render    RenderConfig    `yaml:"render" mapstructure:"render"`
	Discovery DiscoveryConfig `yaml:"discovery" mapstructure:"discovery"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// SerpConfig holds the search provider settings.
type SerpConfig struct {
	Key       string  `yaml:"key" mapstructure:"key"`
	BaseURL   string  `yaml:"base_url" mapstructure:"base_url"`
	Pages     int     `yaml:"pages" mapstructure:"pages"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// CohereConfig holds the primary reranker settings.
type CohereConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
}

// JinaConfig holds the fallback reranker settings.
type JinaConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
}

// FirecrawlConfig holds the hosted renderer settings (fallback only).
type FirecrawlConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// HunterConfig holds the optional email verification settings.
type HunterConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// RenderConfig configures page rendering.
type RenderConfig struct {
	Browser         bool `yaml:"browser" mapstructure:"browser"`
	PageTimeoutSecs int  `yaml:"page_timeout_secs" mapstructure:"page_timeout_secs"`
	MaxBodyBytes    int  `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// DiscoveryConfig configures the discovery pipeline.
type DiscoveryConfig struct {
	MaxCandidates     int `yaml:"max_candidates" mapstructure:"max_candidates"`
	MaxFollowLinks    int `yaml:"max_follow_links" mapstructure:"max_follow_links"`
	FetchConcurrency  int `yaml:"fetch_concurrency" mapstructure:"fetch_concurrency"`
	SearchConcurrency int `yaml:"search_concurrency" mapstructure:"search_concurrency"`
}

// StoreConfig configures run persistence and the rendered-page cache.
type StoreConfig struct {
	Path          string `yaml:"path" mapstructure:"path"`
	CacheTTLHours int    `yaml:"cache_ttl_hours" mapstructure:"cache_ttl_hours"`
}

// ServerConfig configures the HTTP server.
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
	v.SetEnvPrefix("SUPPLIER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("serp.base_url", "https://serpapi.com")
	v.SetDefault("serp.pages", 2)
	v.SetDefault("serp.rate_limit", 5)
	v.SetDefault("cohere.base_url", "https://api.cohere.com")
	v.SetDefault("cohere.model", "rerank-v3.5")
	v.SetDefault("jina.base_url", "https://api.jina.ai")
	v.SetDefault("jina.model", "jina-reranker-v2-base-multilingual")
	v.SetDefault("firecrawl.base_url", "https://api.firecrawl.dev/v2")
	v.SetDefault("hunter.base_url", "https://api.hunter.io/v2")
	v.SetDefault("render.browser", true)
	v.SetDefault("render.page_timeout_secs", 30)
	v.SetDefault("render.max_body_bytes", 512*1024)
	v.SetDefault("discovery.max_candidates", 40)
	v.SetDefault("discovery.max_follow_links", 5)
	v.SetDefault("discovery.fetch_concurrency", 8)
	v.SetDefault("discovery.search_concurrency", 4)
	v.SetDefault("store.path", "")
	v.SetDefault("store.cache_ttl_hours", 24)

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

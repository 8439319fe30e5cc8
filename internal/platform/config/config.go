// Package config loads service configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv      string `env:"APP_ENV" envDefault:"local"`
	PostgresDSN string `env:"POSTGRES_DSN,required"`
	HealthPort  int    `env:"HEALTH_PORT" envDefault:"8080"`

	// Deduplication
	SimilarityThreshold float64 `env:"SIMILARITY_THRESHOLD" envDefault:"0.85"`
	MinQuality          float64 `env:"MIN_QUALITY" envDefault:"0"`

	// Worker
	WorkerBatchSize    int    `env:"WORKER_BATCH_SIZE" envDefault:"100"`
	WorkerPollInterval string `env:"WORKER_POLL_INTERVAL" envDefault:"30s"`
	HarvestInterval    string `env:"HARVEST_INTERVAL" envDefault:"15m"`
	HarvestLookback    string `env:"HARVEST_LOOKBACK" envDefault:"24h"`

	// Sentiment classifier
	LLMAPIKey          string `env:"LLM_API_KEY"`
	LLMModel           string `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
	RateLimitRPS       int    `env:"RATE_LIMIT_RPS" envDefault:"1"`
	SentimentCacheSize int    `env:"SENTIMENT_CACHE_SIZE" envDefault:"1000"`
	SentimentCacheTTL  string `env:"SENTIMENT_CACHE_TTL" envDefault:"1h"`

	// Harvesters
	FeedURLs           []string `env:"FEED_URLS" envSeparator:","`
	FeedExpandContent  bool     `env:"FEED_EXPAND_CONTENT" envDefault:"false"`
	GithubToken        string   `env:"GITHUB_TOKEN"`
	GithubRepos        []string `env:"GITHUB_REPOS" envSeparator:","`
	HNQuery            string   `env:"HN_QUERY"`
	StackExchangeSite  string   `env:"STACKEXCHANGE_SITE" envDefault:"stackoverflow"`
	StackExchangeTag   string   `env:"STACKEXCHANGE_TAG"`
	MastodonServer     string   `env:"MASTODON_SERVER"`
	MastodonHashtag    string   `env:"MASTODON_HASHTAG"`
	HarvestRPS         float64  `env:"HARVEST_RPS" envDefault:"2"`
	HarvestHTTPTimeout string   `env:"HARVEST_HTTP_TIMEOUT" envDefault:"30s"`
	MaxContentLength   int      `env:"MAX_CONTENT_LENGTH" envDefault:"5000"`
}

func Load() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env file is optional, error is expected when not present

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}

	return cfg, nil
}

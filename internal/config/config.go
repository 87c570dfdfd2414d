package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPAddr    string
	PostgresDSN string
	QueueDBPath string
	LogLevel    string
	LogFormat   string

	CapabilityTimeoutSeconds int

	ModerationURL        string
	ModerationAPIKey     string
	ModerationBundlePath string

	TranscribeURL    string
	TranscribeAPIKey string
	AnalysisURL      string
	AnalysisAPIKey   string
	StorageURL       string
	StorageAPIKey    string
	AnchorRPCURL     string
	AnchorAPIKey     string
	AnchorChainID    string
	DeepfakeURL      string
	DeepfakeAPIKey   string
	ImageCheckURL    string
	ImageCheckAPIKey string
	NarrationURL     string
	NarrationAPIKey  string
	TranslateURL     string
	TranslateAPIKey  string
	TranslateTarget  string

	RateLimitRequests      int
	RateLimitWindowSeconds int
	RateLimitMaxKeys       int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		HTTPAddr:    addr,
		PostgresDSN: os.Getenv("POSTGRES_DSN"),
		QueueDBPath: envDefault("QUEUE_DB_PATH", "veritas-queue.db"),
		LogLevel:    envDefault("LOG_LEVEL", "info"),
		LogFormat:   envDefault("LOG_FORMAT", "json"),

		CapabilityTimeoutSeconds: envIntDefault("CAPABILITY_TIMEOUT_SECONDS", 10),

		ModerationURL:        os.Getenv("MODERATION_URL"),
		ModerationAPIKey:     os.Getenv("MODERATION_API_KEY"),
		ModerationBundlePath: os.Getenv("MODERATION_BUNDLE_PATH"),

		TranscribeURL:    os.Getenv("TRANSCRIBE_URL"),
		TranscribeAPIKey: os.Getenv("TRANSCRIBE_API_KEY"),
		AnalysisURL:      os.Getenv("ANALYSIS_URL"),
		AnalysisAPIKey:   os.Getenv("ANALYSIS_API_KEY"),
		StorageURL:       os.Getenv("STORAGE_URL"),
		StorageAPIKey:    os.Getenv("STORAGE_API_KEY"),
		AnchorRPCURL:     os.Getenv("ANCHOR_RPC_URL"),
		AnchorAPIKey:     os.Getenv("ANCHOR_API_KEY"),
		AnchorChainID:    envDefault("ANCHOR_CHAIN_ID", "veritas-sim"),
		DeepfakeURL:      os.Getenv("DEEPFAKE_URL"),
		DeepfakeAPIKey:   os.Getenv("DEEPFAKE_API_KEY"),
		ImageCheckURL:    os.Getenv("IMAGECHECK_URL"),
		ImageCheckAPIKey: os.Getenv("IMAGECHECK_API_KEY"),
		NarrationURL:     os.Getenv("NARRATION_URL"),
		NarrationAPIKey:  os.Getenv("NARRATION_API_KEY"),
		TranslateURL:     os.Getenv("TRANSLATE_URL"),
		TranslateAPIKey:  os.Getenv("TRANSLATE_API_KEY"),
		TranslateTarget:  envDefault("TRANSLATE_TARGET", "es"),

		RateLimitRequests:      envIntDefault("RATE_LIMIT_REQUESTS", 0),
		RateLimitWindowSeconds: envIntDefault("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitMaxKeys:       envIntDefault("RATE_LIMIT_MAX_KEYS", 10000),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envIntDefault("REDIS_DB", 0),
	}
}

func (c Config) CapabilityTimeout() time.Duration {
	if c.CapabilityTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.CapabilityTimeoutSeconds) * time.Second
}

func envDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func envIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "VOICECOMMERCE"

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Apify     ApifyConfig
	Cache     CacheConfig
	Google    GoogleConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	StaticDir      string   `mapstructure:"static_dir"`
}

// ApifyConfig holds the scraping actor configuration
type ApifyConfig struct {
	Token         string        `mapstructure:"token"`
	Actor         string        `mapstructure:"actor"`
	BaseURL       string        `mapstructure:"base_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	MinFetchCount int           `mapstructure:"min_fetch_count"`
	RatePerSecond float64       `mapstructure:"rate_per_second"`
	Burst         int           `mapstructure:"burst"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type     string        `mapstructure:"type"` // "file" or "redis"
	Path     string        `mapstructure:"path"`
	RedisURL string        `mapstructure:"redis_url"`
	RedisKey string        `mapstructure:"redis_key"`
	AudioTTL time.Duration `mapstructure:"audio_ttl"`
}

// GoogleConfig holds speech-to-text and text-to-speech configuration
type GoogleConfig struct {
	CredentialsJSON string  `mapstructure:"credentials_json"`
	CredentialsFile string  `mapstructure:"credentials_file"`
	Language        string  `mapstructure:"language"`
	Voice           string  `mapstructure:"voice"`
	SampleRate      int     `mapstructure:"sample_rate"`
	SpeakingRate    float64 `mapstructure:"speaking_rate"`
	Pitch           float64 `mapstructure:"pitch"`
	SpeechURL       string  `mapstructure:"speech_url"`
	TTSURL          string  `mapstructure:"tts_url"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
}

// Load loads configuration from a .env file, environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/voicecommerce/")

	// Environment variable settings: server.port -> VOICECOMMERCE_SERVER_PORT
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	if err := bindLegacyEnv(v); err != nil {
		return nil, fmt.Errorf("error binding environment: %w", err)
	}

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads .env from the working directory when present
func loadEnvFile() error {
	err := godotenv.Load()
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.static_dir", "web")

	// Apify defaults
	v.SetDefault("apify.token", "")
	v.SetDefault("apify.actor", "jupri~tokopedia-scraper")
	v.SetDefault("apify.base_url", "https://api.apify.com")
	v.SetDefault("apify.timeout", "60s")
	v.SetDefault("apify.min_fetch_count", 3)
	v.SetDefault("apify.rate_per_second", 2)
	v.SetDefault("apify.burst", 2)

	// Cache defaults
	v.SetDefault("cache.type", "file")
	v.SetDefault("cache.path", "tokopedia_cache.json")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.redis_key", "voicecommerce:products")
	v.SetDefault("cache.audio_ttl", "24h")

	// Google speech defaults
	v.SetDefault("google.credentials_json", "")
	v.SetDefault("google.credentials_file", "")
	v.SetDefault("google.language", "id-ID")
	v.SetDefault("google.voice", "id-ID-Wavenet-A")
	v.SetDefault("google.sample_rate", 16000)
	v.SetDefault("google.speaking_rate", 0.95)
	v.SetDefault("google.pitch", -2.0)
	v.SetDefault("google.speech_url", "https://speech.googleapis.com/v1/speech:recognize")
	v.SetDefault("google.tts_url", "https://texttospeech.googleapis.com/v1/text:synthesize")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 60)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// bindLegacyEnv accepts the unprefixed variable names deployments already export
func bindLegacyEnv(v *viper.Viper) error {
	bindings := map[string][]string{
		"apify.token":             {envPrefix + "_APIFY_TOKEN", "APIFY_TOKEN"},
		"apify.actor":             {envPrefix + "_APIFY_ACTOR", "APIFY_ACTOR"},
		"cache.path":              {envPrefix + "_CACHE_PATH", "TOKOPEDIA_CACHE_FILE"},
		"google.credentials_json": {envPrefix + "_GOOGLE_CREDENTIALS_JSON", "GOOGLE_APPLICATION_CREDENTIALS_JSON"},
		"google.credentials_file": {envPrefix + "_GOOGLE_CREDENTIALS_FILE", "GOOGLE_APPLICATION_CREDENTIALS"},
	}

	for key, names := range bindings {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return err
		}
	}
	return nil
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Cache.Type != "file" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'file' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("Redis URL is required when cache type is 'redis'")
	}

	if config.Cache.Type == "file" && config.Cache.Path == "" {
		return fmt.Errorf("cache path is required when cache type is 'file'")
	}

	if config.Apify.MinFetchCount < 1 {
		return fmt.Errorf("apify min_fetch_count must be at least 1, got: %d", config.Apify.MinFetchCount)
	}

	if config.RateLimit.PerIP < 0 {
		return fmt.Errorf("ratelimit per_ip must not be negative, got: %d", config.RateLimit.PerIP)
	}

	return nil
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

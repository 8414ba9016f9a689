package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the assessment API.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	DatabaseURL            string
	RedisURL               string
	NATSURL                string
	EventSubjectBase       string
	JWTSecret              string
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	ExtractCacheTTL        time.Duration
	ExtractWorkers         int
	SimilarityTimeout      time.Duration
	SimilarityCommand      string
	AIProvider             string
	OpenAIAPIKey           string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("ORCHID")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Orchid LMS API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("events.subject_base", "orchid:assessment")
	v.SetDefault("cloudinary.folder", "orchid/submissions")
	v.SetDefault("extract.cache_ttl", "10m")
	v.SetDefault("extract.workers", 4)
	v.SetDefault("similarity.timeout", "30s")
	v.SetDefault("ai.provider", "openai")

	cacheTTL, err := time.ParseDuration(v.GetString("extract.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid extract cache ttl: %w", err)
	}

	similarityTimeout, err := time.ParseDuration(v.GetString("similarity.timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid similarity timeout: %w", err)
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		NATSURL:                v.GetString("nats.url"),
		EventSubjectBase:       v.GetString("events.subject_base"),
		JWTSecret:              v.GetString("jwt.secret"),
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		ExtractCacheTTL:        cacheTTL,
		ExtractWorkers:         v.GetInt("extract.workers"),
		SimilarityTimeout:      similarityTimeout,
		SimilarityCommand:      v.GetString("similarity.command"),
		AIProvider:             strings.ToLower(v.GetString("ai.provider")),
		OpenAIAPIKey:           v.GetString("openai_api_key"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.ExtractWorkers <= 0 {
		cfg.ExtractWorkers = 4
	}

	if cfg.SimilarityTimeout <= 0 {
		cfg.SimilarityTimeout = 30 * time.Second
	}

	return cfg, nil
}

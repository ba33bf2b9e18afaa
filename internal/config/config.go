package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Slack    SlackConfig
	Database DatabaseConfig
	Bot      BotConfig
}

type AppConfig struct {
	Port        string
	Environment string
	LogFilePath string
	NatsURL     string
	RedisURL    string
}

type SlackConfig struct {
	Channel       string
	AccessToken   string
	SigningSecret string
}

type DatabaseConfig struct {
	Connection string
}

type BotConfig struct {
	// ConfidenceThreshold is the minimum top-candidate score required to
	// present a guess instead of starting an acquisition.
	ConfidenceThreshold float64
	// HardCutoff is the minimum score to keep cascading through rejected
	// guesses before falling back to acquisition. Stricter than the
	// confidence threshold; both are deployment configuration.
	HardCutoff     float64
	StateBackend   string // "memory" or "redis"
	StateTTL       time.Duration
	ClassifierPath string
	RetrainTopic   string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:        getEnv("APP_PORT", "3000"),
			Environment: getEnv("GO_ENV", "development"),
			LogFilePath: getEnv("LOG_FILE_PATH", "logs/bot.log"),
			NatsURL:     getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Slack: SlackConfig{
			Channel:       getEnv("SLACK_CHANNEL", ""),
			AccessToken:   getEnv("SLACK_ACCESS_TOKEN", ""),
			SigningSecret: getEnv("SLACK_SIGNING_SECRET", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Bot: BotConfig{
			ConfidenceThreshold: getEnvAsFloat("CONFIDENCE_THRESHOLD", 0.5),
			HardCutoff:          getEnvAsFloat("PROBABILITY_HARD_CUTOFF", 0.15),
			StateBackend:        getEnv("STATE_BACKEND", "memory"),
			StateTTL:            getEnvAsDuration("STATE_TTL", 24*time.Hour),
			ClassifierPath:      getEnv("CLASSIFIER_PATH", "storage/classifier.gob"),
			RetrainTopic:        getEnv("RETRAIN_TOPIC_NAME", "RETRAIN_CLASSIFIER"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}

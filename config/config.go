package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// This function will Load the ENVIORNMENT VARIABLES from .env if GO_ENV variable is not set
func LoadENV() error {
	goEnv := os.Getenv("GO_ENV")

	if goEnv == "" || goEnv == "development" {
		err := godotenv.Load()
		if err != nil {
			return err
		}
	}

	return nil
}

type EnvironmentVariable struct {
	GO_ENV       string
	DB_USER_NAME string
	DB_PASSWORD  string
	DB_NAME      string
	DB_HOST      string
	DB_PORT      string
	DB_SSL_MODE  string
	PORT         int
	// Redis Configuration
	REDIS_URL string
	CACHE_TTL time.Duration
	// Storage (S3 compatible, DigitalOcean Spaces)
	SPACES_ACCESS_KEY   string
	SPACES_SECRET_KEY   string
	SPACES_BUCKET       string
	SPACES_REGION       string
	SPACES_ENDPOINT     string
	SPACES_CDN_ENDPOINT string
	SPACES_PRESIGN_TTL  time.Duration // 0 serves public URLs
	// SMTP Configuration
	SMTP_HOST        string
	SMTP_PORT        int
	SMTP_USERNAME    string
	SMTP_PASSWORD    string
	SMTP_FROM        string
	CONTACT_TO_EMAIL string
	// Catalog behaviour
	RESOURCES_PUBLISHED_ONLY bool
	CRON_ENABLED             bool
	ALLOWED_ORIGINS          string
	// Logging
	LOG_LEVEL string
	LOG_FILE  string
}

// DefaultContactEmail receives contact form messages when CONTACT_TO_EMAIL is unset
const DefaultContactEmail = "edumasters41@gmail.com"

func Get() (*EnvironmentVariable, error) {

	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil {
		port = 8080
	}

	smtpPort, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		smtpPort = 587
	}

	cacheTTL, err := time.ParseDuration(os.Getenv("CACHE_TTL"))
	if err != nil || cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}

	presignTTL, err := time.ParseDuration(os.Getenv("DO_SPACES_PRESIGN_TTL"))
	if err != nil || presignTTL < 0 {
		presignTTL = 0
	}

	envVariables := &EnvironmentVariable{
		GO_ENV:       os.Getenv("GO_ENV"),
		DB_USER_NAME: os.Getenv("DB_USER_NAME"),
		DB_PASSWORD:  os.Getenv("DB_PASSWORD"),
		DB_NAME:      os.Getenv("DB_NAME"),
		DB_HOST:      getEnvOrDefault("DB_HOST", "localhost"),
		DB_PORT:      getEnvOrDefault("DB_PORT", "5432"),
		DB_SSL_MODE:  getEnvOrDefault("DB_SSL_MODE", "disable"),
		PORT:         port,
		// Redis
		REDIS_URL: getEnvOrDefault("REDIS_URL", "redis://localhost:6379/0"),
		CACHE_TTL: cacheTTL,
		// Storage
		SPACES_ACCESS_KEY:   os.Getenv("DO_SPACES_ACCESS_KEY"),
		SPACES_SECRET_KEY:   os.Getenv("DO_SPACES_SECRET_KEY"),
		SPACES_BUCKET:       getEnvOrDefault("DO_SPACES_BUCKET", "question-papers"),
		SPACES_REGION:       getEnvOrDefault("DO_SPACES_REGION", "blr1"),
		SPACES_ENDPOINT:     os.Getenv("DO_SPACES_ENDPOINT"),
		SPACES_CDN_ENDPOINT: os.Getenv("DO_SPACES_CDN_ENDPOINT"),
		SPACES_PRESIGN_TTL:  presignTTL,
		// SMTP
		SMTP_HOST:        getEnvOrDefault("SMTP_HOST", "smtp.gmail.com"),
		SMTP_PORT:        smtpPort,
		SMTP_USERNAME:    os.Getenv("SMTP_USERNAME"),
		SMTP_PASSWORD:    os.Getenv("SMTP_PASSWORD"),
		SMTP_FROM:        getEnvOrDefault("SMTP_FROM", "noreply@examacevault.app"),
		CONTACT_TO_EMAIL: getEnvOrDefault("CONTACT_TO_EMAIL", DefaultContactEmail),
		// Catalog
		RESOURCES_PUBLISHED_ONLY: getBoolOrDefault("RESOURCES_PUBLISHED_ONLY", true),
		CRON_ENABLED:             getBoolOrDefault("CRON_ENABLED", true),
		ALLOWED_ORIGINS:          getEnvOrDefault("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173"),
		// Logging
		LOG_LEVEL: getEnvOrDefault("LOG_LEVEL", "info"),
		LOG_FILE:  os.Getenv("LOG_FILE"),
	}

	return envVariables, nil
}

// IsProduction reports whether the service runs with GO_ENV=production
func (e *EnvironmentVariable) IsProduction() bool {
	return e.GO_ENV == "production"
}

// getEnvOrDefault returns the environment variable value or a default
func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getBoolOrDefault(key string, defaultVal bool) bool {
	val, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultVal
	}
	return val
}

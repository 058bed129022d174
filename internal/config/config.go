// Package config provides configuration management for the application.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the application.
type Config struct {
	// Mail transport
	SenderEmail    string
	SenderPassword string
	SMTPServer     string
	SMTPPort       int
	MailProvider   string // "smtp" or "ses"

	// Escalation
	TeamEmail string

	// AWS (SES transport)
	AWSRegion      string
	SESSenderEmail string

	// AI
	OpenAIAPIKey string

	// Application
	Stage    string
	LogLevel string
	Port     string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	_ = godotenv.Load()

	cfg := &Config{
		// Mail transport
		SenderEmail:    getEnv("SENDER_EMAIL", ""),
		SenderPassword: getEnv("SENDER_PASSWORD", ""),
		SMTPServer:     getEnv("SMTP_SERVER", ""),
		SMTPPort:       getEnvInt("SMTP_PORT", 0),
		MailProvider:   getEnv("MAIL_PROVIDER", "smtp"),

		// Manual-review notifications fall back to the sender address when
		// no dedicated team address is set.
		TeamEmail: getEnv("TEAM_EMAIL", getEnv("SENDER_EMAIL", "")),

		// AWS
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		SESSenderEmail: getEnv("SES_SENDER_EMAIL", getEnv("SENDER_EMAIL", "")),

		// AI
		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),

		// Application
		Stage:    getEnv("STAGE", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Port:     getEnv("PORT", "8080"),
	}

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an environment variable as int or returns a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

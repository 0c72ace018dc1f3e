package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	Store   StoreConfig
	OCR     OCRConfig
	Slack   SlackConfig
	Webhook WebhookConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Addr          string
	Environment   string
	MaxUploadSize int64
}

// StoreConfig holds persistence configuration
type StoreConfig struct {
	Path        string
	DialTimeout time.Duration
}

// OCRConfig holds extraction-backend configuration
type OCRConfig struct {
	Pdftotext     string
	Pdftoppm      string
	Tesseract     string
	TesseractLang string
	DPI           int
	MaxPages      int
}

// SlackConfig holds chat-ingestion configuration
type SlackConfig struct {
	BotToken      string
	SigningSecret string
	DedupeTTL     time.Duration
}

// WebhookConfig holds downstream-forwarder configuration
type WebhookConfig struct {
	URL     string
	Timeout time.Duration
	Retries int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:          getEnv("HTTP_ADDR", ":3000"),
			Environment:   getEnv("ENVIRONMENT", "development"),
			MaxUploadSize: int64(getEnvAsInt("MAX_UPLOAD_MB", 25)) << 20,
		},
		Store: StoreConfig{
			Path:        getEnv("DB_PATH", "./data/packslips.db"),
			DialTimeout: getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		OCR: OCRConfig{
			Pdftotext:     getEnv("PDFTOTEXT_BIN", "pdftotext"),
			Pdftoppm:      getEnv("PDFTOPPM_BIN", "pdftoppm"),
			Tesseract:     getEnv("TESSERACT_BIN", "tesseract"),
			TesseractLang: getEnv("TESSERACT_LANG", "eng"),
			DPI:           getEnvAsInt("OCR_DPI", 300),
			MaxPages:      getEnvAsInt("OCR_MAX_PAGES", 0),
		},
		Slack: SlackConfig{
			BotToken:      getEnv("SLACK_BOT_TOKEN", ""),
			SigningSecret: getEnv("SLACK_SIGNING_SECRET", ""),
			DedupeTTL:     getEnvAsDuration("SLACK_DEDUPE_TTL", 5*time.Minute),
		},
		Webhook: WebhookConfig{
			URL:     getEnv("N8N_WEBHOOK_URL", ""),
			Timeout: getEnvAsDuration("WEBHOOK_TIMEOUT", 10*time.Second),
			Retries: getEnvAsInt("WEBHOOK_RETRIES", 2),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.Store.Path == "" {
		return NewAppError("CONFIG_ERROR", "DB_PATH is required", ErrInvalidInput)
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultSystemPrompt is the AzureBot persona used when SYSTEM_PROMPT is unset.
const DefaultSystemPrompt = "אתה AI בשם AzureBot, עוזר AI מועיל, מודרני וידידותי. " +
	"התייחס לעצמך AzureBot בעת הצורך." +
	"אתה מומחה תוכן בעולמות DevOps Azure ספק תמיד תשובות ברורות, תמציתיות ומדויקות."

// Config contains all runtime settings for the chat relay. It is read once at
// startup and never mutated afterwards.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string

	AWSAccessKey string
	AWSSecretKey string
	AWSRegion    string
	ModelID      string
	SystemPrompt string
}

// Load reads environment variables and applies defaults. Missing AWS
// credentials are not an error; the relay reports them per request instead.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:         envOrDefault("APP_BIND_ADDR", "0.0.0.0:5000"),
		MetricsNamespace: envOrDefault("APP_METRICS_NAMESPACE", "azurebot"),
		// Credentials are taken as-is; any non-empty value counts as set.
		AWSAccessKey: os.Getenv("AWS_ACCESS_KEY"),
		AWSSecretKey: os.Getenv("AWS_SECRET_KEY"),
		AWSRegion:    envOrDefault("AWS_REGION", "us-east-1"),
		ModelID:      envOrDefault("MODEL_ID", "anthropic.claude-3-sonnet-20240229-v1:0"),
		// The persona is free text, so only a fully unset variable falls back.
		SystemPrompt:    rawEnvOrDefault("SYSTEM_PROMPT", DefaultSystemPrompt),
		ShutdownTimeout: 15 * time.Second,
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	if cfg.ShutdownTimeout <= 0 {
		return Config{}, fmt.Errorf("APP_SHUTDOWN_TIMEOUT must be > 0")
	}
	return cfg, nil
}

// LoadDotEnv loads variables from the given .env files into the process
// environment without overriding variables that are already set. Missing
// files are ignored.
func LoadDotEnv(filenames ...string) error {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}
	for _, name := range filenames {
		if err := godotenv.Load(name); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", name, err)
		}
	}
	return nil
}

// AWSConfigured reports whether both credential fields are present.
func (c Config) AWSConfigured() bool {
	return c.AWSAccessKey != "" && c.AWSSecretKey != ""
}

func envOrDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func rawEnvOrDefault(key, fallback string) string {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	return v
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

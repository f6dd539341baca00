package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	setCoreEnvEmpty(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.AWSRegion != "us-east-1" {
		t.Fatalf("AWSRegion = %q, want us-east-1", cfg.AWSRegion)
	}
	if cfg.ModelID != "anthropic.claude-3-sonnet-20240229-v1:0" {
		t.Fatalf("ModelID = %q", cfg.ModelID)
	}
	if cfg.SystemPrompt != DefaultSystemPrompt {
		t.Fatalf("SystemPrompt = %q, want default persona", cfg.SystemPrompt)
	}
	if cfg.BindAddr != "0.0.0.0:5000" {
		t.Fatalf("BindAddr = %q", cfg.BindAddr)
	}
	if cfg.ShutdownTimeout != 15*time.Second {
		t.Fatalf("ShutdownTimeout = %v", cfg.ShutdownTimeout)
	}
	if cfg.AWSConfigured() {
		t.Fatal("AWSConfigured() = true without credentials")
	}
}

func TestLoadExplicitValues(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("AWS_ACCESS_KEY", " id ")
	t.Setenv("AWS_SECRET_KEY", "secret")
	t.Setenv("AWS_REGION", "eu-west-1")
	t.Setenv("MODEL_ID", "openai.gpt-oss-120b-1:0")
	t.Setenv("SYSTEM_PROMPT", "You are terse.")
	t.Setenv("APP_BIND_ADDR", ":9090")
	t.Setenv("APP_SHUTDOWN_TIMEOUT", "3s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.AWSAccessKey != " id " {
		t.Fatalf("AWSAccessKey = %q, want raw value", cfg.AWSAccessKey)
	}
	if !cfg.AWSConfigured() {
		t.Fatal("AWSConfigured() = false with both credentials set")
	}
	if cfg.AWSRegion != "eu-west-1" || cfg.ModelID != "openai.gpt-oss-120b-1:0" {
		t.Fatalf("region/model = %q/%q", cfg.AWSRegion, cfg.ModelID)
	}
	if cfg.SystemPrompt != "You are terse." {
		t.Fatalf("SystemPrompt = %q", cfg.SystemPrompt)
	}
	if cfg.BindAddr != ":9090" || cfg.ShutdownTimeout != 3*time.Second {
		t.Fatalf("bind/shutdown = %q/%v", cfg.BindAddr, cfg.ShutdownTimeout)
	}
}

func TestLoadEmptySystemPromptIsKept(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("SYSTEM_PROMPT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.SystemPrompt != "" {
		t.Fatalf("SystemPrompt = %q, want empty", cfg.SystemPrompt)
	}
}

func TestLoadInvalidShutdownTimeout(t *testing.T) {
	for _, v := range []string{"soon", "0s", "-1s"} {
		setCoreEnvEmpty(t)
		t.Setenv("APP_SHUTDOWN_TIMEOUT", v)
		if _, err := Load(); err == nil {
			t.Fatalf("Load() with APP_SHUTDOWN_TIMEOUT=%q expected error", v)
		}
	}
}

func TestLoadWhitespaceCredentialsCountAsSet(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("AWS_ACCESS_KEY", " ")
	t.Setenv("AWS_SECRET_KEY", "\t")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.AWSConfigured() {
		t.Fatal("AWSConfigured() = false for non-empty whitespace credentials")
	}
}

func TestAWSConfiguredRequiresBoth(t *testing.T) {
	tests := []struct {
		id, secret string
		want       bool
	}{
		{"", "", false},
		{"id", "", false},
		{"", "secret", false},
		{"id", "secret", true},
	}
	for _, tt := range tests {
		cfg := Config{AWSAccessKey: tt.id, AWSSecretKey: tt.secret}
		if got := cfg.AWSConfigured(); got != tt.want {
			t.Errorf("AWSConfigured(%q, %q) = %v, want %v", tt.id, tt.secret, got, tt.want)
		}
	}
}

func TestLoadDotEnv(t *testing.T) {
	setCoreEnvEmpty(t)
	os.Unsetenv("MODEL_ID")
	t.Setenv("AWS_REGION", "eu-central-1")

	path := filepath.Join(t.TempDir(), ".env")
	content := "MODEL_ID=anthropic.claude-3-haiku-20240307-v1:0\nAWS_REGION=ap-south-1\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ModelID != "anthropic.claude-3-haiku-20240307-v1:0" {
		t.Fatalf("ModelID = %q, want value from .env", cfg.ModelID)
	}
	if cfg.AWSRegion != "eu-central-1" {
		t.Fatalf("AWSRegion = %q, .env must not override the environment", cfg.AWSRegion)
	}
}

// setCoreEnvEmpty registers every variable Load reads with t.Setenv so the
// test environment is restored afterwards, then unsets the ones whose mere
// presence matters.
func setCoreEnvEmpty(t *testing.T) {
	t.Helper()
	keys := []string{
		"APP_BIND_ADDR",
		"APP_SHUTDOWN_TIMEOUT",
		"APP_METRICS_NAMESPACE",
		"AWS_ACCESS_KEY",
		"AWS_SECRET_KEY",
		"AWS_REGION",
		"MODEL_ID",
		"SYSTEM_PROMPT",
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
	os.Unsetenv("SYSTEM_PROMPT")
}

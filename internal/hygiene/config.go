// Package hygiene prepares a working tree for commit: it deletes local
// credential helpers, scans source files for likely secrets and checks that
// the files meant to be published are present.
package hygiene

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFile is the optional per-project configuration file.
const ConfigFile = ".precommit.yaml"

// Config lists what to remove, what to scan and what is expected to be committed.
// Paths are relative to the project root.
type Config struct {
	Remove     []string `yaml:"remove"`
	Patterns   []string `yaml:"patterns"`   // globs, e.g. "*.py" or "k8s/*.yaml"
	Indicators []string `yaml:"indicators"` // matched case-insensitively
	Expected   []string `yaml:"expected"`
}

// DefaultConfig returns the built-in lists.
func DefaultConfig() Config {
	return Config{
		Remove: []string{
			"setup_keyvault_secrets.py",
			"run_setup.py",
			"setup_env.bat",
			"config_secure.py",
			".env",
		},
		Patterns:   []string{"*.py", "*.go"},
		Indicators: []string{"AKIA", "client_secret", "password", "secret_key"},
		Expected: []string{
			"Asafiz-Ai-Simple.py",
			"config.py",
			"azure_keyvault_config.py",
			"requirements-simple.txt",
			"Dockerfile",
			".gitignore",
			".github/workflows/deploy-to-aks.yml",
			"k8s/deployment.yaml",
			"k8s/service.yaml",
			"GITHUB_ACTIONS_SETUP.md",
			"AZURE_KEYVAULT_SETUP.md",
			"FILES_TO_COMMIT.md",
		},
	}
}

// LoadConfig reads path and fills every list it leaves empty from
// DefaultConfig. If path is empty, ConfigFile under root is used. A missing
// file yields the defaults with no error.
func LoadConfig(root, path string) (Config, error) {
	if path == "" {
		path = filepath.Join(root, ConfigFile)
	}

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("reading %s: %w", path, err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	if file.Remove != nil {
		cfg.Remove = file.Remove
	}
	if file.Patterns != nil {
		cfg.Patterns = file.Patterns
	}
	if file.Indicators != nil {
		cfg.Indicators = file.Indicators
	}
	if file.Expected != nil {
		cfg.Expected = file.Expected
	}
	return cfg, nil
}

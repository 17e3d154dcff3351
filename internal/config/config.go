package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ServerConfig configures the HTTP API listener.
type ServerConfig struct {
	Host        string   `yaml:"host"`
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// LogConfig selects the logger mode ("production" or "development").
type LogConfig struct {
	Mode string `yaml:"mode"`
}

// ScorerConfig selects and configures the candidate scorer implementation.
type ScorerConfig struct {
	Provider    string `yaml:"provider"`
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	CacheSize   int    `yaml:"cache_size"`
}

// ExtractionConfig tunes the extraction pipeline.
type ExtractionConfig struct {
	Workers int `yaml:"workers"`
}

// JobsConfig configures the background job queue and its store.
type JobsConfig struct {
	Workers    int    `yaml:"workers"`
	DBPath     string `yaml:"db_path"`
	MaxRetries int    `yaml:"max_retries"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Scorer     ScorerConfig     `yaml:"scorer"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Jobs       JobsConfig       `yaml:"jobs"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			return cfg, nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/keyscope/config.yaml.
// If neither exists it returns defaults without writing anything.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	return defaultConfig(), "", nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "keyscope", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Server:     ServerConfig{Host: "0.0.0.0", Port: 8080},
		Log:        LogConfig{Mode: "production"},
		Scorer:     ScorerConfig{Provider: "lexical", TimeoutSecs: 60, CacheSize: 4096},
		Extraction: ExtractionConfig{Workers: 4},
		Jobs:       JobsConfig{Workers: 2, DBPath: "keyscope.db", MaxRetries: 3},
	}
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Log.Mode == "" {
		cfg.Log.Mode = "production"
	}
	if cfg.Scorer.Provider == "" {
		cfg.Scorer.Provider = "lexical"
	}
	if cfg.Scorer.Provider == "remote" {
		if cfg.Scorer.APIKeyEnv == "" {
			cfg.Scorer.APIKeyEnv = "KEYSCOPE_SCORER_API_KEY"
		}
		if cfg.Scorer.Model == "" {
			cfg.Scorer.Model = "all-MiniLM-L6-v2"
		}
	}
	if cfg.Scorer.TimeoutSecs == 0 {
		cfg.Scorer.TimeoutSecs = 60
	}
	if cfg.Scorer.CacheSize == 0 {
		cfg.Scorer.CacheSize = 4096
	}
	if cfg.Extraction.Workers == 0 {
		cfg.Extraction.Workers = 4
	}
	if cfg.Jobs.Workers == 0 {
		cfg.Jobs.Workers = 2
	}
	if cfg.Jobs.DBPath == "" {
		cfg.Jobs.DBPath = "keyscope.db"
	}
	if cfg.Jobs.MaxRetries == 0 {
		cfg.Jobs.MaxRetries = 3
	}
}

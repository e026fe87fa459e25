package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// Config represents the tutorgen configuration.
type Config struct {
	Provider    string      `json:"provider"`
	Model       string      `json:"model"`
	OutputDir   string      `json:"outputDir"`
	LogDir      string      `json:"logDir"`
	Include     []string    `json:"include"`
	Exclude     []string    `json:"exclude"`
	MaxFileSize int         `json:"maxFileSize"`
	MaxTokens   int         `json:"maxTokens"`
	Cache       CacheConfig `json:"cache"`
}

// CacheConfig controls response caching behavior.
type CacheConfig struct {
	// Enabled is a tri-state in the config file: nil means "not set" so the
	// default (on) survives the merge.
	Enabled *bool  `json:"enabled,omitempty"`
	Backend string `json:"backend,omitempty"`
	File    string `json:"file,omitempty"`
}

// CacheEnabled resolves the effective cache switch.
func (c Config) CacheEnabled() bool {
	if c.Cache.Enabled == nil {
		return true
	}
	return *c.Cache.Enabled
}

// Default returns a Config with all defaults applied. The include/exclude
// sets cover common source and doc files while skipping tests, build output,
// and vendored trees.
func Default() Config {
	return Config{
		Provider:  "gemini",
		Model:     "gemini-2.5-pro",
		OutputDir: "output",
		LogDir:    "logs",
		Include: []string{
			"*.py", "*.js", "*.jsx", "*.ts", "*.tsx", "*.go", "*.java",
			"*.pyi", "*.pyx", "*.c", "*.cc", "*.cpp", "*.h", "*.md", "*.rst",
			"Dockerfile", "Makefile", "*.yaml", "*.yml",
		},
		Exclude: []string{
			"*test*", "tests/*", "docs/*", "examples/*", "v1/*",
			"dist/*", "build/*", "experimental/*", "deprecated/*",
			"legacy/*", ".git/*", ".github/*", ".next/*", ".vscode/*",
			"obj/*", "bin/*", "node_modules/*", "*.log",
		},
		MaxFileSize: 100000,
		MaxTokens:   8192,
		Cache: CacheConfig{
			Backend: "file",
			File:    "llm_cache.json",
		},
	}
}

// ConfigDir returns the platform-appropriate config directory for tutorgen.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "tutorgen"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "tutorgen"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "tutorgen"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "tutorgen"), nil
	default:
		return filepath.Join(home, ".config", "tutorgen"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadFile loads config from the config file. Returns zero Config and nil error if file doesn't exist.
func LoadFile() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Save writes the config to the config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load builds the effective config by merging: defaults <- file <- env <- overrides.
// The overrides map comes from CLI flags (only non-zero values should be set).
func Load(overrides map[string]string) (Config, error) {
	cfg := Default()

	fileCfg, err := LoadFile()
	if err != nil {
		return Config{}, err
	}
	mergeFile(&cfg, fileCfg)
	mergeEnv(&cfg)
	mergeOverrides(&cfg, overrides)

	return cfg, nil
}

func mergeFile(dst *Config, src Config) {
	if src.Provider != "" {
		dst.Provider = src.Provider
	}
	if src.Model != "" {
		dst.Model = src.Model
	}
	if src.OutputDir != "" {
		dst.OutputDir = src.OutputDir
	}
	if src.LogDir != "" {
		dst.LogDir = src.LogDir
	}
	if len(src.Include) > 0 {
		dst.Include = src.Include
	}
	if len(src.Exclude) > 0 {
		dst.Exclude = src.Exclude
	}
	if src.MaxFileSize > 0 {
		dst.MaxFileSize = src.MaxFileSize
	}
	if src.MaxTokens > 0 {
		dst.MaxTokens = src.MaxTokens
	}
	if src.Cache.Enabled != nil {
		dst.Cache.Enabled = src.Cache.Enabled
	}
	if src.Cache.Backend != "" {
		dst.Cache.Backend = src.Cache.Backend
	}
	if src.Cache.File != "" {
		dst.Cache.File = src.Cache.File
	}
}

func mergeEnv(cfg *Config) {
	if v := os.Getenv("TUTORGEN_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("TUTORGEN_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv("LOG_DIR"); v != "" {
		cfg.LogDir = v
	}
	if v := os.Getenv("CACHE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(strings.ToLower(v)); err == nil {
			cfg.Cache.Enabled = &b
		}
	}
	if v := os.Getenv("CACHE_BACKEND"); v != "" {
		cfg.Cache.Backend = v
	}
	if v := os.Getenv("CACHE_FILE"); v != "" {
		cfg.Cache.File = v
	}
}

func mergeOverrides(cfg *Config, overrides map[string]string) {
	if overrides == nil {
		return
	}
	if v, ok := overrides["provider"]; ok && v != "" {
		cfg.Provider = v
	}
	if v, ok := overrides["model"]; ok && v != "" {
		cfg.Model = v
	}
	if v, ok := overrides["outputDir"]; ok && v != "" {
		cfg.OutputDir = v
	}
	if v, ok := overrides["maxFileSize"]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxFileSize = n
		}
	}
	if v, ok := overrides["include"]; ok && v != "" {
		cfg.Include = splitList(v)
	}
	if v, ok := overrides["exclude"]; ok && v != "" {
		cfg.Exclude = splitList(v)
	}
	if v, ok := overrides["cacheEnabled"]; ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Cache.Enabled = &b
		}
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// SetField sets a single config field by key name. Returns error if key is unknown.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "provider":
		cfg.Provider = value
	case "model":
		cfg.Model = value
	case "outputDir":
		cfg.OutputDir = value
	case "logDir":
		cfg.LogDir = value
	case "maxFileSize":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("maxFileSize must be an integer: %w", err)
		}
		cfg.MaxFileSize = n
	case "maxTokens":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("maxTokens must be an integer: %w", err)
		}
		cfg.MaxTokens = n
	case "cache.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("cache.enabled must be a boolean: %w", err)
		}
		cfg.Cache.Enabled = &b
	case "cache.backend":
		if value != "file" && value != "sqlite" {
			return fmt.Errorf("cache.backend must be \"file\" or \"sqlite\"")
		}
		cfg.Cache.Backend = value
	case "cache.file":
		cfg.Cache.File = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

// ValidateCachePath checks that the cache file location is usable: the parent
// directory must exist (or be creatable) and writable. Callers are expected
// to report a failure and continue with caching disabled rather than refuse
// to start.
func ValidateCachePath(path string) error {
	if path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("cache directory %s is not usable: %w", dir, err)
		}
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return fmt.Errorf("cache file %s is a directory", path)
	}
	probe := filepath.Join(dir, ".tutorgen-write-check")
	if err := os.WriteFile(probe, nil, 0o644); err != nil {
		return fmt.Errorf("cache directory %s is not writable: %w", dir, err)
	}
	os.Remove(probe)
	return nil
}

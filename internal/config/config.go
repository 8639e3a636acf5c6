package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir     string `toml:"data_dir"`
	OutputDir   string `toml:"output_dir"`
	LogDir      string `toml:"log_dir"`
	AccountsDir string `toml:"accounts_dir"`
	TrendsDir   string `toml:"trends_dir"`
}

// Incubator contains topic incubation settings.
type Incubator struct {
	HotCount            int      `toml:"hot_count"`
	RegularCount        int      `toml:"regular_count"`
	SimilarityThreshold float64  `toml:"similarity_threshold"`
	HotSources          []string `toml:"hot_sources"`
	FilterKeywords      []string `toml:"filter_keywords"`
	ExcludeKeywords     []string `toml:"exclude_keywords"`
}

// Pipeline contains generation pipeline settings.
type Pipeline struct {
	DefaultTheme     string `toml:"default_theme"`
	InlineCount      int    `toml:"inline_count"`
	CoverResolution  string `toml:"cover_resolution"`
	InlineResolution string `toml:"inline_resolution"`
	ImageStylePrefix string `toml:"image_style_prefix"`
}

// Dispatcher contains task queue polling settings.
type Dispatcher struct {
	PollInterval   int `toml:"poll_interval"`
	NotifyCooldown int `toml:"notify_cooldown"`
}

// TextGen contains settings for the chat completion service.
type TextGen struct {
	APIKey         string  `toml:"api_key"`
	BaseURL        string  `toml:"base_url"`
	Model          string  `toml:"model"`
	Temperature    float64 `toml:"temperature"`
	MaxTokens      int     `toml:"max_tokens"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
}

// ImageGen contains settings for the image generation service.
type ImageGen struct {
	SecretID       string `toml:"secret_id"`
	SecretKey      string `toml:"secret_key"`
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	PollSeconds    int    `toml:"poll_seconds"`
}

// Publisher contains settings for the publishing target.
type Publisher struct {
	AppID          string `toml:"app_id"`
	Secret         string `toml:"secret"`
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Notify contains downstream consumer notification settings.
type Notify struct {
	WebhookURL     string `toml:"webhook_url"`
	Target         string `toml:"target"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for inkwell.
//
// Configuration sections by subsystem:
//   - Paths: data, output, log, account, and trends directories
//   - Incubator: candidate counts and dedup threshold
//   - Pipeline: document theme and image resolution defaults
//   - Dispatcher: queue poll interval and notification cooldown
//   - TextGen / ImageGen / Publisher: external collaborator credentials
//   - Notify: downstream consumer webhook
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	Incubator  Incubator  `toml:"incubator"`
	Pipeline   Pipeline   `toml:"pipeline"`
	Dispatcher Dispatcher `toml:"dispatcher"`
	TextGen    TextGen    `toml:"textgen"`
	ImageGen   ImageGen   `toml:"imagegen"`
	Publisher  Publisher  `toml:"publisher"`
	Notify     Notify     `toml:"notify"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/inkwell/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}

	return &cfg, resolvedPath, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("inkwell.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the directories inkwell writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.OutputDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// CreateSample writes the embedded sample configuration to path.
func CreateSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists at %s", expanded)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

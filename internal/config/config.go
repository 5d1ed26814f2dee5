// Package config handles configuration, credentials and personas for whiskerion.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Environment variables read at startup
const (
	EnvHome         = "WHISKERION_HOME"
	EnvAPIKey       = "GEMINI_API_KEY"
	EnvLegacyAPIKey = "API_KEY"
)

// MarkdownConfig configures markdown rendering options
type MarkdownConfig struct {
	Style            string `json:"style" yaml:"style"`                           // "dark", "light", or path to JSON theme
	EnableEmoji      bool   `json:"enable_emoji" yaml:"enable_emoji"`             // Convert :emoji: to unicode
	PreserveNewLines bool   `json:"preserve_newlines" yaml:"preserve_newlines"`   // Preserve original line breaks
	TableWrap        bool   `json:"table_wrap" yaml:"table_wrap"`                 // Enable word wrap in table cells
	InlineTableLinks bool   `json:"inline_table_links" yaml:"inline_table_links"` // Render links inline in tables
}

// Config represents the user configuration
type Config struct {
	DefaultModel string `json:"default_model" yaml:"default_model"`
	// Persona selects the persona used when --persona is not given.
	Persona string `json:"persona" yaml:"persona"`
	// Verbose lowers the log level to debug.
	Verbose         bool           `json:"verbose" yaml:"verbose"`
	CopyToClipboard bool           `json:"copy_to_clipboard" yaml:"copy_to_clipboard"`
	TUITheme        string         `json:"tui_theme,omitempty" yaml:"tui_theme"`
	ListenAddr      string         `json:"listen_addr,omitempty" yaml:"listen_addr"` // Address for the web widget
	LogFile         string         `json:"log_file,omitempty" yaml:"log_file"`
	Markdown        MarkdownConfig `json:"markdown,omitempty" yaml:"markdown"`
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
		InlineTableLinks: false,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	logFile := ""
	if dir, err := GetConfigDir(); err == nil {
		logFile = filepath.Join(dir, "whiskerion.log")
	}
	return Config{
		DefaultModel:    "gemini-2.5-flash",
		Persona:         DefaultPersonaName,
		Verbose:         false,
		CopyToClipboard: false,
		TUITheme:        "cosmic",
		ListenAddr:      "127.0.0.1:8080",
		LogFile:         logFile,
		Markdown:        DefaultMarkdownConfig(),
	}
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	if dir := os.Getenv(EnvHome); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, ".whiskerion"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	// Use 0o700 for sensitive directories (contains prompts and logs)
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// LoadConfig loads the configuration from disk
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	configPath, err := GetConfigPath()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Use defaults if config doesn't exist
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to disk
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.json")

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// APIKey returns the credential from the process environment.
// GEMINI_API_KEY wins over the legacy API_KEY. An empty result is not an
// error here; it surfaces later as a session creation failure.
func APIKey() string {
	if key := strings.TrimSpace(os.Getenv(EnvAPIKey)); key != "" {
		return key
	}
	return strings.TrimSpace(os.Getenv(EnvLegacyAPIKey))
}

// AvailableModels returns a list of suggested model names
func AvailableModels() []string {
	return []string{
		"gemini-2.5-flash",
		"gemini-2.5-pro",
		"gemini-2.0-flash",
	}
}

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds the application configuration
type Config struct {
	Server   ServerConfig   `json:"server"`
	Backend  BackendConfig  `json:"backend"`
	Send     SendConfig     `json:"send"`
	Annotate AnnotateConfig `json:"annotate"`
}

// ServerConfig holds configuration for the HTTP server
type ServerConfig struct {
	Addr        string `json:"addr"`
	MaxUploadMB int    `json:"max_upload_mb"`
}

// BackendConfig holds configuration for the vision model backend
type BackendConfig struct {
	Kind      string `json:"kind"` // "ollama" or "llamacpp"
	URL       string `json:"url"`
	Model     string `json:"model"`
	Operation string `json:"operation"` // default prompt sent with uploads
}

// SendConfig holds configuration for the image sent to the model
type SendConfig struct {
	Format  string `json:"format"` // jpg|png
	MaxDim  int    `json:"max_dim"`
	Quality int    `json:"quality"`
}

// AnnotateConfig holds configuration for box rendering
type AnnotateConfig struct {
	StrokeWidth int `json:"stroke_width"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:        ":8000",
			MaxUploadMB: 50,
		},
		Backend: BackendConfig{
			Kind:      "ollama",
			URL:       "http://localhost:11434",
			Model:     "deepseek-ocr",
			Operation: "<|grounding|>OCR this image.",
		},
		Send: SendConfig{
			Format:  "png",
			MaxDim:  1536,
			Quality: 85,
		},
		Annotate: AnnotateConfig{
			StrokeWidth: 3,
		},
	}
}

// LoadFromFile loads configuration from a JSON file
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overrides backend settings from the environment, matching
// the variables the original deployment used.
func (c *Config) ApplyEnv() {
	if url := os.Getenv("OLLAMA_BASE_URL"); url != "" {
		c.Backend.URL = url
	}
	if model := os.Getenv("DEEPSEEK_OCR_MODEL"); model != "" {
		c.Backend.Model = model
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr cannot be empty")
	}

	if c.Server.MaxUploadMB < 1 {
		return fmt.Errorf("server.max_upload_mb must be positive")
	}

	if c.Backend.Kind != "ollama" && c.Backend.Kind != "llamacpp" {
		return fmt.Errorf("backend.kind must be \"ollama\" or \"llamacpp\"")
	}

	if c.Backend.URL == "" {
		return fmt.Errorf("backend.url cannot be empty")
	}

	if c.Backend.Model == "" {
		return fmt.Errorf("backend.model cannot be empty")
	}

	if c.Send.Format != "jpg" && c.Send.Format != "png" {
		return fmt.Errorf("send.format must be \"jpg\" or \"png\"")
	}

	if c.Send.Quality < 1 || c.Send.Quality > 100 {
		return fmt.Errorf("send.quality must be between 1 and 100")
	}

	if c.Send.MaxDim < 0 {
		return fmt.Errorf("send.max_dim cannot be negative")
	}

	if c.Annotate.StrokeWidth < 1 {
		return fmt.Errorf("annotate.stroke_width must be positive")
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "deepseek-ocr", "config.json")
}

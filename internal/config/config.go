package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	Editor   EditorConfig   `json:"editor" yaml:"editor"`
	Analyzer AnalyzerConfig `json:"analyzer" yaml:"analyzer"`
	Backend  BackendConfig  `json:"backend" yaml:"backend"`
	Focus    FocusConfig    `json:"focus" yaml:"focus"`
	Output   OutputConfig   `json:"output" yaml:"output"`
	Log      LogConfig      `json:"log" yaml:"log"`
}

// EditorConfig holds the interactive editor settings
type EditorConfig struct {
	QuantizationStep int     `json:"quantization_step" yaml:"quantization_step"`
	HandleTolerance  float64 `json:"handle_tolerance" yaml:"handle_tolerance"`
	MaxZoomLevel     int     `json:"max_zoom_level" yaml:"max_zoom_level"`
	ZoomStep         float64 `json:"zoom_step" yaml:"zoom_step"`
	HistoryPageSize  int     `json:"history_page_size" yaml:"history_page_size"`
}

// AnalyzerConfig holds the limits an input image must meet
type AnalyzerConfig struct {
	SupportedFormats []string `json:"supported_formats" yaml:"supported_formats"`
	MinImageSize     int      `json:"min_image_size" yaml:"min_image_size"`
	MaxImageSize     int      `json:"max_image_size" yaml:"max_image_size"`
}

// BackendConfig holds the inference service connection
type BackendConfig struct {
	URL               string  `json:"url" yaml:"url"`
	TimeoutSeconds    int     `json:"timeout_seconds" yaml:"timeout_seconds"`
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`
	Burst             int     `json:"burst" yaml:"burst"`
}

// Timeout returns the request timeout as a duration.
func (b BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSeconds) * time.Second
}

// FocusConfig selects how automatic crops find the subject
type FocusConfig struct {
	Method        string `json:"method" yaml:"method"`
	VisionBackend string `json:"vision_backend" yaml:"vision_backend"`
	VisionURL     string `json:"vision_url" yaml:"vision_url"`
	Model         string `json:"model" yaml:"model"`
	CascadePath   string `json:"cascade_path" yaml:"cascade_path"`
}

// OutputConfig holds configuration for output generation
type OutputConfig struct {
	Format   string `json:"format" yaml:"format"`
	Quality  int    `json:"quality" yaml:"quality"`
	Lossless bool   `json:"lossless" yaml:"lossless"`
	Dir      string `json:"dir" yaml:"dir"`
	Suffix   string `json:"suffix" yaml:"suffix"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	File       string `json:"file" yaml:"file"`
	MaxSizeMB  int    `json:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `json:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `json:"max_age_days" yaml:"max_age_days"`
	Debug      bool   `json:"debug" yaml:"debug"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Editor: EditorConfig{
			QuantizationStep: 64,
			HandleTolerance:  10,
			MaxZoomLevel:     40,
			ZoomStep:         0.1,
			HistoryPageSize:  5,
		},
		Analyzer: AnalyzerConfig{
			SupportedFormats: []string{"jpeg", "png", "webp"},
			MinImageSize:     64,
			MaxImageSize:     8192,
		},
		Backend: BackendConfig{
			URL:               "http://localhost:8000",
			TimeoutSeconds:    300,
			RequestsPerSecond: 2,
			Burst:             1,
		},
		Focus: FocusConfig{
			Method:        "center",
			VisionBackend: "ollama",
			VisionURL:     "http://localhost:11434",
			Model:         "qwen2.5vl:7b",
		},
		Output: OutputConfig{
			Format:  "jpg",
			Quality: 90,
			Dir:     "./output",
			Suffix:  "_edited",
		},
		Log: LogConfig{
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

func isYAML(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext == ".yaml" || ext == ".yml"
}

// LoadFromFile loads configuration from a JSON or YAML file. Settings the
// file leaves out keep their defaults.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if isYAML(filename) {
		err = yaml.Unmarshal(data, config)
	} else {
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration as JSON, or YAML for .yaml/.yml names
func (c *Config) SaveToFile(filename string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var data []byte
	var err error
	if isYAML(filename) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Editor.QuantizationStep < 1 {
		return fmt.Errorf("editor.quantization_step must be positive")
	}

	if c.Editor.HandleTolerance <= 0 {
		return fmt.Errorf("editor.handle_tolerance must be positive")
	}

	if c.Editor.MaxZoomLevel < 1 {
		return fmt.Errorf("editor.max_zoom_level must be positive")
	}

	if c.Editor.ZoomStep <= 0 || c.Editor.ZoomStep > 1 {
		return fmt.Errorf("editor.zoom_step must be between 0 and 1")
	}

	if c.Editor.HistoryPageSize < 1 {
		return fmt.Errorf("editor.history_page_size must be positive")
	}

	if c.Analyzer.MinImageSize < 1 {
		return fmt.Errorf("analyzer.min_image_size must be positive")
	}

	if c.Analyzer.MaxImageSize != 0 && c.Analyzer.MaxImageSize < c.Analyzer.MinImageSize {
		return fmt.Errorf("analyzer.max_image_size must be 0 or at least min_image_size")
	}

	if len(c.Analyzer.SupportedFormats) == 0 {
		return fmt.Errorf("analyzer.supported_formats cannot be empty")
	}

	if c.Backend.TimeoutSeconds < 1 {
		return fmt.Errorf("backend.timeout_seconds must be positive")
	}

	if c.Backend.RequestsPerSecond < 0 {
		return fmt.Errorf("backend.requests_per_second cannot be negative")
	}

	switch c.Focus.Method {
	case "", "center", "smartcrop", "model":
	case "face":
		if c.Focus.CascadePath == "" {
			return fmt.Errorf("focus.cascade_path is required for the face method")
		}
	default:
		return fmt.Errorf("focus.method must be one of center, smartcrop, face, model")
	}

	switch c.Focus.VisionBackend {
	case "", "ollama", "llamacpp":
	default:
		return fmt.Errorf("focus.vision_backend must be ollama or llamacpp")
	}

	switch strings.ToLower(c.Output.Format) {
	case "jpg", "jpeg", "png", "webp":
	default:
		return fmt.Errorf("output.format must be jpg, png or webp")
	}

	if c.Output.Quality < 1 || c.Output.Quality > 100 {
		return fmt.Errorf("output.quality must be between 1 and 100")
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "canvas-geometry", "config.json")
}

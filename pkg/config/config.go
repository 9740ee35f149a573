package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FilterMode selects which posts are downloaded.
type FilterMode string

const (
	// ModeBoth includes every post.
	ModeBoth FilterMode = "both"
	// ModeFilesOnly includes only posts that carry media.
	ModeFilesOnly FilterMode = "files_only"
	// ModeNoFiles includes only posts without media.
	ModeNoFiles FilterMode = "no_files"
)

// Config holds all configuration options for the profile crawler
type Config struct {
	// Filter decides which posts from the listing are processed
	Filter FilterConfig `yaml:"filter" json:"filter"`

	// HTTP settings shared by every network call
	HTTP HTTPConfig `yaml:"http" json:"http"`

	// Rate limiting configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Download settings
	Download DownloadConfig `yaml:"download" json:"download"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// FilterConfig holds post selection configuration
type FilterConfig struct {
	Mode FilterMode `yaml:"mode" json:"mode"`
}

// HTTPConfig holds HTTP client configuration
type HTTPConfig struct {
	UserAgent      string        `yaml:"user_agent" json:"user_agent"`
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout"`
	MaxRetries     int           `yaml:"max_retries" json:"max_retries"`
	RetryBaseDelay time.Duration `yaml:"retry_base_delay" json:"retry_base_delay"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	// RequestsPerMinute of 0 disables the limiter
	RequestsPerMinute int `yaml:"requests_per_minute" json:"requests_per_minute"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	BaseDirectory string `yaml:"base_directory" json:"base_directory"`
	IndexFile     string `yaml:"index_file" json:"index_file"`
}

// DownloadConfig holds download-specific configuration
type DownloadConfig struct {
	SaveInfoHTML        bool `yaml:"save_info_html" json:"save_info_html"`
	DownloadAttachments bool `yaml:"download_attachments" json:"download_attachments"`
	DownloadVideos      bool `yaml:"download_videos" json:"download_videos"`
	ConcurrentDownloads int  `yaml:"concurrent_downloads" json:"concurrent_downloads"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults.
// The retry and timeout defaults mirror the site's tolerance: five retries
// with a one second base delay and a sixty second per-request timeout.
func DefaultConfig() *Config {
	return &Config{
		Filter: FilterConfig{
			Mode: ModeBoth,
		},
		HTTP: HTTPConfig{
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
			RequestTimeout: 60 * time.Second,
			MaxRetries:     5,
			RetryBaseDelay: 1 * time.Second,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 0,
		},
		Output: OutputConfig{
			BaseDirectory: ".",
			IndexFile:     "posts_info.txt",
		},
		Download: DownloadConfig{
			SaveInfoHTML:        true,
			DownloadAttachments: true,
			DownloadVideos:      false,
			ConcurrentDownloads: 1,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if mode := os.Getenv("KEMOGRAB_FILTER_MODE"); mode != "" {
		c.Filter.Mode = FilterMode(strings.ToLower(mode))
	}
	if userAgent := os.Getenv("KEMOGRAB_USER_AGENT"); userAgent != "" {
		c.HTTP.UserAgent = userAgent
	}
	if rpm := os.Getenv("KEMOGRAB_REQUESTS_PER_MINUTE"); rpm != "" {
		var val int
		fmt.Sscanf(rpm, "%d", &val)
		if val > 0 {
			c.RateLimit.RequestsPerMinute = val
		}
	}
	if outputDir := os.Getenv("KEMOGRAB_OUTPUT_DIR"); outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}
	if concurrent := os.Getenv("KEMOGRAB_CONCURRENT_DOWNLOADS"); concurrent != "" {
		var val int
		fmt.Sscanf(concurrent, "%d", &val)
		if val > 0 {
			c.Download.ConcurrentDownloads = val
		}
	}
	if saveInfo := os.Getenv("KEMOGRAB_SAVE_INFO_HTML"); saveInfo != "" {
		c.Download.SaveInfoHTML = strings.ToLower(saveInfo) == "true"
	}
	if attachments := os.Getenv("KEMOGRAB_DOWNLOAD_ATTACHMENTS"); attachments != "" {
		c.Download.DownloadAttachments = strings.ToLower(attachments) == "true"
	}
	if videos := os.Getenv("KEMOGRAB_DOWNLOAD_VIDEOS"); videos != "" {
		c.Download.DownloadVideos = strings.ToLower(videos) == "true"
	}
	if logLevel := os.Getenv("KEMOGRAB_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	// Check in order of precedence
	locations := []string{
		".kemograb.yaml",
		".kemograb.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "kemograb", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "kemograb", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".kemograb.yaml"),
		filepath.Join(os.Getenv("HOME"), ".kemograb.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	switch c.Filter.Mode {
	case ModeBoth, ModeFilesOnly, ModeNoFiles:
	default:
		errs = append(errs, fmt.Errorf("invalid filter mode %q: must be both, files_only or no_files", c.Filter.Mode))
	}

	if c.HTTP.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}
	if c.HTTP.MaxRetries < 0 {
		errs = append(errs, errors.New("max retries cannot be negative"))
	}
	if c.HTTP.RetryBaseDelay < 0 {
		errs = append(errs, errors.New("retry base delay cannot be negative"))
	}
	if c.RateLimit.RequestsPerMinute < 0 {
		errs = append(errs, errors.New("requests per minute cannot be negative"))
	}

	if c.Download.ConcurrentDownloads <= 0 {
		errs = append(errs, errors.New("concurrent downloads must be positive"))
	}
	if c.Download.ConcurrentDownloads > 10 {
		errs = append(errs, errors.New("concurrent downloads should not exceed 10"))
	}

	if c.Output.BaseDirectory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}
	if c.Output.IndexFile == "" {
		errs = append(errs, errors.New("index file name is required"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if mode, ok := flags["mode"].(string); ok && mode != "" {
		c.Filter.Mode = FilterMode(strings.ToLower(mode))
	}
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}
	if concurrent, ok := flags["concurrent"].(int); ok && concurrent > 0 {
		c.Download.ConcurrentDownloads = concurrent
	}
	if rpm, ok := flags["rate-limit"].(int); ok && rpm > 0 {
		c.RateLimit.RequestsPerMinute = rpm
	}
	if saveInfo, ok := flags["save-info"].(bool); ok {
		c.Download.SaveInfoHTML = saveInfo
	}
	if attachments, ok := flags["attachments"].(bool); ok {
		c.Download.DownloadAttachments = attachments
	}
	if videos, ok := flags["videos"].(bool); ok {
		c.Download.DownloadVideos = videos
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".kemograb.env"))

	// Start with defaults
	config := DefaultConfig()

	// Load from config file
	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Override with command line flags
	config.MergeCommandLineFlags(flags)

	// Validate final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

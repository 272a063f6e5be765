package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultEndpoint is the Flickr REST endpoint
const DefaultEndpoint = "https://www.flickr.com/services/rest/"

// Config holds all configuration options for the Flickr scraper
type Config struct {
	// Flickr API access
	Flickr FlickrConfig `yaml:"flickr" json:"flickr"`

	// Search paging
	Fetch FetchConfig `yaml:"fetch" json:"fetch"`

	// Image download settings
	Download DownloadConfig `yaml:"download" json:"download"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// FlickrConfig holds Flickr-specific configuration
type FlickrConfig struct {
	APIKey    string `yaml:"api_key" json:"api_key"`
	APISecret string `yaml:"api_secret" json:"api_secret"`
	Endpoint  string `yaml:"endpoint" json:"endpoint"`
	UserAgent string `yaml:"user_agent" json:"user_agent"`
	PerPage   int    `yaml:"per_page" json:"per_page"`
}

// FetchConfig controls how many records are requested per year
type FetchConfig struct {
	Total             int `yaml:"total" json:"total"`
	RequestsPerMinute int `yaml:"requests_per_minute" json:"requests_per_minute"`
}

// DownloadConfig holds download-specific configuration
type DownloadConfig struct {
	Timeout     time.Duration `yaml:"timeout" json:"timeout"`
	Delay       time.Duration `yaml:"delay" json:"delay"`
	Extension   string        `yaml:"extension" json:"extension"`
	InspectExif bool          `yaml:"inspect_exif" json:"inspect_exif"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	BaseDirectory    string `yaml:"base_directory" json:"base_directory"`
	MetadataFileName string `yaml:"metadata_file_name" json:"metadata_file_name"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Flickr: FlickrConfig{
			Endpoint:  DefaultEndpoint,
			UserAgent: "flickrscraper/1.0 (+https://www.flickr.com/services/api/)",
			PerPage:   250,
		},
		Fetch: FetchConfig{
			Total:             1000,
			RequestsPerMinute: 60,
		},
		Download: DownloadConfig{
			Timeout:   30 * time.Second,
			Delay:     time.Second,
			Extension: "jpg",
		},
		Output: OutputConfig{
			BaseDirectory:    "./images",
			MetadataFileName: "metadata.csv",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	var errs []error

	// Flickr credentials, FLICKRSCRAPER_* wins over the bare names
	if key := firstEnv("FLICKRSCRAPER_API_KEY", "FLICKR_API_KEY"); key != "" {
		c.Flickr.APIKey = key
	}
	if secret := firstEnv("FLICKRSCRAPER_API_SECRET", "FLICKR_API_SECRET"); secret != "" {
		c.Flickr.APISecret = secret
	}
	if endpoint := os.Getenv("FLICKRSCRAPER_ENDPOINT"); endpoint != "" {
		c.Flickr.Endpoint = endpoint
	}
	if userAgent := os.Getenv("FLICKRSCRAPER_USER_AGENT"); userAgent != "" {
		c.Flickr.UserAgent = userAgent
	}

	errs = append(errs,
		envInt("FLICKRSCRAPER_PER_PAGE", &c.Flickr.PerPage),
		envInt("FLICKRSCRAPER_TOTAL", &c.Fetch.Total),
		envInt("FLICKRSCRAPER_REQUESTS_PER_MINUTE", &c.Fetch.RequestsPerMinute),
		envDuration("FLICKRSCRAPER_TIMEOUT", &c.Download.Timeout),
		envDuration("FLICKRSCRAPER_DELAY", &c.Download.Delay),
	)

	if inspect := os.Getenv("FLICKRSCRAPER_INSPECT_EXIF"); inspect != "" {
		c.Download.InspectExif = strings.ToLower(inspect) == "true"
	}

	// Output directory
	if outputDir := os.Getenv("FLICKRSCRAPER_OUTPUT_DIR"); outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}

	// Logging level
	if logLevel := os.Getenv("FLICKRSCRAPER_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return errors.Join(errs...)
}

func firstEnv(names ...string) string {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

func envInt(name string, dst *int) error {
	raw := os.Getenv(name)
	if raw == "" {
		return nil
	}
	val, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = val
	return nil
}

func envDuration(name string, dst *time.Duration) error {
	raw := os.Getenv(name)
	if raw == "" {
		return nil
	}
	val, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = val
	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil
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
	home := os.Getenv("HOME")
	locations := []string{
		".flickrscraper.yaml",
		".flickrscraper.yml",
		filepath.Join(home, ".config", "flickrscraper", "config.yaml"),
		filepath.Join(home, ".config", "flickrscraper", "config.yml"),
		filepath.Join(home, ".flickrscraper.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// DefaultPath is where `config init` writes a new file
func DefaultPath() string {
	return filepath.Join(os.Getenv("HOME"), ".config", "flickrscraper", "config.yaml")
}

// Validate checks if the configuration is valid.
// Credentials are checked separately by ValidateCredentials.
func (c *Config) Validate() error {
	var errs []error

	if c.Flickr.Endpoint == "" {
		errs = append(errs, errors.New("flickr endpoint is required"))
	}
	if c.Flickr.PerPage <= 0 || c.Flickr.PerPage > 500 {
		errs = append(errs, errors.New("per page must be between 1 and 500"))
	}

	if c.Fetch.Total <= 0 {
		errs = append(errs, errors.New("total must be positive"))
	}
	if c.Fetch.RequestsPerMinute <= 0 {
		errs = append(errs, errors.New("requests per minute must be positive"))
	}

	if c.Download.Timeout <= 0 {
		errs = append(errs, errors.New("download timeout must be positive"))
	}
	if c.Download.Delay < 0 {
		errs = append(errs, errors.New("download delay cannot be negative"))
	}
	if c.Download.Extension == "" {
		errs = append(errs, errors.New("file extension is required"))
	}

	if c.Output.BaseDirectory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}
	if c.Output.MetadataFileName == "" {
		errs = append(errs, errors.New("metadata file name is required"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	return errors.Join(errs...)
}

// ValidateCredentials checks that an API key is present.
// The secret is optional: photo search only needs the key.
func (c *Config) ValidateCredentials() error {
	if strings.TrimSpace(c.Flickr.APIKey) == "" {
		return errors.New("flickr API key is required (set FLICKR_API_KEY or run 'flickrscraper auth login')")
	}
	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Redacted returns a copy with secrets masked, for display.
func (c *Config) Redacted() *Config {
	out := *c
	out.Flickr.APIKey = mask(c.Flickr.APIKey)
	out.Flickr.APISecret = mask(c.Flickr.APISecret)
	return &out
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return s[:4] + strings.Repeat("*", len(s)-4)
}

// MergeCommandLineFlags merges command line flags into the configuration.
// Callers pass only the flags the user actually set; numeric values are
// applied as given and range checks are left to Validate.
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if apiKey, ok := flags["api-key"].(string); ok && apiKey != "" {
		c.Flickr.APIKey = apiKey
	}
	if apiSecret, ok := flags["api-secret"].(string); ok && apiSecret != "" {
		c.Flickr.APISecret = apiSecret
	}
	if perPage, ok := flags["per-page"].(int); ok {
		c.Flickr.PerPage = perPage
	}
	if total, ok := flags["total"].(int); ok {
		c.Fetch.Total = total
	}
	if rpm, ok := flags["requests-per-minute"].(int); ok {
		c.Fetch.RequestsPerMinute = rpm
	}
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}
	if delay, ok := flags["delay"].(time.Duration); ok {
		c.Download.Delay = delay
	}
	if timeout, ok := flags["timeout"].(time.Duration); ok {
		c.Download.Timeout = timeout
	}
	if inspect, ok := flags["inspect-exif"].(bool); ok {
		c.Download.InspectExif = inspect
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Missing .env files are not an error
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".flickrscraper.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

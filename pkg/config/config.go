package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// AppName is used for XDG directory paths and env var prefixes
const AppName = "coubcrawl"

// Recrawl policies
const (
	RecrawlAsk    = "ask"
	RecrawlAlways = "always"
	RecrawlNever  = "never"
)

// Video quality preferences passed on to the downloader
const (
	QualityHighest = "highest"
	QualityMedium  = "medium"
	QualityLow     = "low"
)

// MaxPageLimit is the largest per_page value the timeline API accepts
const MaxPageLimit = 25

// Config holds all configuration options for the crawler
type Config struct {
	Coub      CoubConfig      `yaml:"coub" json:"coub"`
	Crawl     CrawlConfig     `yaml:"crawl" json:"crawl"`
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`
	HTTP      HTTPConfig      `yaml:"http" json:"http"`
	Output    OutputConfig    `yaml:"output" json:"output"`
	Download  DownloadConfig  `yaml:"download" json:"download"`
	History   HistoryConfig   `yaml:"history" json:"history"`
	Logging   LoggingConfig   `yaml:"logging" json:"logging"`
}

// CoubConfig holds upstream endpoints and credentials
type CoubConfig struct {
	BaseURL     string   `yaml:"base_url" json:"base_url"`
	APIURL      string   `yaml:"api_url" json:"api_url"`
	AccessToken string   `yaml:"access_token" json:"access_token"`
	UserAgents  []string `yaml:"user_agents" json:"user_agents"`
}

// CrawlConfig controls the crawl engine
type CrawlConfig struct {
	// WaitTime is the delay before every request, in seconds
	WaitTime           float64 `yaml:"wait_time" json:"wait_time"`
	PageLimit          int     `yaml:"page_limit" json:"page_limit"`
	DownloadSegments   bool    `yaml:"download_segments" json:"download_segments"`
	NsfwOnly           bool    `yaml:"nsfw_only" json:"nsfw_only"`
	OrderBy            string  `yaml:"order_by" json:"order_by"`
	MaxPages           int     `yaml:"max_pages" json:"max_pages"`
	Recrawl            string  `yaml:"recrawl" json:"recrawl"`
	ProbeChannelTotals bool    `yaml:"probe_channel_totals" json:"probe_channel_totals"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" json:"requests_per_minute"`
}

// HTTPConfig holds transport settings
type HTTPConfig struct {
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// OutputConfig holds crawl output configuration
type OutputConfig struct {
	InfoDir string `yaml:"info_dir" json:"info_dir"`
}

// DownloadConfig holds settings for the external downloader
type DownloadConfig struct {
	Quality        string   `yaml:"quality" json:"quality"`
	Loops          int      `yaml:"loops" json:"loops"`
	KeepAudioVideo bool     `yaml:"keep_audio_video" json:"keep_audio_video"`
	OutputPath     string   `yaml:"output_path" json:"output_path"`
	DataDir        string   `yaml:"data_dir" json:"data_dir"`
	ArchiveFile    string   `yaml:"archive_file" json:"archive_file"`
	Command        []string `yaml:"command" json:"command"`
}

// HistoryConfig holds crawl history settings
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Path    string `yaml:"path" json:"path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Coub: CoubConfig{
			BaseURL: "https://coub.com",
			APIURL:  "https://coub.com/api/v2",
		},
		Crawl: CrawlConfig{
			WaitTime:  2.5,
			PageLimit: MaxPageLimit,
			OrderBy:   "date",
			Recrawl:   RecrawlAsk,
		},
		Output: OutputConfig{
			InfoDir: "Coubs-info",
		},
		Download: DownloadConfig{
			Quality:     QualityHighest,
			Loops:       -1, // downloader default
			DataDir:     "Coubs",
			ArchiveFile: "downloaded.txt",
			Command:     []string{"python", "-X", "utf8", "coub_v2.py"},
		},
		History: HistoryConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// WaitDuration converts the fractional wait time into a duration
func (c *CrawlConfig) WaitDuration() time.Duration {
	return time.Duration(c.WaitTime * float64(time.Second))
}

// HistoryPath returns the history database path, defaulting to the XDG data dir
func (c *Config) HistoryPath() (string, error) {
	if c.History.Path != "" {
		return c.History.Path, nil
	}
	path, err := xdg.DataFile(filepath.Join(AppName, "history.db"))
	if err != nil {
		return "", fmt.Errorf("failed to resolve history path: %w", err)
	}
	return path, nil
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	var errs []error

	if token := os.Getenv("COUBCRAWL_ACCESS_TOKEN"); token != "" {
		c.Coub.AccessToken = token
	}
	if baseURL := os.Getenv("COUBCRAWL_BASE_URL"); baseURL != "" {
		c.Coub.BaseURL = baseURL
	}
	if apiURL := os.Getenv("COUBCRAWL_API_URL"); apiURL != "" {
		c.Coub.APIURL = apiURL
	}

	if wait := os.Getenv("COUBCRAWL_WAIT_TIME"); wait != "" {
		val, err := strconv.ParseFloat(wait, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("COUBCRAWL_WAIT_TIME: %w", err))
		} else {
			c.Crawl.WaitTime = val
		}
	}
	if segments := os.Getenv("COUBCRAWL_DOWNLOAD_SEGMENTS"); segments != "" {
		c.Crawl.DownloadSegments = strings.ToLower(segments) == "true"
	}
	if nsfw := os.Getenv("COUBCRAWL_NSFW_ONLY"); nsfw != "" {
		c.Crawl.NsfwOnly = strings.ToLower(nsfw) == "true"
	}
	if recrawl := os.Getenv("COUBCRAWL_RECRAWL"); recrawl != "" {
		c.Crawl.Recrawl = strings.ToLower(recrawl)
	}

	if rpm := os.Getenv("COUBCRAWL_REQUESTS_PER_MINUTE"); rpm != "" {
		val, err := strconv.Atoi(rpm)
		if err != nil {
			errs = append(errs, fmt.Errorf("COUBCRAWL_REQUESTS_PER_MINUTE: %w", err))
		} else {
			c.RateLimit.RequestsPerMinute = val
		}
	}

	if infoDir := os.Getenv("COUBCRAWL_INFO_DIR"); infoDir != "" {
		c.Output.InfoDir = infoDir
	}
	if outputPath := os.Getenv("COUBCRAWL_OUTPUT_PATH"); outputPath != "" {
		c.Download.OutputPath = outputPath
	}
	if historyPath := os.Getenv("COUBCRAWL_HISTORY_PATH"); historyPath != "" {
		c.History.Path = historyPath
	}
	if logLevel := os.Getenv("COUBCRAWL_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return errors.Join(errs...)
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = FindConfigFile()
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

// FindConfigFile searches for a config file in the working directory and
// then in the XDG config directories
func FindConfigFile() string {
	locations := []string{
		AppName + ".yaml",
		"." + AppName + ".yaml",
		"." + AppName + ".yml",
	}
	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	if path, err := xdg.SearchConfigFile(filepath.Join(AppName, "config.yaml")); err == nil {
		return path
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Coub.BaseURL == "" {
		errs = append(errs, errors.New("coub base URL is required"))
	}
	if c.Coub.APIURL == "" {
		errs = append(errs, errors.New("coub API URL is required"))
	}

	if c.Crawl.WaitTime < 0 {
		errs = append(errs, errors.New("wait time cannot be negative"))
	}
	if c.Crawl.PageLimit < 1 || c.Crawl.PageLimit > MaxPageLimit {
		errs = append(errs, fmt.Errorf("page limit must be between 1 and %d", MaxPageLimit))
	}
	if c.Crawl.MaxPages < 0 {
		errs = append(errs, errors.New("max pages cannot be negative"))
	}
	validRecrawl := map[string]bool{RecrawlAsk: true, RecrawlAlways: true, RecrawlNever: true}
	if !validRecrawl[c.Crawl.Recrawl] {
		errs = append(errs, fmt.Errorf("invalid recrawl policy: %q", c.Crawl.Recrawl))
	}
	validOrder := map[string]bool{"date": true, "newest": true, "oldest": true, "likes_count": true, "views_count": true}
	if !validOrder[c.Crawl.OrderBy] {
		errs = append(errs, fmt.Errorf("invalid order: %q", c.Crawl.OrderBy))
	}

	if c.RateLimit.RequestsPerMinute < 0 {
		errs = append(errs, errors.New("requests per minute cannot be negative"))
	}
	if c.HTTP.Timeout < 0 {
		errs = append(errs, errors.New("http timeout cannot be negative"))
	}

	if c.Output.InfoDir == "" {
		errs = append(errs, errors.New("info directory is required"))
	}

	validQuality := map[string]bool{QualityHighest: true, QualityMedium: true, QualityLow: true}
	if !validQuality[strings.ToLower(c.Download.Quality)] {
		errs = append(errs, fmt.Errorf("invalid video quality: %q", c.Download.Quality))
	}
	if len(c.Download.Command) == 0 {
		errs = append(errs, errors.New("downloader command is required"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
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

// MergeCommandLineFlags merges command line flags into the configuration.
// Only keys present in the map are applied.
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if token, ok := flags["token"].(string); ok && token != "" {
		c.Coub.AccessToken = token
	}
	if wait, ok := flags["wait"].(float64); ok {
		c.Crawl.WaitTime = wait
	}
	if segments, ok := flags["segments"].(bool); ok {
		c.Crawl.DownloadSegments = segments
	}
	if nsfw, ok := flags["nsfw-only"].(bool); ok {
		c.Crawl.NsfwOnly = nsfw
	}
	if maxPages, ok := flags["max-pages"].(int); ok {
		c.Crawl.MaxPages = maxPages
	}
	if recrawl, ok := flags["recrawl"].(string); ok && recrawl != "" {
		c.Crawl.Recrawl = strings.ToLower(recrawl)
	}
	if rpm, ok := flags["rate-limit"].(int); ok {
		c.RateLimit.RequestsPerMinute = rpm
	}
	if infoDir, ok := flags["info-dir"].(string); ok && infoDir != "" {
		c.Output.InfoDir = infoDir
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
	_ = godotenv.Load(filepath.Join(xdg.ConfigHome, AppName, ".env"))

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

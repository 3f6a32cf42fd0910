package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"conference-clipper/domain/publishing"

	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration
type Config struct {
	Product      string             `yaml:"product"`
	Year         int                `yaml:"year,omitempty"`
	Rooms        []string           `yaml:"rooms,omitempty"`
	Features     FeaturesConfig     `yaml:"features"`
	Schedule     ScheduleConfig     `yaml:"schedule"`
	Paths        PathsConfig        `yaml:"paths"`
	Tools        ToolsConfig        `yaml:"tools"`
	Timeouts     TimeoutsConfig     `yaml:"timeouts"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency"`
	YouTube      YouTubeConfig      `yaml:"youtube"`
	Notification NotificationConfig `yaml:"notification"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// FeaturesConfig toggles each pipeline stage
type FeaturesConfig struct {
	Download bool `yaml:"download"`
	Split    bool `yaml:"split"`
	Upload   bool `yaml:"upload"`
}

// ScheduleConfig describes where the talk list lives and how to read it
type ScheduleConfig struct {
	File       string        `yaml:"file"`
	SkipHeader bool          `yaml:"skip_header"`
	Delimiter  string        `yaml:"delimiter,omitempty"` // one character, "," when empty
	Columns    ColumnsConfig `yaml:"columns"`
}

// ColumnsConfig maps talk fields to zero-based CSV column positions
type ColumnsConfig struct {
	Room  int `yaml:"room"`
	Title int `yaml:"title"`
	Start int `yaml:"start"`
	End   int `yaml:"end"`
	URL   int `yaml:"url"`
}

// PathsConfig contains directory paths for media processing
type PathsConfig struct {
	Root string `yaml:"root"`
}

// ToolsConfig names the external programs
type ToolsConfig struct {
	Downloader     string `yaml:"downloader"`
	DownloadFormat string `yaml:"download_format"`
	FFmpeg         string `yaml:"ffmpeg"`
	Extension      string `yaml:"extension"`
}

// TimeoutsConfig bounds each blocking step
type TimeoutsConfig struct {
	Download time.Duration `yaml:"download"`
	Extract  time.Duration `yaml:"extract"`
	Upload   time.Duration `yaml:"upload"`
}

// ConcurrencyConfig bounds how many rooms run at once; zero means all of them
type ConcurrencyConfig struct {
	MaxRooms int `yaml:"max_rooms"`
}

// YouTubeConfig contains YouTube Data API settings
type YouTubeConfig struct {
	CredentialsFile  string        `yaml:"credentials_file"`
	TokenFile        string        `yaml:"token_file"`
	CallbackPort     int           `yaml:"callback_port"`
	Privacy          string        `yaml:"privacy"`
	CategoryID       string        `yaml:"category_id,omitempty"`
	ProgressInterval time.Duration `yaml:"progress_interval"`
	ChunkSize        int           `yaml:"chunk_size,omitempty"` // bytes per resumable upload request, 0 for the API default
}

// NotificationConfig contains run summary email settings
type NotificationConfig struct {
	Enabled     bool                       `yaml:"enabled"`
	TokenFile   string                     `yaml:"token_file"`
	FromName    string                     `yaml:"from_name"`
	FromAddress string                     `yaml:"from_address"`
	Recipients  map[string]RecipientConfig `yaml:"recipients,omitempty"`
}

// RecipientConfig represents an email recipient
type RecipientConfig struct {
	Name    string `yaml:"name"`
	Address string `yaml:"address"`
}

// LoggingConfig controls the zerolog setup
type LoggingConfig struct {
	Verbose bool   `yaml:"verbose"`
	File    string `yaml:"file,omitempty"`
}

// Defaults for values a config file may leave out
const (
	DefaultProduct          = "Conference"
	DefaultScheduleFile     = "talks.csv"
	DefaultRoot             = "."
	DefaultDownloader       = "yt-dlp"
	DefaultFFmpeg           = "ffmpeg"
	DefaultCredentialsFile  = "credentials.json"
	DefaultTokenFile        = "youtube_token.json"
	DefaultGmailTokenFile   = "gmail_token.json"
	DefaultCallbackPort     = 5000
	DefaultProgressInterval = 250 * time.Millisecond
	DefaultDownloadTimeout  = 3 * time.Hour
	DefaultExtractTimeout   = 30 * time.Minute
	DefaultUploadTimeout    = 2 * time.Hour
)

// DefaultColumns matches the column layout of the talks spreadsheet
var DefaultColumns = ColumnsConfig{Room: 0, Title: 3, Start: 4, End: 7, URL: 10}

// Default returns a configuration with every default applied and all stages enabled
func Default() *Config {
	cfg := &Config{
		Features: FeaturesConfig{Download: true, Split: true, Upload: true},
		Schedule: ScheduleConfig{Columns: DefaultColumns},
	}
	cfg.ApplyDefaults(time.Now())
	return cfg
}

// Load reads and parses the configuration from the specified YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{Schedule: ScheduleConfig{Columns: DefaultColumns}}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ApplyDefaults(time.Now())
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the configuration to the specified YAML file
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyDefaults fills every unset value. The year defaults to the year of now.
func (c *Config) ApplyDefaults(now time.Time) {
	if c.Product == "" {
		c.Product = DefaultProduct
	}
	if c.Year == 0 {
		c.Year = now.Year()
	}
	if c.Schedule.File == "" {
		c.Schedule.File = DefaultScheduleFile
	}
	if c.Paths.Root == "" {
		c.Paths.Root = DefaultRoot
	}
	if c.Tools.Downloader == "" {
		c.Tools.Downloader = DefaultDownloader
	}
	if c.Tools.DownloadFormat == "" {
		c.Tools.DownloadFormat = "best"
	}
	if c.Tools.FFmpeg == "" {
		c.Tools.FFmpeg = DefaultFFmpeg
	}
	if c.Tools.Extension == "" {
		c.Tools.Extension = "mp4"
	}
	if c.Timeouts.Download == 0 {
		c.Timeouts.Download = DefaultDownloadTimeout
	}
	if c.Timeouts.Extract == 0 {
		c.Timeouts.Extract = DefaultExtractTimeout
	}
	if c.Timeouts.Upload == 0 {
		c.Timeouts.Upload = DefaultUploadTimeout
	}
	if c.YouTube.CredentialsFile == "" {
		c.YouTube.CredentialsFile = DefaultCredentialsFile
	}
	if c.YouTube.TokenFile == "" {
		c.YouTube.TokenFile = DefaultTokenFile
	}
	if c.YouTube.CallbackPort == 0 {
		c.YouTube.CallbackPort = DefaultCallbackPort
	}
	if c.YouTube.Privacy == "" {
		c.YouTube.Privacy = string(publishing.DefaultPrivacy)
	}
	if c.YouTube.ProgressInterval == 0 {
		c.YouTube.ProgressInterval = DefaultProgressInterval
	}
	if c.Notification.TokenFile == "" {
		c.Notification.TokenFile = DefaultGmailTokenFile
	}
}

// Validate checks values that defaults cannot repair
func (c *Config) Validate() error {
	if _, err := publishing.ParsePrivacy(c.YouTube.Privacy); err != nil {
		return err
	}
	if c.Timeouts.Download < 0 || c.Timeouts.Extract < 0 || c.Timeouts.Upload < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	if c.YouTube.ProgressInterval < 0 {
		return fmt.Errorf("youtube.progress_interval must not be negative")
	}
	if c.YouTube.ChunkSize < 0 {
		return fmt.Errorf("youtube.chunk_size must not be negative")
	}
	if c.Concurrency.MaxRooms < 0 {
		return fmt.Errorf("concurrency.max_rooms must not be negative")
	}
	if utf8.RuneCountInString(c.Schedule.Delimiter) > 1 {
		return fmt.Errorf("schedule.delimiter must be a single character, got %q", c.Schedule.Delimiter)
	}
	cols := c.Schedule.Columns
	if cols.Room < 0 || cols.Title < 0 || cols.Start < 0 || cols.End < 0 || cols.URL < 0 {
		return fmt.Errorf("schedule columns must not be negative")
	}
	if c.Notification.Enabled {
		if c.Notification.FromAddress == "" {
			return fmt.Errorf("notification.from_address is required when notification is enabled")
		}
		if len(c.Notification.Recipients) == 0 {
			return fmt.Errorf("notification.recipients is required when notification is enabled")
		}
	}
	return nil
}

// VideosDir is <root>/videos
func (c *Config) VideosDir() string {
	return filepath.Join(c.Paths.Root, "videos")
}

// Package config provides configuration loading for the translations sync service.
//
// Configuration is read once at startup from environment variables,
// optionally seeded from a dotenv file, and passed explicitly to every
// component that needs it.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/stacklok/translations-sync/internal/telemetry"
)

const (
	// SourceTypeSheets is the type for translations stored in a Google spreadsheet
	SourceTypeSheets = "sheets"

	// SourceTypeFile is the type for translations stored in a local JSON or YAML file
	SourceTypeFile = "file"

	// SourceTypeGit is the type for a JSON or YAML file committed to a Git repository
	SourceTypeGit = "git"
)

// Environment variable names
const (
	EnvClientID        = "CLIENT_ID"
	EnvClientSecret    = "CLIENT_SECRET"
	EnvSpreadsheetID   = "SPREADSHEET_ID"
	EnvSpreadsheetName = "SPREADSHEET_NAME"
	EnvRedirectURI     = "REDIRECT_URI"
	EnvRefreshToken    = "REFRESH_TOKEN"
	EnvTokenPath       = "TOKEN_PATH"
	EnvSheetsAPIURL    = "SHEETS_API_URL"
	EnvSourceType      = "SOURCE_TYPE"
	EnvSourceFile      = "SOURCE_FILE"
	EnvGitRepository   = "GIT_REPOSITORY"
	EnvGitBranch       = "GIT_BRANCH"
	EnvGitTag          = "GIT_TAG"
	EnvGitCommit       = "GIT_COMMIT"
	EnvGitPath         = "GIT_PATH"
	EnvGitUsername     = "GIT_USERNAME"
	EnvGitPassword     = "GIT_PASSWORD"
	EnvStoragePath     = "STORAGE_PATH"
	EnvStatusPath      = "STATUS_PATH"
	EnvSyncInterval    = "SYNC_INTERVAL"
	EnvFilterTags      = "FILTER_TAGS"
	EnvFetchMaxTries   = "FETCH_MAX_TRIES"
	EnvFetchTimeout    = "FETCH_TIMEOUT"
	EnvServerAddress   = "SERVER_ADDRESS"
	EnvWatchSourceFile = "WATCH_SOURCE_FILE"
	EnvLogLevel        = "LOG_LEVEL"

	EnvTelemetryEnabled         = "TELEMETRY_ENABLED"
	EnvTelemetryEndpoint        = "TELEMETRY_ENDPOINT"
	EnvTelemetryInsecure        = "TELEMETRY_INSECURE"
	EnvTelemetryTracingEnabled  = "TELEMETRY_TRACING_ENABLED"
	EnvTelemetryTracingSampling = "TELEMETRY_TRACING_SAMPLING"
	EnvTelemetryMetricsEnabled  = "TELEMETRY_METRICS_ENABLED"
)

// Defaults
const (
	DefaultSheetsAPIURL  = "https://sheets.googleapis.com"
	DefaultTokenPath     = "token.json"
	DefaultStoragePath   = "./data/data.json"
	DefaultStatusPath    = "./data/status.json"
	DefaultSyncInterval  = "5m"
	DefaultFetchMaxTries = 3
	DefaultFetchTimeout  = "30s"
	DefaultLogLevel      = "info"
)

// Option defines the interface for configuration options
type Option func(*loaderConfig) error

// loaderConfig defines the configuration for loading a configuration
type loaderConfig struct {
	envFile string
}

// WithEnvFile seeds the configuration from a dotenv file. Variables set in
// the process environment take precedence over the file. A missing file is
// ignored.
func WithEnvFile(path string) Option {
	return func(cfg *loaderConfig) error {
		if path == "" {
			return fmt.Errorf("env file path is required")
		}
		cfg.envFile = filepath.Clean(path)
		return nil
	}
}

// Config represents the root configuration structure
type Config struct {
	Source     SourceConfig
	Sheets     SheetsConfig
	Storage    StorageConfig
	SyncPolicy SyncPolicyConfig
	Server     ServerConfig
	Telemetry  telemetry.Config
	LogLevel   string
}

// SourceConfig selects where translations are fetched from
type SourceConfig struct {
	// Type is either sheets or file
	Type string

	// File is set for the file source type
	File *FileConfig

	// Git is set for the git source type
	Git *GitConfig
}

// FileConfig defines local file source configuration
type FileConfig struct {
	// Path is the path to a JSON or YAML translation document
	Path string
}

// GitConfig defines a translation document stored in a Git repository
type GitConfig struct {
	// Repository is the clone URL (https or a local path)
	Repository string

	// Branch, Tag and Commit select the revision; none of them uses HEAD
	Branch string
	Tag    string
	Commit string

	// Path is the path of the JSON or YAML document inside the repository
	Path string

	// Username and Password enable HTTP basic authentication
	Username string
	Password string
}

// SheetsConfig defines the Google Sheets source settings
type SheetsConfig struct {
	ClientID        string
	ClientSecret    string
	SpreadsheetID   string
	SpreadsheetName string
	RedirectURI     string

	// RefreshToken authorizes the OAuth client without a stored token file
	RefreshToken string

	// TokenPath is a JSON encoded OAuth token, used when RefreshToken is empty
	TokenPath string

	// APIBaseURL is the Sheets API base URL, overridable for testing
	APIBaseURL string
}

// StorageConfig defines where the snapshot and the sync status are stored
type StorageConfig struct {
	Path       string
	StatusPath string
}

// SyncPolicyConfig defines synchronization settings
type SyncPolicyConfig struct {
	// Interval is the time between two sync cycles (e.g. "5m")
	Interval string

	// FilterTags restricts the synced content to the keys carrying these tags.
	// Empty keeps the full document.
	FilterTags []string

	// FetchMaxTries bounds the fetch attempts of one cycle. 1 disables retries.
	FetchMaxTries uint

	// FetchTimeout is the timeout of a single fetch request (e.g. "30s")
	FetchTimeout string

	// WatchSourceFile runs an extra cycle whenever the file source changes
	WatchSourceFile bool
}

// ServerConfig defines the read API settings
type ServerConfig struct {
	// Address is the listen address. Empty disables the read API.
	Address string
}

// LoadConfig loads the configuration from the environment and validates it
func LoadConfig(opts ...Option) (*Config, error) {
	loaderCfg := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	if loaderCfg.envFile != "" {
		if err := readEnvFile(v, loaderCfg.envFile); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		Source: SourceConfig{
			Type: strings.ToLower(v.GetString(EnvSourceType)),
		},
		Sheets: SheetsConfig{
			ClientID:        v.GetString(EnvClientID),
			ClientSecret:    v.GetString(EnvClientSecret),
			SpreadsheetID:   v.GetString(EnvSpreadsheetID),
			SpreadsheetName: v.GetString(EnvSpreadsheetName),
			RedirectURI:     v.GetString(EnvRedirectURI),
			RefreshToken:    v.GetString(EnvRefreshToken),
			TokenPath:       v.GetString(EnvTokenPath),
			APIBaseURL:      strings.TrimSuffix(v.GetString(EnvSheetsAPIURL), "/"),
		},
		Storage: StorageConfig{
			Path:       v.GetString(EnvStoragePath),
			StatusPath: v.GetString(EnvStatusPath),
		},
		SyncPolicy: SyncPolicyConfig{
			Interval:        v.GetString(EnvSyncInterval),
			FilterTags:      splitList(v.GetString(EnvFilterTags)),
			FetchMaxTries:   v.GetUint(EnvFetchMaxTries),
			FetchTimeout:    v.GetString(EnvFetchTimeout),
			WatchSourceFile: v.GetBool(EnvWatchSourceFile),
		},
		Server: ServerConfig{
			Address: v.GetString(EnvServerAddress),
		},
		Telemetry: telemetry.Config{
			Enabled:  v.GetBool(EnvTelemetryEnabled),
			Endpoint: v.GetString(EnvTelemetryEndpoint),
			Insecure: v.GetBool(EnvTelemetryInsecure),
			Tracing: &telemetry.TracingConfig{
				Enabled:  v.GetBool(EnvTelemetryTracingEnabled),
				Sampling: v.GetFloat64(EnvTelemetryTracingSampling),
			},
			Metrics: &telemetry.MetricsConfig{
				Enabled: v.GetBool(EnvTelemetryMetricsEnabled),
			},
		},
		LogLevel: v.GetString(EnvLogLevel),
	}

	if path := v.GetString(EnvSourceFile); path != "" {
		cfg.Source.File = &FileConfig{Path: path}
	}

	if repository := v.GetString(EnvGitRepository); repository != "" {
		cfg.Source.Git = &GitConfig{
			Repository: repository,
			Branch:     v.GetString(EnvGitBranch),
			Tag:        v.GetString(EnvGitTag),
			Commit:     v.GetString(EnvGitCommit),
			Path:       v.GetString(EnvGitPath),
			Username:   v.GetString(EnvGitUsername),
			Password:   v.GetString(EnvGitPassword),
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(EnvSourceType, SourceTypeSheets)
	v.SetDefault(EnvTokenPath, DefaultTokenPath)
	v.SetDefault(EnvSheetsAPIURL, DefaultSheetsAPIURL)
	v.SetDefault(EnvStoragePath, DefaultStoragePath)
	v.SetDefault(EnvStatusPath, DefaultStatusPath)
	v.SetDefault(EnvSyncInterval, DefaultSyncInterval)
	v.SetDefault(EnvFetchMaxTries, DefaultFetchMaxTries)
	v.SetDefault(EnvFetchTimeout, DefaultFetchTimeout)
	v.SetDefault(EnvLogLevel, DefaultLogLevel)
}

// readEnvFile merges a dotenv file into v. A missing file is not an error.
func readEnvFile(v *viper.Viper, path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to access env file %s: %w", path, err)
	}

	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read env file %s: %w", path, err)
	}
	return nil
}

// splitList splits a comma separated list, dropping blank entries
func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// Validate performs validation on the configuration
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}

	switch c.Source.Type {
	case SourceTypeSheets:
		if err := c.Sheets.validate(); err != nil {
			return err
		}
	case SourceTypeFile:
		if c.Source.File == nil || c.Source.File.Path == "" {
			return fmt.Errorf("%s is required when %s is %s", EnvSourceFile, EnvSourceType, SourceTypeFile)
		}
	case SourceTypeGit:
		if err := c.Source.Git.validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%s must be one of %s, %s or %s, got %q",
			EnvSourceType, SourceTypeSheets, SourceTypeFile, SourceTypeGit, c.Source.Type)
	}

	if c.Storage.Path == "" {
		return fmt.Errorf("%s cannot be empty", EnvStoragePath)
	}

	if err := c.Telemetry.Validate(); err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}

	return c.SyncPolicy.validate()
}

// validate checks the git source settings
func (g *GitConfig) validate() error {
	if g == nil || g.Repository == "" {
		return fmt.Errorf("%s is required when %s is %s", EnvGitRepository, EnvSourceType, SourceTypeGit)
	}
	if g.Path == "" {
		return fmt.Errorf("%s is required when %s is %s", EnvGitPath, EnvSourceType, SourceTypeGit)
	}

	revisions := 0
	for _, rev := range []string{g.Branch, g.Tag, g.Commit} {
		if rev != "" {
			revisions++
		}
	}
	if revisions > 1 {
		return fmt.Errorf("only one of %s, %s or %s can be set", EnvGitBranch, EnvGitTag, EnvGitCommit)
	}
	return nil
}

// validate reports every missing required Sheets variable at once
func (s *SheetsConfig) validate() error {
	required := []struct {
		name  string
		value string
	}{
		{EnvClientID, s.ClientID},
		{EnvClientSecret, s.ClientSecret},
		{EnvSpreadsheetID, s.SpreadsheetID},
		{EnvSpreadsheetName, s.SpreadsheetName},
		{EnvRedirectURI, s.RedirectURI},
	}

	var missing []string
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	if s.APIBaseURL != "" {
		if _, err := url.ParseRequestURI(s.APIBaseURL); err != nil {
			return fmt.Errorf("%s must be a valid URL: %w", EnvSheetsAPIURL, err)
		}
	}

	return nil
}

// validate validates the sync policy configuration
func (p *SyncPolicyConfig) validate() error {
	interval, err := time.ParseDuration(p.Interval)
	if err != nil {
		return fmt.Errorf("%s must be a valid duration (e.g., '5m', '1h'): %w", EnvSyncInterval, err)
	}
	if interval <= 0 {
		return fmt.Errorf("%s must be positive, got %s", EnvSyncInterval, p.Interval)
	}

	if p.FetchMaxTries == 0 {
		return fmt.Errorf("%s must be at least 1", EnvFetchMaxTries)
	}

	if p.FetchTimeout != "" {
		if _, err := time.ParseDuration(p.FetchTimeout); err != nil {
			return fmt.Errorf("%s must be a valid duration (e.g., '30s'): %w", EnvFetchTimeout, err)
		}
	}

	return nil
}

// GetInterval returns the parsed sync interval, defaulting to five minutes
func (p *SyncPolicyConfig) GetInterval() time.Duration {
	if interval, err := time.ParseDuration(p.Interval); err == nil && interval > 0 {
		return interval
	}
	return 5 * time.Minute
}

// GetFetchTimeout returns the parsed fetch timeout, or zero for the client default
func (p *SyncPolicyConfig) GetFetchTimeout() time.Duration {
	timeout, err := time.ParseDuration(p.FetchTimeout)
	if err != nil {
		return 0
	}
	return timeout
}

// GetFetchMaxTries returns the fetch attempt bound, at least 1
func (p *SyncPolicyConfig) GetFetchMaxTries() uint {
	if p.FetchMaxTries == 0 {
		return 1
	}
	return p.FetchMaxTries
}

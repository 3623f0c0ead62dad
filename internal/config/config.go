// File: internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Logger     LoggerConfig     `mapstructure:"logger" yaml:"logger"`
	Browser    BrowserConfig    `mapstructure:"browser" yaml:"browser"`
	Network    NetworkConfig    `mapstructure:"network" yaml:"network"`
	Session    SessionConfig    `mapstructure:"session" yaml:"session"`
	Storage    StorageConfig    `mapstructure:"storage" yaml:"storage"`
	Downloader DownloaderConfig `mapstructure:"downloader" yaml:"downloader"`
	Service    ServiceConfig    `mapstructure:"service" yaml:"service"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// BrowserConfig holds settings for the headless browser instances.
type BrowserConfig struct {
	Headless        bool     `mapstructure:"headless" yaml:"headless"`
	IgnoreTLSErrors bool     `mapstructure:"ignore_tls_errors" yaml:"ignore_tls_errors"`
	UserAgent       string   `mapstructure:"user_agent" yaml:"user_agent"`
	Args            []string `mapstructure:"args" yaml:"args"`
}

// NetworkConfig tunes navigation and request behavior.
type NetworkConfig struct {
	// Timeout bounds plain HTTP requests (API fetches, media downloads).
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
	// NavigationTimeout bounds a single browser navigation.
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	// SettleWait is the pause after navigation that lets client-side redirects
	// and background API calls fire. Distinct from NavigationTimeout on purpose.
	SettleWait time.Duration `mapstructure:"settle_wait" yaml:"settle_wait"`
	// Proxy is a host:port or user:pass@host:port spec, also read from the
	// PROXY environment variable for parity with the container deployment.
	Proxy string `mapstructure:"proxy" yaml:"proxy"`
}

// SessionConfig locates the session artifact and the refresh agent.
type SessionConfig struct {
	Dir          string `mapstructure:"dir" yaml:"dir"`
	FileName     string `mapstructure:"file_name" yaml:"file_name"`
	RefreshAgent string `mapstructure:"refresh_agent" yaml:"refresh_agent"`
	// Screenshots toggles diagnostic screenshot uploads during validation.
	Screenshots bool `mapstructure:"screenshots" yaml:"screenshots"`
}

// StorageConfig configures the durable blob store.
type StorageConfig struct {
	Bucket string `mapstructure:"bucket" yaml:"bucket"`
}

// DownloaderConfig controls where resolved media lands.
type DownloaderConfig struct {
	OutputDir    string `mapstructure:"output_dir" yaml:"output_dir"`
	UploadToBlob bool   `mapstructure:"upload_to_blob" yaml:"upload_to_blob"`
}

// ServiceConfig configures the daemon surface.
type ServiceConfig struct {
	Addr      string `mapstructure:"addr" yaml:"addr"`
	QueueSize int    `mapstructure:"queue_size" yaml:"queue_size"`
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "xmedia-downloader")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.ignore_tls_errors", false)
	v.SetDefault("browser.user_agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/135.0.0.0 Safari/537.36")

	// -- Network --
	v.SetDefault("network.timeout", "30s")
	v.SetDefault("network.navigation_timeout", "30s")
	v.SetDefault("network.settle_wait", "5s")

	// -- Session --
	v.SetDefault("session.dir", "/tmp/session-data")
	v.SetDefault("session.file_name", "x-session.json")
	v.SetDefault("session.refresh_agent", "/app/refresh-session")
	v.SetDefault("session.screenshots", true)

	// -- Downloader --
	v.SetDefault("downloader.output_dir", "./downloads")
	v.SetDefault("downloader.upload_to_blob", false)

	// -- Service --
	v.SetDefault("service.addr", ":8080")
	v.SetDefault("service.queue_size", 64)
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	// Bind environment variables for values the container deployment sets directly.
	v.BindEnv("storage.bucket", "GCS_BUCKET_NAME")
	v.BindEnv("network.proxy", "PROXY")
	v.BindEnv("downloader.output_dir", "OUTPUT_DIR")
	v.BindEnv("session.dir", "SESSION_DIR")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.Session.FileName == "" {
		return fmt.Errorf("session.file_name is a required configuration field")
	}
	if c.Network.NavigationTimeout <= 0 {
		return fmt.Errorf("network.navigation_timeout must be a positive duration")
	}
	if c.Network.SettleWait < 0 {
		return fmt.Errorf("network.settle_wait must not be negative")
	}
	if c.Service.QueueSize <= 0 {
		return fmt.Errorf("service.queue_size must be a positive integer")
	}
	return nil
}

// SessionBlobKey returns the slash-delimited key of the session artifact in the
// durable store, e.g. "session-data/x-session.json".
func (c *Config) SessionBlobKey() string {
	return fmt.Sprintf("session-data/%s", c.Session.FileName)
}

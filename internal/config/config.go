package config

import "time"

// Config is the complete memeforge configuration. Values come from
// defaults (SetDefaults), the user config file, then MEMEFORGE_* environment
// variables, in increasing precedence.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Store   StoreConfig   `mapstructure:"store"`
	Render  RenderConfig  `mapstructure:"render"`
	Preview PreviewConfig `mapstructure:"preview"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Health  HealthConfig  `mapstructure:"health"`
	Workers int           `mapstructure:"workers"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// MaxUploadBytes caps multipart and JSON request bodies on render routes.
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes"`
}

// StoreConfig contains database configuration for libsql/Turso
type StoreConfig struct {
	Driver    string `mapstructure:"driver"`
	Path      string `mapstructure:"path"`
	URL       string `mapstructure:"url"`
	AuthToken string `mapstructure:"auth_token"`
}

// RenderConfig tunes the built-in templates.
type RenderConfig struct {
	// FontPath points at a TTF/OTF file used instead of the bundled Go font.
	FontPath    string `mapstructure:"font_path"`
	JPEGQuality int    `mapstructure:"jpeg_quality"`
}

// PreviewConfig controls preview synthesis and the preview cache.
type PreviewConfig struct {
	// SampleDir holds sample images; empty means generated placeholders.
	SampleDir string `mapstructure:"sample_dir"`
	// Seed makes sample picks reproducible. Zero seeds from the clock.
	Seed      uint64        `mapstructure:"seed"`
	ImageSize int           `mapstructure:"image_size"`
	Cache     bool          `mapstructure:"cache"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level controls the minimum log level
	// Valid values: trace, debug, info, warn, error
	Level string `mapstructure:"level"`

	// Profile selects SIMPLE, STRUCTURED or ENTERPRISE logging.
	Profile string `mapstructure:"profile"`
}

// MetricsConfig contains Prometheus metrics configuration
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// Port is the dedicated Prometheus endpoint port.
	Port int `mapstructure:"port"`
}

// HealthConfig contains health check configuration
type HealthConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

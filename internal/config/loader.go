// Package config provides centralized configuration management for memeforge.
//
// Values are layered through viper: built-in defaults, the XDG config file
// discovered from the app identity, then environment variables carrying the
// identity's prefix (MEMEFORGE_SERVER_PORT maps to server.port).
package config

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fulmenhq/gofulmen/appidentity"
	gfconfig "github.com/fulmenhq/gofulmen/config"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/memeforge/memeforge/internal/appid"
)

var (
	appConfig   *Config
	configMu    sync.RWMutex
	identityMu  sync.Mutex
	appIdentity *appidentity.Identity
)

func identity(ctx context.Context) *appidentity.Identity {
	identityMu.Lock()
	defer identityMu.Unlock()
	if appIdentity == nil {
		if id, err := appid.Get(ctx); err == nil {
			appIdentity = id
		}
	}
	return appIdentity
}

// SetDefaults registers every known key with its default so environment
// overrides resolve for all of them.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.max_upload_bytes", 32<<20)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.profile", "structured")

	v.SetDefault("store.driver", "libsql")
	v.SetDefault("store.path", DefaultStorePath())
	v.SetDefault("store.url", "")
	v.SetDefault("store.auth_token", "")

	v.SetDefault("render.font_path", "")
	v.SetDefault("render.jpeg_quality", 90)

	v.SetDefault("preview.sample_dir", "")
	v.SetDefault("preview.seed", 0)
	v.SetDefault("preview.image_size", 256)
	v.SetDefault("preview.cache", true)
	v.SetDefault("preview.cache_ttl", "24h")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)

	v.SetDefault("health.enabled", true)

	v.SetDefault("workers", 4)
}

// BindEnv wires the identity's environment prefix into v.
func BindEnv(ctx context.Context, v *viper.Viper) {
	v.SetEnvPrefix(strings.TrimSuffix(appid.EnvPrefix(identity(ctx)), "_"))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load decodes the settings held by v into a Config, validates it and makes
// it the current configuration.
//
// This function is safe to call multiple times (e.g., for config reload)
func Load(ctx context.Context, v *viper.Viper) (*Config, error) {
	if v == nil {
		v = viper.New()
		SetDefaults(v)
		BindEnv(ctx, v)
	}

	cfg := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if strings.TrimSpace(cfg.Store.URL) == "" && strings.TrimSpace(cfg.Store.Path) == "" {
		cfg.Store.Path = DefaultStorePath()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	setConfig(cfg)
	return cfg, nil
}

// Validate reports every out-of-range setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("server.max_upload_bytes must be positive"))
	}
	if c.Render.JPEGQuality < 1 || c.Render.JPEGQuality > 100 {
		errs = append(errs, fmt.Errorf("render.jpeg_quality %d not in 1..100", c.Render.JPEGQuality))
	}
	if c.Preview.ImageSize < 8 {
		errs = append(errs, fmt.Errorf("preview.image_size %d below 8", c.Preview.ImageSize))
	}
	if c.Preview.CacheTTL < 0 {
		errs = append(errs, fmt.Errorf("preview.cache_ttl must not be negative"))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// GetConfig returns the current application configuration (thread-safe)
func GetConfig() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return appConfig
}

func setConfig(cfg *Config) {
	configMu.Lock()
	defer configMu.Unlock()
	appConfig = cfg
}

// UserConfigPaths lists the XDG locations checked for a config file.
func UserConfigPaths() []string {
	id := identity(context.Background())
	configName, binaryName := appid.Names(id)

	var legacy []string
	if binaryName != configName {
		legacy = append(legacy, binaryName)
	}
	return gfconfig.GetAppConfigPaths(configName, legacy...)
}

// DefaultConfigPath returns the XDG-compliant path to the user config file.
func DefaultConfigPath() string {
	configName, _ := appid.Names(identity(context.Background()))
	configDir := gfconfig.GetAppConfigDir(configName)
	if strings.TrimSpace(configDir) == "" {
		return ""
	}
	return filepath.Join(configDir, "config.yaml")
}

// DefaultDataDir returns the XDG-compliant data directory for the app.
func DefaultDataDir() string {
	configName, _ := appid.Names(identity(context.Background()))
	return gfconfig.GetAppDataDir(configName)
}

// DefaultCacheDir returns the XDG-compliant cache directory for the app.
func DefaultCacheDir() string {
	configName, _ := appid.Names(identity(context.Background()))
	return gfconfig.GetAppCacheDir(configName)
}

// DefaultStorePath returns the XDG-compliant path to the preview cache
// database.
func DefaultStorePath() string {
	_, binaryName := appid.Names(identity(context.Background()))
	dataDir := DefaultDataDir()
	if strings.TrimSpace(dataDir) == "" {
		return "./" + binaryName + ".db"
	}
	return filepath.Join(dataDir, binaryName+".db")
}

package cmd

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/fulmenhq/gofulmen/crucible"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/memeforge/memeforge/internal/appid"
	"github.com/memeforge/memeforge/internal/config"
	"github.com/memeforge/memeforge/internal/observability"
)

var envInfoCmd = &cobra.Command{
	Use:   "envinfo",
	Short: "Display environment information",
	Long:  "Display version, runtime and effective configuration details.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := observability.CLILogger
		version := crucible.GetVersion()
		_, binaryName := appid.Names(GetAppIdentity())

		log.Info("=== " + binaryName + " environment ===")
		log.Info("Application:")
		log.Info("  Version:    " + versionInfo.Version)
		log.Info("  Commit:     " + versionInfo.Commit)
		log.Info("  Built:      " + versionInfo.BuildDate)
		log.Info("  Gofulmen:   "+version.Gofulmen, zap.String("gofulmen_version", version.Gofulmen))
		log.Info("  Crucible:   "+version.Crucible, zap.String("crucible_version", version.Crucible))
		log.Info("  Go:         "+runtime.Version(), zap.String("go_version", runtime.Version()))
		log.Info("  Platform:   " + runtime.GOOS + "/" + runtime.GOARCH)
		log.Info("")

		cfg, err := loadConfig(cmd.Context())
		if err != nil {
			log.Warn("Config load failed", zap.Error(err))
			return err
		}

		log.Info("Configuration:")
		configFile := viper.ConfigFileUsed()
		if configFile == "" {
			configFile = config.DefaultConfigPath() + " (not found)"
		}
		log.Info("  Config File:    " + configFile)
		log.Info("  Search Paths:   " + strings.Join(config.UserConfigPaths(), ", "))
		log.Info("  Data Dir:       " + config.DefaultDataDir())
		log.Info("  Cache Dir:      " + config.DefaultCacheDir())
		log.Info(fmt.Sprintf("  Server:         %s:%d", cfg.Server.Host, cfg.Server.Port))
		log.Info(fmt.Sprintf("  Upload Limit:   %d bytes", cfg.Server.MaxUploadBytes))
		log.Info("  Log Level:      " + cfg.Logging.Level)
		log.Info("  Log Profile:    " + cfg.Logging.Profile)
		if strings.TrimSpace(cfg.Store.URL) != "" {
			log.Info("  Store URL:      " + cfg.Store.URL)
		} else {
			log.Info("  Store Path:     " + cfg.Store.Path)
		}
		fontPath := cfg.Render.FontPath
		if fontPath == "" {
			fontPath = "(built-in)"
		}
		log.Info("  Font:           " + fontPath)
		log.Info(fmt.Sprintf("  JPEG Quality:   %d", cfg.Render.JPEGQuality))
		sampleDir := cfg.Preview.SampleDir
		if sampleDir == "" {
			sampleDir = "(generated)"
		}
		log.Info("  Sample Images:  " + sampleDir)
		log.Info(fmt.Sprintf("  Preview Cache:  %t (ttl %s)", cfg.Preview.Cache, cfg.Preview.CacheTTL))
		log.Info(fmt.Sprintf("  Metrics:        %t (port %d)", cfg.Metrics.Enabled, cfg.Metrics.Port))
		log.Info(fmt.Sprintf("  Workers:        %d", cfg.Workers))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(envInfoCmd)
}

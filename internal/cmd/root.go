package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fulmenhq/gofulmen/appidentity"
	gfconfig "github.com/fulmenhq/gofulmen/config"
	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/fulmenhq/gofulmen/telemetry"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/memeforge/memeforge/internal/appid"
	"github.com/memeforge/memeforge/internal/config"
	"github.com/memeforge/memeforge/internal/observability"
)

var (
	cfgFile string
	verbose bool

	// App identity loaded from .fulmen/app.yaml or the embedded copy
	appIdentity *appidentity.Identity

	// Version info set by main package
	versionInfo struct {
		Version   string
		Commit    string
		BuildDate string
	}
)

// SetVersionInfo is called by main package to set version information
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

// GetAppIdentity returns the loaded app identity (only valid after initConfig)
func GetAppIdentity() *appidentity.Identity {
	return appIdentity
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	// NOTE: initConfig() overwrites these from app identity.
	Use:           filepath.Base(os.Args[0]),
	Short:         "Meme template registry and renderer",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Keep config loading quiet; serve installs the real telemetry system.
	if sys, err := telemetry.NewSystem(&telemetry.Config{Enabled: false}); err == nil {
		telemetry.SetGlobalSystem(sys)
	}

	if identity, err := appid.Get(context.Background()); err == nil && identity != nil {
		appIdentity = identity
		applyIdentity(identity)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (optional; defaults to app identity config path)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (sets log level to debug)")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func applyIdentity(identity *appidentity.Identity) {
	if identity.BinaryName != "" {
		rootCmd.Use = identity.BinaryName
	}
	if identity.Description != "" {
		rootCmd.Short = identity.Description
		rootCmd.Long = fmt.Sprintf("%s - %s\n\nUse the subcommands to browse, render and serve meme templates.", identity.BinaryName, identity.Description)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	ctx := context.Background()
	identity, err := appid.Get(ctx)
	if err != nil {
		ExitWithCodeStderr(foundry.ExitFileNotFound, "Failed to load app identity", err)
	}
	appIdentity = identity
	applyIdentity(identity)

	configName, binaryName := appid.Names(identity)
	if f := rootCmd.PersistentFlags().Lookup("config"); f != nil {
		f.Usage = fmt.Sprintf("config file (default is $XDG_CONFIG_HOME/%s/config.yaml)", configName)
	}

	observability.InitCLILogger(binaryName, verbose)

	v := viper.GetViper()
	config.SetDefaults(v)
	config.BindEnv(ctx, v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if appConfigDir := gfconfig.GetAppConfigDir(configName); appConfigDir != "" {
			v.AddConfigPath(appConfigDir)
			v.SetConfigName("config")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				ExitWithCode(observability.CLILogger, foundry.ExitFileNotFound, "Could not find home directory", err)
			}
			v.AddConfigPath(home)
			v.SetConfigName("." + configName)
		}
		v.AddConfigPath("./config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			observability.CLILogger.Debug("No config file found, using defaults and environment variables")
		} else {
			observability.CLILogger.Warn("Error reading config file", zap.Error(err))
		}
		return
	}
	observability.CLILogger.Debug("Using config file", zap.String("path", v.ConfigFileUsed()))
}

// loadConfig decodes the global viper state into a validated Config.
func loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := config.Load(ctx, viper.GetViper())
	if err != nil {
		return nil, &configError{err: err}
	}
	return cfg, nil
}

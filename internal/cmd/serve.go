package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/fulmenhq/gofulmen/signals"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/memeforge/memeforge/internal/appid"
	"github.com/memeforge/memeforge/internal/config"
	errwrap "github.com/memeforge/memeforge/internal/errors"
	"github.com/memeforge/memeforge/internal/metrics"
	"github.com/memeforge/memeforge/internal/observability"
	"github.com/memeforge/memeforge/internal/server"
	"github.com/memeforge/memeforge/internal/server/handlers"
)

// telemetryHealthChecker ensures telemetry system and exporter are available
type telemetryHealthChecker struct{}

func (telemetryHealthChecker) CheckHealth(ctx context.Context) error {
	if observability.TelemetrySystem == nil || observability.PrometheusExporter == nil {
		return errwrap.NewInternalError("telemetry system not initialized")
	}
	return nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP API with graceful shutdown support.

Routes:
  GET  /memes                 catalog (?q= fuzzy search)
  GET  /memes/keys            registered keys
  GET  /memes/{key}           one descriptor
  POST /memes/{key}           render (multipart or JSON)
  GET  /memes/{key}/preview   sample preview

Signal Handling:
  • Ctrl+C (SIGINT) or SIGTERM: Graceful shutdown
  • Ctrl+C twice within 2s: Force quit
  • SIGHUP: Config reload (logging only; restart for everything else)`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "localhost", "server host")
	serveCmd.Flags().IntP("port", "p", 8080, "server port")

	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	identity := GetAppIdentity()
	_, binaryName := appid.Names(identity)
	namespace := binaryName
	if identity != nil {
		if ns := identity.TelemetryNamespace(); ns != "" {
			namespace = ns
		}
	}

	observability.InitServerLogger(binaryName, cfg.Logging, namespace)
	logger := observability.ServerLogger

	if cfg.Metrics.Enabled {
		if err := observability.InitMetrics(binaryName, cfg.Metrics.Port, namespace); err != nil {
			logger.Error("Failed to initialize metrics", zap.Error(err))
			return errwrap.Wrap(ctx, errwrap.CodeInternal, err, "metrics initialization failed")
		}
	}

	rt, err := newRuntime(ctx, cfg, true)
	if err != nil {
		return errwrap.Wrap(ctx, errwrap.CodeConfigInvalid, err, "runtime initialization failed")
	}
	metrics.SetRegisteredMemes(rt.registry.Len())

	hm := handlers.NewHealthManager(versionInfo.Version)
	if cfg.Metrics.Enabled {
		hm.RegisterChecker("telemetry", telemetryHealthChecker{})
	}
	if rt.store != nil {
		hm.RegisterChecker("preview_cache", rt.store)
	}
	handlers.SetBuildInfo(handlers.BuildInfo{
		Version:   versionInfo.Version,
		Commit:    versionInfo.Commit,
		BuildDate: versionInfo.BuildDate,
	})
	handlers.SetAppIdentity(identity)

	srv := server.New(cfg.Server, server.Deps{
		Registry: rt.registry,
		Renderer: rt.renderer,
		Health:   hm,
	})

	logger.Info("Initializing server",
		zap.String("service", binaryName),
		zap.String("namespace", namespace),
		zap.String("version", versionInfo.Version),
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.Int("templates", rt.registry.Len()),
		zap.Bool("preview_cache", rt.store != nil))

	startedAt := time.Now()
	metrics.SetServerStartTime(startedAt.Unix())

	// Shutdown handlers run LIFO: the HTTP server stops first, then the
	// cache closes, then logs flush.
	signals.OnShutdown(func(ctx context.Context) error {
		logger.Info("Flushing logger...")
		if err := logger.Sync(); err != nil {
			logger.Warn("Logger sync returned error (may be benign)", zap.Error(err))
		}
		return nil
	})
	signals.OnShutdown(func(ctx context.Context) error {
		metrics.SetServerUptime(int64(time.Since(startedAt).Seconds()))
		return rt.Close()
	})
	signals.OnShutdown(func(ctx context.Context) error {
		logger.Info("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errwrap.Wrap(ctx, errwrap.CodeInternal, err, "server shutdown failed")
		}
		logger.Info("HTTP server stopped gracefully")
		return nil
	})

	signals.OnReload(func(ctx context.Context) error {
		logger.Info("Received SIGHUP: attempting config reload")
		previous := config.GetConfig()
		reloaded, err := reloadConfig(ctx)
		if err != nil {
			logger.Error("Failed to reload config", zap.Error(err))
			return errwrap.Wrap(ctx, errwrap.CodeConfigInvalid, err, "config reload failed")
		}
		if next, err := observability.NewServerLogger(binaryName, reloaded.Logging, namespace); err == nil {
			observability.ServerLogger = next
		}
		if previous != nil && previous.Server != reloaded.Server {
			logger.Warn("Server settings changed; restart to apply them",
				zap.String("listen", fmt.Sprintf("%s:%d", reloaded.Server.Host, reloaded.Server.Port)))
		}
		logger.Info("Configuration reloaded", zap.String("file", viper.ConfigFileUsed()))
		return nil
	})

	if err := signals.EnableDoubleTap(signals.DoubleTapConfig{
		Window:  2 * time.Second,
		Message: "Press Ctrl+C again within 2 seconds to force quit",
	}); err != nil {
		logger.Warn("Failed to enable double-tap force quit", zap.Error(err))
	}

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	go func() {
		if err := signals.Listen(ctx); err != nil {
			logger.Error("Signal handler error", zap.Error(err))
			errChan <- err
		}
	}()

	if err := <-errChan; err != nil {
		return errwrap.Wrap(ctx, errwrap.CodeInternal, err, "server error")
	}
	return nil
}

// reloadConfig re-reads the config file into the global viper and decodes
// it. A missing file keeps defaults and environment values.
func reloadConfig(ctx context.Context) (*config.Config, error) {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}
	return loadConfig(ctx)
}

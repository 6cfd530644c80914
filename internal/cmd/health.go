package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/memeforge/memeforge/internal/observability"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Run self-health check",
	Long: `Verify the application can start: configuration decodes, every template
registers, previews render and the preview cache opens.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSelfCheck(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

func runSelfCheck(ctx context.Context) error {
	log := observability.CLILogger
	log.Info("Running health check...")

	if versionInfo.Version == "" {
		return errors.New("version information missing")
	}
	log.Info("✅ Version information available")

	cfg, err := loadConfig(ctx)
	if err != nil {
		log.Error("❌ FAIL: configuration", zap.Error(err))
		return err
	}
	log.Info("✅ Configuration valid")

	rt, err := newRuntime(ctx, cfg, false)
	if err != nil {
		log.Error("❌ FAIL: template registry", zap.Error(err))
		return err
	}
	log.Info(fmt.Sprintf("✅ %d templates registered", rt.registry.Len()))

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	var failed []error
	for m := range rt.registry.All() {
		if _, err := rt.renderer.Preview(ctx, m, nil); err != nil {
			log.Error("❌ FAIL: preview "+m.Key(), zap.Error(err))
			failed = append(failed, fmt.Errorf("%s: %w", m.Key(), err))
		}
	}
	if err := errors.Join(failed...); err != nil {
		return err
	}
	log.Info("✅ Every template previews")

	if cfg.Preview.Cache {
		db, err := openStore(ctx, cfg.Store)
		if err != nil {
			log.Warn("⚠️  Preview cache unavailable", zap.Error(err))
		} else {
			err = db.CheckHealth(ctx)
			_ = db.Close()
			if err != nil {
				log.Warn("⚠️  Preview cache unhealthy", zap.Error(err))
			} else {
				log.Info("✅ Preview cache reachable")
			}
		}
	}

	log.Info("✅ All health checks passed")
	return nil
}

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/memeforge/memeforge/internal/meme"
	"github.com/memeforge/memeforge/internal/observability"
	"github.com/memeforge/memeforge/internal/render"
)

var previewCmd = &cobra.Command{
	Use:   "preview [key...]",
	Short: "Render template previews from sample inputs",
	Long: `Render previews with sample images and texts.

Previews are served from the preview cache when it is enabled and the
template has not changed. With --all every registered template is
previewed over the configured number of workers. --args passes a JSON
object of template args to every preview; such previews skip the cache.`,
	RunE: runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().Bool("all", false, "Preview every registered template")
	previewCmd.Flags().String("out-dir", ".", "Directory for preview files")
	previewCmd.Flags().Int("workers", 0, "Concurrent previews (default from config)")
	previewCmd.Flags().Bool("no-cache", false, "Bypass the preview cache")
	previewCmd.Flags().String("args", "", `Template args as a JSON object, e.g. '{"message":"hi"}'`)
}

func runPreview(cmd *cobra.Command, args []string) error {
	all, _ := cmd.Flags().GetBool("all")
	outDir, _ := cmd.Flags().GetString("out-dir")
	workers, _ := cmd.Flags().GetInt("workers")
	noCache, _ := cmd.Flags().GetBool("no-cache")
	rawArgs, _ := cmd.Flags().GetString("args")

	if all == (len(args) > 0) {
		return errors.New("pass template keys or --all, not both")
	}
	templateArgs, err := parseArgsJSON(rawArgs)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	if workers <= 0 {
		workers = cfg.Workers
	}

	rt, err := newRuntime(ctx, cfg, !noCache)
	if err != nil {
		return err
	}
	defer rt.Close() // nolint:errcheck // best-effort cleanup; errors logged internally

	var targets []*meme.Meme
	if all {
		for m := range rt.registry.All() {
			targets = append(targets, m)
		}
	} else {
		for _, name := range args {
			m, _, err := rt.registry.Resolve(name)
			if err != nil {
				return err
			}
			targets = append(targets, m)
		}
	}

	dir, err := ensureOutDir(outDir)
	if err != nil {
		return err
	}
	return writePreviews(ctx, rt.renderer, targets, workers, templateArgs, dir, cmd.OutOrStdout())
}

// parseArgsJSON decodes a --args value. Empty means no args.
func parseArgsJSON(raw string) (map[string]any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("--args must be a JSON object: %w", err)
	}
	return out, nil
}

// writePreviews renders targets and writes one file per template. Every
// template is attempted; the failures are joined into the returned error.
func writePreviews(ctx context.Context, renderer *render.Service, targets []*meme.Meme, workers int, args map[string]any, dir string, w io.Writer) error {
	startedAt := time.Now()
	results := renderer.PreviewAll(ctx, targets, workers, args)

	var errs []error
	written := 0
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Key, r.Err))
			continue
		}
		path := filepath.Join(dir, imageFilename(r.Key, r.Result))
		if err := writeImage(w, path, r.Result.Data); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Key, err))
			continue
		}
		written++
		source := "rendered"
		if r.Result.Cached {
			source = "cached"
		}
		_, _ = fmt.Fprintf(w, "%-16s %-8s %s\n", r.Key, source, path)
	}

	if observability.CLILogger != nil {
		observability.CLILogger.Debug("Previews finished",
			zap.Int("written", written),
			zap.Int("failed", len(errs)),
			zap.Duration("elapsed", time.Since(startedAt)))
	}
	return errors.Join(errs...)
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/memeforge/memeforge/internal/canvas"
	"github.com/memeforge/memeforge/internal/config"
	"github.com/memeforge/memeforge/internal/meme"
	"github.com/memeforge/memeforge/internal/memes"
	"github.com/memeforge/memeforge/internal/observability"
	"github.com/memeforge/memeforge/internal/render"
	"github.com/memeforge/memeforge/internal/sample"
	"github.com/memeforge/memeforge/internal/store"
)

// appRuntime bundles what commands need to render templates.
type appRuntime struct {
	cfg      *config.Config
	registry *meme.Registry
	renderer *render.Service
	store    *store.Store
}

// newRegistry builds the built-in registry with the configured font and
// JPEG quality.
func newRegistry(cfg config.RenderConfig) (*meme.Registry, error) {
	opts := memes.Options{JPEGQuality: cfg.JPEGQuality}
	if path := strings.TrimSpace(cfg.FontPath); path != "" {
		font, err := canvas.LoadFont(path)
		if err != nil {
			return nil, fmt.Errorf("load font: %w", err)
		}
		opts.Font = font
	}
	return memes.NewRegistry(opts)
}

func newSamples(cfg config.PreviewConfig) (*sample.Source, error) {
	return sample.New(
		sample.WithSeed(cfg.Seed),
		sample.WithImageSize(cfg.ImageSize),
		sample.WithDir(cfg.SampleDir),
	)
}

// openStore opens and migrates the preview cache database.
func openStore(ctx context.Context, cfg config.StoreConfig) (*store.Store, error) {
	return store.OpenMigrated(ctx, cfg)
}

// newRuntime wires the registry and renderer. withCache opens the preview
// cache when the config enables it; an unreachable cache is logged and
// rendering continues without it.
func newRuntime(ctx context.Context, cfg *config.Config, withCache bool) (*appRuntime, error) {
	if cfg == nil {
		return nil, errors.New("config not loaded")
	}
	reg, err := newRegistry(cfg.Render)
	if err != nil {
		return nil, err
	}
	samples, err := newSamples(cfg.Preview)
	if err != nil {
		return nil, err
	}

	rt := &appRuntime{cfg: cfg, registry: reg}
	var opts []render.Option
	if withCache && cfg.Preview.Cache {
		db, err := openStore(ctx, cfg.Store)
		if err != nil {
			if logger := observability.Logger(); logger != nil {
				logger.Warn("Preview cache unavailable, continuing without it", zap.Error(err))
			}
		} else {
			rt.store = db
			opts = append(opts, render.WithPreviewCache(db, cfg.Preview.CacheTTL))
		}
	}
	rt.renderer = render.New(samples, opts...)
	return rt, nil
}

func (rt *appRuntime) Close() error {
	if rt == nil || rt.store == nil {
		return nil
	}
	return rt.store.Close()
}

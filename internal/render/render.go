// Package render runs templates on behalf of the HTTP server and the CLI:
// it times and counts every invocation, labels the output's content type and
// serves previews through the libsql preview cache when one is configured.
package render

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/memeforge/memeforge/internal/canvas"
	"github.com/memeforge/memeforge/internal/meme"
	"github.com/memeforge/memeforge/internal/metrics"
	"github.com/memeforge/memeforge/internal/observability"
	"github.com/memeforge/memeforge/internal/store"
)

// PreviewCache is the subset of *store.Store the service needs.
type PreviewCache interface {
	GetPreview(ctx context.Context, key, fingerprint string) (*store.Preview, error)
	PutPreview(ctx context.Context, key, fingerprint, contentType string, data []byte, ttl time.Duration) error
}

// Result is an encoded image.
type Result struct {
	Data        []byte
	ContentType string
	Cached      bool
}

// Service renders templates.
type Service struct {
	samples  meme.SampleSource
	cache    PreviewCache
	cacheTTL time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithPreviewCache stores previews in cache for ttl. A nil cache or a
// non-positive ttl leaves caching off.
func WithPreviewCache(cache PreviewCache, ttl time.Duration) Option {
	return func(s *Service) {
		if cache == nil || ttl <= 0 {
			return
		}
		s.cache = cache
		s.cacheTTL = ttl
	}
}

// New returns a Service drawing preview inputs from samples.
func New(samples meme.SampleSource, opts ...Option) *Service {
	s := &Service{samples: samples}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Render invokes m with caller inputs.
func (s *Service) Render(ctx context.Context, m *meme.Meme, images [][]byte, texts []string, args map[string]any) (Result, error) {
	start := time.Now()
	data, err := m.CallContext(ctx, images, texts, args)
	metrics.RecordRender(m.Key(), err, time.Since(start))
	if err != nil {
		return Result{}, err
	}
	return Result{Data: data, ContentType: ContentType(data)}, nil
}

// Preview renders m with sample inputs and the caller's args. Previews
// without args go through the cache when configured; cache failures are
// logged and never fail the preview.
func (s *Service) Preview(ctx context.Context, m *meme.Meme, args map[string]any) (Result, error) {
	if s.samples == nil {
		return Result{}, fmt.Errorf("preview %s: no sample source configured", m.Key())
	}

	useCache := s.cache != nil && len(args) == 0
	var fingerprint string
	if useCache {
		fp, err := store.FingerprintMeme(m)
		if err != nil {
			return Result{}, err
		}
		fingerprint = fp

		cached, err := s.cache.GetPreview(ctx, m.Key(), fingerprint)
		switch {
		case err != nil:
			logCacheError("read", m.Key(), err)
		case cached != nil:
			metrics.RecordPreviewCache(m.Key(), true)
			return Result{Data: cached.Data, ContentType: cached.ContentType, Cached: true}, nil
		default:
			metrics.RecordPreviewCache(m.Key(), false)
		}
	}

	counted := &countingSamples{SampleSource: s.samples}
	start := time.Now()
	data, err := m.GeneratePreview(ctx, counted, args)
	metrics.RecordRender(m.Key(), err, time.Since(start))
	var exhausted *meme.PreviewAttemptsExhaustedError
	switch {
	case err == nil:
		metrics.RecordPreviewAttempts(m.Key(), previewAttempts(m, counted.texts))
	case errors.As(err, &exhausted):
		metrics.RecordPreviewAttempts(m.Key(), exhausted.Attempts)
	}
	if err != nil {
		return Result{}, err
	}
	result := Result{Data: data, ContentType: ContentType(data)}

	if useCache {
		if err := s.cache.PutPreview(ctx, m.Key(), fingerprint, result.ContentType, data, s.cacheTTL); err != nil {
			logCacheError("write", m.Key(), err)
		}
	}
	return result, nil
}

// ContentType maps encoded image bytes to a MIME type.
func ContentType(data []byte) string {
	format, err := canvas.DetectFormat(data)
	if err != nil || format == "" {
		return "application/octet-stream"
	}
	return "image/" + format
}

// Extension returns the file extension for a content type from ContentType.
func Extension(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".bin"
	}
}

// countingSamples counts sample texts drawn during one preview.
type countingSamples struct {
	meme.SampleSource
	texts int
}

func (c *countingSamples) Text() string {
	c.texts++
	return c.SampleSource.Text()
}

// previewAttempts derives the number of calls a successful preview took:
// every retry draws exactly one extra sample text.
func previewAttempts(m *meme.Meme, textsDrawn int) int {
	p := m.Params()
	initial := p.MinTexts
	if p.DefaultTextsUsable() {
		initial = 0
	}
	return max(textsDrawn-initial, 0) + 1
}

func logCacheError(op, key string, err error) {
	if logger := observability.Logger(); logger != nil {
		logger.Warn("Preview cache "+op+" failed", zap.String("template", key), zap.Error(err))
	}
}

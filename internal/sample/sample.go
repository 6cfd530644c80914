// Package sample supplies placeholder images and texts for meme previews.
package sample

import (
	"fmt"
	"image"
	"image/color"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/memeforge/memeforge/internal/canvas"
)

// DefaultTexts is the built-in text corpus.
var DefaultTexts = []string{
	"when the build passes",
	"me at 3am",
	"just one more commit",
	"it works on my machine",
	"monday again",
	"ship it",
	"reading the docs",
	"who wrote this",
	"coffee first",
	"plot twist",
	"nobody:",
	"weekend plans",
}

const defaultImageSize = 256

var imageExts = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
	".webp": {},
	".bmp":  {},
}

// Source hands out sample inputs. It is safe for concurrent use.
type Source struct {
	mu    sync.Mutex
	rng   *rand.Rand
	files []string
	texts []string
	size  int
}

// Option configures a Source.
type Option func(*Source) error

// WithSeed makes the sequence reproducible. Zero picks a random seed.
func WithSeed(seed uint64) Option {
	return func(s *Source) error {
		if seed != 0 {
			s.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
		}
		return nil
	}
}

// WithDir draws images from the image files directly under dir instead of
// generating them. An empty dir is ignored.
func WithDir(dir string) Option {
	return func(s *Source) error {
		if strings.TrimSpace(dir) == "" {
			return nil
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			return fmt.Errorf("read sample dir: %w", err)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if _, ok := imageExts[strings.ToLower(filepath.Ext(e.Name()))]; ok {
				s.files = append(s.files, filepath.Join(dir, e.Name()))
			}
		}
		sort.Strings(s.files)
		if len(s.files) == 0 {
			return fmt.Errorf("sample dir %s contains no images", dir)
		}
		return nil
	}
}

// WithTexts replaces the text corpus.
func WithTexts(texts []string) Option {
	return func(s *Source) error {
		if len(texts) == 0 {
			return fmt.Errorf("sample text corpus is empty")
		}
		s.texts = append([]string(nil), texts...)
		return nil
	}
}

// WithImageSize sets the edge length of generated images.
func WithImageSize(n int) Option {
	return func(s *Source) error {
		if n < 8 {
			return fmt.Errorf("sample image size %d is too small", n)
		}
		s.size = n
		return nil
	}
}

// New builds a Source.
func New(opts ...Option) (*Source, error) {
	s := &Source{
		rng:   rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		texts: DefaultTexts,
		size:  defaultImageSize,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Text returns a random corpus entry.
func (s *Source) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.texts[s.rng.IntN(len(s.texts))]
}

// Image returns an encoded sample picture: a file from the sample dir when
// one is configured, otherwise a generated PNG.
func (s *Source) Image() ([]byte, error) {
	s.mu.Lock()
	if len(s.files) > 0 {
		path := s.files[s.rng.IntN(len(s.files))]
		s.mu.Unlock()
		data, err := os.ReadFile(path) // #nosec G304 -- operator supplied sample dir
		if err != nil {
			return nil, fmt.Errorf("read sample image: %w", err)
		}
		return data, nil
	}
	palette := [3]color.NRGBA{s.randomColor(), s.randomColor(), s.randomColor()}
	circleAt := image.Pt(s.rng.IntN(s.size/2), s.rng.IntN(s.size/2))
	s.mu.Unlock()

	return generate(s.size, palette, circleAt).EncodePNG()
}

func (s *Source) randomColor() color.NRGBA {
	return color.NRGBA{
		R: uint8(s.rng.IntN(256)),
		G: uint8(s.rng.IntN(256)),
		B: uint8(s.rng.IntN(256)),
		A: 255,
	}
}

// generate paints a vertical gradient with a disc and a bar on top, enough
// structure to show how a template crops and warps its input.
func generate(size int, palette [3]color.NRGBA, circleAt image.Point) *canvas.Image {
	bg := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		t := float64(y) / float64(size-1)
		row := color.NRGBA{
			R: lerp(palette[0].R, palette[1].R, t),
			G: lerp(palette[0].G, palette[1].G, t),
			B: lerp(palette[0].B, palette[1].B, t),
			A: 255,
		}
		for x := 0; x < size; x++ {
			bg.SetNRGBA(x, y, row)
		}
	}
	img := canvas.FromImage(bg)

	disc := canvas.New(size/2, size/2, palette[2]).Circle()
	img.Paste(disc, circleAt, true)

	bar := size / 8
	img.FillRect(image.Rect(0, size-bar, size, size), color.NRGBA{A: 160})
	return img
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t)
}

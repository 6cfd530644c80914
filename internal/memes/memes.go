// Package memes holds the built-in templates.
//
// Frames are painted procedurally, so the package ships no image assets.
// Every render clones its frame and owns the result.
package memes

import (
	"errors"
	"image"
	"image/color"

	"golang.org/x/image/font/opentype"

	"github.com/memeforge/memeforge/internal/canvas"
	"github.com/memeforge/memeforge/internal/meme"
)

// Options tune rendering for every built-in template.
type Options struct {
	// Font overrides the text face. Nil uses the canvas fallback font.
	Font *opentype.Font
	// JPEGQuality applies to templates that emit JPEG. Zero means 90.
	JPEGQuality int
}

type template struct {
	key     string
	render  func(Options) meme.Function
	params  meme.Params
	options []meme.Option
}

var templates = []template{
	leftRight,
	rideBike,
	turnRight,
	thisChicken,
	wechatPay,
}

// RegisterAll adds every built-in template to b in a stable order.
func RegisterAll(b *meme.Builder, opts Options) error {
	for _, t := range templates {
		if _, err := b.Register(t.key, t.render(opts), t.params, t.options...); err != nil {
			return err
		}
	}
	return nil
}

// Keys lists the built-in template keys in registration order.
func Keys() []string {
	keys := make([]string, len(templates))
	for i, t := range templates {
		keys[i] = t.key
	}
	return keys
}

// NewRegistry is a convenience for callers that only need the built-ins.
func NewRegistry(opts Options) (*meme.Registry, error) {
	b := meme.NewBuilder()
	if err := RegisterAll(b, opts); err != nil {
		return nil, err
	}
	return b.Build(), nil
}

var (
	white = color.White
	black = color.Black
)

// drawText reports layout overflow as a TextOverLength error.
func drawText(img *canvas.Image, box image.Rectangle, text string, opts canvas.TextOptions) error {
	err := img.DrawText(box, text, opts)
	if errors.Is(err, canvas.ErrTextOverflow) {
		return meme.TextOverLength(text)
	}
	return err
}

// captionStyle is the white-on-black outlined caption used by the text-only
// templates.
func captionStyle(opts Options, maxSize, strokeRatio float64) canvas.TextOptions {
	return canvas.TextOptions{
		Font:        opts.Font,
		MinFontSize: 10,
		MaxFontSize: maxSize,
		AllowWrap:   true,
		LinesAlign:  canvas.AlignCenter,
		Fill:        white,
		StrokeFill:  black,
		StrokeRatio: strokeRatio,
	}
}

// captionTemplate renders texts into boxes, one text per box, over a frame.
func captionTemplate(frame func() *canvas.Image, boxes []image.Rectangle, style func(Options) canvas.TextOptions) func(Options) meme.Function {
	return func(opts Options) meme.Function {
		textOpts := style(opts)
		return func(_ []*canvas.Image, texts []string, _ meme.Args) ([]byte, error) {
			img := frame()
			for i, text := range texts {
				if i >= len(boxes) {
					break
				}
				if err := drawText(img, boxes[i], text, textOpts); err != nil {
					return nil, err
				}
			}
			return img.EncodePNG()
		}
	}
}

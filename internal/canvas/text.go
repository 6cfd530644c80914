package canvas

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"os"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// ErrTextOverflow reports that text cannot be laid out inside its box at any
// permitted font size.
var ErrTextOverflow = errors.New("text does not fit")

// Align controls horizontal placement of lines.
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// TextOptions configures DrawText.
type TextOptions struct {
	Font        *opentype.Font
	MinFontSize float64
	MaxFontSize float64
	AllowWrap   bool
	LinesAlign  Align
	Fill        color.Color
	StrokeFill  color.Color
	// StrokeRatio is the stroke width as a fraction of the font size.
	StrokeRatio float64
	// LineSpacing multiplies the face line height. Zero means 1.
	LineSpacing float64
}

var (
	fontsOnce   sync.Once
	regularFont *opentype.Font
	boldFont    *opentype.Font
	fontsErr    error
)

func loadDefaultFonts() {
	regularFont, fontsErr = opentype.Parse(goregular.TTF)
	if fontsErr != nil {
		return
	}
	boldFont, fontsErr = opentype.Parse(gobold.TTF)
}

// DefaultFont returns the bundled Go Regular face.
func DefaultFont() *opentype.Font {
	fontsOnce.Do(loadDefaultFonts)
	return regularFont
}

// BoldFont returns the bundled Go Bold face.
func BoldFont() *opentype.Font {
	fontsOnce.Do(loadDefaultFonts)
	return boldFont
}

// LoadFont parses a TTF/OTF file.
func LoadFont(path string) (*opentype.Font, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from operator config
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return f, nil
}

var (
	fallbackMu   sync.RWMutex
	fallbackFont *opentype.Font
)

// SetFallbackFont replaces the font used when TextOptions.Font is nil. It is
// meant to be called once at startup, before any rendering.
func SetFallbackFont(f *opentype.Font) {
	fallbackMu.Lock()
	defer fallbackMu.Unlock()
	fallbackFont = f
}

func resolveFont(f *opentype.Font) (*opentype.Font, error) {
	if f != nil {
		return f, nil
	}
	fallbackMu.RLock()
	fb := fallbackFont
	fallbackMu.RUnlock()
	if fb != nil {
		return fb, nil
	}
	fontsOnce.Do(loadDefaultFonts)
	if fontsErr != nil {
		return nil, fmt.Errorf("load default font: %w", fontsErr)
	}
	return regularFont, nil
}

// DrawText lays text out inside box using the largest font size between
// MinFontSize and MaxFontSize that fits. It returns ErrTextOverflow (wrapped
// with the text) when no size fits.
func (i *Image) DrawText(box image.Rectangle, text string, opts TextOptions) error {
	f, err := resolveFont(opts.Font)
	if err != nil {
		return err
	}
	maxSize := opts.MaxFontSize
	if maxSize <= 0 {
		maxSize = 30
	}
	minSize := opts.MinFontSize
	if minSize <= 0 || minSize > maxSize {
		minSize = maxSize
	}
	spacing := opts.LineSpacing
	if spacing <= 0 {
		spacing = 1
	}

	for size := math.Floor(maxSize); size >= minSize; size-- {
		face, err := opentype.NewFace(f, &opentype.FaceOptions{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			return fmt.Errorf("create font face: %w", err)
		}

		stroke := int(math.Round(size * opts.StrokeRatio))
		avail := box.Dx() - 2*stroke
		lines, ok := layoutLines(face, text, avail, opts.AllowWrap)
		if !ok {
			_ = face.Close()
			continue
		}

		metrics := face.Metrics()
		lineHeight := int(math.Ceil(float64(metrics.Height.Ceil()) * spacing))
		blockHeight := lineHeight*len(lines) + 2*stroke
		if blockHeight > box.Dy() {
			_ = face.Close()
			continue
		}

		i.drawLines(face, lines, box, lineHeight, blockHeight, stroke, opts)
		_ = face.Close()
		return nil
	}

	return fmt.Errorf("%w: %q", ErrTextOverflow, text)
}

func (i *Image) drawLines(face font.Face, lines []string, box image.Rectangle, lineHeight, blockHeight, stroke int, opts TextOptions) {
	fill := opts.Fill
	if fill == nil {
		fill = color.Black
	}
	ascent := face.Metrics().Ascent.Ceil()
	top := box.Min.Y + (box.Dy()-blockHeight)/2 + stroke

	for idx, line := range lines {
		width := font.MeasureString(face, line).Ceil()
		var x int
		switch opts.LinesAlign {
		case AlignLeft:
			x = box.Min.X + stroke
		case AlignRight:
			x = box.Max.X - stroke - width
		default:
			x = box.Min.X + (box.Dx()-width)/2
		}
		baseline := top + idx*lineHeight + ascent

		if stroke > 0 && opts.StrokeFill != nil {
			src := image.NewUniform(opts.StrokeFill)
			for dy := -stroke; dy <= stroke; dy++ {
				for dx := -stroke; dx <= stroke; dx++ {
					if dx*dx+dy*dy > stroke*stroke {
						continue
					}
					drawString(i.img, face, src, line, x+dx, baseline+dy)
				}
			}
		}
		drawString(i.img, face, image.NewUniform(fill), line, x, baseline)
	}
}

func drawString(dst draw.Image, face font.Face, src image.Image, s string, x, y int) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  src,
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// layoutLines splits text into lines no wider than width. Explicit newlines
// are kept. Without wrapping every paragraph must fit on one line.
func layoutLines(face font.Face, text string, width int, wrap bool) ([]string, bool) {
	if width <= 0 {
		return nil, false
	}
	limit := fixed.I(width)
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		if font.MeasureString(face, para) <= limit {
			lines = append(lines, para)
			continue
		}
		if !wrap {
			return nil, false
		}
		wrapped, ok := wrapParagraph(face, para, limit)
		if !ok {
			return nil, false
		}
		lines = append(lines, wrapped...)
	}
	return lines, true
}

// wrapParagraph breaks greedily, preferring the last space on the line and
// falling back to a rune break for long words or scripts without spaces.
func wrapParagraph(face font.Face, para string, limit fixed.Int26_6) ([]string, bool) {
	var lines []string
	runes := []rune(para)
	for len(runes) > 0 {
		end := 0
		lastSpace := -1
		for end < len(runes) {
			if font.MeasureString(face, string(runes[:end+1])) > limit {
				break
			}
			if runes[end] == ' ' {
				lastSpace = end
			}
			end++
		}
		if end == 0 {
			return nil, false
		}
		if end < len(runes) && lastSpace > 0 {
			end = lastSpace
		}
		lines = append(lines, strings.TrimRight(string(runes[:end]), " "))
		runes = runes[end:]
		for len(runes) > 0 && runes[0] == ' ' {
			runes = runes[1:]
		}
	}
	return lines, true
}

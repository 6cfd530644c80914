package memes

import (
	"image"
	"image/color"
	"sync"

	"github.com/memeforge/memeforge/internal/canvas"
)

// frame memoises a painted background and hands out clones.
func frame(paint func() *canvas.Image) func() *canvas.Image {
	base := sync.OnceValue(paint)
	return func() *canvas.Image {
		return base().Clone()
	}
}

func gradient(w, h int, top, bottom color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		t := float64(y) / float64(max(h-1, 1))
		c := color.NRGBA{
			R: mix(top.R, bottom.R, t),
			G: mix(top.G, bottom.G, t),
			B: mix(top.B, bottom.B, t),
			A: 255,
		}
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func mix(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t)
}

// panel paints a rounded sign with a darker rim behind a text box.
func panel(img *canvas.Image, box image.Rectangle, fill color.NRGBA) {
	rim := box.Inset(-8)
	img.Paste(canvas.New(rim.Dx(), rim.Dy(), darken(fill)).CircleCorner(12), rim.Min, true)
	img.Paste(canvas.New(box.Dx(), box.Dy(), fill).CircleCorner(8), box.Min, true)
}

func darken(c color.NRGBA) color.NRGBA {
	return color.NRGBA{R: c.R / 2, G: c.G / 2, B: c.B / 2, A: c.A}
}

func disc(img *canvas.Image, center image.Point, r int, c color.Color) {
	d := canvas.New(2*r, 2*r, c).Circle()
	img.Paste(d, center.Sub(image.Pt(r, r)), true)
}

var (
	sky      = color.NRGBA{R: 120, G: 185, B: 235, A: 255}
	horizon  = color.NRGBA{R: 215, G: 235, B: 250, A: 255}
	grass    = color.NRGBA{R: 92, G: 160, B: 72, A: 255}
	asphalt  = color.NRGBA{R: 70, G: 70, B: 76, A: 255}
	signBlue = color.NRGBA{R: 30, G: 90, B: 170, A: 255}
	signRed  = color.NRGBA{R: 180, G: 40, B: 40, A: 255}
	wood     = color.NRGBA{R: 120, G: 80, B: 45, A: 255}
	payGreen = color.NRGBA{R: 7, G: 193, B: 96, A: 255}
)

// landscape is sky over grass with a road running to the horizon.
func landscape(w, h, groundAt int) *canvas.Image {
	img := canvas.FromImage(gradient(w, h, sky, horizon))
	img.FillRect(image.Rect(0, groundAt, w, h), grass)
	road := w / 5
	img.FillRect(image.Rect((w-road)/2, groundAt, (w+road)/2, h), asphalt)
	return img
}

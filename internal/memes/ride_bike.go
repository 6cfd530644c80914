package memes

import (
	"image"
	"image/color"
	"time"

	"github.com/memeforge/memeforge/internal/canvas"
	"github.com/memeforge/memeforge/internal/meme"
)

var rideBikeBoxes = []image.Rectangle{
	image.Rect(100, 300, 600, 392),
	image.Rect(100, 600, 600, 692),
	image.Rect(100, 880, 600, 972),
}

var rideBikeFrame = frame(func() *canvas.Image {
	img := landscape(700, 1020, 420)
	// three panels, each with a bike below its caption
	for i, box := range rideBikeBoxes {
		panel(img, box, signRed)
		wheelY := box.Min.Y - 60
		if i == 0 {
			wheelY = box.Min.Y - 80
		}
		disc(img, image.Pt(250, wheelY), 50, color.Black)
		disc(img, image.Pt(250, wheelY), 38, horizon)
		disc(img, image.Pt(450, wheelY), 50, color.Black)
		disc(img, image.Pt(450, wheelY), 38, horizon)
		img.FillRect(image.Rect(250, wheelY-6, 450, wheelY+6), signRed)
	}
	return img
})

var rideBike = template{
	key: "ride_bike",
	render: captionTemplate(rideBikeFrame, rideBikeBoxes, func(o Options) canvas.TextOptions {
		return captionStyle(o, 50, 0.04)
	}),
	params: meme.Params{
		MinTexts: 3,
		MaxTexts: 3,
	},
	options: []meme.Option{
		meme.WithKeywords("骑车", "ride bike"),
		meme.WithTags("text"),
		meme.WithDateCreated(time.Date(2025, time.May, 19, 0, 0, 0, 0, time.UTC)),
		meme.WithDateModified(time.Date(2025, time.May, 19, 0, 0, 0, 0, time.UTC)),
	},
}

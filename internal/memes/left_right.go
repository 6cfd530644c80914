package memes

import (
	"image"
	"time"

	"github.com/memeforge/memeforge/internal/canvas"
	"github.com/memeforge/memeforge/internal/meme"
)

var leftRightBoxes = []image.Rectangle{
	image.Rect(265, 50, 415, 110),
	image.Rect(640, 90, 790, 150),
}

var leftRightFrame = frame(func() *canvas.Image {
	img := landscape(840, 480, 260)
	// fork posts
	img.FillRect(image.Rect(332, 110, 346, 300), wood)
	img.FillRect(image.Rect(708, 150, 722, 320), wood)
	for _, box := range leftRightBoxes {
		panel(img, box, signBlue)
	}
	return img
})

var leftRight = template{
	key: "left_right",
	render: captionTemplate(leftRightFrame, leftRightBoxes, func(o Options) canvas.TextOptions {
		return captionStyle(o, 50, 0.1)
	}),
	params: meme.Params{
		MinTexts:     2,
		MaxTexts:     2,
		DefaultTexts: []string{"left", "right"},
	},
	options: []meme.Option{
		meme.WithKeywords("左右", "left or right"),
		meme.WithTags("text", "choice"),
		meme.WithDateCreated(time.Date(2025, time.May, 19, 0, 0, 0, 0, time.UTC)),
		meme.WithDateModified(time.Date(2025, time.May, 19, 0, 0, 0, 0, time.UTC)),
	},
}

package memes

import (
	"image"
	"time"

	"github.com/memeforge/memeforge/internal/canvas"
	"github.com/memeforge/memeforge/internal/meme"
)

var turnRightBoxes = []image.Rectangle{
	image.Rect(160, 180, 390, 362),
	image.Rect(480, 180, 740, 362),
	image.Rect(300, 700, 650, 800),
}

var turnRightFrame = frame(func() *canvas.Image {
	img := landscape(900, 860, 420)
	// exit ramp bending right
	img.FillRect(image.Rect(450, 560, 900, 640), asphalt)
	img.FillRect(image.Rect(270, 120, 284, 420), wood)
	img.FillRect(image.Rect(600, 120, 614, 420), wood)
	for _, box := range turnRightBoxes {
		panel(img, box, signBlue)
	}
	return img
})

var turnRight = template{
	key: "turn_right",
	render: captionTemplate(turnRightFrame, turnRightBoxes, func(o Options) canvas.TextOptions {
		return captionStyle(o, 80, 0.04)
	}),
	params: meme.Params{
		MinTexts:     3,
		MaxTexts:     3,
		DefaultTexts: []string{"morning workout", "couch potato", "me on weekends"},
	},
	options: []meme.Option{
		meme.WithKeywords("右转", "turn right"),
		meme.WithTags("text", "choice"),
		meme.WithDateCreated(time.Date(2025, time.May, 19, 0, 0, 0, 0, time.UTC)),
		meme.WithDateModified(time.Date(2025, time.May, 19, 0, 0, 0, 0, time.UTC)),
	},
}

package memes

import (
	"image"
	"image/color"

	"github.com/memeforge/memeforge/internal/canvas"
	"github.com/memeforge/memeforge/internal/meme"
)

const thisChickenDefaultText = "this is the rooster of the zodiac"

var (
	thisChickenWindow  = image.Rect(201, 201, 1141, 826)
	thisChickenTextBox = image.Rect(439, 956, 1001, 1038)
	thisChickenQuad    = [4]image.Point{{507, 0}, {940, 351}, {383, 625}, {0, 256}}
)

// The frame is a presenter's board with a transparent window the warped
// input shows through.
var thisChickenFrame = frame(func() *canvas.Image {
	const w, h = 1160, 1080
	board := image.NewNRGBA(image.Rect(0, 0, w, h))
	edge := color.NRGBA{R: 150, G: 30, B: 30, A: 255}
	inner := color.NRGBA{R: 60, G: 20, B: 20, A: 255}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := inner
			if x < 24 || y < 24 || x >= w-24 || y >= h-24 {
				c = edge
			}
			if image.Pt(x, y).In(thisChickenWindow) {
				c = color.NRGBA{}
			}
			board.SetNRGBA(x, y, c)
		}
	}
	img := canvas.FromImage(board)
	img.FillRect(thisChickenTextBox.Inset(-12), color.NRGBA{R: 20, G: 20, B: 20, A: 255})
	return img
})

var thisChicken = template{
	key: "this_chichen",
	render: func(o Options) meme.Function {
		style := canvas.TextOptions{
			Font:        o.Font,
			MinFontSize: 30,
			MaxFontSize: 60,
			Fill:        color.White,
		}
		return func(images []*canvas.Image, texts []string, _ meme.Args) ([]byte, error) {
			text := thisChickenDefaultText
			if len(texts) > 0 {
				text = texts[0]
			}

			warped, err := images[0].ResizeKeepRatio(640, 640).Perspective(thisChickenQuad)
			if err != nil {
				return nil, err
			}
			img := thisChickenFrame()
			if err := drawText(img, thisChickenTextBox, text, style); err != nil {
				return nil, err
			}
			img.PasteBelow(warped, thisChickenWindow.Min)
			return img.EncodeJPEG(o.JPEGQuality)
		}
	},
	params: meme.Params{
		MinImages:    1,
		MaxImages:    1,
		MaxTexts:     1,
		DefaultTexts: []string{thisChickenDefaultText},
	},
	options: []meme.Option{
		meme.WithKeywords("这是鸡", "🐔", "this chicken"),
		meme.WithTags("image", "text"),
	},
}

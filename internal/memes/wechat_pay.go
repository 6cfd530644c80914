package memes

import (
	"hash/fnv"
	"image"
	"image/color"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/memeforge/memeforge/internal/canvas"
	"github.com/memeforge/memeforge/internal/meme"
)

const (
	wechatPayHelp           = "QR code content"
	wechatPayDefaultMessage = "https://github.com/bezhai/meme-generator"
)

// WechatPayArgs are the extra args of the wechat_pay template.
type WechatPayArgs struct {
	meme.BaseArgs `mapstructure:",squash"`
	Message       string `mapstructure:"message" json:"message" yaml:"message" desc:"QR code content"`
}

// WechatPaySchema validates WechatPayArgs.
var WechatPaySchema = meme.NewSchema("WechatPayArgs", func() WechatPayArgs { return WechatPayArgs{} })

var (
	wechatPayCode    = image.Rect(356, 439, 886, 969)
	wechatPayBlock   = image.Rect(528, 611, 714, 797)
	wechatPayAvatar  = image.Pt(538, 621)
	wechatPayLogo    = image.Pt(649, 734)
	wechatPayNameBox = image.Rect(370, 1000, 872, 1100)
)

var wechatPayFrame = frame(func() *canvas.Image {
	const w, h = 1242, 1250
	img := canvas.New(w, h, payGreen)
	img.Paste(canvas.New(720, 880, color.White).CircleCorner(24), image.Pt(261, 300), true)
	img.FillRect(image.Rect(261, 360, 981, 364), color.NRGBA{R: 230, G: 230, B: 230, A: 255})
	return img
})

var wechatPayLogoImage = sync.OnceValue(func() *canvas.Image {
	logo := canvas.New(44, 44, payGreen).CircleCorner(10)
	logo.FillRect(image.Rect(12, 18, 32, 26), color.White)
	return logo
})

var wechatPay = template{
	key: "wechat_pay",
	render: func(o Options) meme.Function {
		style := canvas.TextOptions{
			Font:        o.Font,
			MinFontSize: 50,
			MaxFontSize: 80,
			Fill:        color.Black,
		}
		return func(images []*canvas.Image, texts []string, args meme.Args) ([]byte, error) {
			typed, err := meme.ArgsAs[WechatPayArgs](args)
			if err != nil {
				return nil, err
			}
			message := typed.Message
			if message == "" {
				message = wechatPayDefaultMessage
			}
			var name string
			switch {
			case len(texts) > 0:
				name = texts[0]
			case len(typed.UserInfos()) > 0:
				name = typed.UserInfos()[0].Name
			default:
				return nil, meme.TextOrNameNotEnough()
			}

			img := wechatPayFrame()
			img.Paste(placeholderCode(message, wechatPayCode.Dx()), wechatPayCode.Min, false)
			img.FillRect(wechatPayBlock, color.White)
			avatar := images[0].ResizeKeepRatio(166, 166).CircleCorner(8)
			img.Paste(avatar, wechatPayAvatar, true)
			img.Paste(wechatPayLogoImage(), wechatPayLogo, true)

			if err := drawText(img, wechatPayNameBox, name, style); err != nil {
				return nil, err
			}
			return img.EncodeJPEG(o.JPEGQuality)
		}
	},
	params: meme.Params{
		MinImages: 1,
		MaxImages: 1,
		MinTexts:  0,
		MaxTexts:  1,
		ArgsType: &meme.ArgsType{
			Model: WechatPaySchema,
			Examples: []map[string]any{
				{"message": "https://example.com/pay"},
			},
			ParserOptions: []meme.ParserOption{
				{
					Names:    []string{"-m", "--message"},
					Args:     []meme.ParserArg{{Name: "message", Value: meme.TypeStr}},
					HelpText: wechatPayHelp,
				},
			},
		},
	},
	options: []meme.Option{
		meme.WithKeywords("微信支付", "wechat pay"),
		meme.WithTags("image", "avatar"),
		meme.WithDateCreated(time.Date(2024, time.October, 30, 0, 0, 0, 0, time.UTC)),
		meme.WithDateModified(time.Date(2024, time.October, 30, 0, 0, 0, 0, time.UTC)),
	},
}

// placeholderCode paints a 37x37 module grid with the three corner finder
// marks of a version 5 code. The modules are a hash of message, not a
// scannable encoding.
func placeholderCode(message string, size int) *canvas.Image {
	const modules = 37
	h := fnv.New64a()
	_, _ = h.Write([]byte(message))
	seed := h.Sum64()
	rng := rand.New(rand.NewPCG(seed, ^seed))

	var grid [modules][modules]bool
	for y := 0; y < modules; y++ {
		for x := 0; x < modules; x++ {
			grid[y][x] = rng.IntN(2) == 1
		}
	}
	for _, corner := range [][2]int{{0, 0}, {modules - 7, 0}, {0, modules - 7}} {
		for dy := -1; dy <= 7; dy++ {
			for dx := -1; dx <= 7; dx++ {
				x, y := corner[0]+dx, corner[1]+dy
				if x < 0 || y < 0 || x >= modules || y >= modules {
					continue
				}
				ring := max(abs(dx-3), abs(dy-3))
				grid[y][x] = ring != 2 && ring != 4
			}
		}
	}

	out := image.NewNRGBA(image.Rect(0, 0, size, size))
	for py := 0; py < size; py++ {
		my := py * modules / size
		for px := 0; px < size; px++ {
			mx := px * modules / size
			c := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
			if grid[my][mx] {
				c = color.NRGBA{A: 255}
			}
			out.SetNRGBA(px, py, c)
		}
	}
	return canvas.FromImage(out)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

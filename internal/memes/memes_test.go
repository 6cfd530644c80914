package memes

import (
	"context"
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memeforge/memeforge/internal/canvas"
	"github.com/memeforge/memeforge/internal/meme"
	"github.com/memeforge/memeforge/internal/meme/pflagparser"
	"github.com/memeforge/memeforge/internal/sample"
)

func newRegistry(t *testing.T) *meme.Registry {
	t.Helper()
	reg, err := NewRegistry(Options{})
	require.NoError(t, err)
	return reg
}

func avatarPNG(t *testing.T) []byte {
	t.Helper()
	data, err := canvas.New(120, 90, color.NRGBA{R: 40, G: 120, B: 200, A: 255}).EncodePNG()
	require.NoError(t, err)
	return data
}

func TestRegistryOrder(t *testing.T) {
	reg := newRegistry(t)
	assert.Equal(t, Keys(), reg.Keys())
	assert.Equal(t, []string{"left_right", "ride_bike", "turn_right", "this_chichen", "wechat_pay"}, reg.Keys())
}

func TestRegisterAllTwiceFails(t *testing.T) {
	b := meme.NewBuilder()
	require.NoError(t, RegisterAll(b, Options{}))
	err := RegisterAll(b, Options{})
	assert.True(t, meme.IsKind(err, meme.KindDuplicateKey))
}

func TestMinimalInputsRender(t *testing.T) {
	reg := newRegistry(t)
	for m := range reg.All() {
		t.Run(m.Key(), func(t *testing.T) {
			p := m.Params()
			images := make([][]byte, p.MinImages)
			for i := range images {
				images[i] = avatarPNG(t)
			}
			texts := make([]string, p.MinTexts)
			for i := range texts {
				texts[i] = "hi"
			}
			out, err := m.Call(images, texts, map[string]any{})
			if m.Key() == "wechat_pay" {
				// zero texts and no user infos leave the payee unnamed
				require.True(t, meme.IsKind(err, meme.KindTextOrNameNotEnough), "%v", err)
				return
			}
			require.NoError(t, err)
			require.NotEmpty(t, out)
			_, err = canvas.Open(out)
			require.NoError(t, err)
		})
	}
}

func TestLeftRightScenario(t *testing.T) {
	m, err := newRegistry(t).Lookup("left_right")
	require.NoError(t, err)

	out, err := m.Call(nil, []string{"left", "right"}, map[string]any{})
	require.NoError(t, err)
	format, err := canvas.DetectFormat(out)
	require.NoError(t, err)
	assert.Equal(t, "png", format)

	_, err = m.Call(nil, []string{"only-one"}, nil)
	var mismatch *meme.TextNumberMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, 2, mismatch.Min)
	assert.Equal(t, 2, mismatch.Max)
}

func TestTextOverLength(t *testing.T) {
	m, err := newRegistry(t).Lookup("left_right")
	require.NoError(t, err)

	long := strings.Repeat("unbelievably ", 40)
	_, err = m.Call(nil, []string{long, "ok"}, nil)
	var over *meme.TextOverLengthError
	require.ErrorAs(t, err, &over)
	assert.Equal(t, long, over.Text)
}

func TestThisChickenCorruptImage(t *testing.T) {
	m, err := newRegistry(t).Lookup("this_chichen")
	require.NoError(t, err)

	_, err = m.Call([][]byte{[]byte("garbage")}, nil, nil)
	assert.True(t, meme.IsKind(err, meme.KindOpenImageFailed))

	out, err := m.Call([][]byte{avatarPNG(t)}, nil, nil)
	require.NoError(t, err)
	format, err := canvas.DetectFormat(out)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
}

func TestWechatPayNameSources(t *testing.T) {
	m, err := newRegistry(t).Lookup("wechat_pay")
	require.NoError(t, err)

	_, err = m.Call([][]byte{avatarPNG(t)}, []string{"Alice"}, map[string]any{"message": "pay me"})
	require.NoError(t, err)

	_, err = m.Call([][]byte{avatarPNG(t)}, nil, map[string]any{
		"user_infos": []any{map[string]any{"name": "Bob", "gender": "male"}},
	})
	require.NoError(t, err)

	_, err = m.Call([][]byte{avatarPNG(t)}, nil, map[string]any{"message": 3})
	assert.True(t, meme.IsKind(err, meme.KindArgModelMismatch))
}

func TestWechatPayParserOptions(t *testing.T) {
	m, err := newRegistry(t).Lookup("wechat_pay")
	require.NoError(t, err)

	parser, err := pflagparser.New(m.Key(), m.Params().ParserOptions())
	require.NoError(t, err)
	args, rest, err := parser.Parse([]string{"--message", "hello", "Carol"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Carol"}, rest)

	_, err = m.Call([][]byte{avatarPNG(t)}, rest, args)
	require.NoError(t, err)
}

func TestPreviewsSucceed(t *testing.T) {
	reg := newRegistry(t)
	samples, err := sample.New(sample.WithSeed(1), sample.WithImageSize(64))
	require.NoError(t, err)

	for m := range reg.All() {
		out, err := m.GeneratePreview(context.Background(), samples, nil)
		require.NoError(t, err, m.Key())
		_, err = canvas.Open(out)
		require.NoError(t, err, m.Key())
	}
}

func TestKeywordsResolve(t *testing.T) {
	reg := newRegistry(t)
	m, _, err := reg.Resolve("微信支付")
	require.NoError(t, err)
	assert.Equal(t, "wechat_pay", m.Key())

	m, _, err = reg.Resolve("🐔")
	require.NoError(t, err)
	assert.Equal(t, "this_chichen", m.Key())
}

func TestPlaceholderCodeIsDeterministic(t *testing.T) {
	a := placeholderCode("same", 74)
	b := placeholderCode("same", 74)
	assert.Equal(t, a.Image(), b.Image())

	// top-left finder centre is dark
	r, g, bl, _ := a.Image().At(6, 6).RGBA()
	assert.Zero(t, r+g+bl)
}

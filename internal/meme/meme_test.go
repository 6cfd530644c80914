package meme

import (
	"context"
	"errors"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memeforge/memeforge/internal/canvas"
)

type countingRender struct {
	calls  int
	images []*canvas.Image
	texts  []string
	args   Args
	err    error
}

func (c *countingRender) fn(images []*canvas.Image, texts []string, args Args) ([]byte, error) {
	c.calls++
	c.images = images
	c.texts = texts
	c.args = args
	if c.err != nil {
		return nil, c.err
	}
	return canvas.New(8, 8, color.White).EncodePNG()
}

func register(t *testing.T, key string, fn Function, params Params, opts ...Option) *Meme {
	t.Helper()
	b := NewBuilder()
	m, err := b.Register(key, fn, params, opts...)
	require.NoError(t, err)
	b.Build()
	return m
}

func samplePNG(t *testing.T) []byte {
	t.Helper()
	data, err := canvas.New(16, 16, color.NRGBA{R: 255, A: 255}).EncodePNG()
	require.NoError(t, err)
	return data
}

func TestCallRejectsImageCountBeforeRendering(t *testing.T) {
	r := &countingRender{}
	m := register(t, "one_image", r.fn, Params{MinImages: 1, MaxImages: 2, MaxTexts: 1})

	for _, n := range []int{0, 3} {
		images := make([][]byte, n)
		for i := range images {
			images[i] = samplePNG(t)
		}
		_, err := m.Call(images, nil, nil)
		var mismatch *ImageNumberMismatchError
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, 1, mismatch.Min)
		assert.Equal(t, 2, mismatch.Max)
		assert.Equal(t, KindImageNumberMismatch, KindOf(err))
	}
	assert.Zero(t, r.calls)
}

func TestCallTwoTextTemplate(t *testing.T) {
	r := &countingRender{}
	m := register(t, "left_right", r.fn, Params{MinTexts: 2, MaxTexts: 2})

	out, err := m.Call(nil, []string{"left", "right"}, map[string]any{})
	require.NoError(t, err)
	require.NotEmpty(t, out)
	_, err = canvas.Open(out)
	require.NoError(t, err)
	assert.Equal(t, []string{"left", "right"}, r.texts)

	_, err = m.Call(nil, []string{"only-one"}, nil)
	var mismatch *TextNumberMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, 2, mismatch.Min)
	assert.Equal(t, 2, mismatch.Max)
	assert.Equal(t, "the number of texts is incorrect, it should be 2", err.Error())
	assert.Equal(t, 1, r.calls)
}

func TestCallImageCountCheckedBeforeTextCount(t *testing.T) {
	r := &countingRender{}
	m := register(t, "ordered", r.fn, Params{MinImages: 1, MaxImages: 1, MinTexts: 1, MaxTexts: 1})

	_, err := m.Call(nil, nil, map[string]any{"bogus": 1})
	assert.True(t, IsKind(err, KindImageNumberMismatch))

	_, err = m.Call([][]byte{[]byte("corrupt")}, nil, map[string]any{"bogus": 1})
	assert.True(t, IsKind(err, KindTextNumberMismatch))

	_, err = m.Call([][]byte{[]byte("corrupt")}, []string{"x"}, map[string]any{"bogus": 1})
	assert.True(t, IsKind(err, KindArgModelMismatch))

	_, err = m.Call([][]byte{[]byte("corrupt")}, []string{"x"}, nil)
	assert.True(t, IsKind(err, KindOpenImageFailed))
	assert.Zero(t, r.calls)
}

func TestCallCorruptImage(t *testing.T) {
	r := &countingRender{}
	m := register(t, "needs_image", r.fn, Params{MinImages: 1, MaxImages: 1})

	_, err := m.Call([][]byte{{0x89, 'P', 'N', 'G', 0, 1, 2}}, nil, nil)
	var openErr *OpenImageFailedError
	require.ErrorAs(t, err, &openErr)
	assert.Equal(t, 0, openErr.Index)
	assert.NotEmpty(t, openErr.Detail)
	assert.Zero(t, r.calls)
}

func TestCallPassesDecodedImagesAndDefaults(t *testing.T) {
	r := &countingRender{}
	m := register(t, "avatar", r.fn, Params{MinImages: 1, MaxImages: 1})

	_, err := m.Call([][]byte{samplePNG(t)}, nil, map[string]any{
		"user_infos": []any{map[string]any{"name": "Alice"}},
	})
	require.NoError(t, err)
	require.Len(t, r.images, 1)
	w, h := r.images[0].Size()
	assert.Equal(t, 16, w)
	assert.Equal(t, 16, h)
	assert.Equal(t, []UserInfo{{Name: "Alice", Gender: GenderUnknown}}, r.args.UserInfos())
}

func TestCallDoesNotShareCallerTexts(t *testing.T) {
	m := register(t, "mutating", func(_ []*canvas.Image, texts []string, _ Args) ([]byte, error) {
		texts[0] = "changed"
		return []byte{1}, nil
	}, Params{MinTexts: 1, MaxTexts: 1})

	texts := []string{"original"}
	_, err := m.Call(nil, texts, nil)
	require.NoError(t, err)
	assert.Equal(t, "original", texts[0])
}

func TestCallPropagatesRenderErrors(t *testing.T) {
	custom := errors.New("boom")
	for _, want := range []error{TextOverLength("too long"), TextOrNameNotEnough(), custom} {
		r := &countingRender{err: want}
		m := register(t, "failing", r.fn, Params{MaxTexts: 1})
		_, err := m.Call(nil, nil, nil)
		assert.Same(t, want, err)
	}
}

func TestCallContextCancelledSkipsRender(t *testing.T) {
	r := &countingRender{}
	m := register(t, "cancel", r.fn, Params{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := m.CallContext(ctx, nil, nil, nil)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, r.calls)
}

func TestCallMissingRequiredArg(t *testing.T) {
	type quoteArgs struct {
		BaseArgs `mapstructure:",squash"`
		Message  string `mapstructure:"message" arg:"required"`
	}
	schema := NewSchema("QuoteArgs", func() quoteArgs { return quoteArgs{} })
	r := &countingRender{}
	m := register(t, "quote", r.fn, Params{ArgsType: &ArgsType{Model: schema}})

	_, err := m.Call(nil, nil, map[string]any{})
	var mismatch *ArgModelMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Contains(t, err.Error(), "message")
	assert.Contains(t, err.Error(), "field required")
	assert.Zero(t, r.calls)

	_, err = m.Call(nil, nil, map[string]any{"message": "hi"})
	require.NoError(t, err)
	typed, err := ArgsAs[quoteArgs](r.args)
	require.NoError(t, err)
	assert.Equal(t, "hi", typed.Message)
}

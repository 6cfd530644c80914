package canvas

import (
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenRejectsCorruptData(t *testing.T) {
	_, err := Open([]byte("definitely not an image"))
	require.Error(t, err)

	_, err = Open(nil)
	require.ErrorIs(t, err, ErrEmptyImage)
}

func TestEncodeRoundTrip(t *testing.T) {
	img := New(40, 20, color.RGBA{R: 200, A: 255})

	pngData, err := img.EncodePNG()
	require.NoError(t, err)
	format, err := DetectFormat(pngData)
	require.NoError(t, err)
	assert.Equal(t, "png", format)

	decoded, err := Open(pngData)
	require.NoError(t, err)
	w, h := decoded.Size()
	assert.Equal(t, 40, w)
	assert.Equal(t, 20, h)

	jpgData, err := img.Encode(FormatJPEG, 0)
	require.NoError(t, err)
	format, err = DetectFormat(jpgData)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
}

func TestResizeKeepRatio(t *testing.T) {
	img := New(300, 100, color.White)
	out := img.ResizeKeepRatio(50, 50)
	w, h := out.Size()
	assert.Equal(t, 50, w)
	assert.Equal(t, 50, h)

	// receiver is untouched
	w, h = img.Size()
	assert.Equal(t, 300, w)
	assert.Equal(t, 100, h)
}

func TestDrawTextFitsAndOverflows(t *testing.T) {
	img := New(400, 200, color.White)
	err := img.DrawText(image.Rect(10, 10, 390, 190), "hello world", TextOptions{
		MinFontSize: 10,
		MaxFontSize: 40,
		AllowWrap:   true,
		LinesAlign:  AlignCenter,
		Fill:        color.Black,
		StrokeFill:  color.White,
		StrokeRatio: 0.05,
	})
	require.NoError(t, err)

	err = img.DrawText(image.Rect(0, 0, 20, 12), strings.Repeat("overflow ", 20), TextOptions{
		MinFontSize: 10,
		MaxFontSize: 12,
		AllowWrap:   true,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTextOverflow))
}

func TestDrawTextWithoutWrapRejectsLongLine(t *testing.T) {
	img := New(100, 100, color.White)
	err := img.DrawText(image.Rect(0, 0, 100, 100), "a line that is much too long to fit", TextOptions{
		MinFontSize: 20,
		MaxFontSize: 30,
	})
	assert.ErrorIs(t, err, ErrTextOverflow)
}

func TestCircleCornerClearsCorners(t *testing.T) {
	img := New(20, 20, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	out := img.CircleCorner(8)

	_, _, _, a := out.Image().At(0, 0).RGBA()
	assert.Zero(t, a)
	_, _, _, a = out.Image().At(10, 10).RGBA()
	assert.NotZero(t, a)
}

func TestPerspective(t *testing.T) {
	img := New(100, 100, color.NRGBA{G: 255, A: 255})
	out, err := img.Perspective([4]image.Point{{50, 0}, {100, 30}, {60, 100}, {0, 40}})
	require.NoError(t, err)
	w, h := out.Size()
	assert.Equal(t, 100, w)
	assert.Equal(t, 100, h)

	_, err = img.Perspective([4]image.Point{{0, 0}, {10, 0}, {20, 0}, {30, 0}})
	assert.ErrorIs(t, err, ErrDegenerateQuad)
}

func TestPasteBelowShowsThroughTransparency(t *testing.T) {
	frame := New(10, 10, color.Transparent)
	frame.PasteBelow(New(10, 10, color.NRGBA{B: 255, A: 255}), image.Point{})
	r, g, b, a := frame.Image().At(5, 5).RGBA()
	assert.Zero(t, r)
	assert.Zero(t, g)
	assert.NotZero(t, b)
	assert.NotZero(t, a)
}

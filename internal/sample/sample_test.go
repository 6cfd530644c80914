package sample

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memeforge/memeforge/internal/canvas"
)

func TestGeneratedImagesDecode(t *testing.T) {
	src, err := New(WithSeed(42), WithImageSize(64))
	require.NoError(t, err)

	data, err := src.Image()
	require.NoError(t, err)
	img, err := canvas.Open(data)
	require.NoError(t, err)
	w, h := img.Size()
	assert.Equal(t, 64, w)
	assert.Equal(t, 64, h)
}

func TestSeedIsReproducible(t *testing.T) {
	a, err := New(WithSeed(7))
	require.NoError(t, err)
	b, err := New(WithSeed(7))
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		assert.Equal(t, a.Text(), b.Text())
	}
}

func TestTextsComeFromCorpus(t *testing.T) {
	src, err := New(WithTexts([]string{"only"}))
	require.NoError(t, err)
	assert.Equal(t, "only", src.Text())

	_, err = New(WithTexts(nil))
	assert.Error(t, err)
}

func TestImagesFromDir(t *testing.T) {
	dir := t.TempDir()
	data, err := canvas.New(10, 5, color.White).EncodePNG()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.png"), data, 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0o600))

	src, err := New(WithDir(dir))
	require.NoError(t, err)
	got, err := src.Image()
	require.NoError(t, err)
	assert.Equal(t, data, got)

	_, err = New(WithDir(t.TempDir()))
	assert.Error(t, err)

	_, err = New(WithDir(filepath.Join(dir, "missing")))
	assert.Error(t, err)
}

func TestImageSizeValidation(t *testing.T) {
	_, err := New(WithImageSize(2))
	assert.Error(t, err)
}

package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memeforge/memeforge/internal/canvas"
	"github.com/memeforge/memeforge/internal/meme"
)

func render(_ []*canvas.Image, _ []string, _ meme.Args) ([]byte, error) {
	return []byte{1}, nil
}

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	b := meme.NewBuilder()
	b.MustRegister("left_right", render, meme.Params{MinTexts: 2, MaxTexts: 2}, meme.WithKeywords("左右"), meme.WithTags("text"))
	b.MustRegister("turn_right", render, meme.Params{MinTexts: 3, MaxTexts: 3}, meme.WithKeywords("右转"), meme.WithTags("text"))
	b.MustRegister("wechat_pay", render, meme.Params{MinImages: 1, MaxImages: 1}, meme.WithKeywords("pay"), meme.WithTags("image"))
	return New(b.Build())
}

func keys(memes []*meme.Meme) []string {
	out := make([]string, 0, len(memes))
	for _, m := range memes {
		out = append(out, m.Key())
	}
	return out
}

func TestSearchEmptyQueryReturnsAll(t *testing.T) {
	c := testCatalog(t)
	assert.Equal(t, []string{"left_right", "turn_right", "wechat_pay"}, keys(c.Search("  ")))
	assert.Equal(t, 3, c.Len())
}

func TestSearchExactKeywordFirst(t *testing.T) {
	c := testCatalog(t)
	results := c.Search("右转")
	require.NotEmpty(t, results)
	assert.Equal(t, "turn_right", results[0].Key())
}

func TestSearchFuzzy(t *testing.T) {
	c := testCatalog(t)
	results := keys(c.Search("rght"))
	assert.Contains(t, results, "left_right")
	assert.Contains(t, results, "turn_right")
	assert.NotContains(t, results, "wechat_pay")

	assert.Empty(t, c.Search("zzzz"))
}

func TestByTagAndDescriptors(t *testing.T) {
	c := testCatalog(t)
	assert.Equal(t, []string{"left_right", "turn_right"}, keys(c.ByTag("text")))

	descs := c.Descriptors()
	require.Len(t, descs, 3)
	assert.Equal(t, "wechat_pay", descs[2].Key)
	assert.Equal(t, 1, descs[2].Params.MinImages)
}

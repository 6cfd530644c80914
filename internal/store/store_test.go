package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/memeforge/memeforge/internal/canvas"
	"github.com/memeforge/memeforge/internal/config"
	"github.com/memeforge/memeforge/internal/meme"
	"github.com/memeforge/memeforge/internal/memes"
)

func TestBuildLibsqlDSN(t *testing.T) {
	t.Run("URLUsesRawValue", func(t *testing.T) {
		dsn, err := buildLibsqlDSN(config.StoreConfig{
			URL:       "libsql://example.turso.io",
			AuthToken: "token123",
		})
		require.NoError(t, err)
		require.Equal(t, "libsql://example.turso.io?authToken=token123", dsn)
	})

	t.Run("URLKeepsExplicitToken", func(t *testing.T) {
		dsn, err := buildLibsqlDSN(config.StoreConfig{
			URL:       "libsql://example.turso.io?authToken=mine",
			AuthToken: "token123",
		})
		require.NoError(t, err)
		require.Equal(t, "libsql://example.turso.io?authToken=mine", dsn)
	})

	t.Run("PlainPathCreatesDir", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "previews.db")
		dsn, err := buildLibsqlDSN(config.StoreConfig{Path: path})
		require.NoError(t, err)
		require.Equal(t, "file:"+path, dsn)
		require.DirExists(t, filepath.Dir(path))
	})

	t.Run("PathWithFilePrefix", func(t *testing.T) {
		dsn, err := buildLibsqlDSN(config.StoreConfig{Path: "file:./memeforge.db"})
		require.NoError(t, err)
		require.Equal(t, "file:./memeforge.db", dsn)
	})

	t.Run("PathMissing", func(t *testing.T) {
		_, err := buildLibsqlDSN(config.StoreConfig{})
		require.Error(t, err)
	})

	t.Run("MemoryPath", func(t *testing.T) {
		dsn, err := buildLibsqlDSN(config.StoreConfig{Path: ":memory:"})
		require.NoError(t, err)
		require.Equal(t, ":memory:", dsn)
	})
}

func TestFingerprintTracksDescriptor(t *testing.T) {
	d := meme.Descriptor{
		Key:          "left_right",
		Params:       meme.ParamsDescriptor{MinTexts: 2, MaxTexts: 2},
		DateModified: time.Date(2025, 5, 19, 0, 0, 0, 0, time.UTC),
	}
	a, err := Fingerprint(d)
	require.NoError(t, err)
	b, err := Fingerprint(d)
	require.NoError(t, err)
	require.Equal(t, a, b)
	require.Len(t, a, 64)

	d.Params.MaxTexts = 3
	c, err := Fingerprint(d)
	require.NoError(t, err)
	require.NotEqual(t, a, c)
}

func TestFingerprintStableAcrossBuilds(t *testing.T) {
	lookup := func() *meme.Meme {
		reg, err := memes.NewRegistry(memes.Options{})
		require.NoError(t, err)
		m, err := reg.Lookup("this_chichen")
		require.NoError(t, err)
		return m
	}

	first := lookup()
	time.Sleep(2 * time.Millisecond)
	second := lookup()
	require.False(t, first.DateModifiedDeclared())
	require.NotEqual(t, first.DateModified(), second.DateModified())

	a, err := FingerprintMeme(first)
	require.NoError(t, err)
	b, err := FingerprintMeme(second)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestFingerprintTracksDeclaredDate(t *testing.T) {
	declared := time.Date(2025, 5, 19, 0, 0, 0, 0, time.UTC)
	register := func(modified time.Time) *meme.Meme {
		m, err := meme.NewBuilder().Register("chicken", func([]*canvas.Image, []string, meme.Args) ([]byte, error) {
			return nil, nil
		}, meme.Params{MinImages: 1, MaxImages: 1}, meme.WithDateModified(modified))
		require.NoError(t, err)
		return m
	}

	a, err := FingerprintMeme(register(declared))
	require.NoError(t, err)
	b, err := FingerprintMeme(register(declared.AddDate(0, 0, 1)))
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestNilStore(t *testing.T) {
	var s *Store
	require.NoError(t, s.Close())
	require.Empty(t, s.Driver())
	require.ErrorIs(t, s.Migrate(nil), ErrNotInitialized)
	require.ErrorIs(t, s.CheckHealth(nil), ErrNotInitialized)
	_, err := s.GetPreview(nil, "k", "f")
	require.ErrorIs(t, err, ErrNotInitialized)
}

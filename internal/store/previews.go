package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/memeforge/memeforge/internal/meme"
)

// Preview is a cached preview render.
type Preview struct {
	Key         string
	Fingerprint string
	ContentType string
	Data        []byte
	CreatedAt   time.Time
	ExpiresAt   time.Time
	Hits        int
}

// PreviewStats summarises the preview cache.
type PreviewStats struct {
	Entries int
	Expired int
	Bytes   int64
}

// Fingerprint identifies a template version. It changes whenever anything
// in the descriptor changes, date_modified included.
func Fingerprint(d meme.Descriptor) (string, error) {
	payload, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("fingerprint %s: %w", d.Key, err)
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

// FingerprintMeme fingerprints m's descriptor. A date_modified that only
// records the registration clock is left out, so the fingerprint is stable
// across processes until the template itself changes.
func FingerprintMeme(m *meme.Meme) (string, error) {
	d := m.Descriptor()
	if !m.DateModifiedDeclared() {
		d.DateModified = time.Time{}
	}
	return Fingerprint(d)
}

// GetPreview returns the cached preview for key at fingerprint, or nil when
// there is none or it has expired.
func (s *Store) GetPreview(ctx context.Context, key, fingerprint string) (*Preview, error) {
	ctx, err := s.ready(ctx)
	if err != nil {
		return nil, err
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, errors.New("preview key is required")
	}

	now := time.Now().UTC().Unix()
	var (
		p         = Preview{Key: key, Fingerprint: fingerprint}
		createdAt int64
		expiresAt int64
	)
	row := s.DB.QueryRowContext(ctx, `
		SELECT content_type, data, created_at, expires_at, hits
		FROM preview_cache
		WHERE meme_key = ? AND fingerprint = ? AND expires_at > ?
	`, key, fingerprint, now)
	if err := row.Scan(&p.ContentType, &p.Data, &createdAt, &expiresAt, &p.Hits); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch cached preview: %w", err)
	}

	if _, err := s.DB.ExecContext(ctx,
		`UPDATE preview_cache SET hits = hits + 1 WHERE meme_key = ? AND fingerprint = ?`,
		key, fingerprint); err != nil {
		return nil, fmt.Errorf("record preview hit: %w", err)
	}

	p.Hits++
	p.CreatedAt = time.Unix(createdAt, 0).UTC()
	p.ExpiresAt = time.Unix(expiresAt, 0).UTC()
	return &p, nil
}

// PutPreview stores data for key at fingerprint and drops previews cached
// for older fingerprints of the same key.
func (s *Store) PutPreview(ctx context.Context, key, fingerprint, contentType string, data []byte, ttl time.Duration) error {
	ctx, err := s.ready(ctx)
	if err != nil {
		return err
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("preview key is required")
	}
	if ttl <= 0 {
		return fmt.Errorf("preview ttl must be positive, got %s", ttl)
	}

	now := time.Now().UTC()
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin preview write: %w", err)
	}
	defer tx.Rollback() // nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM preview_cache WHERE meme_key = ? AND fingerprint <> ?`,
		key, fingerprint); err != nil {
		return fmt.Errorf("drop stale previews: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO preview_cache (meme_key, fingerprint, content_type, data, created_at, expires_at, hits)
		VALUES (?, ?, ?, ?, ?, ?, 0)
		ON CONFLICT(meme_key, fingerprint) DO UPDATE SET
			content_type = excluded.content_type,
			data = excluded.data,
			created_at = excluded.created_at,
			expires_at = excluded.expires_at,
			hits = 0
	`, key, fingerprint, contentType, data, now.Unix(), now.Add(ttl).Unix()); err != nil {
		return fmt.Errorf("store preview: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit preview: %w", err)
	}
	return nil
}

// PurgeExpiredPreviews deletes expired previews and reports how many went.
func (s *Store) PurgeExpiredPreviews(ctx context.Context) (int64, error) {
	ctx, err := s.ready(ctx)
	if err != nil {
		return 0, err
	}
	res, err := s.DB.ExecContext(ctx,
		`DELETE FROM preview_cache WHERE expires_at <= ?`, time.Now().UTC().Unix())
	if err != nil {
		return 0, fmt.Errorf("purge previews: %w", err)
	}
	return res.RowsAffected()
}

// ClearPreviews deletes every cached preview, or only those for keys when
// any are given.
func (s *Store) ClearPreviews(ctx context.Context, keys ...string) (int64, error) {
	ctx, err := s.ready(ctx)
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		res, err := s.DB.ExecContext(ctx, `DELETE FROM preview_cache`)
		if err != nil {
			return 0, fmt.Errorf("clear previews: %w", err)
		}
		return res.RowsAffected()
	}

	var total int64
	for _, key := range keys {
		res, err := s.DB.ExecContext(ctx, `DELETE FROM preview_cache WHERE meme_key = ?`, key)
		if err != nil {
			return total, fmt.Errorf("clear previews for %s: %w", key, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// PreviewStats counts cached previews.
func (s *Store) PreviewStats(ctx context.Context) (PreviewStats, error) {
	var stats PreviewStats
	ctx, err := s.ready(ctx)
	if err != nil {
		return stats, err
	}
	row := s.DB.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN expires_at <= ? THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(LENGTH(data)), 0)
		FROM preview_cache
	`, time.Now().UTC().Unix())
	if err := row.Scan(&stats.Entries, &stats.Expired, &stats.Bytes); err != nil {
		return stats, fmt.Errorf("preview stats: %w", err)
	}
	return stats, nil
}

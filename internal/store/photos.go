package store

import (
	"context"
	"database/sql"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// Photos stores uploaded item photos, addressed by a digest of their bytes.
type Photos struct {
	db *sql.DB
}

// NewPhotos returns a photo store backed by db.
func NewPhotos(db *sql.DB) *Photos {
	return &Photos{db: db}
}

// PhotoID returns the id a photo with the given bytes is stored under.
func PhotoID(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Save stores a photo and returns its id. Saving the same bytes twice
// yields the same id and keeps a single copy.
func (p *Photos) Save(ctx context.Context, data []byte, mime string) (string, error) {
	id := PhotoID(data)
	_, err := p.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO photos (id, data, mime) VALUES (?, ?, ?)`,
		id, data, mime,
	)
	if err != nil {
		return "", fmt.Errorf("saving photo: %w", err)
	}
	return id, nil
}

// Get returns a photo's data and MIME type, or nil data if it doesn't exist.
func (p *Photos) Get(ctx context.Context, id string) ([]byte, string, error) {
	var data []byte
	var mime string
	err := p.db.QueryRowContext(ctx,
		`SELECT data, mime FROM photos WHERE id = ?`, id,
	).Scan(&data, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting photo: %w", err)
	}
	return data, mime, nil
}

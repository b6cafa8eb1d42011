// Package pgstore is a record store backed directly by the Postgres
// database holding the item tables.
package pgstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/erazemk/najdeno/internal/model"
)

// Store reads and writes item tables through a connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects to the database at dsn and verifies the connection.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close closes the pool.
func (s *Store) Close() {
	s.pool.Close()
}

// ids and dates are read as text so the record keeps the wire form the
// hosted API would return.
const selectColumns = `id::text, user_id::text, title, description, category, location,
	date_lost::text, date_found::text, contact_name, contact_email, contact_phone,
	photo_url, status, created_at`

const insertColumns = `user_id, title, description, category, location,
	date_lost, date_found, contact_name, contact_email, contact_phone, photo_url`

// buildSelect renders q as SQL with positional arguments.
func buildSelect(q model.Query) (string, []any, error) {
	if _, err := model.KindFromCollection(q.Collection); err != nil {
		return "", nil, err
	}

	var (
		where []string
		args  []any
	)
	for _, f := range q.Filters {
		if !model.IsColumn(f.Column) {
			return "", nil, fmt.Errorf("unknown filter column %q", f.Column)
		}
		args = append(args, f.Value)
		where = append(where, fmt.Sprintf("%s = $%d", f.Column, len(args)))
	}

	sql := "SELECT " + selectColumns + " FROM " + q.Collection
	if len(where) > 0 {
		sql += " WHERE " + strings.Join(where, " AND ")
	}
	if q.OrderBy != "" {
		if !model.IsColumn(q.OrderBy) {
			return "", nil, fmt.Errorf("unknown order column %q", q.OrderBy)
		}
		dir := "ASC"
		if q.Descending {
			dir = "DESC"
		}
		sql += " ORDER BY " + q.OrderBy + " " + dir
	}
	return sql, args, nil
}

// buildInsert renders an insert of rec into collection. Empty dates and
// user ids are sent as NULL so typed columns accept them.
func buildInsert(collection string, rec model.Record) (string, []any, error) {
	if _, err := model.KindFromCollection(collection); err != nil {
		return "", nil, err
	}

	sql := "INSERT INTO " + collection + " (" + insertColumns + ") VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)"
	args := []any{
		nullIfEmpty(&rec.UserID), rec.Title, rec.Description, rec.Category, rec.Location,
		nullIfEmpty(rec.DateLost), nullIfEmpty(rec.DateFound), rec.ContactName, rec.ContactEmail,
		rec.ContactPhone, rec.PhotoURL,
	}
	return sql, args, nil
}

func nullIfEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

// Select implements listing.Store.
func (s *Store) Select(ctx context.Context, q model.Query) ([]model.Record, error) {
	sql, args, err := buildSelect(q)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", q.Collection, err)
	}

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Record, error) {
		var rec model.Record
		var phone *string
		var createdAt *time.Time
		err := row.Scan(&rec.ID, &rec.UserID, &rec.Title, &rec.Description, &rec.Category, &rec.Location,
			&rec.DateLost, &rec.DateFound, &rec.ContactName, &rec.ContactEmail, &phone,
			&rec.PhotoURL, &rec.Status, &createdAt)
		if phone != nil {
			rec.ContactPhone = *phone
		}
		if createdAt != nil {
			rec.CreatedAt = model.NewTimestamp(*createdAt)
		}
		return rec, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s rows: %w", q.Collection, err)
	}
	return records, nil
}

// Insert implements listing.Store.
func (s *Store) Insert(ctx context.Context, collection string, rec model.Record) error {
	sql, args, err := buildInsert(collection, rec)
	if err != nil {
		return err
	}

	if _, err := s.pool.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("inserting into %s: %w", collection, err)
	}
	return nil
}

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/najdeno/internal/model"
)

// Records stores lost and found items in the local SQLite database.
type Records struct {
	db  *sql.DB
	now func() time.Time
}

// NewRecords returns a record store backed by db.
func NewRecords(db *sql.DB) *Records {
	return &Records{db: db, now: time.Now}
}

const recordColumns = `id, user_id, title, description, category, location,
	date_lost, date_found, contact_name, contact_email, contact_phone,
	photo_url, status, created_at`

// Select returns the records matching q.
func (s *Records) Select(ctx context.Context, q model.Query) ([]model.Record, error) {
	if _, err := model.KindFromCollection(q.Collection); err != nil {
		return nil, err
	}

	var (
		where []string
		args  []any
	)
	for _, f := range q.Filters {
		if !model.IsColumn(f.Column) {
			return nil, fmt.Errorf("unknown filter column %q", f.Column)
		}
		where = append(where, f.Column+" = ?")
		args = append(args, f.Value)
	}

	query := "SELECT " + recordColumns + " FROM " + q.Collection
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	if q.OrderBy != "" {
		if !model.IsColumn(q.OrderBy) {
			return nil, fmt.Errorf("unknown order column %q", q.OrderBy)
		}
		dir := "ASC"
		if q.Descending {
			dir = "DESC"
		}
		// Rows inserted within the same clock tick keep insertion order.
		query += fmt.Sprintf(" ORDER BY %s %s, rowid %s", q.OrderBy, dir, dir)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", q.Collection, err)
	}
	defer rows.Close()

	var records []model.Record
	for rows.Next() {
		var rec model.Record
		var phone sql.NullString
		var createdAt time.Time
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Title, &rec.Description, &rec.Category, &rec.Location,
			&rec.DateLost, &rec.DateFound, &rec.ContactName, &rec.ContactEmail, &phone,
			&rec.PhotoURL, &rec.Status, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", q.Collection, err)
		}
		rec.ContactPhone = phone.String
		rec.CreatedAt = model.NewTimestamp(createdAt)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Insert creates a record. The id, status and creation time are assigned
// here, whatever the caller set.
func (s *Records) Insert(ctx context.Context, collection string, rec model.Record) error {
	if _, err := model.KindFromCollection(collection); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO `+collection+` (`+recordColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), rec.UserID, rec.Title, rec.Description, rec.Category, rec.Location,
		rec.DateLost, rec.DateFound, rec.ContactName, rec.ContactEmail, rec.ContactPhone,
		rec.PhotoURL, model.StatusActive, s.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting into %s: %w", collection, err)
	}
	return nil
}

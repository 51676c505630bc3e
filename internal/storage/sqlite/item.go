package sqlite

import (
	"context"

	"github.com/jmoiron/sqlx"

	"tracksuit_watcher/internal/domain"
)

type ItemStore struct {
	db *sqlx.DB
}

func NewItemStore(db *sqlx.DB) *ItemStore {
	return &ItemStore{db: db}
}

func (s *ItemStore) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS (SELECT 1 FROM items WHERE listing_id = ?)", id)
	return exists, err
}

// Insert persists a new item record; duplicates are silent no-ops (first
// classification wins). Returns whether this call wrote the row.
func (s *ItemStore) Insert(ctx context.Context, rec *domain.ItemRecord) (bool, error) {
	query := `
		INSERT INTO items (
			listing_id, title, price, team, brand, size, condition,
			image_url, url, status, reason, first_seen_at, listed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (listing_id) DO NOTHING`

	res, err := s.db.ExecContext(ctx, query,
		rec.ListingID,
		rec.Title,
		rec.Price,
		rec.Team,
		rec.Brand,
		rec.Size,
		rec.Condition,
		rec.ImageURL,
		rec.URL,
		rec.Status,
		rec.Reason,
		rec.FirstSeenAt,
		rec.ListedAt,
	)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	return n > 0, err
}

func (s *ItemStore) Get(ctx context.Context, id string) (*domain.ItemRecord, error) {
	var rec domain.ItemRecord
	query := `
		SELECT listing_id, title, price, team, brand, size, condition,
		       image_url, url, status, reason, first_seen_at, listed_at
		FROM items
		WHERE listing_id = ?`

	if err := s.db.GetContext(ctx, &rec, query, id); err != nil {
		return nil, err
	}
	return &rec, nil
}

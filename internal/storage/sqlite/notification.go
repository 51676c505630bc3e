package sqlite

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

type NotificationStore struct {
	db *sqlx.DB
}

func NewNotificationStore(db *sqlx.DB) *NotificationStore {
	return &NotificationStore{db: db}
}

func (s *NotificationStore) Record(ctx context.Context, id, channel string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (listing_id, channel, sent_at)
		VALUES (?, ?, ?)
		ON CONFLICT (listing_id, channel) DO NOTHING`,
		id, channel, time.Now().UTC(),
	)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	return n > 0, err
}

func (s *NotificationStore) WasNotified(ctx context.Context, id, channel string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS (SELECT 1 FROM notifications WHERE listing_id = ? AND channel = ?)",
		id, channel)
	return exists, err
}

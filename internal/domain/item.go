package domain

import "time"

const (
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// ItemRecord is the durable record of a classified listing, keyed by the
// source's listing identifier. Written once on first sighting, never updated.
type ItemRecord struct {
	ListingID   string     `db:"listing_id"`
	Title       string     `db:"title"`
	Price       *float64   `db:"price"`
	Team        *string    `db:"team"`
	Brand       *string    `db:"brand"`
	Size        *string    `db:"size"`
	Condition   *string    `db:"condition"`
	ImageURL    *string    `db:"image_url"`
	URL         string     `db:"url"`
	Status      string     `db:"status"`
	Reason      *string    `db:"reason"`
	FirstSeenAt time.Time  `db:"first_seen_at"`
	ListedAt    *time.Time `db:"listed_at"`
}

// NotificationRecord records a confirmed delivery to one channel. The
// (ListingID, Channel) pair is unique; its existence means that channel is
// never notified about that listing again.
type NotificationRecord struct {
	ListingID string    `db:"listing_id"`
	Channel   string    `db:"channel"`
	SentAt    time.Time `db:"sent_at"`
}

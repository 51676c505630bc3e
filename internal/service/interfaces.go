package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"tracksuit_watcher/internal/domain"
	"tracksuit_watcher/internal/notifier"
)

type ItemStore interface {
	Exists(ctx context.Context, id string) (bool, error)
	Insert(ctx context.Context, rec *domain.ItemRecord) (bool, error)
}

type NotificationStore interface {
	Record(ctx context.Context, id, channel string) (bool, error)
	WasNotified(ctx context.Context, id, channel string) (bool, error)
}

type WatchStateStore interface {
	Get(ctx context.Context, sourceID string) (*domain.WatchState, error)
	Update(ctx context.Context, state *domain.WatchState) error
}

type Source interface {
	ID() string
	Name() string
	FetchBatch(ctx context.Context, endpoint string) ([]domain.Listing, error)
}

type Classifier interface {
	Classify(listing domain.Listing) domain.Verdict
	Brand(title, description string) string
}

type Dispatcher interface {
	Dispatch(ctx context.Context, item *domain.ItemRecord) map[string]notifier.Outcome
}

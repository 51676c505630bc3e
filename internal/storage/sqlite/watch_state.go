package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"tracksuit_watcher/internal/domain"
)

type WatchStateStore struct {
	db *sqlx.DB
}

func NewWatchStateStore(db *sqlx.DB) *WatchStateStore {
	return &WatchStateStore{db: db}
}

func (s *WatchStateStore) Get(ctx context.Context, sourceID string) (*domain.WatchState, error) {
	var state domain.WatchState
	query := `
		SELECT id, source_id, last_cycle_at, total_scanned, total_approved
		FROM watch_state
		WHERE source_id = ?`

	err := s.db.GetContext(ctx, &state, query, sourceID)
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.WatchState{
			SourceID:    sourceID,
			LastCycleAt: time.Time{},
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *WatchStateStore) Update(ctx context.Context, state *domain.WatchState) error {
	query := `
		INSERT INTO watch_state (source_id, last_cycle_at, total_scanned, total_approved)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (source_id) DO UPDATE SET
			last_cycle_at = excluded.last_cycle_at,
			total_scanned = excluded.total_scanned,
			total_approved = excluded.total_approved`

	_, err := s.db.ExecContext(ctx, query,
		state.SourceID,
		state.LastCycleAt,
		state.TotalScanned,
		state.TotalApproved,
	)
	return err
}

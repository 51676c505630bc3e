package postgres

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
		WHERE source_id = $1`

	err := s.db.GetContext(ctx, &state, query, sourceID)
	if errors.Is(err, sql.ErrNoRows) {
		// Fresh state for sources never seen before
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
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (source_id) DO UPDATE SET
			last_cycle_at = EXCLUDED.last_cycle_at,
			total_scanned = EXCLUDED.total_scanned,
			total_approved = EXCLUDED.total_approved`

	_, err := s.db.ExecContext(ctx, query,
		state.SourceID,
		state.LastCycleAt,
		state.TotalScanned,
		state.TotalApproved,
	)
	return err
}

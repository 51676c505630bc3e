package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"tracksuit_watcher/internal/config"
	"tracksuit_watcher/internal/domain"
	"tracksuit_watcher/internal/notifier"
)

// WatchService runs one poll cycle: fetch every configured endpoint, classify
// the listings never seen before, persist verdicts, notify on approvals.
type WatchService struct {
	source        Source
	classifier    Classifier
	items         ItemStore
	notifications NotificationStore
	watchState    WatchStateStore
	dispatcher    Dispatcher
	logger        *slog.Logger
	cfg           config.SourceConfig
}

func NewWatchService(
	source Source,
	classifier Classifier,
	items ItemStore,
	notifications NotificationStore,
	watchState WatchStateStore,
	dispatcher Dispatcher,
	logger *slog.Logger,
	cfg config.SourceConfig,
) *WatchService {
	return &WatchService{
		source:        source,
		classifier:    classifier,
		items:         items,
		notifications: notifications,
		watchState:    watchState,
		dispatcher:    dispatcher,
		logger:        logger.With("source", source.ID()),
		cfg:           cfg,
	}
}

// RunCycle polls every endpoint once. Endpoint and item failures are logged
// and counted, never fatal; the only error returned is cancellation.
func (s *WatchService) RunCycle(ctx context.Context) (*domain.CycleStats, error) {
	startTime := time.Now()
	stats := &domain.CycleStats{SourceID: s.source.ID()}

	for _, endpoint := range s.cfg.Endpoints {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}

		listings, err := s.fetchWithRetry(ctx, endpoint)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return stats, err
			}
			s.logger.Error("endpoint exhausted, skipping for this cycle",
				"endpoint", endpoint,
				"error", err,
			)
			stats.Errors++
			continue
		}

		for i := range listings {
			// Cancellation is checked between items, never mid-item.
			if ctx.Err() != nil {
				return stats, ctx.Err()
			}
			s.processListing(ctx, &listings[i], stats)
		}
	}

	stats.Duration = time.Since(startTime)
	s.updateWatchState(ctx, stats)

	s.logger.Info("cycle completed",
		"scanned", stats.Scanned,
		"skipped", stats.Skipped,
		"approved", stats.Approved,
		"rejected", stats.Rejected,
		"notified", stats.Notified,
		"errors", stats.Errors,
		"duration", stats.Duration,
	)

	return stats, nil
}

// fetchWithRetry fetches one endpoint with bounded retry. Rate-limit errors
// wait the configured cool-down, transient errors the normal backoff;
// permanent errors abort immediately.
func (s *WatchService) fetchWithRetry(ctx context.Context, endpoint string) ([]domain.Listing, error) {
	var lastErr error

	for attempt := 1; attempt <= s.cfg.Retry.MaxAttempts; attempt++ {
		listings, err := s.source.FetchBatch(ctx, endpoint)
		if err == nil {
			return listings, nil
		}
		lastErr = err

		if errors.Is(err, domain.ErrPermanentFetch) {
			return nil, err
		}
		if attempt == s.cfg.Retry.MaxAttempts {
			break
		}

		backoff := s.cfg.Retry.Backoff
		if errors.Is(err, domain.ErrRateLimited) {
			backoff = s.cfg.Retry.RateLimitCooldown
		}

		s.logger.Warn("fetch failed, retrying",
			"endpoint", endpoint,
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}

	return nil, fmt.Errorf("after %d attempts: %w", s.cfg.Retry.MaxAttempts, lastErr)
}

func (s *WatchService) processListing(ctx context.Context, l *domain.Listing, stats *domain.CycleStats) {
	stats.Scanned++

	seen, err := s.items.Exists(ctx, l.ID)
	if err != nil {
		s.logger.Error("existence check failed", "listing_id", l.ID, "error", err)
		stats.Errors++
		return
	}
	if seen {
		stats.Skipped++
		return
	}

	verdict := s.classifier.Classify(*l)
	rec := s.buildRecord(l, verdict)

	inserted, err := s.items.Insert(ctx, rec)
	if err != nil {
		// Not durably recorded: dispatching now could notify twice once a
		// later cycle retries the write. Skip the item entirely.
		s.logger.Error("persist failed", "listing_id", l.ID, "error", err)
		stats.Errors++
		return
	}

	if !verdict.Approved {
		s.logger.Debug("listing rejected", "listing_id", l.ID, "reason", verdict.Reason)
		stats.Rejected++
		return
	}
	stats.Approved++
	s.logger.Info("listing approved", "listing_id", l.ID, "team", verdict.Team, "brand", verdict.Brand)

	if !inserted {
		// Another lane recorded (and notified) this listing first.
		s.logger.Debug("listing already recorded by a concurrent lane", "listing_id", l.ID)
		return
	}
	if s.dispatcher == nil {
		return
	}

	for channel, outcome := range s.dispatcher.Dispatch(ctx, rec) {
		if outcome != notifier.OutcomeDelivered {
			continue
		}
		if _, err := s.notifications.Record(ctx, l.ID, channel); err != nil {
			s.logger.Error("record notification failed",
				"listing_id", l.ID,
				"channel", channel,
				"error", err,
			)
			stats.Errors++
			continue
		}
		stats.Notified++
	}
}

func (s *WatchService) buildRecord(l *domain.Listing, v domain.Verdict) *domain.ItemRecord {
	rec := &domain.ItemRecord{
		ListingID:   l.ID,
		Title:       l.Title,
		Price:       l.Price,
		URL:         l.URL,
		Status:      domain.StatusRejected,
		FirstSeenAt: time.Now().UTC(),
		ListedAt:    l.CreatedAt,
	}
	if l.Size != "" {
		rec.Size = &l.Size
	}
	if l.Condition != "" {
		rec.Condition = &l.Condition
	}
	if l.ImageURL != "" {
		rec.ImageURL = &l.ImageURL
	}

	if v.Approved {
		rec.Status = domain.StatusApproved
		rec.Team = &v.Team
		if v.Brand != "" {
			rec.Brand = &v.Brand
		}
		return rec
	}

	rec.Reason = &v.Reason
	// Brand is informational: extracted even for rejected items.
	if brand := s.classifier.Brand(l.Title, l.Description); brand != "" {
		rec.Brand = &brand
	}
	return rec
}

func (s *WatchService) updateWatchState(ctx context.Context, stats *domain.CycleStats) {
	if s.watchState == nil {
		return
	}

	state, err := s.watchState.Get(ctx, s.source.ID())
	if err != nil {
		s.logger.Warn("load watch state failed", "error", err)
		return
	}

	state.SourceID = s.source.ID()
	state.LastCycleAt = time.Now().UTC()
	state.TotalScanned += int64(stats.Scanned)
	state.TotalApproved += int64(stats.Approved)

	if err := s.watchState.Update(ctx, state); err != nil {
		s.logger.Warn("update watch state failed", "error", err)
	}
}

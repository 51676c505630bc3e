// Package notifier fans an approved item out to the configured notification
// channels. Channels are independent: one failing never blocks the others.
package notifier

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"tracksuit_watcher/internal/domain"
)

// Outcome classifies one delivery attempt.
type Outcome string

const (
	OutcomeDelivered   Outcome = "delivered"
	OutcomeRateLimited Outcome = "rate_limited"
	OutcomeFailed      Outcome = "failed"
)

// Channel is one notification transport. Send either delivers the item or
// returns an error; a rate-limit refusal wraps domain.ErrRateLimited.
type Channel interface {
	Name() string
	Send(ctx context.Context, item *domain.ItemRecord) error
}

type Dispatcher struct {
	channels []Channel
	logger   *slog.Logger
}

func NewDispatcher(channels []Channel, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		channels: channels,
		logger:   logger,
	}
}

// Dispatch attempts delivery on every channel concurrently and reports one
// outcome per channel name. It is invoked at most once per item per cycle;
// recording delivered channels is the caller's job.
func (d *Dispatcher) Dispatch(ctx context.Context, item *domain.ItemRecord) map[string]Outcome {
	results := make(map[string]Outcome, len(d.channels))

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, ch := range d.channels {
		wg.Add(1)
		go func(ch Channel) {
			defer wg.Done()

			outcome := OutcomeDelivered
			if err := ch.Send(ctx, item); err != nil {
				outcome = OutcomeFailed
				if errors.Is(err, domain.ErrRateLimited) {
					outcome = OutcomeRateLimited
				}
				d.logger.Error("notification failed",
					"channel", ch.Name(),
					"listing_id", item.ListingID,
					"outcome", outcome,
					"error", err,
				)
			} else {
				d.logger.Info("notification sent",
					"channel", ch.Name(),
					"listing_id", item.ListingID,
				)
			}

			mu.Lock()
			results[ch.Name()] = outcome
			mu.Unlock()
		}(ch)
	}
	wg.Wait()

	return results
}

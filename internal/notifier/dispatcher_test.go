package notifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracksuit_watcher/internal/domain"
	"tracksuit_watcher/testdata/utils"
)

type fakeChannel struct {
	name  string
	err   error
	calls atomic.Int32
}

func (f *fakeChannel) Name() string { return f.name }

func (f *fakeChannel) Send(ctx context.Context, item *domain.ItemRecord) error {
	f.calls.Add(1)
	return f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func approvedItem() *domain.ItemRecord {
	return &domain.ItemRecord{
		ListingID: "12345",
		Title:     "Tuta calcio Nike Inter",
		Price:     utils.Ptr(35.0),
		Team:      utils.Ptr("inter"),
		Brand:     utils.Ptr("nike"),
		Size:      utils.Ptr("XL"),
		URL:       "https://www.vinted.it/items/12345",
		Status:    domain.StatusApproved,
	}
}

func TestDispatch_AllDelivered(t *testing.T) {
	a := &fakeChannel{name: "discord"}
	b := &fakeChannel{name: "telegram"}
	d := NewDispatcher([]Channel{a, b}, testLogger())

	outcomes := d.Dispatch(context.Background(), approvedItem())

	assert.Equal(t, map[string]Outcome{
		"discord":  OutcomeDelivered,
		"telegram": OutcomeDelivered,
	}, outcomes)
	assert.Equal(t, int32(1), a.calls.Load())
	assert.Equal(t, int32(1), b.calls.Load())
}

func TestDispatch_FailureIsolatedPerChannel(t *testing.T) {
	failing := &fakeChannel{name: "discord", err: errors.New("boom")}
	healthy := &fakeChannel{name: "telegram"}
	d := NewDispatcher([]Channel{failing, healthy}, testLogger())

	outcomes := d.Dispatch(context.Background(), approvedItem())

	assert.Equal(t, OutcomeFailed, outcomes["discord"])
	assert.Equal(t, OutcomeDelivered, outcomes["telegram"])
	assert.Equal(t, int32(1), healthy.calls.Load())
}

func TestDispatch_RateLimitedOutcome(t *testing.T) {
	limited := &fakeChannel{name: "telegram", err: fmt.Errorf("sendMessage: %w", domain.ErrRateLimited)}
	d := NewDispatcher([]Channel{limited}, testLogger())

	outcomes := d.Dispatch(context.Background(), approvedItem())

	assert.Equal(t, OutcomeRateLimited, outcomes["telegram"])
}

func TestDispatch_NoChannels(t *testing.T) {
	d := NewDispatcher(nil, testLogger())

	outcomes := d.Dispatch(context.Background(), approvedItem())
	require.Empty(t, outcomes)
}

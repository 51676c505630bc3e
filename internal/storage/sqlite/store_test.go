package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/suite"

	"tracksuit_watcher/internal/domain"
	"tracksuit_watcher/testdata/utils"
)

type SQLiteStoreSuite struct {
	suite.Suite
	ctx context.Context
	db  *sqlx.DB
}

func (s *SQLiteStoreSuite) SetupTest() {
	s.ctx = context.Background()

	db, err := Open(filepath.Join(s.T().TempDir(), "watcher.db"))
	s.Require().NoError(err)
	s.Require().NoError(Migrate(db))
	s.db = db
}

func (s *SQLiteStoreSuite) TearDownTest() {
	if s.db != nil {
		s.db.Close()
	}
}

func TestSQLiteStoreSuite(t *testing.T) {
	suite.Run(t, new(SQLiteStoreSuite))
}

func (s *SQLiteStoreSuite) record(id string) *domain.ItemRecord {
	return &domain.ItemRecord{
		ListingID:   id,
		Title:       "Tuta calcio Nike Inter",
		Price:       utils.Ptr(35.0),
		Team:        utils.Ptr("inter"),
		Brand:       utils.Ptr("nike"),
		Size:        utils.Ptr("XL"),
		URL:         "https://www.vinted.it/items/" + id,
		Status:      domain.StatusApproved,
		FirstSeenAt: time.Now().UTC().Truncate(time.Second),
	}
}

func (s *SQLiteStoreSuite) TestItemStore_InsertThenExists() {
	store := NewItemStore(s.db)

	exists, err := store.Exists(s.ctx, "100")
	s.NoError(err)
	s.False(exists)

	inserted, err := store.Insert(s.ctx, s.record("100"))
	s.NoError(err)
	s.True(inserted)

	exists, err = store.Exists(s.ctx, "100")
	s.NoError(err)
	s.True(exists)
}

func (s *SQLiteStoreSuite) TestItemStore_DuplicateInsertIsNoOp() {
	store := NewItemStore(s.db)

	inserted, err := store.Insert(s.ctx, s.record("100"))
	s.NoError(err)
	s.True(inserted)

	// Second insert with the same identifier: no error, nothing written,
	// first classification wins.
	second := s.record("100")
	second.Title = "Different title"
	second.Status = domain.StatusRejected
	second.Reason = utils.Ptr(domain.ReasonTeamNotApproved)

	inserted, err = store.Insert(s.ctx, second)
	s.NoError(err)
	s.False(inserted)

	var count int
	s.NoError(s.db.GetContext(s.ctx, &count, "SELECT COUNT(*) FROM items WHERE listing_id = ?", "100"))
	s.Equal(1, count)

	rec, err := store.Get(s.ctx, "100")
	s.NoError(err)
	s.Equal("Tuta calcio Nike Inter", rec.Title)
	s.Equal(domain.StatusApproved, rec.Status)
}

func (s *SQLiteStoreSuite) TestItemStore_RejectedRecordRoundTrip() {
	store := NewItemStore(s.db)

	rec := s.record("200")
	rec.Status = domain.StatusRejected
	rec.Reason = utils.Ptr(domain.ReasonForbiddenKeyword)
	rec.Team = nil

	inserted, err := store.Insert(s.ctx, rec)
	s.NoError(err)
	s.True(inserted)

	got, err := store.Get(s.ctx, "200")
	s.NoError(err)
	s.Equal(domain.StatusRejected, got.Status)
	s.Require().NotNil(got.Reason)
	s.Equal(domain.ReasonForbiddenKeyword, *got.Reason)
	s.Nil(got.Team)
	s.Require().NotNil(got.Brand)
	s.Equal("nike", *got.Brand)
}

func (s *SQLiteStoreSuite) TestNotificationStore_AtMostOncePerChannel() {
	store := NewNotificationStore(s.db)

	recorded, err := store.Record(s.ctx, "100", "discord")
	s.NoError(err)
	s.True(recorded)

	recorded, err = store.Record(s.ctx, "100", "discord")
	s.NoError(err)
	s.False(recorded)

	// Channels are independent.
	recorded, err = store.Record(s.ctx, "100", "telegram")
	s.NoError(err)
	s.True(recorded)

	var count int
	s.NoError(s.db.GetContext(s.ctx, &count, "SELECT COUNT(*) FROM notifications WHERE listing_id = ?", "100"))
	s.Equal(2, count)
}

func (s *SQLiteStoreSuite) TestNotificationStore_WasNotified() {
	store := NewNotificationStore(s.db)

	notified, err := store.WasNotified(s.ctx, "100", "discord")
	s.NoError(err)
	s.False(notified)

	_, err = store.Record(s.ctx, "100", "discord")
	s.NoError(err)

	notified, err = store.WasNotified(s.ctx, "100", "discord")
	s.NoError(err)
	s.True(notified)

	notified, err = store.WasNotified(s.ctx, "100", "telegram")
	s.NoError(err)
	s.False(notified)
}

func (s *SQLiteStoreSuite) TestWatchStateStore_FreshThenUpdate() {
	store := NewWatchStateStore(s.db)

	state, err := store.Get(s.ctx, "vinted")
	s.NoError(err)
	s.True(state.LastCycleAt.IsZero())
	s.Equal(int64(0), state.TotalScanned)

	state.LastCycleAt = time.Now().UTC().Truncate(time.Second)
	state.TotalScanned = 30
	state.TotalApproved = 2
	s.NoError(store.Update(s.ctx, state))

	got, err := store.Get(s.ctx, "vinted")
	s.NoError(err)
	s.Equal(int64(30), got.TotalScanned)
	s.Equal(int64(2), got.TotalApproved)

	got.TotalScanned = 60
	s.NoError(store.Update(s.ctx, got))

	got, err = store.Get(s.ctx, "vinted")
	s.NoError(err)
	s.Equal(int64(60), got.TotalScanned)
}

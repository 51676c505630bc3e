package vinted

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracksuit_watcher/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestSource() *Source {
	return New(Config{
		SearchText: "tuta calcio",
		PerPage:    30,
		Timeout:    2 * time.Second,
	}, testLogger())
}

func TestFetchBatch_TransformsListings(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"search_text": r.URL.Query().Get("search_text"),
			"order":       r.URL.Query().Get("order"),
			"per_page":    r.URL.Query().Get("per_page"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"items": [
				{
					"id": 12345,
					"title": "Tuta calcio Nike Inter",
					"description": "Completo felpa e pantalone",
					"price": "35.50",
					"size_title": "XL",
					"status": "Ottime condizioni",
					"photo": {"full_size_url": "https://img.example/12345.jpg"},
					"created_at_ts": 1700000000
				},
				{
					"id": 67890,
					"title": "Solo pantalone",
					"url": "https://www.vinted.it/items/67890"
				}
			]
		}`))
	}))
	defer srv.Close()

	listings, err := newTestSource().FetchBatch(context.Background(), srv.URL+"/api/v2/catalog/items")
	require.NoError(t, err)
	require.Len(t, listings, 2)

	assert.Equal(t, "tuta calcio", gotQuery["search_text"])
	assert.Equal(t, "newest_first", gotQuery["order"])
	assert.Equal(t, "30", gotQuery["per_page"])

	first := listings[0]
	assert.Equal(t, "12345", first.ID)
	assert.Equal(t, "Tuta calcio Nike Inter", first.Title)
	assert.Equal(t, "XL", first.Size)
	assert.Equal(t, "Ottime condizioni", first.Condition)
	require.NotNil(t, first.Price)
	assert.InDelta(t, 35.50, *first.Price, 0.001)
	assert.Equal(t, "https://img.example/12345.jpg", first.ImageURL)
	require.NotNil(t, first.CreatedAt)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), *first.CreatedAt)
	// URL built from the endpoint when the API omits it
	assert.Equal(t, srv.URL+"/items/12345", first.URL)

	second := listings[1]
	assert.Equal(t, "https://www.vinted.it/items/67890", second.URL)
	assert.Nil(t, second.Price)
	assert.Nil(t, second.CreatedAt)
}

func TestFetchBatch_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestSource().FetchBatch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRateLimited)
}

func TestFetchBatch_PermanentOnClientError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestSource().FetchBatch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPermanentFetch)
}

func TestFetchBatch_TransientOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestSource().FetchBatch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrRateLimited)
	assert.NotErrorIs(t, err, domain.ErrPermanentFetch)
}

func TestFetchBatch_TransientOnMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	_, err := newTestSource().FetchBatch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrPermanentFetch)
}

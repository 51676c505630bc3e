package vinted

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"tracksuit_watcher/internal/domain"
)

const (
	SourceID   = "vinted"
	SourceName = "Vinted catalog"
)

// Config holds catalog search parameters shared by every endpoint.
type Config struct {
	SearchText string
	PerPage    int
	Timeout    time.Duration
}

// Source fetches catalog listings from one or more regional Vinted endpoints.
// It does a single fetch per call; retry policy belongs to the caller.
type Source struct {
	httpClient *http.Client
	searchText string
	perPage    int
	logger     *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Source {
	return &Source{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		searchText: cfg.SearchText,
		perPage:    cfg.PerPage,
		logger:     logger.With("source", SourceID),
	}
}

// ID returns the source identifier.
func (s *Source) ID() string {
	return SourceID
}

// Name returns the human-readable name.
func (s *Source) Name() string {
	return SourceName
}

// FetchBatch fetches the newest listings from one endpoint. Errors are
// classified for the caller's backoff choice: HTTP 429 wraps
// domain.ErrRateLimited, client errors other than 401 wrap
// domain.ErrPermanentFetch, and everything else (timeouts, 401, 5xx, decode
// failures) is transient.
func (s *Source) FetchBatch(ctx context.Context, endpoint string) ([]domain.Listing, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", domain.ErrPermanentFetch)
	}

	q := u.Query()
	q.Set("search_text", s.searchText)
	q.Set("order", "newest_first")
	q.Set("per_page", strconv.Itoa(s.perPage))
	q.Set("page", "1")
	q.Set("currency", "EUR")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	// The catalog API rejects non-browser clients.
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Accept-Language", "it-IT,it;q=0.9,en-US;q=0.8,en;q=0.7")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("endpoint %s: %w", u.Host, domain.ErrRateLimited)
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode >= 500:
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	default:
		return nil, fmt.Errorf("status %d: %w", resp.StatusCode, domain.ErrPermanentFetch)
	}

	var apiResp APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	s.logger.Debug("fetched batch",
		"endpoint", u.Host,
		"items", len(apiResp.Items),
	)

	return s.transform(u, apiResp.Items), nil
}

func (s *Source) transform(endpoint *url.URL, items []Item) []domain.Listing {
	listings := make([]domain.Listing, 0, len(items))

	for _, it := range items {
		listing := domain.Listing{
			ID:          strconv.FormatInt(it.ID, 10),
			Title:       it.Title,
			Description: it.Description,
			Size:        it.SizeTitle,
			Condition:   it.Status,
			URL:         it.URL,
		}

		if listing.URL == "" {
			listing.URL = fmt.Sprintf("%s://%s/items/%d", endpoint.Scheme, endpoint.Host, it.ID)
		}

		if it.Price != "" {
			if price, err := it.Price.Float64(); err == nil {
				listing.Price = &price
			} else {
				s.logger.Warn("failed to parse price",
					"external_id", it.ID,
					"price", it.Price.String(),
				)
			}
		}

		if it.Photo != nil && it.Photo.FullSizeURL != "" {
			listing.ImageURL = it.Photo.FullSizeURL
		}

		if it.CreatedAtTS > 0 {
			createdAt := time.Unix(it.CreatedAtTS, 0).UTC()
			listing.CreatedAt = &createdAt
		}

		listings = append(listings, listing)
	}

	return listings
}

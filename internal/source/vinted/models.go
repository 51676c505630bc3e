package vinted

import "encoding/json"

// APIResponse represents one page of the Vinted catalog API.
type APIResponse struct {
	Items []Item `json:"items"`
}

type Item struct {
	ID          int64       `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Price       json.Number `json:"price"`
	SizeTitle   string      `json:"size_title"`
	Status      string      `json:"status"` // seller-declared condition
	URL         string      `json:"url"`
	Photo       *Photo      `json:"photo"`
	CreatedAtTS int64       `json:"created_at_ts"`
}

type Photo struct {
	FullSizeURL string `json:"full_size_url"`
}

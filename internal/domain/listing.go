package domain

import "time"

// Listing is one raw marketplace item as returned by a source. All fields
// except ID and Title may be absent.
type Listing struct {
	ID          string
	Title       string
	Description string
	Size        string
	Condition   string
	Price       *float64
	URL         string
	ImageURL    string
	CreatedAt   *time.Time
}

// Verdict is the outcome of classifying a single listing. Team and Brand are
// set only when the listing is approved.
type Verdict struct {
	Approved bool
	Reason   string
	Team     string
	Brand    string
}

// Classification reasons. Approved verdicts carry ReasonValid; every
// rejection reason names the first rule that failed.
const (
	ReasonValid                  = "valid"
	ReasonForbiddenKeyword       = "forbidden keyword"
	ReasonIncompleteSet          = "incomplete set"
	ReasonSizeNotAllowed         = "size not allowed"
	ReasonTeamNotApproved        = "team not approved"
	ReasonConditionNotAcceptable = "condition not acceptable"
)

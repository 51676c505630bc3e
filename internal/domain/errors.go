package domain

import "errors"

// Fetch failures fall into three classes the poll loop treats differently:
// rate-limited errors retry after the configured cool-down, permanent errors
// skip the endpoint for the rest of the cycle, and anything else is transient
// and retries after the normal backoff.
var (
	ErrRateLimited    = errors.New("rate limited")
	ErrPermanentFetch = errors.New("permanent fetch failure")
)

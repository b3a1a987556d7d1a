package model

import "time"

// IdempotencyRecord deduplicates externally triggered state-changing calls.
// A record is reserved before the handler runs and completed with the
// captured response; replays within the TTL return that response as is.
type IdempotencyRecord struct {
	Caller         string
	Route          string
	Key            string
	ResponseStatus *int
	ResponseBody   []byte
	ExpiresAt      time.Time
	CreatedAt      time.Time
}

// Completed reports whether a response has been captured for the record.
func (r *IdempotencyRecord) Completed() bool {
	return r.ResponseStatus != nil
}

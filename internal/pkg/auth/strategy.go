package auth

import "time"

// Strategy issues and verifies bearer tokens identifying acting users.
// Tokens are minted by the external account service with the shared secret;
// this engine only parses them.
type Strategy interface {
	IssueToken(userID int64) (string, error)
	ParseToken(token string) (int64, error)
	Name() string
}

// Options tune token strategies.
type Options struct {
	TTL time.Duration
}

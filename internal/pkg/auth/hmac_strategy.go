package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidToken = errors.New("invalid auth token")

// HMACStrategy verifies bearer tokens presented on the customer-facing
// order API. A token is base64("userID:expiry:signature") where the
// signature is an HMAC-SHA256 over "userID:expiry" with the shared secret.
// The account service mints them with the same secret; IssueToken exists
// for local runs and tests.
type HMACStrategy struct {
	secret []byte
	ttl    time.Duration
}

// NewHMACStrategy builds HMACStrategy with provided secret and options.
func NewHMACStrategy(secret string, opts Options) *HMACStrategy {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &HMACStrategy{secret: []byte(secret), ttl: ttl}
}

// IssueToken generates a signed bearer token for the user.
func (s *HMACStrategy) IssueToken(userID int64) (string, error) {
	payload := fmt.Sprintf("%d:%d", userID, time.Now().Add(s.ttl).Unix())
	token := payload + ":" + s.sign(payload)
	return base64.StdEncoding.EncodeToString([]byte(token)), nil
}

// ParseToken validates the token and returns the encoded user ID.
func (s *HMACStrategy) ParseToken(token string) (int64, error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return 0, ErrInvalidToken
	}

	cut := strings.LastIndex(string(raw), ":")
	if cut < 0 {
		return 0, ErrInvalidToken
	}
	payload, sig := string(raw[:cut]), string(raw[cut+1:])
	if !hmac.Equal([]byte(s.sign(payload)), []byte(sig)) {
		return 0, ErrInvalidToken
	}

	userPart, expiryPart, ok := strings.Cut(payload, ":")
	if !ok {
		return 0, ErrInvalidToken
	}
	userID, err := strconv.ParseInt(userPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	expires, err := strconv.ParseInt(expiryPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	if time.Now().After(time.Unix(expires, 0)) {
		return 0, ErrInvalidToken
	}

	return userID, nil
}

func (s *HMACStrategy) Name() string {
	return "hmac"
}

func (s *HMACStrategy) sign(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

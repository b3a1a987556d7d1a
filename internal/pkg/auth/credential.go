package auth

import "golang.org/x/crypto/bcrypt"

// CredentialVerifier checks a presented pre-shared credential against a
// hash stored in configuration, so the plaintext internal token never sits
// in config files or the environment.
type CredentialVerifier interface {
	Verify(presented string) bool
}

// BcryptCredential verifies credentials against a bcrypt hash.
type BcryptCredential struct {
	hash []byte
}

// NewBcryptCredential wraps a bcrypt hash of the expected credential.
func NewBcryptCredential(hash string) *BcryptCredential {
	return &BcryptCredential{hash: []byte(hash)}
}

// Verify reports whether presented matches the stored hash.
func (c *BcryptCredential) Verify(presented string) bool {
	return bcrypt.CompareHashAndPassword(c.hash, []byte(presented)) == nil
}

// HashCredential produces a bcrypt hash for provisioning and tests.
func HashCredential(credential string) (string, error) {
	encoded, err := bcrypt.GenerateFromPassword([]byte(credential), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"github.com/you/phoneauthsvc/domain"
)

// HashServiceImpl implements domain.Hasher with HMAC-SHA256 over a
// cached key. The same scheme covers OTP codes and refresh tokens so the
// plaintext never reaches storage.
type HashServiceImpl struct {
	keys   *KeyCache
	secret string
}

// NewHashService creates a keyed hash service bound to the shared secret.
func NewHashService(keys *KeyCache, secret string) domain.Hasher {
	return &HashServiceImpl{keys: keys, secret: secret}
}

// Hash implements domain.Hasher.
func (s *HashServiceImpl) Hash(value string) string {
	mac := hmac.New(sha256.New, s.keys.Get(PurposeCredentialHash, s.secret))
	mac.Write([]byte(value))
	return hex.EncodeToString(mac.Sum(nil))
}

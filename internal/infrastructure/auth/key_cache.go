package auth

import "sync/atomic"

// KeyPurpose tags a cached key with its single use. Sign and verify keys
// coincide in value under a symmetric scheme but are cached separately
// per call path.
type KeyPurpose int

const (
	PurposeAccessSign KeyPurpose = iota
	PurposeAccessVerify
	PurposeCredentialHash
	purposeCount
)

type cachedKey struct {
	secret string
	key    []byte
}

// KeyCache holds derived key material per purpose, recomputed only when
// the configured secret changes. Readers never lock; replacement on
// secret rotation is a single atomic pointer swap.
type KeyCache struct {
	slots [purposeCount]atomic.Pointer[cachedKey]
}

// NewKeyCache creates an empty key cache.
func NewKeyCache() *KeyCache {
	return &KeyCache{}
}

// Get returns the key for (purpose, secret), deriving and caching it on
// first use or when the secret differs from the cached one. Secret
// validation is the caller's job; config.Load fails fast on empty secrets.
func (c *KeyCache) Get(purpose KeyPurpose, secret string) []byte {
	if entry := c.slots[purpose].Load(); entry != nil && entry.secret == secret {
		return entry.key
	}

	entry := &cachedKey{secret: secret, key: deriveKey(secret)}
	c.slots[purpose].Store(entry)
	return entry.key
}

// deriveKey turns the configured secret into raw HMAC key material.
func deriveKey(secret string) []byte {
	return []byte(secret)
}

package auth

import (
	"bytes"
	"testing"
)

func TestKeyCache_Get(t *testing.T) {
	cache := NewKeyCache()

	first := cache.Get(PurposeCredentialHash, "secret-a")
	second := cache.Get(PurposeCredentialHash, "secret-a")

	if !bytes.Equal(first, second) {
		t.Error("same (purpose, secret) should return identical key material")
	}
}

func TestKeyCache_SecretRotation(t *testing.T) {
	cache := NewKeyCache()

	before := cache.Get(PurposeAccessSign, "old-secret")
	after := cache.Get(PurposeAccessSign, "new-secret")

	if bytes.Equal(before, after) {
		t.Error("rotated secret should produce different key material")
	}

	// The replacement sticks: the old secret is no longer cached but a
	// call with it still derives the right key.
	again := cache.Get(PurposeAccessSign, "new-secret")
	if !bytes.Equal(after, again) {
		t.Error("rotated key should be served from cache")
	}
	old := cache.Get(PurposeAccessSign, "old-secret")
	if !bytes.Equal(old, before) {
		t.Error("re-deriving the old secret should reproduce its key")
	}
}

func TestKeyCache_PurposesAreIndependent(t *testing.T) {
	cache := NewKeyCache()

	cache.Get(PurposeAccessSign, "secret-a")
	// Rotating one purpose must not disturb another.
	cache.Get(PurposeCredentialHash, "secret-b")

	sign := cache.Get(PurposeAccessSign, "secret-a")
	if !bytes.Equal(sign, deriveKey("secret-a")) {
		t.Error("sign purpose should still hold its own secret")
	}
}

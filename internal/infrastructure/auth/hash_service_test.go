package auth

import "testing"

func TestHashService_Determinism(t *testing.T) {
	hasher := NewHashService(NewKeyCache(), "test-secret")

	first := hasher.Hash("123456")
	second := hasher.Hash("123456")

	if first != second {
		t.Errorf("hashing the same code twice should match: %q vs %q", first, second)
	}
	if first == "123456" {
		t.Error("hash must not equal the plaintext")
	}
	if len(first) != 64 {
		t.Errorf("expected 64 hex characters, got %d", len(first))
	}
}

func TestHashService_SecretChangesOutput(t *testing.T) {
	keys := NewKeyCache()
	hasherA := NewHashService(keys, "secret-a")
	hasherB := NewHashService(keys, "secret-b")

	if hasherA.Hash("123456") == hasherB.Hash("123456") {
		t.Error("different secrets should produce different hashes")
	}
}

func TestHashService_DistinctInputs(t *testing.T) {
	hasher := NewHashService(NewKeyCache(), "test-secret")

	if hasher.Hash("123456") == hasher.Hash("654321") {
		t.Error("different codes should produce different hashes")
	}
}

package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/you/phoneauthsvc/domain"
)

func newJWTServiceForTest(t *testing.T, secret string) *JWTServiceImpl {
	t.Helper()

	svc := NewJWTService(NewKeyCache(), secret, "phoneauthsvc-test")
	return svc.(*JWTServiceImpl)
}

func TestJWTService_SignAndVerify(t *testing.T) {
	svc := newJWTServiceForTest(t, "test-secret")

	token, err := svc.Sign(42, "+919876543210", domain.RoleCustomer, time.Hour)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if len(strings.Split(token, ".")) != 3 {
		t.Fatalf("expected compact three-segment token, got %q", token)
	}

	claims, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("expected user id 42, got %d", claims.UserID)
	}
	if claims.Phone != "+919876543210" {
		t.Errorf("expected phone +919876543210, got %s", claims.Phone)
	}
	if claims.Role != domain.RoleCustomer {
		t.Errorf("expected role customer, got %s", claims.Role)
	}
	if claims.ExpiresAt != claims.IssuedAt+3600 {
		t.Errorf("expected exp = iat + 3600, got iat=%d exp=%d", claims.IssuedAt, claims.ExpiresAt)
	}
}

func TestJWTService_Expired(t *testing.T) {
	svc := newJWTServiceForTest(t, "test-secret")

	token, err := svc.Sign(1, "+919876543210", domain.RoleCustomer, time.Second)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	svc.now = func() time.Time { return time.Now().Add(2 * time.Second) }

	if _, err := svc.Verify(token); err != domain.ErrTokenExpired {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestJWTService_ExpiryCheckedBeforeSignature(t *testing.T) {
	signer := newJWTServiceForTest(t, "secret-a")
	verifier := newJWTServiceForTest(t, "secret-b")

	token, err := signer.Sign(1, "+919876543210", domain.RoleCustomer, time.Second)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	verifier.now = func() time.Time { return time.Now().Add(2 * time.Second) }

	// Even with the wrong key, an expired token is rejected as expired.
	if _, err := verifier.Verify(token); err != domain.ErrTokenExpired {
		t.Errorf("expected ErrTokenExpired before signature verification, got %v", err)
	}
}

func TestJWTService_InvalidSignature(t *testing.T) {
	signer := newJWTServiceForTest(t, "secret-a")
	verifier := newJWTServiceForTest(t, "secret-b")

	token, err := signer.Sign(1, "+919876543210", domain.RoleAdmin, time.Hour)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	if _, err := verifier.Verify(token); err != domain.ErrTokenInvalid {
		t.Errorf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestJWTService_Malformed(t *testing.T) {
	svc := newJWTServiceForTest(t, "test-secret")

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "one segment", token: "abc"},
		{name: "two segments", token: "abc.def"},
		{name: "garbage segments", token: "not.a.jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Verify(tt.token); err != domain.ErrTokenMalformed {
				t.Errorf("expected ErrTokenMalformed, got %v", err)
			}
		})
	}
}

func TestJWTService_TamperedRole(t *testing.T) {
	svc := newJWTServiceForTest(t, "test-secret")

	token, err := svc.Sign(7, "+919876543210", domain.RoleCustomer, time.Hour)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	// Swap the claims segment for a different token's claims; the
	// signature no longer matches.
	other, err := svc.Sign(7, "+919876543210", domain.RoleAdmin, time.Hour)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	parts := strings.Split(token, ".")
	otherParts := strings.Split(other, ".")
	forged := parts[0] + "." + otherParts[1] + "." + parts[2]

	if _, err := svc.Verify(forged); err != domain.ErrTokenInvalid {
		t.Errorf("expected ErrTokenInvalid for forged claims, got %v", err)
	}
}

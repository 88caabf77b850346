package domain

import (
	"context"
	"time"
)

// UserRepository defines user data access operations, keyed by opaque
// user id and normalized phone.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByPhone(ctx context.Context, phone string) (*User, error)
	FindByID(ctx context.Context, id uint) (*User, error)
	UpdateName(ctx context.Context, userID uint, name string) error
	SetActive(ctx context.Context, userID uint, active bool) error
	List(ctx context.Context) ([]*User, error)
}

// OTPRepository defines the OTP ledger. Records are created by issuance
// and mutated by verification; pruning belongs to an external cleanup job.
type OTPRepository interface {
	Create(ctx context.Context, rec *OTPRecord) error
	// FindLive returns the newest unverified, unexpired record for the
	// phone with attempts < maxAttempts, or ErrOTPRecordNotFound.
	FindLive(ctx context.Context, phone string, maxAttempts int, now time.Time) (*OTPRecord, error)
	// IncrementAttempts bumps the attempt counter atomically.
	IncrementAttempts(ctx context.Context, id uint) error
	// MarkVerified flips verified=false -> true iff the record is still
	// under the attempt limit; returns ErrOTPRecordNotFound when a
	// concurrent verify already consumed it.
	MarkVerified(ctx context.Context, id uint, maxAttempts int) error
	// MarkAllVerified supersedes every pending record for the phone.
	MarkAllVerified(ctx context.Context, phone string) error
	UpdateDelivery(ctx context.Context, id uint, status, providerRequestID string) error
}

// RefreshTokenRepository defines the one-time-use refresh token store.
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *RefreshToken) error
	FindByHash(ctx context.Context, tokenHash string) (*RefreshToken, error)
	// Rotate revokes the presented record and inserts its successor in a
	// single transaction. It returns ErrTokenRevoked when the record was
	// already consumed by a competing rotation.
	Rotate(ctx context.Context, presentedID uint, successor *RefreshToken) error
	Revoke(ctx context.Context, id uint) error
	// RevokeAllForUser revokes every active token for the user.
	RevokeAllForUser(ctx context.Context, userID uint) error
}

// RateLimiter is the external rate-limit collaborator. allowed=false is
// fail-closed for the credential flow.
type RateLimiter interface {
	CheckIPLimit(ctx context.Context, ip string) (*IPRateDecision, error)
	CheckPhoneLimit(ctx context.Context, phone string) (*PhoneRateDecision, error)
}

// TestCodeLookup resolves fixed OTP codes for deterministic QA accounts.
type TestCodeLookup interface {
	GetFixedCode(ctx context.Context, phone string) (string, error)
}

// SMSService dispatches a plaintext code out-of-band. Dispatch failure
// must not fail issuance; it is reported through SMSResult.
type SMSService interface {
	SendOTP(ctx context.Context, phone, code string) SMSResult
}

// TokenService signs and verifies self-contained access tokens.
// Verification is a pure function of the token and the shared secret.
type TokenService interface {
	Sign(userID uint, phone string, role Role, ttl time.Duration) (string, error)
	Verify(token string) (*TokenClaims, error)
}

// Hasher computes the keyed hash used for OTP codes and refresh tokens.
type Hasher interface {
	Hash(value string) string
}

// OTPService is the send-OTP flow.
type OTPService interface {
	Issue(ctx context.Context, phone, clientIP, userAgent string) (*OTPIssueResult, error)
}

// AuthService is the login/refresh credential flow orchestrator.
type AuthService interface {
	VerifyOTP(ctx context.Context, phone, code, name string) (*Credentials, error)
	Refresh(ctx context.Context, refreshToken string) (*Credentials, error)
	Logout(ctx context.Context, userID uint) error
	GetUserProfile(ctx context.Context, userID uint) (*User, error)
}

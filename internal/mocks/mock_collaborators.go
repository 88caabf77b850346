package mocks

import (
	"context"
	"time"

	"github.com/you/phoneauthsvc/domain"
)

// MockRateLimiter implements domain.RateLimiter interface for testing
type MockRateLimiter struct {
	CheckIPLimitFunc    func(ctx context.Context, ip string) (*domain.IPRateDecision, error)
	CheckPhoneLimitFunc func(ctx context.Context, phone string) (*domain.PhoneRateDecision, error)
}

// NewMockRateLimiter creates a new MockRateLimiter with default behaviors
func NewMockRateLimiter() *MockRateLimiter {
	return &MockRateLimiter{}
}

// CheckIPLimit checks the caller-IP-scoped limit
func (m *MockRateLimiter) CheckIPLimit(ctx context.Context, ip string) (*domain.IPRateDecision, error) {
	if m.CheckIPLimitFunc != nil {
		return m.CheckIPLimitFunc(ctx, ip)
	}
	// Default behavior: allowed
	return &domain.IPRateDecision{Allowed: true, Remaining: 99}, nil
}

// CheckPhoneLimit checks the phone-scoped limit
func (m *MockRateLimiter) CheckPhoneLimit(ctx context.Context, phone string) (*domain.PhoneRateDecision, error) {
	if m.CheckPhoneLimitFunc != nil {
		return m.CheckPhoneLimitFunc(ctx, phone)
	}
	// Default behavior: allowed
	return &domain.PhoneRateDecision{Allowed: true, HourlyRemaining: 39, DailyRemaining: 19}, nil
}

// MockTestCodeLookup implements domain.TestCodeLookup interface for testing
type MockTestCodeLookup struct {
	GetFixedCodeFunc func(ctx context.Context, phone string) (string, error)
}

// NewMockTestCodeLookup creates a new MockTestCodeLookup with default behaviors
func NewMockTestCodeLookup() *MockTestCodeLookup {
	return &MockTestCodeLookup{}
}

// GetFixedCode resolves a fixed QA code for the phone
func (m *MockTestCodeLookup) GetFixedCode(ctx context.Context, phone string) (string, error) {
	if m.GetFixedCodeFunc != nil {
		return m.GetFixedCodeFunc(ctx, phone)
	}
	// Default behavior: no fixed code
	return "", domain.ErrTestCodeNotFound
}

// MockSMSService implements domain.SMSService interface for testing
type MockSMSService struct {
	SendOTPFunc func(ctx context.Context, phone, code string) domain.SMSResult

	// SentTo records dispatch targets for assertions.
	SentTo []string
}

// NewMockSMSService creates a new MockSMSService with default behaviors
func NewMockSMSService() *MockSMSService {
	return &MockSMSService{}
}

// SendOTP dispatches a code out-of-band
func (m *MockSMSService) SendOTP(ctx context.Context, phone, code string) domain.SMSResult {
	m.SentTo = append(m.SentTo, phone)
	if m.SendOTPFunc != nil {
		return m.SendOTPFunc(ctx, phone, code)
	}
	// Default behavior: delivered
	return domain.SMSResult{Success: true, ProviderRequestID: "mock-request"}
}

// MockTokenService implements domain.TokenService interface for testing
type MockTokenService struct {
	SignFunc   func(userID uint, phone string, role domain.Role, ttl time.Duration) (string, error)
	VerifyFunc func(token string) (*domain.TokenClaims, error)
}

// NewMockTokenService creates a new MockTokenService with default behaviors
func NewMockTokenService() *MockTokenService {
	return &MockTokenService{}
}

// Sign produces an access token
func (m *MockTokenService) Sign(userID uint, phone string, role domain.Role, ttl time.Duration) (string, error) {
	if m.SignFunc != nil {
		return m.SignFunc(userID, phone, role, ttl)
	}
	// Default behavior: opaque test token
	return "test-access-token", nil
}

// Verify checks an access token
func (m *MockTokenService) Verify(token string) (*domain.TokenClaims, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(token)
	}
	// Default behavior: invalid
	return nil, domain.ErrTokenInvalid
}

// MockHasher implements domain.Hasher interface for testing
type MockHasher struct {
	HashFunc func(value string) string
}

// NewMockHasher creates a new MockHasher with default behaviors
func NewMockHasher() *MockHasher {
	return &MockHasher{}
}

// Hash computes the keyed hash of a value
func (m *MockHasher) Hash(value string) string {
	if m.HashFunc != nil {
		return m.HashFunc(value)
	}
	// Default behavior: reversible marker, good enough for equality checks
	return "hashed:" + value
}

// Compile-time interface compliance verification
var (
	_ domain.RateLimiter    = (*MockRateLimiter)(nil)
	_ domain.TestCodeLookup = (*MockTestCodeLookup)(nil)
	_ domain.SMSService     = (*MockSMSService)(nil)
	_ domain.TokenService   = (*MockTokenService)(nil)
	_ domain.Hasher         = (*MockHasher)(nil)
)

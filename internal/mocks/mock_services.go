package mocks

import (
	"context"

	"github.com/you/phoneauthsvc/domain"
)

// MockOTPService implements domain.OTPService interface for testing
type MockOTPService struct {
	IssueFunc func(ctx context.Context, phone, clientIP, userAgent string) (*domain.OTPIssueResult, error)
}

// NewMockOTPService creates a new MockOTPService with default behaviors
func NewMockOTPService() *MockOTPService {
	return &MockOTPService{}
}

// Issue generates and dispatches an OTP
func (m *MockOTPService) Issue(ctx context.Context, phone, clientIP, userAgent string) (*domain.OTPIssueResult, error) {
	if m.IssueFunc != nil {
		return m.IssueFunc(ctx, phone, clientIP, userAgent)
	}
	// Default behavior: issued
	return &domain.OTPIssueResult{ExpiresIn: 300, HourlyRemaining: 39, DailyRemaining: 19}, nil
}

// MockAuthService implements domain.AuthService interface for testing
type MockAuthService struct {
	VerifyOTPFunc      func(ctx context.Context, phone, code, name string) (*domain.Credentials, error)
	RefreshFunc        func(ctx context.Context, refreshToken string) (*domain.Credentials, error)
	LogoutFunc         func(ctx context.Context, userID uint) error
	GetUserProfileFunc func(ctx context.Context, userID uint) (*domain.User, error)
}

// NewMockAuthService creates a new MockAuthService with default behaviors
func NewMockAuthService() *MockAuthService {
	return &MockAuthService{}
}

// VerifyOTP verifies a code and issues credentials
func (m *MockAuthService) VerifyOTP(ctx context.Context, phone, code, name string) (*domain.Credentials, error) {
	if m.VerifyOTPFunc != nil {
		return m.VerifyOTPFunc(ctx, phone, code, name)
	}
	// Default behavior: rejected
	return nil, domain.ErrOTPExpired
}

// Refresh rotates a refresh token
func (m *MockAuthService) Refresh(ctx context.Context, refreshToken string) (*domain.Credentials, error) {
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx, refreshToken)
	}
	// Default behavior: rejected
	return nil, domain.ErrTokenInvalid
}

// Logout revokes the user's refresh tokens
func (m *MockAuthService) Logout(ctx context.Context, userID uint) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, userID)
	}
	// Default behavior: success
	return nil
}

// GetUserProfile returns the user's profile
func (m *MockAuthService) GetUserProfile(ctx context.Context, userID uint) (*domain.User, error) {
	if m.GetUserProfileFunc != nil {
		return m.GetUserProfileFunc(ctx, userID)
	}
	// Default behavior: not found
	return nil, domain.ErrUserNotFound
}

// Compile-time interface compliance verification
var (
	_ domain.OTPService  = (*MockOTPService)(nil)
	_ domain.AuthService = (*MockAuthService)(nil)
)

package mocks

import (
	"context"
	"time"

	"github.com/you/phoneauthsvc/domain"
)

// MockOTPRepository implements domain.OTPRepository interface for testing
type MockOTPRepository struct {
	CreateFunc            func(ctx context.Context, rec *domain.OTPRecord) error
	FindLiveFunc          func(ctx context.Context, phone string, maxAttempts int, now time.Time) (*domain.OTPRecord, error)
	IncrementAttemptsFunc func(ctx context.Context, id uint) error
	MarkVerifiedFunc      func(ctx context.Context, id uint, maxAttempts int) error
	MarkAllVerifiedFunc   func(ctx context.Context, phone string) error
	UpdateDeliveryFunc    func(ctx context.Context, id uint, status, providerRequestID string) error
}

// NewMockOTPRepository creates a new MockOTPRepository with default behaviors
func NewMockOTPRepository() *MockOTPRepository {
	return &MockOTPRepository{}
}

// Create stores a new OTP record
func (m *MockOTPRepository) Create(ctx context.Context, rec *domain.OTPRecord) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, rec)
	}
	// Default behavior: assign an id
	rec.ID = 1
	return nil
}

// FindLive returns the newest live record for the phone
func (m *MockOTPRepository) FindLive(ctx context.Context, phone string, maxAttempts int, now time.Time) (*domain.OTPRecord, error) {
	if m.FindLiveFunc != nil {
		return m.FindLiveFunc(ctx, phone, maxAttempts, now)
	}
	// Default behavior: not found
	return nil, domain.ErrOTPRecordNotFound
}

// IncrementAttempts bumps the attempt counter
func (m *MockOTPRepository) IncrementAttempts(ctx context.Context, id uint) error {
	if m.IncrementAttemptsFunc != nil {
		return m.IncrementAttemptsFunc(ctx, id)
	}
	// Default behavior: success
	return nil
}

// MarkVerified flips the verified flag
func (m *MockOTPRepository) MarkVerified(ctx context.Context, id uint, maxAttempts int) error {
	if m.MarkVerifiedFunc != nil {
		return m.MarkVerifiedFunc(ctx, id, maxAttempts)
	}
	// Default behavior: success
	return nil
}

// MarkAllVerified supersedes pending records for a phone
func (m *MockOTPRepository) MarkAllVerified(ctx context.Context, phone string) error {
	if m.MarkAllVerifiedFunc != nil {
		return m.MarkAllVerifiedFunc(ctx, phone)
	}
	// Default behavior: success
	return nil
}

// UpdateDelivery records the dispatch outcome
func (m *MockOTPRepository) UpdateDelivery(ctx context.Context, id uint, status, providerRequestID string) error {
	if m.UpdateDeliveryFunc != nil {
		return m.UpdateDeliveryFunc(ctx, id, status, providerRequestID)
	}
	// Default behavior: success
	return nil
}

// Compile-time interface compliance verification
var _ domain.OTPRepository = (*MockOTPRepository)(nil)

package mocks

import (
	"context"

	"github.com/you/phoneauthsvc/domain"
)

// MockRefreshTokenRepository implements domain.RefreshTokenRepository interface for testing
type MockRefreshTokenRepository struct {
	CreateFunc           func(ctx context.Context, token *domain.RefreshToken) error
	FindByHashFunc       func(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)
	RotateFunc           func(ctx context.Context, presentedID uint, successor *domain.RefreshToken) error
	RevokeFunc           func(ctx context.Context, id uint) error
	RevokeAllForUserFunc func(ctx context.Context, userID uint) error
}

// NewMockRefreshTokenRepository creates a new MockRefreshTokenRepository with default behaviors
func NewMockRefreshTokenRepository() *MockRefreshTokenRepository {
	return &MockRefreshTokenRepository{}
}

// Create stores a new refresh token record
func (m *MockRefreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, token)
	}
	// Default behavior: assign an id
	token.ID = 1
	return nil
}

// FindByHash looks a record up by its keyed hash
func (m *MockRefreshTokenRepository) FindByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
	if m.FindByHashFunc != nil {
		return m.FindByHashFunc(ctx, tokenHash)
	}
	// Default behavior: not found
	return nil, domain.ErrTokenInvalid
}

// Rotate revokes the presented record and inserts its successor
func (m *MockRefreshTokenRepository) Rotate(ctx context.Context, presentedID uint, successor *domain.RefreshToken) error {
	if m.RotateFunc != nil {
		return m.RotateFunc(ctx, presentedID, successor)
	}
	// Default behavior: success
	successor.ID = presentedID + 1
	return nil
}

// Revoke marks one record revoked
func (m *MockRefreshTokenRepository) Revoke(ctx context.Context, id uint) error {
	if m.RevokeFunc != nil {
		return m.RevokeFunc(ctx, id)
	}
	// Default behavior: success
	return nil
}

// RevokeAllForUser revokes every active record for the user
func (m *MockRefreshTokenRepository) RevokeAllForUser(ctx context.Context, userID uint) error {
	if m.RevokeAllForUserFunc != nil {
		return m.RevokeAllForUserFunc(ctx, userID)
	}
	// Default behavior: success
	return nil
}

// Compile-time interface compliance verification
var _ domain.RefreshTokenRepository = (*MockRefreshTokenRepository)(nil)

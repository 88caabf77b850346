package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/you/phoneauthsvc/domain"
)

// RefreshTokenRepositoryImpl implements domain.RefreshTokenRepository
// using GORM. Revocation is terminal: records only ever move
// revoked=false -> true, and rotation runs in one transaction so the old
// and new token are never simultaneously active.
type RefreshTokenRepositoryImpl struct {
	db *gorm.DB
}

// DBRefreshToken represents the database model for RefreshToken
type DBRefreshToken struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"index"`
	TokenHash string    `gorm:"uniqueIndex;size:64"`
	ExpiresAt time.Time `gorm:"index"`
	Revoked   bool      `gorm:"index"`
	CreatedAt time.Time
}

// TableName returns the table name for GORM
func (DBRefreshToken) TableName() string {
	return "refresh_tokens"
}

// NewRefreshTokenRepository creates a new refresh token repository
func NewRefreshTokenRepository(db *gorm.DB) domain.RefreshTokenRepository {
	return &RefreshTokenRepositoryImpl{db: db}
}

// Create implements domain.RefreshTokenRepository
func (r *RefreshTokenRepositoryImpl) Create(ctx context.Context, token *domain.RefreshToken) error {
	dbToken := r.domainToDB(token)
	if err := r.db.WithContext(ctx).Create(dbToken).Error; err != nil {
		return err
	}
	token.ID = dbToken.ID
	token.CreatedAt = dbToken.CreatedAt
	return nil
}

// FindByHash implements domain.RefreshTokenRepository
func (r *RefreshTokenRepositoryImpl) FindByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
	var dbToken DBRefreshToken
	err := r.db.WithContext(ctx).Where("token_hash = ?", tokenHash).First(&dbToken).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrTokenInvalid
		}
		return nil, err
	}
	return r.dbToDomain(&dbToken), nil
}

// Rotate implements domain.RefreshTokenRepository
func (r *RefreshTokenRepositoryImpl) Rotate(ctx context.Context, presentedID uint, successor *domain.RefreshToken) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&DBRefreshToken{}).
			Where("id = ? AND revoked = ?", presentedID, false).
			Update("revoked", true)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// A competing rotation already consumed this record.
			return domain.ErrTokenRevoked
		}

		dbSuccessor := r.domainToDB(successor)
		if err := tx.Create(dbSuccessor).Error; err != nil {
			return err
		}
		successor.ID = dbSuccessor.ID
		successor.CreatedAt = dbSuccessor.CreatedAt
		return nil
	})
}

// Revoke implements domain.RefreshTokenRepository
func (r *RefreshTokenRepositoryImpl) Revoke(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&DBRefreshToken{}).
		Where("id = ?", id).
		Update("revoked", true).Error
}

// RevokeAllForUser implements domain.RefreshTokenRepository
func (r *RefreshTokenRepositoryImpl) RevokeAllForUser(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Model(&DBRefreshToken{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		Update("revoked", true).Error
}

// domainToDB converts domain token to database token
func (r *RefreshTokenRepositoryImpl) domainToDB(token *domain.RefreshToken) *DBRefreshToken {
	return &DBRefreshToken{
		ID:        token.ID,
		UserID:    token.UserID,
		TokenHash: token.TokenHash,
		ExpiresAt: token.ExpiresAt,
		Revoked:   token.Revoked,
	}
}

// dbToDomain converts database token to domain token
func (r *RefreshTokenRepositoryImpl) dbToDomain(dbToken *DBRefreshToken) *domain.RefreshToken {
	return &domain.RefreshToken{
		ID:        dbToken.ID,
		UserID:    dbToken.UserID,
		TokenHash: dbToken.TokenHash,
		ExpiresAt: dbToken.ExpiresAt,
		Revoked:   dbToken.Revoked,
		CreatedAt: dbToken.CreatedAt,
	}
}

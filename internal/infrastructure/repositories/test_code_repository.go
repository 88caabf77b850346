package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/you/phoneauthsvc/domain"
)

// TestCodeRepositoryImpl implements domain.TestCodeLookup using GORM.
// Fixed codes let QA accounts log in deterministically in any mode.
type TestCodeRepositoryImpl struct {
	db *gorm.DB
}

// DBTestOTPRecord represents the database model for a fixed test code
type DBTestOTPRecord struct {
	ID        uint   `gorm:"primaryKey"`
	Phone     string `gorm:"uniqueIndex;size:32"`
	Code      string `gorm:"size:16"`
	CreatedAt time.Time
}

// TableName returns the table name for GORM
func (DBTestOTPRecord) TableName() string {
	return "test_otp_records"
}

// NewTestCodeRepository creates a new test code lookup
func NewTestCodeRepository(db *gorm.DB) domain.TestCodeLookup {
	return &TestCodeRepositoryImpl{db: db}
}

// GetFixedCode implements domain.TestCodeLookup
func (r *TestCodeRepositoryImpl) GetFixedCode(ctx context.Context, phone string) (string, error) {
	var rec DBTestOTPRecord
	err := r.db.WithContext(ctx).Where("phone = ?", phone).First(&rec).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", domain.ErrTestCodeNotFound
		}
		return "", err
	}
	return rec.Code, nil
}

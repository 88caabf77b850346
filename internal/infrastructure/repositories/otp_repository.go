package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/you/phoneauthsvc/domain"
)

// OTPRepositoryImpl implements domain.OTPRepository using GORM. Records
// are append-then-mutate: attempts increment and the verified flip are
// single conditional UPDATEs so concurrent verify attempts for one phone
// stay race-free.
type OTPRepositoryImpl struct {
	db *gorm.DB
}

// DBOTPRecord represents the database model for OTPRecord
type DBOTPRecord struct {
	ID                uint      `gorm:"primaryKey"`
	Phone             string    `gorm:"index;size:32"`
	OTPHash           string    `gorm:"size:64"`
	ExpiresAt         time.Time `gorm:"index"`
	Verified          bool      `gorm:"index"`
	Attempts          int
	IPAddress         string `gorm:"size:64"`
	UserAgent         string `gorm:"size:512"`
	DeliveryStatus    string `gorm:"size:32"`
	ProviderRequestID string `gorm:"size:128"`
	CreatedAt         time.Time
}

// TableName returns the table name for GORM
func (DBOTPRecord) TableName() string {
	return "otp_requests"
}

// NewOTPRepository creates a new OTP ledger repository
func NewOTPRepository(db *gorm.DB) domain.OTPRepository {
	return &OTPRepositoryImpl{db: db}
}

// Create implements domain.OTPRepository
func (r *OTPRepositoryImpl) Create(ctx context.Context, rec *domain.OTPRecord) error {
	dbRec := r.domainToDB(rec)
	if err := r.db.WithContext(ctx).Create(dbRec).Error; err != nil {
		return err
	}
	rec.ID = dbRec.ID
	rec.CreatedAt = dbRec.CreatedAt
	return nil
}

// FindLive implements domain.OTPRepository
func (r *OTPRepositoryImpl) FindLive(ctx context.Context, phone string, maxAttempts int, now time.Time) (*domain.OTPRecord, error) {
	var dbRec DBOTPRecord
	err := r.db.WithContext(ctx).
		Where("phone = ? AND verified = ? AND expires_at > ? AND attempts < ?", phone, false, now, maxAttempts).
		Order("created_at DESC").
		First(&dbRec).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrOTPRecordNotFound
		}
		return nil, err
	}
	return r.dbToDomain(&dbRec), nil
}

// IncrementAttempts implements domain.OTPRepository
func (r *OTPRepositoryImpl) IncrementAttempts(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&DBOTPRecord{}).
		Where("id = ? AND verified = ?", id, false).
		UpdateColumn("attempts", gorm.Expr("attempts + 1")).Error
}

// MarkVerified implements domain.OTPRepository
func (r *OTPRepositoryImpl) MarkVerified(ctx context.Context, id uint, maxAttempts int) error {
	result := r.db.WithContext(ctx).Model(&DBOTPRecord{}).
		Where("id = ? AND verified = ? AND attempts < ?", id, false, maxAttempts).
		Update("verified", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// A concurrent verify consumed the record first.
		return domain.ErrOTPRecordNotFound
	}
	return nil
}

// MarkAllVerified implements domain.OTPRepository
func (r *OTPRepositoryImpl) MarkAllVerified(ctx context.Context, phone string) error {
	return r.db.WithContext(ctx).Model(&DBOTPRecord{}).
		Where("phone = ? AND verified = ?", phone, false).
		Update("verified", true).Error
}

// UpdateDelivery implements domain.OTPRepository
func (r *OTPRepositoryImpl) UpdateDelivery(ctx context.Context, id uint, status, providerRequestID string) error {
	return r.db.WithContext(ctx).Model(&DBOTPRecord{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"delivery_status":     status,
			"provider_request_id": providerRequestID,
		}).Error
}

// domainToDB converts domain OTP record to database record
func (r *OTPRepositoryImpl) domainToDB(rec *domain.OTPRecord) *DBOTPRecord {
	return &DBOTPRecord{
		ID:                rec.ID,
		Phone:             rec.Phone,
		OTPHash:           rec.OTPHash,
		ExpiresAt:         rec.ExpiresAt,
		Verified:          rec.Verified,
		Attempts:          rec.Attempts,
		IPAddress:         rec.IPAddress,
		UserAgent:         rec.UserAgent,
		DeliveryStatus:    rec.DeliveryStatus,
		ProviderRequestID: rec.ProviderRequestID,
	}
}

// dbToDomain converts database record to domain OTP record
func (r *OTPRepositoryImpl) dbToDomain(dbRec *DBOTPRecord) *domain.OTPRecord {
	return &domain.OTPRecord{
		ID:                dbRec.ID,
		Phone:             dbRec.Phone,
		OTPHash:           dbRec.OTPHash,
		ExpiresAt:         dbRec.ExpiresAt,
		Verified:          dbRec.Verified,
		Attempts:          dbRec.Attempts,
		IPAddress:         dbRec.IPAddress,
		UserAgent:         dbRec.UserAgent,
		DeliveryStatus:    dbRec.DeliveryStatus,
		ProviderRequestID: dbRec.ProviderRequestID,
		CreatedAt:         dbRec.CreatedAt,
	}
}

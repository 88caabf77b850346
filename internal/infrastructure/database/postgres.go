package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/you/phoneauthsvc/internal/infrastructure/repositories"
)

// Open creates a new database connection.
func Open(dsn string) (*gorm.DB, error) {
	config := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	return gorm.Open(postgres.Open(dsn), config)
}

// AutoMigrate creates the credential tables. OTP records and refresh
// tokens are retained for audit; pruning is an external cleanup job.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&repositories.DBUser{},
		&repositories.DBOTPRecord{},
		&repositories.DBRefreshToken{},
		&repositories.DBTestOTPRecord{},
	); err != nil {
		return fmt.Errorf("failed to migrate credential tables: %w", err)
	}
	return nil
}

package app

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/you/phoneauthsvc/domain"
	"github.com/you/phoneauthsvc/internal/config"
	"github.com/you/phoneauthsvc/internal/infrastructure/auth"
	"github.com/you/phoneauthsvc/internal/infrastructure/database"
	"github.com/you/phoneauthsvc/internal/infrastructure/notifications"
	"github.com/you/phoneauthsvc/internal/infrastructure/ratelimit"
	"github.com/you/phoneauthsvc/internal/infrastructure/repositories"
	"github.com/you/phoneauthsvc/internal/services"
)

// Container holds all dependencies
type Container struct {
	// Config
	Config *config.Config

	// Infrastructure
	DB          *gorm.DB
	RedisClient *redis.Client
	Keys        *auth.KeyCache
	Region      *domain.PhoneRegion

	// Repositories
	UserRepo    domain.UserRepository
	OTPRepo     domain.OTPRepository
	RefreshRepo domain.RefreshTokenRepository
	TestCodes   domain.TestCodeLookup

	// Services
	TokenSvc    domain.TokenService
	Hasher      domain.Hasher
	SMSSvc      domain.SMSService
	RateLimiter domain.RateLimiter
	OTPSvc      domain.OTPService
	AuthSvc     domain.AuthService
}

// NewContainer creates and initializes all dependencies
func NewContainer(cfg *config.Config) (*Container, error) {
	container := &Container{Config: cfg}

	// Initialize infrastructure
	if err := container.initDatabase(); err != nil {
		return nil, err
	}
	if err := container.initRedis(); err != nil {
		return nil, err
	}

	// Initialize repositories
	container.initRepositories()

	// Initialize services
	if err := container.initServices(); err != nil {
		return nil, err
	}

	return container, nil
}

func (c *Container) initDatabase() error {
	db, err := database.Open(c.Config.DSN)
	if err != nil {
		return err
	}
	if err := database.AutoMigrate(db); err != nil {
		return err
	}
	c.DB = db
	return nil
}

func (c *Container) initRedis() error {
	c.RedisClient = database.NewRedis(c.Config.RedisAddr, c.Config.RedisPassword, c.Config.RedisDB).Client
	return nil
}

func (c *Container) initRepositories() {
	c.UserRepo = repositories.NewUserRepository(c.DB)
	c.OTPRepo = repositories.NewOTPRepository(c.DB)
	c.RefreshRepo = repositories.NewRefreshTokenRepository(c.DB)
	c.TestCodes = repositories.NewTestCodeRepository(c.DB)
}

func (c *Container) initServices() error {
	region, err := domain.NewPhoneRegion(c.Config.PhoneCountryCode, c.Config.PhonePattern)
	if err != nil {
		return err
	}
	c.Region = region

	c.Keys = auth.NewKeyCache()
	c.TokenSvc = auth.NewJWTService(c.Keys, c.Config.JWTSecret, c.Config.JWTIssuer)
	c.Hasher = auth.NewHashService(c.Keys, c.Config.OTPSecret)
	c.SMSSvc = notifications.NewTwilioService(c.Config.TwilioSID, c.Config.TwilioToken, c.Config.TwilioFrom)
	c.RateLimiter = ratelimit.NewRedisLimiter(c.RedisClient, ratelimit.Limits{
		IPPerHour:    c.Config.RateLimitIPPerHour,
		PhonePerHour: c.Config.RateLimitPhonePerHour,
		PhonePerDay:  c.Config.RateLimitPhonePerDay,
	})

	c.OTPSvc = services.NewOTPService(
		c.OTPRepo,
		c.RateLimiter,
		c.TestCodes,
		c.SMSSvc,
		c.Hasher,
		c.Region,
		services.OTPConfig{
			Length:         c.Config.OTP_Length,
			TTL:            c.Config.OTP_TTL,
			ProductionMode: c.Config.ProductionMode,
			TestCode:       c.Config.OTPTestCode,
		},
	)

	c.AuthSvc = services.NewAuthService(
		c.UserRepo,
		c.OTPRepo,
		c.RefreshRepo,
		c.TestCodes,
		c.TokenSvc,
		c.Hasher,
		c.Region,
		services.AuthConfig{
			ProductionMode: c.Config.ProductionMode,
			TestCode:       c.Config.OTPTestCode,
			OTPLength:      c.Config.OTP_Length,
			OTPMaxAttempts: c.Config.OTP_MaxAttempts,
			AccessTTL:      c.Config.AccessTTL,
			RefreshTTL:     c.Config.RefreshTTL,
		},
	)

	return nil
}

// Close closes all connections
func (c *Container) Close() error {
	if c.RedisClient != nil {
		c.RedisClient.Close()
	}

	if c.DB != nil {
		sqlDB, err := c.DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}

	return nil
}

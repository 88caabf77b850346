package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/you/phoneauthsvc/domain"
)

// AuthServiceImpl implements domain.AuthService: OTP verification,
// refresh token rotation with reuse detection, and logout.
type AuthServiceImpl struct {
	userRepo    domain.UserRepository
	otpRepo     domain.OTPRepository
	refreshRepo domain.RefreshTokenRepository
	testCodes   domain.TestCodeLookup
	tokenSvc    domain.TokenService
	hasher      domain.Hasher
	region      *domain.PhoneRegion
	config      AuthConfig

	now func() time.Time
}

// AuthConfig carries the verification and token lifetimes.
type AuthConfig struct {
	ProductionMode bool
	TestCode       string
	OTPLength      int
	OTPMaxAttempts int
	AccessTTL      time.Duration
	RefreshTTL     time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo domain.UserRepository,
	otpRepo domain.OTPRepository,
	refreshRepo domain.RefreshTokenRepository,
	testCodes domain.TestCodeLookup,
	tokenSvc domain.TokenService,
	hasher domain.Hasher,
	region *domain.PhoneRegion,
	config AuthConfig,
) domain.AuthService {
	return &AuthServiceImpl{
		userRepo:    userRepo,
		otpRepo:     otpRepo,
		refreshRepo: refreshRepo,
		testCodes:   testCodes,
		tokenSvc:    tokenSvc,
		hasher:      hasher,
		region:      region,
		config:      config,
		now:         time.Now,
	}
}

// VerifyOTP implements domain.AuthService
func (s *AuthServiceImpl) VerifyOTP(ctx context.Context, phone, code, name string) (*domain.Credentials, error) {
	normalized := s.region.Normalize(phone)
	if !s.region.Validate(normalized) {
		return nil, domain.ErrInvalidPhone
	}
	if !isDigits(code) || len(code) != s.config.OTPLength {
		return nil, domain.ErrOTPInvalid
	}

	bypass, err := s.isTestVerification(ctx, normalized, code)
	if err != nil {
		return nil, err
	}

	if bypass {
		// Supersede any pending records so the ledger stays consistent
		// with the bypass.
		if err := s.otpRepo.MarkAllVerified(ctx, normalized); err != nil {
			return nil, fmt.Errorf("failed to supersede otp records: %w", err)
		}
	} else {
		if err := s.verifyAgainstLedger(ctx, normalized, code); err != nil {
			return nil, err
		}
	}

	user, isNew, err := s.resolveIdentity(ctx, normalized, name)
	if err != nil {
		return nil, err
	}

	creds, err := s.issueCredentials(ctx, user)
	if err != nil {
		return nil, err
	}
	creds.IsNewUser = isNew
	return creds, nil
}

// isTestVerification checks the fixed-code and staging bypasses.
func (s *AuthServiceImpl) isTestVerification(ctx context.Context, phone, code string) (bool, error) {
	fixed, err := s.testCodes.GetFixedCode(ctx, phone)
	switch {
	case err == nil:
		if code == fixed {
			log.Printf("OTP_TEST_PHONE_VERIFIED: phone=%s", phone)
			return true, nil
		}
	case !errors.Is(err, domain.ErrTestCodeNotFound):
		return false, fmt.Errorf("test code lookup: %w", err)
	}

	if !s.config.ProductionMode && code == s.config.TestCode {
		log.Printf("OTP_TEST_MODE_VERIFIED: phone=%s", phone)
		return true, nil
	}
	return false, nil
}

// verifyAgainstLedger locates the live record for the phone and either
// consumes it or counts the failed attempt. Expiry and attempt
// exhaustion are deliberately indistinguishable to the caller.
func (s *AuthServiceImpl) verifyAgainstLedger(ctx context.Context, phone, code string) error {
	rec, err := s.otpRepo.FindLive(ctx, phone, s.config.OTPMaxAttempts, s.now())
	if err != nil {
		if errors.Is(err, domain.ErrOTPRecordNotFound) {
			return domain.ErrOTPExpired
		}
		return fmt.Errorf("otp lookup: %w", err)
	}

	if s.hasher.Hash(code) != rec.OTPHash {
		if err := s.otpRepo.IncrementAttempts(ctx, rec.ID); err != nil {
			return fmt.Errorf("failed to count attempt: %w", err)
		}
		remaining := s.config.OTPMaxAttempts - rec.Attempts - 1
		if remaining > 0 {
			return fmt.Errorf("%w: %d attempt(s) remaining", domain.ErrOTPInvalid, remaining)
		}
		return domain.ErrOTPInvalid
	}

	if err := s.otpRepo.MarkVerified(ctx, rec.ID, s.config.OTPMaxAttempts); err != nil {
		if errors.Is(err, domain.ErrOTPRecordNotFound) {
			// Consumed by a concurrent verify.
			return domain.ErrOTPExpired
		}
		return fmt.Errorf("failed to mark otp verified: %w", err)
	}
	return nil
}

// resolveIdentity finds or provisions the user for a verified phone.
// Keyed by phone, it is idempotent no matter how many OTP records exist.
func (s *AuthServiceImpl) resolveIdentity(ctx context.Context, phone, name string) (*domain.User, bool, error) {
	user, err := s.userRepo.FindByPhone(ctx, phone)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, false, fmt.Errorf("user lookup: %w", err)
		}
		user = &domain.User{
			Phone:    phone,
			Name:     name,
			Role:     domain.RoleCustomer,
			Language: "en",
			IsActive: true,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, false, fmt.Errorf("failed to create user: %w", err)
		}
		return user, true, nil
	}

	if !user.IsActive {
		return nil, false, domain.ErrUserInactive
	}

	if name != "" && name != user.Name {
		if err := s.userRepo.UpdateName(ctx, user.ID, name); err != nil {
			return nil, false, fmt.Errorf("failed to update name: %w", err)
		}
		user.Name = name
	}
	return user, false, nil
}

// Refresh implements domain.AuthService: single-use rotation with reuse
// detection. Presenting an already-consumed token revokes the whole
// family before the error is returned.
func (s *AuthServiceImpl) Refresh(ctx context.Context, refreshToken string) (*domain.Credentials, error) {
	if refreshToken == "" {
		return nil, domain.ErrInvalidInput
	}

	rec, err := s.refreshRepo.FindByHash(ctx, s.hasher.Hash(refreshToken))
	if err != nil {
		if errors.Is(err, domain.ErrTokenInvalid) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, fmt.Errorf("refresh token lookup: %w", err)
	}

	if rec.Revoked {
		log.Printf("TOKEN_REUSE_DETECTED: user_id=%d token_id=%d timestamp=%s",
			rec.UserID, rec.ID, s.now().UTC().Format(time.RFC3339))
		if err := s.refreshRepo.RevokeAllForUser(ctx, rec.UserID); err != nil {
			return nil, fmt.Errorf("failed to revoke token family: %w", err)
		}
		return nil, domain.ErrTokenRevoked
	}

	if rec.ExpiresAt.Before(s.now()) {
		if err := s.refreshRepo.Revoke(ctx, rec.ID); err != nil {
			return nil, fmt.Errorf("failed to revoke expired token: %w", err)
		}
		return nil, domain.ErrTokenExpired
	}

	user, err := s.userRepo.FindByID(ctx, rec.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("user lookup: %w", err)
	}

	if !user.IsActive {
		if err := s.refreshRepo.RevokeAllForUser(ctx, user.ID); err != nil {
			return nil, fmt.Errorf("failed to revoke tokens for inactive user: %w", err)
		}
		return nil, domain.ErrUserInactive
	}

	plaintext := mintRefreshPlaintext()
	successor := &domain.RefreshToken{
		UserID:    user.ID,
		TokenHash: s.hasher.Hash(plaintext),
		ExpiresAt: s.now().Add(s.config.RefreshTTL),
		Revoked:   false,
	}
	if err := s.refreshRepo.Rotate(ctx, rec.ID, successor); err != nil {
		if errors.Is(err, domain.ErrTokenRevoked) {
			// Lost the race to a competing rotation: same treatment as
			// any other reuse of a consumed token.
			log.Printf("TOKEN_REUSE_DETECTED: user_id=%d token_id=%d timestamp=%s",
				rec.UserID, rec.ID, s.now().UTC().Format(time.RFC3339))
			if revokeErr := s.refreshRepo.RevokeAllForUser(ctx, rec.UserID); revokeErr != nil {
				return nil, fmt.Errorf("failed to revoke token family: %w", revokeErr)
			}
			return nil, domain.ErrTokenRevoked
		}
		return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}

	accessToken, err := s.tokenSvc.Sign(user.ID, user.Phone, user.Role, s.config.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	return &domain.Credentials{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: plaintext,
	}, nil
}

// Logout implements domain.AuthService by revoking every active refresh
// token for the user.
func (s *AuthServiceImpl) Logout(ctx context.Context, userID uint) error {
	return s.refreshRepo.RevokeAllForUser(ctx, userID)
}

// GetUserProfile implements domain.AuthService
func (s *AuthServiceImpl) GetUserProfile(ctx context.Context, userID uint) (*domain.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}

// issueCredentials signs an access token and creates a fresh refresh
// token for the user. The refresh plaintext leaves this function exactly
// once and is never persisted or logged.
func (s *AuthServiceImpl) issueCredentials(ctx context.Context, user *domain.User) (*domain.Credentials, error) {
	accessToken, err := s.tokenSvc.Sign(user.ID, user.Phone, user.Role, s.config.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	plaintext := mintRefreshPlaintext()
	token := &domain.RefreshToken{
		UserID:    user.ID,
		TokenHash: s.hasher.Hash(plaintext),
		ExpiresAt: s.now().Add(s.config.RefreshTTL),
		Revoked:   false,
	}
	if err := s.refreshRepo.Create(ctx, token); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &domain.Credentials{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: plaintext,
	}, nil
}

// mintRefreshPlaintext produces a high-entropy opaque token value.
func mintRefreshPlaintext() string {
	return strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/you/phoneauthsvc/domain"
)

// OTPServiceImpl implements domain.OTPService: the send-OTP flow that
// issues a time-boxed, attempt-limited code per phone number.
type OTPServiceImpl struct {
	otpRepo     domain.OTPRepository
	rateLimiter domain.RateLimiter
	testCodes   domain.TestCodeLookup
	smsSvc      domain.SMSService
	hasher      domain.Hasher
	region      *domain.PhoneRegion
	config      OTPConfig

	now          func() time.Time
	generateCode func(length int) (string, error)
}

// OTPConfig carries the issuance knobs.
type OTPConfig struct {
	Length         int
	TTL            time.Duration
	ProductionMode bool
	TestCode       string
}

// NewOTPService creates a new OTP issuance service
func NewOTPService(
	otpRepo domain.OTPRepository,
	rateLimiter domain.RateLimiter,
	testCodes domain.TestCodeLookup,
	smsSvc domain.SMSService,
	hasher domain.Hasher,
	region *domain.PhoneRegion,
	config OTPConfig,
) domain.OTPService {
	return &OTPServiceImpl{
		otpRepo:      otpRepo,
		rateLimiter:  rateLimiter,
		testCodes:    testCodes,
		smsSvc:       smsSvc,
		hasher:       hasher,
		region:       region,
		config:       config,
		now:          time.Now,
		generateCode: generateSecureCode,
	}
}

// Issue implements domain.OTPService
func (s *OTPServiceImpl) Issue(ctx context.Context, phone, clientIP, userAgent string) (*domain.OTPIssueResult, error) {
	normalized := s.region.Normalize(phone)
	if !s.region.Validate(normalized) {
		return nil, domain.ErrInvalidPhone
	}

	if clientIP != "" {
		ipDecision, err := s.rateLimiter.CheckIPLimit(ctx, clientIP)
		if err != nil {
			return nil, fmt.Errorf("ip rate limit check: %w", err)
		}
		if !ipDecision.Allowed {
			return nil, fmt.Errorf("%w: %s", domain.ErrIPRateLimited, ipDecision.Message)
		}
	}

	phoneDecision, err := s.rateLimiter.CheckPhoneLimit(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("phone rate limit check: %w", err)
	}
	if !phoneDecision.Allowed {
		return nil, fmt.Errorf("%w: %s", domain.ErrRateLimited, phoneDecision.Message)
	}

	code, deliveryStatus, err := s.resolveCode(ctx, normalized)
	if err != nil {
		return nil, err
	}

	rec := &domain.OTPRecord{
		Phone:          normalized,
		OTPHash:        s.hasher.Hash(code),
		ExpiresAt:      s.now().Add(s.config.TTL),
		Verified:       false,
		Attempts:       0,
		IPAddress:      clientIP,
		UserAgent:      userAgent,
		DeliveryStatus: deliveryStatus,
	}
	if err := s.otpRepo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to store otp record: %w", err)
	}

	// Out-of-band dispatch only for real codes. A dispatch failure is
	// recorded as delivery metadata and never fails the issuance: the
	// code is already persisted and usable.
	if deliveryStatus == domain.DeliveryPending {
		result := s.smsSvc.SendOTP(ctx, normalized, code)
		status := domain.DeliverySent
		if !result.Success {
			status = domain.DeliveryFailed
			log.Printf("OTP_SMS_FAILED: phone=%s error=%v", normalized, result.Err)
		}
		if err := s.otpRepo.UpdateDelivery(ctx, rec.ID, status, result.ProviderRequestID); err != nil {
			log.Printf("OTP_DELIVERY_UPDATE_FAILED: otp_id=%d error=%v", rec.ID, err)
		}
	}

	return &domain.OTPIssueResult{
		ExpiresIn:       int(s.config.TTL.Seconds()),
		HourlyRemaining: phoneDecision.HourlyRemaining,
		DailyRemaining:  phoneDecision.DailyRemaining,
	}, nil
}

// resolveCode picks the code value and its delivery status: a fixed QA
// code, the well-known staging code, or a fresh random code.
func (s *OTPServiceImpl) resolveCode(ctx context.Context, phone string) (string, string, error) {
	fixed, err := s.testCodes.GetFixedCode(ctx, phone)
	switch {
	case err == nil:
		log.Printf("OTP_TEST_PHONE: phone=%s", phone)
		return fixed, domain.DeliveryTestPhone, nil
	case !errors.Is(err, domain.ErrTestCodeNotFound):
		return "", "", fmt.Errorf("test code lookup: %w", err)
	}

	if !s.config.ProductionMode {
		log.Printf("OTP_TEST_MODE: phone=%s", phone)
		return s.config.TestCode, domain.DeliveryTestMode, nil
	}

	code, err := s.generateCode(s.config.Length)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate otp code: %w", err)
	}
	return code, domain.DeliveryPending, nil
}

// generateSecureCode generates a cryptographically secure n-digit code.
func generateSecureCode(length int) (string, error) {
	digits := make([]byte, length)

	for i := 0; i < length; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("failed to generate random digit: %w", err)
		}
		digits[i] = byte('0' + num.Int64())
	}

	return string(digits), nil
}

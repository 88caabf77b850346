package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/you/phoneauthsvc/domain"
	"github.com/you/phoneauthsvc/internal/mocks"
)

type authFixture struct {
	userRepo    *mocks.MockUserRepository
	otpRepo     *mocks.MockOTPRepository
	refreshRepo *mocks.MockRefreshTokenRepository
	testCodes   *mocks.MockTestCodeLookup
	tokenSvc    *mocks.MockTokenService
	hasher      *mocks.MockHasher
	svc         *AuthServiceImpl
}

func newAuthFixture(t *testing.T, config AuthConfig) *authFixture {
	t.Helper()
	f := &authFixture{
		userRepo:    mocks.NewMockUserRepository(),
		otpRepo:     mocks.NewMockOTPRepository(),
		refreshRepo: mocks.NewMockRefreshTokenRepository(),
		testCodes:   mocks.NewMockTestCodeLookup(),
		tokenSvc:    mocks.NewMockTokenService(),
		hasher:      mocks.NewMockHasher(),
	}
	svc := NewAuthService(f.userRepo, f.otpRepo, f.refreshRepo, f.testCodes, f.tokenSvc, f.hasher, testRegion(t), config)
	f.svc = svc.(*AuthServiceImpl)
	f.svc.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return f
}

func productionAuthConfig() AuthConfig {
	return AuthConfig{
		ProductionMode: true,
		TestCode:       "123456",
		OTPLength:      6,
		OTPMaxAttempts: 3,
		AccessTTL:      time.Hour,
		RefreshTTL:     720 * time.Hour,
	}
}

func liveRecord(attempts int) *domain.OTPRecord {
	return &domain.OTPRecord{
		ID:        5,
		Phone:     "+919876543210",
		OTPHash:   "hashed:424242",
		ExpiresAt: time.Date(2025, 6, 1, 12, 5, 0, 0, time.UTC),
		Attempts:  attempts,
	}
}

func TestAuthService_VerifyOTP_InputValidation(t *testing.T) {
	f := newAuthFixture(t, productionAuthConfig())

	tests := []struct {
		name    string
		phone   string
		code    string
		wantErr error
	}{
		{"invalid phone", "12345", "424242", domain.ErrInvalidPhone},
		{"empty code", "+919876543210", "", domain.ErrOTPInvalid},
		{"short code", "+919876543210", "4242", domain.ErrOTPInvalid},
		{"non-digit code", "+919876543210", "42a242", domain.ErrOTPInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.VerifyOTP(context.Background(), tt.phone, tt.code, "")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("VerifyOTP() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAuthService_VerifyOTP_Success_NewUser(t *testing.T) {
	f := newAuthFixture(t, productionAuthConfig())
	f.otpRepo.FindLiveFunc = func(ctx context.Context, phone string, maxAttempts int, now time.Time) (*domain.OTPRecord, error) {
		return liveRecord(0), nil
	}

	var markedID uint
	f.otpRepo.MarkVerifiedFunc = func(ctx context.Context, id uint, maxAttempts int) error {
		markedID = id
		return nil
	}
	var createdUser *domain.User
	f.userRepo.CreateFunc = func(ctx context.Context, user *domain.User) error {
		createdUser = user
		user.ID = 42
		return nil
	}
	var storedToken *domain.RefreshToken
	f.refreshRepo.CreateFunc = func(ctx context.Context, token *domain.RefreshToken) error {
		storedToken = token
		token.ID = 1
		return nil
	}

	creds, err := f.svc.VerifyOTP(context.Background(), "+919876543210", "424242", "Asha")
	if err != nil {
		t.Fatalf("VerifyOTP() error = %v", err)
	}
	if markedID != 5 {
		t.Errorf("MarkVerified id = %d, want 5", markedID)
	}
	if !creds.IsNewUser {
		t.Error("creds.IsNewUser = false, want true")
	}
	if createdUser.Role != domain.RoleCustomer {
		t.Errorf("new user role = %q, want customer", createdUser.Role)
	}
	if !createdUser.IsActive {
		t.Error("new user should be active")
	}
	if creds.AccessToken != "test-access-token" {
		t.Errorf("creds.AccessToken = %q", creds.AccessToken)
	}
	if creds.RefreshToken == "" || strings.Contains(creds.RefreshToken, "-") {
		t.Errorf("creds.RefreshToken = %q, want opaque dashless value", creds.RefreshToken)
	}
	if storedToken.TokenHash != "hashed:"+creds.RefreshToken {
		t.Error("stored token hash does not match issued plaintext")
	}
	if storedToken.UserID != 42 {
		t.Errorf("stored token user = %d, want 42", storedToken.UserID)
	}
}

func TestAuthService_VerifyOTP_Success_ExistingUser(t *testing.T) {
	f := newAuthFixture(t, productionAuthConfig())
	f.otpRepo.FindLiveFunc = func(ctx context.Context, phone string, maxAttempts int, now time.Time) (*domain.OTPRecord, error) {
		return liveRecord(1), nil
	}
	f.userRepo.FindByPhoneFunc = func(ctx context.Context, phone string) (*domain.User, error) {
		return &domain.User{ID: 7, Phone: phone, Name: "Old Name", Role: domain.RoleCustomer, IsActive: true}, nil
	}

	var renamedTo string
	f.userRepo.UpdateNameFunc = func(ctx context.Context, userID uint, name string) error {
		renamedTo = name
		return nil
	}

	creds, err := f.svc.VerifyOTP(context.Background(), "+919876543210", "424242", "New Name")
	if err != nil {
		t.Fatalf("VerifyOTP() error = %v", err)
	}
	if creds.IsNewUser {
		t.Error("creds.IsNewUser = true, want false")
	}
	if renamedTo != "New Name" {
		t.Errorf("UpdateName got %q, want %q", renamedTo, "New Name")
	}
	if creds.User.Name != "New Name" {
		t.Errorf("creds.User.Name = %q", creds.User.Name)
	}
}

func TestAuthService_VerifyOTP_WrongCodeCountsAttempt(t *testing.T) {
	f := newAuthFixture(t, productionAuthConfig())
	f.otpRepo.FindLiveFunc = func(ctx context.Context, phone string, maxAttempts int, now time.Time) (*domain.OTPRecord, error) {
		return liveRecord(0), nil
	}

	var incremented bool
	f.otpRepo.IncrementAttemptsFunc = func(ctx context.Context, id uint) error {
		incremented = true
		return nil
	}

	_, err := f.svc.VerifyOTP(context.Background(), "+919876543210", "999999", "")
	if !errors.Is(err, domain.ErrOTPInvalid) {
		t.Fatalf("VerifyOTP() error = %v, want ErrOTPInvalid", err)
	}
	if !incremented {
		t.Error("failed attempt was not counted")
	}
	if !strings.Contains(err.Error(), "2 attempt(s) remaining") {
		t.Errorf("error = %q, want remaining attempts message", err.Error())
	}
}

func TestAuthService_VerifyOTP_LastAttemptOmitsRemaining(t *testing.T) {
	f := newAuthFixture(t, productionAuthConfig())
	f.otpRepo.FindLiveFunc = func(ctx context.Context, phone string, maxAttempts int, now time.Time) (*domain.OTPRecord, error) {
		return liveRecord(2), nil
	}

	_, err := f.svc.VerifyOTP(context.Background(), "+919876543210", "999999", "")
	if !errors.Is(err, domain.ErrOTPInvalid) {
		t.Fatalf("VerifyOTP() error = %v, want ErrOTPInvalid", err)
	}
	if strings.Contains(err.Error(), "remaining") {
		t.Errorf("error = %q, exhausted code must not advertise attempts", err.Error())
	}
}

func TestAuthService_VerifyOTP_NoLiveRecord(t *testing.T) {
	f := newAuthFixture(t, productionAuthConfig())

	// Default FindLive returns ErrOTPRecordNotFound: the caller cannot
	// tell expiry from exhaustion.
	_, err := f.svc.VerifyOTP(context.Background(), "+919876543210", "424242", "")
	if !errors.Is(err, domain.ErrOTPExpired) {
		t.Fatalf("VerifyOTP() error = %v, want ErrOTPExpired", err)
	}
}

func TestAuthService_VerifyOTP_ConcurrentConsumption(t *testing.T) {
	f := newAuthFixture(t, productionAuthConfig())
	f.otpRepo.FindLiveFunc = func(ctx context.Context, phone string, maxAttempts int, now time.Time) (*domain.OTPRecord, error) {
		return liveRecord(0), nil
	}
	f.otpRepo.MarkVerifiedFunc = func(ctx context.Context, id uint, maxAttempts int) error {
		return domain.ErrOTPRecordNotFound
	}

	_, err := f.svc.VerifyOTP(context.Background(), "+919876543210", "424242", "")
	if !errors.Is(err, domain.ErrOTPExpired) {
		t.Fatalf("VerifyOTP() error = %v, want ErrOTPExpired", err)
	}
}

func TestAuthService_VerifyOTP_TestPhoneBypass(t *testing.T) {
	f := newAuthFixture(t, productionAuthConfig())
	f.testCodes.GetFixedCodeFunc = func(ctx context.Context, phone string) (string, error) {
		return "111111", nil
	}
	f.otpRepo.FindLiveFunc = func(ctx context.Context, phone string, maxAttempts int, now time.Time) (*domain.OTPRecord, error) {
		t.Error("ledger must not be consulted on a fixed-code bypass")
		return nil, domain.ErrOTPRecordNotFound
	}

	var superseded bool
	f.otpRepo.MarkAllVerifiedFunc = func(ctx context.Context, phone string) error {
		superseded = true
		return nil
	}

	creds, err := f.svc.VerifyOTP(context.Background(), "+919876543210", "111111", "")
	if err != nil {
		t.Fatalf("VerifyOTP() error = %v", err)
	}
	if creds == nil {
		t.Fatal("expected credentials")
	}
	if !superseded {
		t.Error("pending records were not superseded")
	}
}

func TestAuthService_VerifyOTP_TestPhoneWrongCodeFallsThrough(t *testing.T) {
	f := newAuthFixture(t, productionAuthConfig())
	f.testCodes.GetFixedCodeFunc = func(ctx context.Context, phone string) (string, error) {
		return "111111", nil
	}

	// Wrong fixed code falls back to the ledger, which is empty.
	_, err := f.svc.VerifyOTP(context.Background(), "+919876543210", "222222", "")
	if !errors.Is(err, domain.ErrOTPExpired) {
		t.Fatalf("VerifyOTP() error = %v, want ErrOTPExpired", err)
	}
}

func TestAuthService_VerifyOTP_TestModeBypass(t *testing.T) {
	config := productionAuthConfig()
	config.ProductionMode = false
	f := newAuthFixture(t, config)

	creds, err := f.svc.VerifyOTP(context.Background(), "+919876543210", "123456", "")
	if err != nil {
		t.Fatalf("VerifyOTP() error = %v", err)
	}
	if creds == nil {
		t.Fatal("expected credentials")
	}
}

func TestAuthService_VerifyOTP_TestModeCodeRejectedInProduction(t *testing.T) {
	f := newAuthFixture(t, productionAuthConfig())

	_, err := f.svc.VerifyOTP(context.Background(), "+919876543210", "123456", "")
	if !errors.Is(err, domain.ErrOTPExpired) {
		t.Fatalf("VerifyOTP() error = %v, want ledger failure in production", err)
	}
}

func TestAuthService_VerifyOTP_DeactivatedUser(t *testing.T) {
	f := newAuthFixture(t, productionAuthConfig())
	f.otpRepo.FindLiveFunc = func(ctx context.Context, phone string, maxAttempts int, now time.Time) (*domain.OTPRecord, error) {
		return liveRecord(0), nil
	}
	f.userRepo.FindByPhoneFunc = func(ctx context.Context, phone string) (*domain.User, error) {
		return &domain.User{ID: 7, Phone: phone, Role: domain.RoleCustomer, IsActive: false}, nil
	}

	_, err := f.svc.VerifyOTP(context.Background(), "+919876543210", "424242", "")
	if !errors.Is(err, domain.ErrUserInactive) {
		t.Fatalf("VerifyOTP() error = %v, want ErrUserInactive", err)
	}
}

func activeTokenRecord() *domain.RefreshToken {
	return &domain.RefreshToken{
		ID:        10,
		UserID:    7,
		TokenHash: "hashed:old-token",
		ExpiresAt: time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC),
		Revoked:   false,
	}
}

func TestAuthService_Refresh_RotatesToken(t *testing.T) {
	f := newAuthFixture(t, productionAuthConfig())
	f.refreshRepo.FindByHashFunc = func(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
		if tokenHash != "hashed:old-token" {
			t.Errorf("FindByHash got %q", tokenHash)
		}
		return activeTokenRecord(), nil
	}
	f.userRepo.FindByIDFunc = func(ctx context.Context, id uint) (*domain.User, error) {
		return &domain.User{ID: 7, Phone: "+919876543210", Role: domain.RoleCustomer, IsActive: true}, nil
	}

	var rotatedID uint
	var successor *domain.RefreshToken
	f.refreshRepo.RotateFunc = func(ctx context.Context, presentedID uint, s *domain.RefreshToken) error {
		rotatedID = presentedID
		successor = s
		s.ID = 11
		return nil
	}

	creds, err := f.svc.Refresh(context.Background(), "old-token")
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if rotatedID != 10 {
		t.Errorf("Rotate presentedID = %d, want 10", rotatedID)
	}
	if creds.RefreshToken == "old-token" {
		t.Error("refresh token was not rotated")
	}
	if successor.TokenHash != "hashed:"+creds.RefreshToken {
		t.Error("successor hash does not match issued plaintext")
	}
	if successor.UserID != 7 {
		t.Errorf("successor.UserID = %d, want 7", successor.UserID)
	}
	wantExpiry := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC).Add(720 * time.Hour)
	if !successor.ExpiresAt.Equal(wantExpiry) {
		t.Errorf("successor.ExpiresAt = %v, want %v", successor.ExpiresAt, wantExpiry)
	}
}

func TestAuthService_Refresh_EmptyToken(t *testing.T) {
	f := newAuthFixture(t, productionAuthConfig())
	if _, err := f.svc.Refresh(context.Background(), ""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("Refresh() error = %v, want ErrInvalidInput", err)
	}
}

func TestAuthService_Refresh_UnknownToken(t *testing.T) {
	f := newAuthFixture(t, productionAuthConfig())
	if _, err := f.svc.Refresh(context.Background(), "never-issued"); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("Refresh() error = %v, want ErrTokenInvalid", err)
	}
}

func TestAuthService_Refresh_ReuseRevokesFamily(t *testing.T) {
	f := newAuthFixture(t, productionAuthConfig())
	rec := activeTokenRecord()
	rec.Revoked = true
	f.refreshRepo.FindByHashFunc = func(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
		return rec, nil
	}

	var revokedUser uint
	f.refreshRepo.RevokeAllForUserFunc = func(ctx context.Context, userID uint) error {
		revokedUser = userID
		return nil
	}

	_, err := f.svc.Refresh(context.Background(), "old-token")
	if !errors.Is(err, domain.ErrTokenRevoked) {
		t.Fatalf("Refresh() error = %v, want ErrTokenRevoked", err)
	}
	if revokedUser != 7 {
		t.Errorf("RevokeAllForUser user = %d, want 7", revokedUser)
	}
}

func TestAuthService_Refresh_ExpiredToken(t *testing.T) {
	f := newAuthFixture(t, productionAuthConfig())
	rec := activeTokenRecord()
	rec.ExpiresAt = time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	f.refreshRepo.FindByHashFunc = func(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
		return rec, nil
	}

	var revokedID uint
	f.refreshRepo.RevokeFunc = func(ctx context.Context, id uint) error {
		revokedID = id
		return nil
	}

	_, err := f.svc.Refresh(context.Background(), "old-token")
	if !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("Refresh() error = %v, want ErrTokenExpired", err)
	}
	if revokedID != 10 {
		t.Errorf("Revoke id = %d, want 10", revokedID)
	}
}

func TestAuthService_Refresh_InactiveUserRevokesFamily(t *testing.T) {
	f := newAuthFixture(t, productionAuthConfig())
	f.refreshRepo.FindByHashFunc = func(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
		return activeTokenRecord(), nil
	}
	f.userRepo.FindByIDFunc = func(ctx context.Context, id uint) (*domain.User, error) {
		return &domain.User{ID: 7, Phone: "+919876543210", Role: domain.RoleCustomer, IsActive: false}, nil
	}

	var revokedUser uint
	f.refreshRepo.RevokeAllForUserFunc = func(ctx context.Context, userID uint) error {
		revokedUser = userID
		return nil
	}

	_, err := f.svc.Refresh(context.Background(), "old-token")
	if !errors.Is(err, domain.ErrUserInactive) {
		t.Fatalf("Refresh() error = %v, want ErrUserInactive", err)
	}
	if revokedUser != 7 {
		t.Errorf("RevokeAllForUser user = %d, want 7", revokedUser)
	}
}

func TestAuthService_Refresh_RotationRaceTreatedAsReuse(t *testing.T) {
	f := newAuthFixture(t, productionAuthConfig())
	f.refreshRepo.FindByHashFunc = func(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
		return activeTokenRecord(), nil
	}
	f.userRepo.FindByIDFunc = func(ctx context.Context, id uint) (*domain.User, error) {
		return &domain.User{ID: 7, Phone: "+919876543210", Role: domain.RoleCustomer, IsActive: true}, nil
	}
	f.refreshRepo.RotateFunc = func(ctx context.Context, presentedID uint, successor *domain.RefreshToken) error {
		return domain.ErrTokenRevoked
	}

	var revokedUser uint
	f.refreshRepo.RevokeAllForUserFunc = func(ctx context.Context, userID uint) error {
		revokedUser = userID
		return nil
	}

	_, err := f.svc.Refresh(context.Background(), "old-token")
	if !errors.Is(err, domain.ErrTokenRevoked) {
		t.Fatalf("Refresh() error = %v, want ErrTokenRevoked", err)
	}
	if revokedUser != 7 {
		t.Errorf("RevokeAllForUser user = %d, want 7", revokedUser)
	}
}

func TestAuthService_Logout(t *testing.T) {
	f := newAuthFixture(t, productionAuthConfig())

	var revokedUser uint
	f.refreshRepo.RevokeAllForUserFunc = func(ctx context.Context, userID uint) error {
		revokedUser = userID
		return nil
	}

	if err := f.svc.Logout(context.Background(), 7); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if revokedUser != 7 {
		t.Errorf("RevokeAllForUser user = %d, want 7", revokedUser)
	}
}

func TestMintRefreshPlaintext(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		v := mintRefreshPlaintext()
		if len(v) != 64 {
			t.Fatalf("mintRefreshPlaintext() length = %d, want 64", len(v))
		}
		if strings.Contains(v, "-") {
			t.Fatalf("mintRefreshPlaintext() = %q, want dashless", v)
		}
		if seen[v] {
			t.Fatal("mintRefreshPlaintext() produced a duplicate")
		}
		seen[v] = true
	}
}

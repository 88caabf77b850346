package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		expectedMsg string
	}{
		{name: "ErrInvalidPhone", err: ErrInvalidPhone, expectedMsg: "invalid phone number format"},
		{name: "ErrInvalidInput", err: ErrInvalidInput, expectedMsg: "invalid input"},
		{name: "ErrOTPInvalid", err: ErrOTPInvalid, expectedMsg: "invalid otp code"},
		{name: "ErrOTPExpired", err: ErrOTPExpired, expectedMsg: "otp has expired or too many attempts"},
		{name: "ErrTokenInvalid", err: ErrTokenInvalid, expectedMsg: "invalid token"},
		{name: "ErrTokenExpired", err: ErrTokenExpired, expectedMsg: "token has expired"},
		{name: "ErrTokenRevoked", err: ErrTokenRevoked, expectedMsg: "token has been revoked"},
		{name: "ErrUserInactive", err: ErrUserInactive, expectedMsg: "account has been deactivated"},
		{name: "ErrRateLimited", err: ErrRateLimited, expectedMsg: "too many requests"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.expectedMsg {
				t.Errorf("expected error message %q, got %q", tt.expectedMsg, tt.err.Error())
			}
		})
	}
}

func TestSentinelErrors_WrappedIdentity(t *testing.T) {
	wrapped := fmt.Errorf("rotate: %w", ErrTokenRevoked)
	if !errors.Is(wrapped, ErrTokenRevoked) {
		t.Error("wrapped error should match sentinel via errors.Is")
	}
	if errors.Is(wrapped, ErrTokenExpired) {
		t.Error("wrapped error should not match a different sentinel")
	}
}

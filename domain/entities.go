package domain

import "time"

// Role is the application-level role carried in access tokens.
// It is a closed set, validated once at the boundary.
type Role string

const (
	RoleCustomer      Role = "customer"
	RoleAdmin         Role = "admin"
	RoleDeliveryStaff Role = "delivery_staff"
)

// TransportRole is the fixed transport-layer role claim consumed by the
// downstream data-access layer. It is constant for every issued token.
const TransportRole = "authenticated"

// Valid reports whether the role belongs to the closed set.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleAdmin, RoleDeliveryStaff:
		return true
	}
	return false
}

// ParseRole converts a stored role string into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", ErrInvalidRole
	}
	return r, nil
}

// User represents an account in the system.
type User struct {
	ID        uint
	Phone     string
	Name      string
	Role      Role
	Language  string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OTPRecord is one issued one-time passcode for a phone number.
// The plaintext code is never stored, only its keyed hash.
type OTPRecord struct {
	ID                uint
	Phone             string
	OTPHash           string
	ExpiresAt         time.Time
	Verified          bool
	Attempts          int
	IPAddress         string
	UserAgent         string
	DeliveryStatus    string
	ProviderRequestID string
	CreatedAt         time.Time
}

// Delivery statuses tracked on an OTPRecord.
const (
	DeliveryTestPhone = "test_phone"
	DeliveryTestMode  = "test_mode"
	DeliveryPending   = "pending"
	DeliverySent      = "sent"
	DeliveryFailed    = "failed"
)

// RefreshToken is one long-lived, single-use-per-rotation credential.
// Only the keyed hash of the plaintext is persisted. A record moves
// revoked=false -> true exactly once and never back.
type RefreshToken struct {
	ID        uint
	UserID    uint
	TokenHash string
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
}

// AuthContext is the request-scoped identity resolved by the
// authorization gate. It is never cached across requests.
type AuthContext struct {
	UserID uint
	Phone  string
	Role   Role
}

// TokenClaims is the verified claim set of an access token.
type TokenClaims struct {
	UserID    uint
	Phone     string
	Role      Role
	IssuedAt  int64
	ExpiresAt int64
}

// Credentials is the result of a successful login or refresh.
type Credentials struct {
	User         *User
	AccessToken  string
	RefreshToken string
	IsNewUser    bool
}

// IPRateDecision is the caller-IP-scoped rate limit verdict.
type IPRateDecision struct {
	Allowed   bool
	Remaining int
	Message   string
}

// PhoneRateDecision is the phone-scoped rate limit verdict.
type PhoneRateDecision struct {
	Allowed         bool
	HourlyRemaining int
	DailyRemaining  int
	Message         string
}

// OTPIssueResult is what the send-OTP flow returns to the caller.
// It never contains the code itself.
type OTPIssueResult struct {
	ExpiresIn       int
	HourlyRemaining int
	DailyRemaining  int
}

// SMSResult reports the outcome of an out-of-band code dispatch.
type SMSResult struct {
	Success           bool
	ProviderRequestID string
	Err               error
}

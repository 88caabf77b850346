package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/you/phoneauthsvc/domain"
)

// JWTServiceImpl implements domain.TokenService with HS256 and keys from
// the process-wide KeyCache. Verification never touches storage.
type JWTServiceImpl struct {
	keys   *KeyCache
	secret string
	issuer string
	now    func() time.Time
}

// NewJWTService creates a new JWT service.
func NewJWTService(keys *KeyCache, secret, issuer string) domain.TokenService {
	return &JWTServiceImpl{
		keys:   keys,
		secret: secret,
		issuer: issuer,
		now:    time.Now,
	}
}

// Sign implements domain.TokenService. Expiry is always iat + ttl.
func (j *JWTServiceImpl) Sign(userID uint, phone string, role domain.Role, ttl time.Duration) (string, error) {
	now := j.now()
	claims := jwt.MapClaims{
		"sub":       int64(userID),
		"phone":     phone,
		"role":      domain.TransportRole,
		"user_role": string(role),
		"iss":       j.issuer,
		"iat":       now.Unix(),
		"exp":       now.Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.keys.Get(PurposeAccessSign, j.secret))
}

// Verify implements domain.TokenService. Expired tokens are rejected
// before any signature work.
func (j *JWTServiceImpl) Verify(tokenString string) (*domain.TokenClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}))

	unverified := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(tokenString, unverified); err != nil {
		return nil, domain.ErrTokenMalformed
	}
	if exp, ok := unverified["exp"].(float64); ok {
		if time.Unix(int64(exp), 0).Before(j.now()) {
			return nil, domain.ErrTokenExpired
		}
	}

	token, err := parser.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return j.keys.Get(PurposeAccessVerify, j.secret), nil
	})
	if err != nil || !token.Valid {
		return nil, domain.ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, domain.ErrTokenMalformed
	}

	sub, ok := claims["sub"].(float64)
	if !ok {
		return nil, domain.ErrTokenMalformed
	}
	phone, ok := claims["phone"].(string)
	if !ok {
		return nil, domain.ErrTokenMalformed
	}
	roleStr, ok := claims["user_role"].(string)
	if !ok {
		return nil, domain.ErrTokenMalformed
	}
	role, err := domain.ParseRole(roleStr)
	if err != nil {
		return nil, domain.ErrTokenMalformed
	}
	iat, ok := claims["iat"].(float64)
	if !ok {
		return nil, domain.ErrTokenMalformed
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil, domain.ErrTokenMalformed
	}

	return &domain.TokenClaims{
		UserID:    uint(sub),
		Phone:     phone,
		Role:      role,
		IssuedAt:  int64(iat),
		ExpiresAt: int64(exp),
	}, nil
}

package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultPhonePattern matches Indian mobile numbers: +91 followed by
// 10 digits starting 6-9. Other deployments supply their own pattern.
const DefaultPhonePattern = `^\+91[6-9]\d{9}$`

// DefaultCountryCode is the dialing prefix prepended during normalization.
const DefaultCountryCode = "+91"

// PhoneRegion normalizes and validates phone numbers for one deployment
// region. The region rule is configuration, not code.
type PhoneRegion struct {
	countryCode string
	pattern     *regexp.Regexp
}

// NewPhoneRegion compiles a region rule from a dialing prefix and a
// validation pattern.
func NewPhoneRegion(countryCode, pattern string) (*PhoneRegion, error) {
	if !strings.HasPrefix(countryCode, "+") {
		return nil, fmt.Errorf("country code must start with '+': %q", countryCode)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid phone pattern: %w", err)
	}
	return &PhoneRegion{countryCode: countryCode, pattern: re}, nil
}

// Normalize converts user input to canonical E.164-like form: separators
// stripped, dialing prefix added when the number is recognizably national.
func (r *PhoneRegion) Normalize(phone string) string {
	normalized := strings.NewReplacer(" ", "", "-", "").Replace(phone)

	cc := strings.TrimPrefix(r.countryCode, "+")
	switch {
	case strings.HasPrefix(normalized, "+"):
		// Already prefixed.
	case strings.HasPrefix(normalized, cc) && len(normalized) == len(cc)+10:
		normalized = "+" + normalized
	case len(normalized) == 10:
		normalized = r.countryCode + normalized
	}
	return normalized
}

// Validate reports whether a normalized phone matches the region rule.
func (r *PhoneRegion) Validate(phone string) bool {
	return r.pattern.MatchString(phone)
}

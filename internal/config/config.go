package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	Port           int    `yaml:"port"`
	GinMode        string `yaml:"gin_mode"`
	ProductionMode bool   `yaml:"production_mode"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type JWTConfig struct {
	Secret    string `yaml:"secret"`
	Issuer    string `yaml:"issuer"`
	AccessTTL string `yaml:"access_ttl"`
}

type OTPConfig struct {
	Secret      string `yaml:"secret"`
	Length      int    `yaml:"length"`
	TTL         string `yaml:"ttl"`
	MaxAttempts int    `yaml:"max_attempts"`
	TestCode    string `yaml:"test_code"`
}

type RefreshConfig struct {
	TTL string `yaml:"ttl"`
}

type PhoneConfig struct {
	CountryCode string `yaml:"country_code"`
	Pattern     string `yaml:"pattern"`
}

type RateLimitConfig struct {
	IPPerHour    int `yaml:"ip_per_hour"`
	PhonePerHour int `yaml:"phone_per_hour"`
	PhonePerDay  int `yaml:"phone_per_day"`
}

type TwilioConfig struct {
	AccountSID string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
	FromNumber string `yaml:"from_number"`
}

type ConfigFile struct {
	App       AppConfig       `yaml:"app"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	JWT       JWTConfig       `yaml:"jwt"`
	OTP       OTPConfig       `yaml:"otp"`
	Refresh   RefreshConfig   `yaml:"refresh"`
	Phone     PhoneConfig     `yaml:"phone"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Twilio    TwilioConfig    `yaml:"twilio"`
}

type Config struct {
	Port           string
	GinMode        string
	ProductionMode bool

	DSN string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret string
	JWTIssuer string
	AccessTTL time.Duration

	OTPSecret       string
	OTP_Length      int
	OTP_TTL         time.Duration
	OTP_MaxAttempts int
	OTPTestCode     string

	RefreshTTL time.Duration

	PhoneCountryCode string
	PhonePattern     string

	RateLimitIPPerHour    int
	RateLimitPhonePerHour int
	RateLimitPhonePerDay  int

	TwilioSID   string
	TwilioToken string
	TwilioFrom  string
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func Load() (*Config, error) {
	return LoadFrom("config/config.yml")
}

func LoadFrom(path string) (*Config, error) {
	// A local .env file may carry secrets; absence is not an error.
	_ = godotenv.Load()

	configFile, err := loadConfigFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	accTTL, err := parseDuration(configFile.JWT.AccessTTL, time.Hour)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT access TTL: %w", err)
	}

	otpTTL, err := parseDuration(configFile.OTP.TTL, 300*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid OTP TTL: %w", err)
	}

	refTTL, err := parseDuration(configFile.Refresh.TTL, 30*24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh TTL: %w", err)
	}

	cfg := &Config{
		Port:           fmt.Sprintf("%d", configFile.App.Port),
		GinMode:        configFile.App.GinMode,
		ProductionMode: configFile.App.ProductionMode,

		DSN: env("DATABASE_DSN", configFile.Database.DSN),

		RedisAddr:     env("REDIS_ADDR", configFile.Redis.Addr),
		RedisPassword: env("REDIS_PASSWORD", configFile.Redis.Password),
		RedisDB:       configFile.Redis.DB,

		JWTSecret: env("JWT_SECRET", configFile.JWT.Secret),
		JWTIssuer: configFile.JWT.Issuer,
		AccessTTL: accTTL,

		OTPSecret:       env("OTP_SECRET", configFile.OTP.Secret),
		OTP_Length:      defaultInt(configFile.OTP.Length, 6),
		OTP_TTL:         otpTTL,
		OTP_MaxAttempts: defaultInt(configFile.OTP.MaxAttempts, 3),
		OTPTestCode:     defaultStr(configFile.OTP.TestCode, "123456"),

		RefreshTTL: refTTL,

		PhoneCountryCode: defaultStr(configFile.Phone.CountryCode, "+91"),
		PhonePattern:     defaultStr(configFile.Phone.Pattern, `^\+91[6-9]\d{9}$`),

		RateLimitIPPerHour:    defaultInt(configFile.RateLimit.IPPerHour, 100),
		RateLimitPhonePerHour: defaultInt(configFile.RateLimit.PhonePerHour, 40),
		RateLimitPhonePerDay:  defaultInt(configFile.RateLimit.PhonePerDay, 20),

		TwilioSID:   env("TWILIO_ACCOUNT_SID", configFile.Twilio.AccountSID),
		TwilioToken: env("TWILIO_AUTH_TOKEN", configFile.Twilio.AuthToken),
		TwilioFrom:  env("TWILIO_FROM_NUMBER", configFile.Twilio.FromNumber),
	}

	// Signing and hashing secrets must be present before any key
	// derivation happens; the key cache does not validate them.
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt secret is not configured")
	}
	if cfg.OTPSecret == "" {
		return nil, fmt.Errorf("otp secret is not configured")
	}

	return cfg, nil
}

func loadConfigFile(path string) (*ConfigFile, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file at %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(bytes, &config); err != nil {
		return nil, fmt.Errorf("could not parse config yaml: %w", err)
	}

	return &config, nil
}

func parseDuration(s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	return time.ParseDuration(s)
}

func defaultInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func defaultStr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

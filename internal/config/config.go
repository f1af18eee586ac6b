package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	Port    int    `yaml:"port"`
	GinMode string `yaml:"gin_mode"`
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

type SessionConfig struct {
	TTL string `yaml:"ttl"`
}

type PasswordConfig struct {
	BcryptCost int `yaml:"bcrypt_cost"`
}

type VerificationYAML struct {
	Secret      string `yaml:"hmac_secret"`
	Length      int    `yaml:"length"`
	TTL         string `yaml:"ttl"`
	MaxAttempts int    `yaml:"max_attempts"`
	AttemptsTTL string `yaml:"attempts_ttl"`
	LockoutTTL  string `yaml:"lockout_ttl"`
}

type QuotaScopeYAML struct {
	Capacity int    `yaml:"capacity"`
	Window   string `yaml:"window"`
}

type TwilioConfig struct {
	AccountSID string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
	FromNumber string `yaml:"from_number"`
}

type ConfigFile struct {
	App          AppConfig                 `yaml:"app"`
	Database     DatabaseConfig            `yaml:"database"`
	Redis        RedisConfig               `yaml:"redis"`
	JWT          JWTConfig                 `yaml:"jwt"`
	Session      SessionConfig             `yaml:"session"`
	Password     PasswordConfig            `yaml:"password"`
	Verification VerificationYAML          `yaml:"verification"`
	Quotas       map[string]QuotaScopeYAML `yaml:"quotas"`
	Twilio       TwilioConfig              `yaml:"twilio"`
}

// QuotaScope is one parsed per-scope quota policy
type QuotaScope struct {
	Capacity int
	Window   time.Duration
}

type Config struct {
	Port          string
	GinMode       string
	DSN           string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret string
	JWTIssuer string
	AccessTTL time.Duration

	SessionTTL time.Duration

	BcryptCost int

	VerifySecret      string
	VerifyLength      int
	VerifyTTL         time.Duration
	VerifyMaxAttempts int
	VerifyAttemptsTTL time.Duration
	VerifyLockoutTTL  time.Duration

	Quotas map[string]QuotaScope

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

// Load reads config/config.yml, applies env overrides for secrets, and
// validates everything the engine cannot run without. Validation
// failures here are fatal at startup, never per-request.
func Load() (*Config, error) {
	return LoadFrom(env("CONFIG_PATH", "config/config.yml"))
}

// LoadFrom loads configuration from a specific file path
func LoadFrom(path string) (*Config, error) {
	configFile, err := loadConfigFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	accTTL, err := time.ParseDuration(defaulted(configFile.JWT.AccessTTL, "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT access TTL: %w", err)
	}
	sessionTTL, err := time.ParseDuration(defaulted(configFile.Session.TTL, "168h"))
	if err != nil {
		return nil, fmt.Errorf("invalid session TTL: %w", err)
	}
	verifyTTL, err := time.ParseDuration(defaulted(configFile.Verification.TTL, "10m"))
	if err != nil {
		return nil, fmt.Errorf("invalid verification TTL: %w", err)
	}
	attemptsTTL, err := time.ParseDuration(defaulted(configFile.Verification.AttemptsTTL, "10m"))
	if err != nil {
		return nil, fmt.Errorf("invalid verification attempts TTL: %w", err)
	}
	lockoutTTL, err := time.ParseDuration(defaulted(configFile.Verification.LockoutTTL, "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid verification lockout TTL: %w", err)
	}

	// The attempt counter must outlive the code, otherwise a counter
	// reset mid-challenge would grant extra attempts.
	if attemptsTTL < verifyTTL {
		attemptsTTL = verifyTTL
	}

	quotas := make(map[string]QuotaScope, len(configFile.Quotas))
	for scope, q := range configFile.Quotas {
		window, err := time.ParseDuration(q.Window)
		if err != nil {
			return nil, fmt.Errorf("invalid quota window for scope %s: %w", scope, err)
		}
		if q.Capacity <= 0 {
			return nil, fmt.Errorf("invalid quota capacity for scope %s: %d", scope, q.Capacity)
		}
		quotas[scope] = QuotaScope{Capacity: q.Capacity, Window: window}
	}

	cfg := &Config{
		Port:          fmt.Sprintf("%d", configFile.App.Port),
		GinMode:       configFile.App.GinMode,
		DSN:           env("DATABASE_DSN", configFile.Database.DSN),
		RedisAddr:     env("REDIS_ADDR", configFile.Redis.Addr),
		RedisPassword: env("REDIS_PASSWORD", configFile.Redis.Password),
		RedisDB:       configFile.Redis.DB,

		JWTSecret: env("JWT_SECRET", configFile.JWT.Secret),
		JWTIssuer: configFile.JWT.Issuer,
		AccessTTL: accTTL,

		SessionTTL: sessionTTL,

		BcryptCost: configFile.Password.BcryptCost,

		VerifySecret:      env("VERIFY_HMAC_SECRET", configFile.Verification.Secret),
		VerifyLength:      defaultedInt(configFile.Verification.Length, 6),
		VerifyTTL:         verifyTTL,
		VerifyMaxAttempts: defaultedInt(configFile.Verification.MaxAttempts, 5),
		VerifyAttemptsTTL: attemptsTTL,
		VerifyLockoutTTL:  lockoutTTL,

		Quotas: quotas,

		TwilioSID:   env("TWILIO_ACCOUNT_SID", configFile.Twilio.AccountSID),
		TwilioToken: env("TWILIO_AUTH_TOKEN", configFile.Twilio.AuthToken),
		TwilioFrom:  configFile.Twilio.FromNumber,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.VerifySecret == "" {
		return fmt.Errorf("verification HMAC secret is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if c.RedisAddr == "" {
		return fmt.Errorf("redis address is required")
	}
	if len(c.Quotas) == 0 {
		return fmt.Errorf("at least one quota scope must be configured")
	}
	return nil
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

func defaulted(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func defaultedInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

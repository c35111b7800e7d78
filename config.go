package landmark

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is the read surface business logic sees. It is populated once at
// process start; nothing below this layer reads the environment.
type Config interface {
	GetServerAddress() string
	GetSigningKey() string
	GetTokenExpiration() int
	GetIssuer() string
	GetContextKey() string
	GetCookieName() string
	GetBcryptCost() int
	GetResetTokenTTL() time.Duration
	GetVerificationTokenTTL() time.Duration
	GetDSN() string
	GetDebug() bool
	GetSMTP() SMTPConfig
}

// SMTPConfig carries mail delivery settings for the SMTP mailer.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Enabled reports whether enough is configured to attempt SMTP delivery.
func (s SMTPConfig) Enabled() bool {
	return s.Host != "" && s.From != ""
}

// AppConfig is the concrete configuration struct.
type AppConfig struct {
	ServerAddress        string
	SigningKey           string
	TokenExpiration      int // hours
	Issuer               string
	ContextKey           string
	CookieName           string
	BcryptCost           int
	ResetTokenTTL        time.Duration
	VerificationTokenTTL time.Duration
	DSN                  string
	Debug                bool
	SMTP                 SMTPConfig
}

var _ Config = (*AppConfig)(nil)

func (c *AppConfig) GetServerAddress() string { return c.ServerAddress }
func (c *AppConfig) GetSigningKey() string    { return c.SigningKey }
func (c *AppConfig) GetTokenExpiration() int  { return c.TokenExpiration }
func (c *AppConfig) GetIssuer() string        { return c.Issuer }
func (c *AppConfig) GetContextKey() string    { return c.ContextKey }
func (c *AppConfig) GetCookieName() string    { return c.CookieName }
func (c *AppConfig) GetBcryptCost() int       { return c.BcryptCost }

func (c *AppConfig) GetResetTokenTTL() time.Duration        { return c.ResetTokenTTL }
func (c *AppConfig) GetVerificationTokenTTL() time.Duration { return c.VerificationTokenTTL }
func (c *AppConfig) GetDSN() string                         { return c.DSN }
func (c *AppConfig) GetDebug() bool                         { return c.Debug }
func (c *AppConfig) GetSMTP() SMTPConfig                    { return c.SMTP }

// Validate rejects configurations the server cannot safely start with.
func (c *AppConfig) Validate() error {
	if c.SigningKey == "" {
		return fmt.Errorf("config: JWT_SECRET is required")
	}
	if len(c.SigningKey) < 32 {
		return fmt.Errorf("config: JWT_SECRET must be at least 32 characters")
	}
	if c.TokenExpiration <= 0 {
		return fmt.Errorf("config: token expiration must be positive")
	}
	return nil
}

// ConfigFromEnv builds an AppConfig from the process environment, applying
// defaults for everything optional. Load a .env beforehand if needed.
func ConfigFromEnv() (*AppConfig, error) {
	cfg := &AppConfig{
		ServerAddress:        envOr("SERVER_ADDRESS", ":3000"),
		SigningKey:           os.Getenv("JWT_SECRET"),
		TokenExpiration:      envIntOr("JWT_EXPIRES_IN_HOURS", 24),
		Issuer:               envOr("JWT_ISSUER", "landmark-backend"),
		ContextKey:           envOr("AUTH_CONTEXT_KEY", "user"),
		CookieName:           envOr("AUTH_COOKIE_NAME", "jwt"),
		BcryptCost:           envIntOr("BCRYPT_COST", 12),
		ResetTokenTTL:        envDurationOr("RESET_TOKEN_TTL", 10*time.Minute),
		VerificationTokenTTL: envDurationOr("VERIFICATION_TOKEN_TTL", 24*time.Hour),
		DSN:                  envOr("DATABASE_DSN", "file:landmark.db?cache=shared&mode=rwc"),
		Debug:                os.Getenv("APP_ENV") == "development",
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     envIntOr("SMTP_PORT", 587),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("SMTP_FROM"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// PersistenceConfig is the configuration surface the persistence client
// consumes. Connection details come through the already opened *sql.DB, so
// only the ancillary knobs matter here.
type PersistenceConfig struct {
	Debug                 bool
	Driver                string
	Server                string
	Database              string
	OtelIdentifier        string
	PingTimeoutExpression string
}

func (p PersistenceConfig) GetDebug() bool            { return p.Debug }
func (p PersistenceConfig) GetDriver() string         { return p.Driver }
func (p PersistenceConfig) GetServer() string         { return p.Server }
func (p PersistenceConfig) GetDatabase() string       { return p.Database }
func (p PersistenceConfig) GetOtelIdentifier() string { return p.OtelIdentifier }

func (p PersistenceConfig) GetPingTimeout() time.Duration {
	dur, err := time.ParseDuration(p.PingTimeoutExpression)
	if err != nil {
		return 5 * time.Second
	}
	return dur
}

// GetPersistence derives the persistence knobs from the app configuration.
func (c *AppConfig) GetPersistence() PersistenceConfig {
	return PersistenceConfig{
		Debug:                 c.Debug,
		Driver:                "sqlite",
		Server:                c.DSN,
		Database:              c.DSN,
		OtelIdentifier:        "landmark-backend",
		PingTimeoutExpression: "5s",
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envDurationOr(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

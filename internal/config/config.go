// Package config loads service configuration from the environment. A .env
// file is honored when present; the environment wins.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Auth is the configuration of the auth-facing HTTP service.
type Auth struct {
	Env      string
	HTTPAddr string

	DBAddr string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RabbitURL      string
	Exchange       string
	PublishTimeout time.Duration

	JWTSecret      string
	InternalSecret string

	PasswordResetBaseURL  string
	PasswordResetTokenTTL time.Duration

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Mailer is the configuration of the mail consumer service.
type Mailer struct {
	Env string

	RabbitURL     string
	Exchange      string
	Queue         string
	Prefetch      int
	ConsumeTag    string
	MaxReconnects int

	// RedisAddr empty means mail deduplication is off.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MailSender string // "smtp" or "fake"

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPTimeout  time.Duration
	SMTPInsecure bool

	DispatchTimeout time.Duration
	IdempotencyTTL  time.Duration

	OpsAddr         string
	ShutdownTimeout time.Duration
}

func LoadAuth() (*Auth, error) {
	_ = godotenv.Load()

	cfg := &Auth{}
	cfg.Env = getEnv("APP_ENV", "dev")
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")

	var err error
	if cfg.DBAddr, err = requireEnv("DB_ADDR"); err != nil {
		return nil, err
	}
	if cfg.RedisAddr, err = requireEnv("REDIS_ADDR"); err != nil {
		return nil, err
	}
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.RedisDB = getInt("REDIS_DB", 0)

	if cfg.RabbitURL, err = requireEnv("RABBIT_URL"); err != nil {
		return nil, err
	}
	cfg.Exchange = getEnv("RABBIT_EXCHANGE", "jobboard.events")
	cfg.PublishTimeout = getDuration("PUBLISH_TIMEOUT", 5*time.Second)

	if cfg.JWTSecret, err = requireEnv("JWT_SECRET"); err != nil {
		return nil, err
	}
	if cfg.InternalSecret, err = requireEnv("INTERNAL_SECRET"); err != nil {
		return nil, err
	}

	if cfg.PasswordResetBaseURL, err = requireEnv("PASSWORD_RESET_BASE_URL"); err != nil {
		return nil, err
	}
	// the signed token is string-appended to this URL
	if !strings.Contains(cfg.PasswordResetBaseURL, "token=") {
		return nil, fmt.Errorf("PASSWORD_RESET_BASE_URL must contain %q: %q", "token=", cfg.PasswordResetBaseURL)
	}
	cfg.PasswordResetTokenTTL = getDuration("PASSWORD_RESET_TOKEN_TTL", 15*time.Minute)

	cfg.ReadTimeout = getDuration("HTTP_READ_TIMEOUT", 10*time.Second)
	cfg.WriteTimeout = getDuration("HTTP_WRITE_TIMEOUT", 15*time.Second)
	cfg.IdleTimeout = getDuration("HTTP_IDLE_TIMEOUT", 60*time.Second)
	cfg.ShutdownTimeout = getDuration("SHUTDOWN_TIMEOUT", 10*time.Second)

	return cfg, nil
}

func LoadMailer() (*Mailer, error) {
	_ = godotenv.Load()

	cfg := &Mailer{}
	cfg.Env = getEnv("APP_ENV", "dev")

	var err error
	if cfg.RabbitURL, err = requireEnv("RABBIT_URL"); err != nil {
		return nil, err
	}
	cfg.Exchange = getEnv("RABBIT_EXCHANGE", "jobboard.events")
	cfg.Queue = getEnv("RABBIT_QUEUE", "send-mail")
	cfg.Prefetch = getInt("RABBIT_PREFETCH", 10)
	cfg.ConsumeTag = getEnv("RABBIT_CONSUMER_TAG", "mail-service")
	cfg.MaxReconnects = getInt("RABBIT_MAX_RECONNECTS", 20)

	cfg.RedisAddr = getEnv("REDIS_ADDR", "")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.RedisDB = getInt("REDIS_DB", 0)

	cfg.MailSender = getEnv("MAIL_SENDER", "fake")

	cfg.SMTPHost = getEnv("SMTP_HOST", "")
	cfg.SMTPPort = getInt("SMTP_PORT", 587)
	cfg.SMTPUsername = getEnv("SMTP_USERNAME", "")
	cfg.SMTPPassword = getEnv("SMTP_PASSWORD", "")
	cfg.SMTPFrom = getEnv("SMTP_FROM", cfg.SMTPUsername)
	cfg.SMTPTimeout = getDuration("SMTP_TIMEOUT", 10*time.Second)
	cfg.SMTPInsecure = getBool("SMTP_INSECURE", false)

	if cfg.MailSender == "smtp" && cfg.SMTPHost == "" {
		return nil, fmt.Errorf("smtp sender selected but missing SMTP_HOST")
	}

	cfg.DispatchTimeout = getDuration("DISPATCH_TIMEOUT", 30*time.Second)
	cfg.IdempotencyTTL = getDuration("MAIL_IDEMPOTENCY_TTL", 24*time.Hour)

	cfg.OpsAddr = getEnv("OPS_ADDR", ":8090")
	cfg.ShutdownTimeout = getDuration("SHUTDOWN_TIMEOUT", 10*time.Second)

	return cfg, nil
}

func requireEnv(key string) (string, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return "", fmt.Errorf("missing required env var: %s", key)
	}
	return v, nil
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n := def
	_, _ = fmt.Sscanf(v, "%d", &n)
	if n <= 0 {
		return def
	}
	return n
}

func getDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func getBool(key string, def bool) bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	switch v {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

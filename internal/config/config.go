package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env          string
	Addr         string
	PublicURL    *url.URL
	DBDSN        string
	CookieSecret string
	LogLevel     string

	AppName         string
	SessionTTL      time.Duration
	VerificationTTL time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPStartTLS bool
	EmailFrom    string
}

func Load() (Config, error) {
	if err := loadDotEnvFile(".env", os.Setenv, os.Getenv); err != nil {
		return Config{}, err
	}
	return LoadFromEnv(os.Getenv)
}

func LoadFromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		Env:          getenv("APP_ENV"),
		Addr:         getenv("APP_ADDR"),
		DBDSN:        getenv("APP_DB_DSN"),
		LogLevel:     getenv("APP_LOG_LEVEL"),
		CookieSecret: getenv("APP_COOKIE_SECRET"),
		AppName:      getenv("APP_NAME"),
		SMTPHost:     getenv("APP_SMTP_HOST"),
		SMTPUsername: getenv("APP_SMTP_USERNAME"),
		SMTPPassword: getenv("APP_SMTP_PASSWORD"),
		EmailFrom:    strings.TrimSpace(getenv("APP_EMAIL_FROM")),
	}

	if cfg.Env == "" {
		cfg.Env = "dev"
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8080"
	}
	if cfg.AppName == "" {
		cfg.AppName = "Todo"
	}

	publicURLRaw := getenv("APP_PUBLIC_URL")
	if publicURLRaw != "" {
		parsed, err := url.Parse(publicURLRaw)
		if err != nil {
			return Config{}, fmt.Errorf("APP_PUBLIC_URL: %w", err)
		}
		if !parsed.IsAbs() || parsed.Host == "" {
			return Config{}, errors.New("APP_PUBLIC_URL: must be an absolute URL")
		}
		switch parsed.Scheme {
		case "http", "https":
		default:
			return Config{}, errors.New("APP_PUBLIC_URL: scheme must be http or https")
		}
		cfg.PublicURL = parsed
	}

	sessionTTL, err := durationVar(getenv, "APP_SESSION_TTL", 7*24*time.Hour)
	if err != nil {
		return Config{}, err
	}
	cfg.SessionTTL = sessionTTL

	verificationTTL, err := durationVar(getenv, "APP_VERIFICATION_TTL", 10*time.Minute)
	if err != nil {
		return Config{}, err
	}
	cfg.VerificationTTL = verificationTTL

	switch cfg.Env {
	case "dev", "prod", "test":
	default:
		return Config{}, errors.New("APP_ENV: must be one of dev, test, prod")
	}

	portRaw := getenv("APP_SMTP_PORT")
	if portRaw == "" {
		cfg.SMTPPort = 587
	} else {
		port, err := strconv.Atoi(portRaw)
		if err != nil || port < 1 || port > 65535 {
			return Config{}, errors.New("APP_SMTP_PORT: must be a port number")
		}
		cfg.SMTPPort = port
	}

	switch strings.ToLower(getenv("APP_SMTP_STARTTLS")) {
	case "", "1", "true", "yes":
		cfg.SMTPStartTLS = true
	case "0", "false", "no":
		cfg.SMTPStartTLS = false
	default:
		return Config{}, errors.New("APP_SMTP_STARTTLS: must be a boolean")
	}

	if cfg.IsProd() {
		if cfg.PublicURL == nil {
			return Config{}, errors.New("APP_PUBLIC_URL: required in prod")
		}
		if cfg.DBDSN == "" {
			return Config{}, errors.New("APP_DB_DSN: required in prod")
		}
		if len(cfg.CookieSecret) < 32 {
			return Config{}, errors.New("APP_COOKIE_SECRET: must be at least 32 bytes in prod")
		}
		if cfg.SMTPHost == "" {
			return Config{}, errors.New("APP_SMTP_HOST: required in prod")
		}
		if cfg.EmailFrom == "" {
			return Config{}, errors.New("APP_EMAIL_FROM: required in prod")
		}
	}

	return cfg, nil
}

func durationVar(getenv func(string) string, name string, fallback time.Duration) (time.Duration, error) {
	raw := getenv(name)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: must be > 0", name)
	}
	return d, nil
}

func (c Config) IsProd() bool { return c.Env == "prod" }

func (c Config) CookieSecure() bool {
	if c.PublicURL != nil {
		return c.PublicURL.Scheme == "https"
	}
	return c.IsProd()
}

// LoginURL is where verified accounts are pointed at in the welcome
// email. Empty when no public URL is configured.
func (c Config) LoginURL() string {
	if c.PublicURL == nil {
		return ""
	}
	u := *c.PublicURL
	u.Path = strings.TrimRight(u.Path, "/") + "/signin"
	return u.String()
}

// Package config loads portal settings from an optional config file, a
// .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the resolved portal configuration.
type Config struct {
	Addr          string
	DBPath        string
	SecretKey     string
	UploadDir     string
	MaxPhotoBytes int64
	LogLevel      string
	LogFile       string
	BaseURL       string
	CookieSecure  bool

	// TrustProxy makes the server take client addresses from
	// X-Forwarded-For and X-Real-IP. Enable only behind a reverse proxy
	// that overwrites those headers.
	TrustProxy bool

	// AllowAdminSignup lets the public registration form create admins.
	AllowAdminSignup bool

	LoginAttemptsPerMinute int

	Mail  MailConfig
	Redis RedisConfig
}

// MailConfig holds outgoing SMTP settings.
type MailConfig struct {
	Server   string
	Port     int
	UseTLS   bool
	Username string
	Password string
	Sender   string
}

// RedisConfig points at an optional redis used for shared login throttling.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

var defaults = map[string]any{
	"listen_addr":               ":8080",
	"database_path":             "lostfound.sqlite3",
	"secret_key":                "",
	"upload_folder":             "uploads",
	"max_photo_bytes":           5 << 20,
	"log_level":                 "info",
	"log_file":                  "",
	"base_url":                  "",
	"cookie_secure":             false,
	"trust_proxy":               false,
	"allow_admin_signup":        true,
	"login_attempts_per_minute": 10,
	"mail.server":               "smtp.gmail.com",
	"mail.port":                 587,
	"mail.use_tls":              true,
	"mail.username":             "",
	"mail.password":             "",
	"mail.default_sender":       "",
	"redis.addr":                "",
	"redis.password":            "",
	"redis.db":                  0,
}

// Load reads configuration. Precedence, highest first: environment
// variables (including those from .env), the config file at path (if
// non-empty), built-in defaults. Keys map to environment variables by
// upper-casing and replacing dots with underscores, e.g. mail.server is
// MAIL_SERVER.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Legacy name used by older deployments.
	_ = v.BindEnv("database_path", "DATABASE_PATH", "DATABASE_URL")

	cfg := &Config{
		Addr:                   v.GetString("listen_addr"),
		DBPath:                 strings.TrimPrefix(v.GetString("database_path"), "sqlite:///"),
		SecretKey:              v.GetString("secret_key"),
		UploadDir:              v.GetString("upload_folder"),
		MaxPhotoBytes:          v.GetInt64("max_photo_bytes"),
		LogLevel:               strings.ToLower(v.GetString("log_level")),
		LogFile:                v.GetString("log_file"),
		BaseURL:                v.GetString("base_url"),
		CookieSecure:           v.GetBool("cookie_secure"),
		TrustProxy:             v.GetBool("trust_proxy"),
		AllowAdminSignup:       v.GetBool("allow_admin_signup"),
		LoginAttemptsPerMinute: v.GetInt("login_attempts_per_minute"),
		Mail: MailConfig{
			Server:   v.GetString("mail.server"),
			Port:     v.GetInt("mail.port"),
			UseTLS:   v.GetBool("mail.use_tls"),
			Username: v.GetString("mail.username"),
			Password: v.GetString("mail.password"),
			Sender:   v.GetString("mail.default_sender"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
	}

	if cfg.Mail.Sender == "" {
		cfg.Mail.Sender = cfg.Mail.Username
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DBPath) == "" {
		return errors.New("database path must not be empty")
	}
	if strings.TrimSpace(c.UploadDir) == "" {
		return errors.New("upload folder must not be empty")
	}
	if c.MaxPhotoBytes <= 0 {
		return fmt.Errorf("max photo bytes must be positive, got %d", c.MaxPhotoBytes)
	}
	if c.Mail.Port <= 0 || c.Mail.Port > 65535 {
		return fmt.Errorf("invalid mail port %d", c.Mail.Port)
	}
	if c.LoginAttemptsPerMinute < 0 {
		return fmt.Errorf("login attempts per minute must not be negative, got %d", c.LoginAttemptsPerMinute)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() slog.Level {
	l, _ := parseLevel(c.LogLevel)
	return l
}

func parseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"koffa/pkg/logger"
)

type Config struct {
	HTTPPort    string        `env:"HTTP_PORT" envDefault:"8080"`
	Env         string        `env:"ENV" envDefault:"development"`
	CORSOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	AppBaseURL  string        `env:"APP_BASE_URL"`
	Log         LogConfig     `envPrefix:"LOG_"`
	DB          DBConfig      `envPrefix:"DB_"`
	Supabase    SupabaseConfig
	Invitations InvitationsConfig `envPrefix:"INVITATION_"`
	Settings    SettingsConfig    `envPrefix:"SETTINGS_"`
	Email       EmailConfig
}

type LogConfig struct {
	Level  string `env:"LEVEL"`
	Format string `env:"FORMAT" envDefault:"json"`
}

type DBConfig struct {
	DSN             string        `env:"DSN"`
	Host            string        `env:"HOST" envDefault:"localhost"`
	Port            string        `env:"PORT" envDefault:"5432"`
	User            string        `env:"USER" envDefault:"postgres"`
	Password        string        `env:"PASSWORD" envDefault:"postgres"`
	Name            string        `env:"NAME" envDefault:"koffa"`
	SSLMode         string        `env:"SSLMODE" envDefault:"disable"`
	TimeZone        string        `env:"TIMEZONE" envDefault:"UTC"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"30m"`
	AutoMigrate     bool          `env:"AUTO_MIGRATE" envDefault:"true"`
}

type SupabaseConfig struct {
	URL            string        `env:"SUPABASE_URL"`
	PublishableKey string        `env:"SUPABASE_PUBLISHABLE_KEY"`
	JWTSecret      string        `env:"SUPABASE_JWT_SECRET"`
	AuthTimeout    time.Duration `env:"SUPABASE_AUTH_TIMEOUT" envDefault:"5s"`
	SkipAuth       bool          `env:"AUTH_SKIP" envDefault:"false"`
	MockUserID     string        `env:"AUTH_MOCK_USER_ID" envDefault:"00000000-0000-0000-0000-000000000001"`
	MockUserEmail  string        `env:"AUTH_MOCK_USER_EMAIL"`
	MockUserName   string        `env:"AUTH_MOCK_USER_NAME"`
	MockUserAvatar string        `env:"AUTH_MOCK_USER_AVATAR_URL"`
}

type InvitationsConfig struct {
	TTL       time.Duration `env:"TTL" envDefault:"168h"`
	Precreate bool          `env:"PRECREATE" envDefault:"true"`
}

// SettingsConfig selects the family settings store: "postgres" or "memory".
type SettingsConfig struct {
	Store string `env:"STORE" envDefault:"postgres"`
}

// EmailConfig drives invitation mail. Without a sender address invitations
// are created but never mailed.
type EmailConfig struct {
	FromEmail string `env:"SES_FROM_EMAIL"`
	FromName  string `env:"SES_FROM_NAME" envDefault:"Koffa"`
	AWSRegion string `env:"AWS_REGION" envDefault:"eu-west-1"`
}

func (c EmailConfig) Enabled() bool {
	return strings.TrimSpace(c.FromEmail) != ""
}

func Load(log logger.Logger) (Config, error) {
	if err := loadDotEnv(log); err != nil {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	if c.Invitations.TTL <= 0 {
		return fmt.Errorf("INVITATION_TTL must be positive, got %s", c.Invitations.TTL)
	}
	switch c.Settings.Store {
	case "postgres", "memory":
	default:
		return fmt.Errorf("SETTINGS_STORE must be postgres or memory, got %q", c.Settings.Store)
	}
	if c.Email.Enabled() && c.AppBaseURL == "" {
		return fmt.Errorf("APP_BASE_URL is required when SES_FROM_EMAIL is set")
	}
	return nil
}

func (c DBConfig) GetDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.TimeZone
}

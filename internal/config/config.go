package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration, loaded from PACKLIST_* environment
// variables with sensible defaults for local development.
type Config struct {
	Port     string
	DBPath   string
	LogLevel string
	LogFmt   string

	// SessionTTL is how long opaque session tokens stay valid.
	SessionTTL time.Duration

	// JWTSecret enables the hosted-auth compatibility path: when set, the
	// sb-access-token cookie is verified as an HS256 JWT instead of being
	// looked up in the sessions table.
	JWTSecret string

	// CookieSecure controls the Secure flag on the session cookie.
	CookieSecure bool

	OpenAIKey     string
	OpenAIModel   string
	AIMonthlyCap  int
	WeatherUnits  string

	Backup BackupConfig
}

// BackupConfig holds S3-compatible backup settings. Backups are disabled
// unless bucket, access key, secret key, and passphrase are all set.
type BackupConfig struct {
	Endpoint      string
	Bucket        string
	Region        string
	AccessKey     string
	SecretKey     string
	Passphrase    string
	ScheduleHour  int
	RetentionDays int
}

// Load reads configuration from the environment.
func Load() (Config, error) {
	cfg := Config{
		Port:         getenv("PACKLIST_PORT", "8080"),
		DBPath:       getenv("PACKLIST_DB_PATH", "packlist.db"),
		LogLevel:     getenv("PACKLIST_LOG_LEVEL", "info"),
		LogFmt:       getenv("PACKLIST_LOG_FORMAT", "text"),
		SessionTTL:   30 * 24 * time.Hour,
		JWTSecret:    os.Getenv("PACKLIST_JWT_SECRET"),
		CookieSecure: os.Getenv("PACKLIST_COOKIE_SECURE") == "true",
		OpenAIKey:    os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:  getenv("OPENAI_MODEL", "gpt-4o-mini"),
		WeatherUnits: getenv("PACKLIST_WEATHER_UNITS", "fahrenheit"),
		Backup: BackupConfig{
			Endpoint:      os.Getenv("PACKLIST_S3_ENDPOINT"),
			Bucket:        os.Getenv("PACKLIST_S3_BUCKET"),
			Region:        getenv("PACKLIST_S3_REGION", "auto"),
			AccessKey:     os.Getenv("PACKLIST_S3_ACCESS_KEY"),
			SecretKey:     os.Getenv("PACKLIST_S3_SECRET_KEY"),
			Passphrase:    os.Getenv("PACKLIST_BACKUP_PASSPHRASE"),
			ScheduleHour:  3,
			RetentionDays: 30,
		},
	}

	cfg.AIMonthlyCap = 50
	if v := os.Getenv("PACKLIST_AI_MONTHLY_CAP"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return Config{}, fmt.Errorf("invalid PACKLIST_AI_MONTHLY_CAP %q", v)
		}
		cfg.AIMonthlyCap = n
	}

	if v := os.Getenv("PACKLIST_SESSION_TTL_HOURS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("invalid PACKLIST_SESSION_TTL_HOURS %q", v)
		}
		cfg.SessionTTL = time.Duration(n) * time.Hour
	}

	if v := os.Getenv("PACKLIST_BACKUP_HOUR"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > 23 {
			return Config{}, fmt.Errorf("invalid PACKLIST_BACKUP_HOUR %q", v)
		}
		cfg.Backup.ScheduleHour = n
	}

	if v := os.Getenv("PACKLIST_BACKUP_RETENTION_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("invalid PACKLIST_BACKUP_RETENTION_DAYS %q", v)
		}
		cfg.Backup.RetentionDays = n
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

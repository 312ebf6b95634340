package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database      DatabaseConfig
	Redis         RedisConfig
	JWT           JWTConfig
	CORS          CORSConfig
	Log           LogConfig
	Leave         LeaveConfig
	Notifications NotificationConfig
	Mail          MailConfig
	Cache         CacheConfig
	Reports       ReportsConfig
	Documents     DocumentsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig describes how bearer tokens issued by the login service are verified.
type JWTConfig struct {
	Secret   string
	Issuer   string
	Audience string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// LeaveConfig tunes the approval policy.
type LeaveConfig struct {
	StrictCasualMatch bool
	CasualTypeName    string
	CasualHODMaxDays  int
}

// NotificationConfig controls retention of read notifications.
type NotificationConfig struct {
	RetentionDays   int
	CleanupEnabled  bool
	CleanupInterval time.Duration
}

// MailConfig configures outbound email delivery and its worker pool.
type MailConfig struct {
	Enabled    bool
	Host       string
	Port       int
	Username   string
	Password   string
	FromEmail  string
	FromName   string
	BaseURL    string
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
}

// CacheConfig governs the balance read cache.
type CacheConfig struct {
	BalanceTTL time.Duration
}

// ReportsConfig limits report listing size.
type ReportsConfig struct {
	MaxRows int
}

// DocumentsConfig locates uploaded supporting documents and signs download links.
type DocumentsConfig struct {
	BaseDir       string
	SigningSecret string
	LinkTTL       time.Duration
	Required      bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:   v.GetString("JWT_SECRET"),
		Issuer:   v.GetString("JWT_ISSUER"),
		Audience: v.GetString("JWT_AUDIENCE"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	casualMax := v.GetInt("LEAVE_CASUAL_HOD_MAX_DAYS")
	if casualMax <= 0 {
		casualMax = 3
	}
	cfg.Leave = LeaveConfig{
		StrictCasualMatch: v.GetBool("LEAVE_STRICT_CASUAL_MATCH"),
		CasualTypeName:    v.GetString("LEAVE_CASUAL_TYPE_NAME"),
		CasualHODMaxDays:  casualMax,
	}

	cfg.Notifications = NotificationConfig{
		RetentionDays:   v.GetInt("NOTIFICATION_RETENTION_DAYS"),
		CleanupEnabled:  v.GetBool("ENABLE_NOTIFICATION_CLEANUP"),
		CleanupInterval: parseDuration(v.GetString("NOTIFICATION_CLEANUP_INTERVAL"), 24*time.Hour),
	}

	cfg.Mail = MailConfig{
		Enabled:    v.GetBool("ENABLE_MAIL"),
		Host:       v.GetString("SMTP_HOST"),
		Port:       v.GetInt("SMTP_PORT"),
		Username:   v.GetString("SMTP_USERNAME"),
		Password:   v.GetString("SMTP_PASSWORD"),
		FromEmail:  v.GetString("SMTP_FROM_EMAIL"),
		FromName:   v.GetString("SMTP_FROM_NAME"),
		BaseURL:    v.GetString("APP_BASE_URL"),
		Workers:    v.GetInt("MAIL_WORKERS"),
		BufferSize: v.GetInt("MAIL_BUFFER_SIZE"),
		MaxRetries: v.GetInt("MAIL_MAX_RETRIES"),
		RetryDelay: parseDuration(v.GetString("MAIL_RETRY_DELAY"), 5*time.Second),
	}

	cfg.Cache = CacheConfig{
		BalanceTTL: parseDuration(v.GetString("BALANCE_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Reports = ReportsConfig{
		MaxRows: v.GetInt("REPORTS_MAX_ROWS"),
	}

	cfg.Documents = DocumentsConfig{
		BaseDir:       v.GetString("DOCUMENTS_DIR"),
		SigningSecret: v.GetString("DOCUMENTS_SIGNING_SECRET"),
		LinkTTL:       parseDuration(v.GetString("DOCUMENTS_LINK_TTL"), 15*time.Minute),
		Required:      v.GetBool("DOCUMENTS_VERIFY_EXISTS"),
	}
	if cfg.Documents.SigningSecret == "" {
		cfg.Documents.SigningSecret = cfg.JWT.Secret
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "faculty_leave")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "")
	v.SetDefault("JWT_AUDIENCE", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("LEAVE_STRICT_CASUAL_MATCH", false)
	v.SetDefault("LEAVE_CASUAL_TYPE_NAME", "casual_leave")
	v.SetDefault("LEAVE_CASUAL_HOD_MAX_DAYS", 3)

	v.SetDefault("NOTIFICATION_RETENTION_DAYS", 90)
	v.SetDefault("ENABLE_NOTIFICATION_CLEANUP", false)
	v.SetDefault("NOTIFICATION_CLEANUP_INTERVAL", "24h")

	v.SetDefault("ENABLE_MAIL", false)
	v.SetDefault("SMTP_HOST", "smtp.gmail.com")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USERNAME", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("SMTP_FROM_EMAIL", "noreply@example.com")
	v.SetDefault("SMTP_FROM_NAME", "Faculty Leave System")
	v.SetDefault("APP_BASE_URL", "http://localhost:8080")
	v.SetDefault("MAIL_WORKERS", 2)
	v.SetDefault("MAIL_BUFFER_SIZE", 64)
	v.SetDefault("MAIL_MAX_RETRIES", 3)
	v.SetDefault("MAIL_RETRY_DELAY", "5s")

	v.SetDefault("BALANCE_CACHE_TTL", "5m")
	v.SetDefault("REPORTS_MAX_ROWS", 5000)

	v.SetDefault("DOCUMENTS_DIR", "./uploads")
	v.SetDefault("DOCUMENTS_SIGNING_SECRET", "")
	v.SetDefault("DOCUMENTS_LINK_TTL", "15m")
	v.SetDefault("DOCUMENTS_VERIFY_EXISTS", false)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// AngelaMos | 2026
// config.go

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"

	AuthModeStatic = "static"
	AuthModeStored = "stored"

	MailDriverSMTP   = "smtp"
	MailDriverResend = "resend"
	MailDriverLog    = "log"

	ImageDriverS3    = "s3"
	ImageDriverLocal = "local"
)

type Config struct {
	App       AppConfig       `koanf:"app"`
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Redis     RedisConfig     `koanf:"redis"`
	JWT       JWTConfig       `koanf:"jwt"`
	Auth      AuthConfig      `koanf:"auth"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	CORS      CORSConfig      `koanf:"cors"`
	Log       LogConfig       `koanf:"log"`
	Otel      OtelConfig      `koanf:"otel"`
	Mail      MailConfig      `koanf:"mail"`
	Images    ImageConfig     `koanf:"images"`
	Contact   ContactConfig   `koanf:"contact"`
}

type AppConfig struct {
	Name        string `koanf:"name"`
	Company     string `koanf:"company"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	RequestTimeout  time.Duration `koanf:"request_timeout"`
	MaxBodyBytes    int64         `koanf:"max_body_bytes"`
}

type DatabaseConfig struct {
	URL              string        `koanf:"url"`
	MaxOpenConns     int           `koanf:"max_open_conns"`
	MaxIdleConns     int           `koanf:"max_idle_conns"`
	ConnMaxLifetime  time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime  time.Duration `koanf:"conn_max_idle_time"`
	AutoMigrate      bool          `koanf:"auto_migrate"`
	ApplicationName  string        `koanf:"application_name"`
	StatementTimeout time.Duration `koanf:"statement_timeout"`
}

type RedisConfig struct {
	URL          string `koanf:"url"`
	PoolSize     int    `koanf:"pool_size"`
	MinIdleConns int    `koanf:"min_idle_conns"`
}

type JWTConfig struct {
	Secret            string        `koanf:"secret"`
	AccessTokenExpire time.Duration `koanf:"access_token_expire"`
	Issuer            string        `koanf:"issuer"`
}

type AuthConfig struct {
	Mode             string        `koanf:"mode"`
	AdminUsername    string        `koanf:"admin_username"`
	AdminPassword    string        `koanf:"admin_password"`
	CacheTTL         time.Duration `koanf:"cache_ttl"`
	CacheSize        int           `koanf:"cache_size"`
	MaxLoginAttempts int           `koanf:"max_login_attempts"`
	LockDuration     time.Duration `koanf:"lock_duration"`
}

type RateLimitConfig struct {
	Requests int           `koanf:"requests"`
	Window   time.Duration `koanf:"window"`
	Burst    int           `koanf:"burst"`

	Contact   WindowLimit `koanf:"contact"`
	Login     WindowLimit `koanf:"login"`
	Verify    WindowLimit `koanf:"verify"`
	Feedback  WindowLimit `koanf:"feedback"`
	Admin     WindowLimit `koanf:"admin"`
	EmailTest WindowLimit `koanf:"email_test"`
}

type WindowLimit struct {
	Requests int           `koanf:"requests"`
	Window   time.Duration `koanf:"window"`
}

type CORSConfig struct {
	AllowedOrigins   []string `koanf:"allowed_origins"`
	AllowedMethods   []string `koanf:"allowed_methods"`
	AllowedHeaders   []string `koanf:"allowed_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           int      `koanf:"max_age"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type OtelConfig struct {
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	Enabled     bool    `koanf:"enabled"`
	Insecure    bool    `koanf:"insecure"`
	SampleRate  float64 `koanf:"sample_rate"`
}

type MailConfig struct {
	Driver       string        `koanf:"driver"`
	Host         string        `koanf:"host"`
	Port         int           `koanf:"port"`
	Username     string        `koanf:"username"`
	Password     string        `koanf:"password"`
	From         string        `koanf:"from"`
	ResendAPIKey string        `koanf:"resend_api_key"`
	AdminEmails  []string      `koanf:"admin_emails"`
	NotifySender bool          `koanf:"notify_sender"`
	Timeout      time.Duration `koanf:"timeout"`
	AsyncNotify  bool          `koanf:"async_notify"`
}

type ImageConfig struct {
	Driver         string        `koanf:"driver"`
	Bucket         string        `koanf:"bucket"`
	Region         string        `koanf:"region"`
	AccessKey      string        `koanf:"access_key"`
	SecretKey      string        `koanf:"secret_key"`
	Endpoint       string        `koanf:"endpoint"`
	BaseURL        string        `koanf:"base_url"`
	LocalDir       string        `koanf:"local_dir"`
	PublicPath     string        `koanf:"public_path"`
	Folder         string        `koanf:"folder"`
	MaxUploadBytes int64         `koanf:"max_upload_bytes"`
	UploadTimeout  time.Duration `koanf:"upload_timeout"`
	MaxWidth       int           `koanf:"max_width"`
	MaxHeight      int           `koanf:"max_height"`
}

type ContactConfig struct {
	DuplicateWindow time.Duration `koanf:"duplicate_window"`
}

var (
	cfg  *Config
	once sync.Once
)

func Load(configPath string) (*Config, error) {
	var loadErr error

	once.Do(func() {
		cfg, loadErr = load(configPath)
	})

	if loadErr != nil {
		return nil, loadErr
	}

	return cfg, nil
}

func Get() *Config {
	if cfg == nil {
		panic("config not loaded: call Load() first")
	}
	return cfg
}

func load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("load config file: %w", err)
			}
		}
	}

	if err := k.Load(env.ProviderWithValue("", ".", envKeyValue), nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	if extra := numberedAdminEmails(); len(extra) > 0 {
		merged := append(k.Strings("mail.admin_emails"), extra...)
		if err := k.Set("mail.admin_emails", merged); err != nil {
			return nil, fmt.Errorf("merge admin emails: %w", err)
		}
	}

	c := &Config{}
	if err := k.Unmarshal("", c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate(c); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"app.name":        "Shyam International Contact API",
		"app.company":     "Shyam International",
		"app.version":     "1.0.0",
		"app.environment": EnvDevelopment,

		"server.host":             "0.0.0.0",
		"server.port":             5000,
		"server.read_timeout":     "30s",
		"server.write_timeout":    "35s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "15s",
		"server.request_timeout":  "30s",
		"server.max_body_bytes":   5 << 20,

		"database.max_open_conns":     25,
		"database.max_idle_conns":     5,
		"database.conn_max_lifetime":  "1h",
		"database.conn_max_idle_time": "30m",
		"database.auto_migrate":       true,
		"database.application_name":   "shyam-international-api",
		"database.statement_timeout":  "15s",

		"redis.pool_size":      10,
		"redis.min_idle_conns": 5,

		"jwt.access_token_expire": "24h",
		"jwt.issuer":              "shyam-international",

		"auth.mode":               AuthModeStatic,
		"auth.cache_ttl":          "5m",
		"auth.cache_size":         256,
		"auth.max_login_attempts": 5,
		"auth.lock_duration":      "2h",

		"rate_limit.requests": 300,
		"rate_limit.window":   "1m",
		"rate_limit.burst":    60,

		"rate_limit.contact.requests":    10,
		"rate_limit.contact.window":      "15m",
		"rate_limit.login.requests":      10,
		"rate_limit.login.window":        "15m",
		"rate_limit.verify.requests":     50,
		"rate_limit.verify.window":       "15m",
		"rate_limit.feedback.requests":   10,
		"rate_limit.feedback.window":     "1m",
		"rate_limit.admin.requests":      100,
		"rate_limit.admin.window":        "15m",
		"rate_limit.email_test.requests": 5,
		"rate_limit.email_test.window":   "1h",

		"cors.allowed_origins": []string{"http://localhost:3000"},
		"cors.allowed_methods": []string{
			"GET",
			"POST",
			"PUT",
			"PATCH",
			"DELETE",
			"OPTIONS",
		},
		"cors.allowed_headers": []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-Request-ID",
		},
		"cors.allow_credentials": true,
		"cors.max_age":           300,

		"log.level":  "info",
		"log.format": "json",

		"otel.enabled":      false,
		"otel.insecure":     true,
		"otel.sample_rate":  0.1,
		"otel.service_name": "exportsite-api",

		"mail.driver":        MailDriverLog,
		"mail.host":          "smtp.gmail.com",
		"mail.port":          587,
		"mail.notify_sender": true,
		"mail.timeout":       "15s",
		"mail.async_notify":  false,

		"images.driver":           ImageDriverLocal,
		"images.region":           "us-east-1",
		"images.local_dir":        "uploads",
		"images.public_path":      "/uploads",
		"images.folder":           "shyam-international",
		"images.max_upload_bytes": 10 << 20,
		"images.upload_timeout":   "10s",
		"images.max_width":        800,
		"images.max_height":       600,

		"contact.duplicate_window": "5m",
	}

	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return fmt.Errorf("set default %s: %w", key, err)
		}
	}

	return nil
}

var envKeyMap = map[string]string{
	"DATABASE_URL":                "database.url",
	"DATABASE_AUTO_MIGRATE":       "database.auto_migrate",
	"DATABASE_STATEMENT_TIMEOUT":  "database.statement_timeout",
	"REDIS_URL":                   "redis.url",
	"ENVIRONMENT":                 "app.environment",
	"NODE_ENV":                    "app.environment",
	"COMPANY_NAME":                "app.company",
	"HOST":                        "server.host",
	"PORT":                        "server.port",
	"LOG_LEVEL":                   "log.level",
	"LOG_FORMAT":                  "log.format",
	"JWT_SECRET":                  "jwt.secret",
	"JWT_ACCESS_TOKEN_EXPIRE":     "jwt.access_token_expire",
	"JWT_ISSUER":                  "jwt.issuer",
	"AUTH_MODE":                   "auth.mode",
	"ADMIN_USERNAME":              "auth.admin_username",
	"ADMIN_PASSWORD":              "auth.admin_password",
	"RATE_LIMIT_REQUESTS":         "rate_limit.requests",
	"RATE_LIMIT_WINDOW":           "rate_limit.window",
	"RATE_LIMIT_BURST":            "rate_limit.burst",
	"ALLOWED_ORIGINS":             "cors.allowed_origins",
	"OTEL_ENDPOINT":               "otel.endpoint",
	"OTEL_EXPORTER_OTLP_ENDPOINT": "otel.endpoint",
	"OTEL_SERVICE_NAME":           "otel.service_name",
	"OTEL_ENABLED":                "otel.enabled",
	"OTEL_INSECURE":               "otel.insecure",
	"OTEL_SAMPLE_RATE":            "otel.sample_rate",
	"MAIL_DRIVER":                 "mail.driver",
	"SMTP_HOST":                   "mail.host",
	"SMTP_PORT":                   "mail.port",
	"EMAIL_USER":                  "mail.username",
	"EMAIL_PASSWORD":              "mail.password",
	"MAIL_FROM":                   "mail.from",
	"RESEND_API_KEY":              "mail.resend_api_key",
	"ADMIN_EMAILS":                "mail.admin_emails",
	"MAIL_ASYNC":                  "mail.async_notify",
	"IMAGE_DRIVER":                "images.driver",
	"S3_BUCKET":                   "images.bucket",
	"S3_REGION":                   "images.region",
	"S3_KEY":                      "images.access_key",
	"S3_SECRET":                   "images.secret_key",
	"S3_ENDPOINT":                 "images.endpoint",
	"S3_URL":                      "images.base_url",
	"UPLOAD_DIR":                  "images.local_dir",
}

var listKeys = map[string]bool{
	"cors.allowed_origins": true,
	"mail.admin_emails":    true,
}

func envKeyValue(key, value string) (string, any) {
	mapped, ok := envKeyMap[key]
	if !ok {
		return "", nil
	}

	if listKeys[mapped] {
		return mapped, splitList(value)
	}

	return mapped, value
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func numberedAdminEmails() []string {
	var out []string
	for _, key := range []string{"ADMIN_EMAIL_1", "ADMIN_EMAIL_2", "ADMIN_EMAIL_3"} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func validate(c *Config) error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	switch c.Auth.Mode {
	case AuthModeStatic:
		if c.Auth.AdminUsername == "" || c.Auth.AdminPassword == "" {
			return fmt.Errorf(
				"ADMIN_USERNAME and ADMIN_PASSWORD are required in static auth mode",
			)
		}
	case AuthModeStored:
	default:
		return fmt.Errorf("unknown auth mode %q", c.Auth.Mode)
	}

	switch c.Mail.Driver {
	case MailDriverSMTP:
		if c.Mail.Username == "" {
			return fmt.Errorf("EMAIL_USER is required for the smtp mail driver")
		}
	case MailDriverResend:
		if c.Mail.ResendAPIKey == "" {
			return fmt.Errorf("RESEND_API_KEY is required for the resend mail driver")
		}
	case MailDriverLog:
	default:
		return fmt.Errorf("unknown mail driver %q", c.Mail.Driver)
	}

	switch c.Images.Driver {
	case ImageDriverS3:
		if c.Images.Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required for the s3 image driver")
		}
	case ImageDriverLocal:
		if c.Images.LocalDir == "" {
			return fmt.Errorf("images.local_dir is required for the local image driver")
		}
	default:
		return fmt.Errorf("unknown image driver %q", c.Images.Driver)
	}

	if c.CORS.AllowCredentials {
		for _, origin := range c.CORS.AllowedOrigins {
			if origin == "*" {
				return fmt.Errorf(
					"CORS wildcard '*' cannot be used with AllowCredentials",
				)
			}
		}
	}

	if c.App.Environment == EnvProduction {
		if c.Otel.Enabled && c.Otel.Insecure {
			return fmt.Errorf("OTEL_INSECURE must be false in production")
		}
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server.write_timeout must be positive")
	}

	if c.Contact.DuplicateWindow <= 0 {
		return fmt.Errorf("contact.duplicate_window must be positive")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == EnvProduction
}

func (c *Config) IsDevelopment() bool {
	return c.App.Environment == EnvDevelopment
}

func (s *ServerConfig) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Recipients returns the deduplicated admin notification list. The sender
// mailbox is included when NotifySender is set.
func (m *MailConfig) Recipients() []string {
	candidates := append([]string{}, m.AdminEmails...)
	if m.NotifySender && m.Username != "" {
		candidates = append(candidates, m.Username)
	}

	seen := make(map[string]struct{}, len(candidates))
	out := make([]string, 0, len(candidates))
	for _, addr := range candidates {
		addr = strings.TrimSpace(addr)
		if addr == "" {
			continue
		}
		key := strings.ToLower(addr)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, addr)
	}
	return out
}

// Sender is the From address used on outgoing mail.
func (m *MailConfig) Sender() string {
	if m.From != "" {
		return m.From
	}
	return m.Username
}

func (w WindowLimit) Enabled() bool {
	return w.Requests > 0 && w.Window > 0
}

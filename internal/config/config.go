package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v2"
)

// Config - конфигурация приложения.
// Порядок источников: envDefault -> config.yaml -> переменные окружения.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	JWT           JWTConfig           `yaml:"jwt"`
	Security      SecurityConfig      `yaml:"security"`
	Email         EmailConfig         `yaml:"email"`
	AddressLookup AddressLookupConfig `yaml:"address_lookup"`
	Redis         RedisConfig         `yaml:"redis"`
	RateLimit     RateLimitConfig     `yaml:"rate_limit"`
}

type ServerConfig struct {
	Host            string   `yaml:"host" env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port            int      `yaml:"port" env:"SERVER_PORT" envDefault:"5000"`
	Env             string   `yaml:"env" env:"SERVER_ENV" envDefault:"development"`
	FrontendBaseURL string   `yaml:"frontend_base_url" env:"FRONTEND_BASE_URL" envDefault:"http://localhost:3000"`
	CORSOrigins     []string `yaml:"cors_origins" env:"CORS_ORIGINS" envDefault:"http://localhost:3000,http://127.0.0.1:3000"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver" env:"DATABASE_DRIVER" envDefault:"postgres"`
	DSN    string `yaml:"url" env:"DATABASE_URL"`
}

type JWTConfig struct {
	Secret         string `yaml:"secret" env:"JWT_SECRET_KEY" envDefault:"dev-secret-change-me"`
	TTLHours       int    `yaml:"ttl_hours" env:"JWT_TTL_HOURS" envDefault:"168"`
	CookieName     string `yaml:"cookie_name" env:"JWT_COOKIE_NAME" envDefault:"access_token_cookie"`
	CookieSecure   bool   `yaml:"cookie_secure" env:"JWT_COOKIE_SECURE" envDefault:"false"`
	CookieSameSite string `yaml:"cookie_samesite" env:"JWT_COOKIE_SAMESITE" envDefault:"Lax"`
}

type SecurityConfig struct {
	// TokenSecret подписывает токены подтверждения email; по умолчанию совпадает с JWT.Secret
	TokenSecret         string        `yaml:"token_secret" env:"SECRET_KEY"`
	VerifyTokenMaxAge   time.Duration `yaml:"verify_token_max_age" env:"VERIFY_TOKEN_MAX_AGE" envDefault:"24h"`
	SetupWindowDays     int           `yaml:"setup_window_days" env:"SETUP_WINDOW_DAYS" envDefault:"30"`
	ResetCodeTTL        time.Duration `yaml:"reset_code_ttl" env:"RESET_CODE_TTL" envDefault:"30m"`
	ResetSweepInterval  time.Duration `yaml:"reset_sweep_interval" env:"RESET_SWEEP_INTERVAL" envDefault:"15m"`
	AllowedEmailDomains []string      `yaml:"allowed_email_domains" env:"ALLOWED_EMAIL_DOMAINS" envDefault:"@dtgpower.com,@amazon.com"`
}

type EmailConfig struct {
	SMTPHost     string `yaml:"smtp_host" env:"MAIL_SERVER"`
	SMTPPort     int    `yaml:"smtp_port" env:"MAIL_PORT" envDefault:"587"`
	SMTPUser     string `yaml:"smtp_user" env:"MAIL_USERNAME"`
	SMTPPassword string `yaml:"smtp_password" env:"MAIL_PASSWORD"`
	FromEmail    string `yaml:"from_email" env:"MAIL_DEFAULT_SENDER" envDefault:"no-reply@localhost"`
	FromName     string `yaml:"from_name" env:"MAIL_FROM_NAME" envDefault:"User Portal"`
	UseTLS       bool   `yaml:"use_tls" env:"MAIL_USE_TLS" envDefault:"true"`
	TemplatesDir string `yaml:"templates_dir" env:"MAIL_TEMPLATES_DIR"`
}

type AddressLookupConfig struct {
	BaseURL          string        `yaml:"base_url" env:"AMAZON_SITE_API_URL"`
	Timeout          time.Duration `yaml:"timeout" env:"ADDRESS_LOOKUP_TIMEOUT" envDefault:"5s"`
	DashboardTimeout time.Duration `yaml:"dashboard_timeout" env:"DASHBOARD_TIMEOUT" envDefault:"8s"`
	Concurrency      int           `yaml:"concurrency" env:"ADDRESS_LOOKUP_CONCURRENCY" envDefault:"4"`
}

type RedisConfig struct {
	URL string `yaml:"url" env:"REDIS_URL"`
}

type RateLimitConfig struct {
	Attempts int           `yaml:"attempts" env:"RATE_LIMIT_ATTEMPTS" envDefault:"5"`
	Window   time.Duration `yaml:"window" env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
}

var knownWeakSecrets = []string{
	"change-me", "dev-secret-change-me", "secret", "admin", "password",
}

var AppConfig *Config

// Load собирает конфигурацию из значений по умолчанию, YAML-файла и окружения.
// Отсутствующий файл не ошибка: окружения достаточно.
func Load() (*Config, error) {
	var cfg Config

	// 1. Только значения по умолчанию (пустое окружение)
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: map[string]string{}}); err != nil {
		return nil, fmt.Errorf("failed to apply config defaults: %w", err)
	}

	// 2. YAML
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	if err := loadFile(configPath, &cfg); err != nil {
		return nil, err
	}

	// 3. Окружение поверх файла; значения по умолчанию здесь не применяются
	if err := env.ParseWithOptions(&cfg, env.Options{DefaultValueTagName: "envOverrideDefault"}); err != nil {
		return nil, fmt.Errorf("failed to parse config from environment: %w", err)
	}

	cfg.normalize()
	return &cfg, nil
}

func loadFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to open config file at %s: %w", path, err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return fmt.Errorf("failed to parse config file at %s: %w", path, err)
	}
	return nil
}

func (c *Config) normalize() {
	if c.Security.TokenSecret == "" {
		c.Security.TokenSecret = c.JWT.Secret
	}
	for i, d := range c.Security.AllowedEmailDomains {
		c.Security.AllowedEmailDomains[i] = strings.ToLower(strings.TrimSpace(d))
	}
	if c.AddressLookup.Concurrency <= 0 {
		c.AddressLookup.Concurrency = 1
	}
}

// LoadConfig загружает конфигурацию в AppConfig или завершает процесс
func LoadConfig() {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}
	AppConfig = cfg
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}

func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.JWT.TTLHours) * time.Hour
}

func (c *Config) SetupWindow() time.Duration {
	return time.Duration(c.Security.SetupWindowDays) * 24 * time.Hour
}

// Validate проверяет значения, без которых сервер не должен стартовать
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "mysql":
	default:
		return fmt.Errorf("unsupported database driver %q (expected postgres or mysql)", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.JWT.TTLHours <= 0 {
		return errors.New("JWT_TTL_HOURS must be positive")
	}
	if len(c.Security.AllowedEmailDomains) == 0 {
		return errors.New("ALLOWED_EMAIL_DOMAINS must not be empty")
	}
	switch strings.ToLower(c.JWT.CookieSameSite) {
	case "lax", "strict", "none":
	default:
		return fmt.Errorf("JWT_COOKIE_SAMESITE must be Lax, Strict or None, got %q", c.JWT.CookieSameSite)
	}

	if c.IsProduction() {
		if err := validateSecret("JWT_SECRET_KEY", c.JWT.Secret); err != nil {
			return err
		}
		if err := validateSecret("SECRET_KEY", c.Security.TokenSecret); err != nil {
			return err
		}
		if !c.JWT.CookieSecure {
			log.Println("WARNING: JWT_COOKIE_SECURE is false in production")
		}
	}
	return nil
}

func validateSecret(name, value string) error {
	if len(value) < 32 {
		return fmt.Errorf("%s must be at least 32 characters in production", name)
	}
	for _, weak := range knownWeakSecrets {
		if value == weak {
			return fmt.Errorf("%s is a known weak default; set a strong secret in production", name)
		}
	}
	return nil
}

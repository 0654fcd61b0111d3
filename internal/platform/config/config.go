package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const jwtSecretEnv = "AUTH_JWT_SECRET"

// Config はアプリケーション全体の設定を表現します。
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Redis     RedisConfig     `yaml:"redis"`
	NATS      NATSConfig      `yaml:"nats"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Posting   PostingConfig   `yaml:"posting"`
	CORS      CORSConfig      `yaml:"cors"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig は HTTP サーバーおよびヘルスチェック用 gRPC サーバーに関する設定です。
type ServerConfig struct {
	ListenAddr       string `yaml:"listen_addr"`
	HealthListenAddr string `yaml:"health_listen_addr"`
	Mode             string `yaml:"mode"`
}

// DatabaseConfig は PostgreSQL 接続に関する設定です。
type DatabaseConfig struct {
	Host               string        `yaml:"host"`
	Port               int           `yaml:"port"`
	User               string        `yaml:"user"`
	Password           string        `yaml:"password"`
	Name               string        `yaml:"name"`
	SSLMode            string        `yaml:"ssl_mode"`
	MaxOpenConns       int           `yaml:"max_open_conns"`
	MaxIdleConns       int           `yaml:"max_idle_conns"`
	ConnMaxLifetime    time.Duration `yaml:"-"`
	ConnMaxIdleTime    time.Duration `yaml:"-"`
	ConnMaxLifetimeRaw string        `yaml:"conn_max_lifetime"`
	ConnMaxIdleTimeRaw string        `yaml:"conn_max_idle_time"`
}

// AuthConfig はトークン発行とクッキーに関する設定です。
type AuthConfig struct {
	JWTSecret        string        `yaml:"jwt_secret"`
	Issuer           string        `yaml:"issuer"`
	AccessTTL        time.Duration `yaml:"-"`
	RefreshTTL       time.Duration `yaml:"-"`
	AccessTTLRaw     string        `yaml:"access_ttl"`
	RefreshTTLRaw    string        `yaml:"refresh_ttl"`
	MaxLoginAttempts int           `yaml:"max_login_attempts"`
	CookieSecure     bool          `yaml:"cookie_secure"`
	CookieDomain     string        `yaml:"cookie_domain"`
	CookieSameSite   string        `yaml:"cookie_same_site"`
	LoginRateLimit   int           `yaml:"login_rate_limit"`
	LoginRateWindow  time.Duration `yaml:"-"`
	LoginRateRaw     string        `yaml:"login_rate_window"`
}

// RedisConfig はログインのレート制限に利用する Redis の設定です。Addr が空の場合は無効です。
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// NATSConfig は求人イベント配信の設定です。URL が空の場合は配信しません。
type NATSConfig struct {
	URL            string        `yaml:"url"`
	SubjectPrefix  string        `yaml:"subject_prefix"`
	ConnTimeout    time.Duration `yaml:"-"`
	ConnTimeoutRaw string        `yaml:"conn_timeout"`
}

// TelemetryConfig は OpenTelemetry トレースの設定です。
type TelemetryConfig struct {
	Enabled       bool   `yaml:"enabled"`
	ServiceName   string `yaml:"service_name"`
	CollectorAddr string `yaml:"collector_addr"`
}

// PostingConfig は求人ステータスポリシーの設定です。
type PostingConfig struct {
	RequiredApprovals int `yaml:"required_approvals"`
}

// CORSConfig は CORS の許可オリジンです。
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// LogConfig はロガーの設定です。
type LogConfig struct {
	Mode string `yaml:"mode"`
}

// Load は指定されたパスから設定ファイルを読み込みます。
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if secret := os.Getenv(jwtSecretEnv); secret != "" {
		cfg.Auth.JWTSecret = secret
	}

	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validateAndNormalize() error {
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("config: server.listen_addr must be set")
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "release"
	}

	if err := c.Database.validateAndNormalize(); err != nil {
		return err
	}
	if err := c.Auth.validateAndNormalize(); err != nil {
		return err
	}

	timeout, err := parseDurationAllowEmpty(c.NATS.ConnTimeoutRaw)
	if err != nil {
		return fmt.Errorf("config: nats.conn_timeout: %w", err)
	}
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	c.NATS.ConnTimeout = timeout
	if c.NATS.SubjectPrefix == "" {
		c.NATS.SubjectPrefix = "recruitment"
	}

	if c.Telemetry.Enabled && c.Telemetry.CollectorAddr == "" {
		return fmt.Errorf("config: telemetry.collector_addr must be set when telemetry is enabled")
	}
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = "recruitment-api"
	}

	if c.Posting.RequiredApprovals < 0 {
		return fmt.Errorf("config: posting.required_approvals must not be negative")
	}
	if c.Posting.RequiredApprovals == 0 {
		c.Posting.RequiredApprovals = 1
	}

	if c.Log.Mode == "" {
		c.Log.Mode = "production"
	}

	return nil
}

func (d *DatabaseConfig) validateAndNormalize() error {
	if d.Host == "" {
		return fmt.Errorf("config: database.host must be set")
	}
	if d.Port == 0 {
		return fmt.Errorf("config: database.port must be set")
	}
	if d.User == "" {
		return fmt.Errorf("config: database.user must be set")
	}
	if d.Password == "" {
		return fmt.Errorf("config: database.password must be set")
	}
	if d.Name == "" {
		return fmt.Errorf("config: database.name must be set")
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}

	lifetime, err := parseDurationAllowEmpty(d.ConnMaxLifetimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_lifetime: %w", err)
	}
	d.ConnMaxLifetime = lifetime

	idleTime, err := parseDurationAllowEmpty(d.ConnMaxIdleTimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_idle_time: %w", err)
	}
	d.ConnMaxIdleTime = idleTime

	return nil
}

func (a *AuthConfig) validateAndNormalize() error {
	if a.JWTSecret == "" {
		return fmt.Errorf("config: auth.jwt_secret must be set (or %s)", jwtSecretEnv)
	}
	if a.Issuer == "" {
		a.Issuer = "recruitment-api"
	}

	access, err := parseDurationAllowEmpty(a.AccessTTLRaw)
	if err != nil {
		return fmt.Errorf("config: auth.access_ttl: %w", err)
	}
	if access == 0 {
		access = 15 * time.Minute
	}
	a.AccessTTL = access

	refresh, err := parseDurationAllowEmpty(a.RefreshTTLRaw)
	if err != nil {
		return fmt.Errorf("config: auth.refresh_ttl: %w", err)
	}
	if refresh == 0 {
		refresh = 24 * time.Hour
	}
	if refresh < access {
		return fmt.Errorf("config: auth.refresh_ttl must not be shorter than auth.access_ttl")
	}
	a.RefreshTTL = refresh

	if a.MaxLoginAttempts <= 0 {
		a.MaxLoginAttempts = 5
	}

	switch strings.ToLower(a.CookieSameSite) {
	case "":
		a.CookieSameSite = "lax"
	case "lax", "strict", "none":
		a.CookieSameSite = strings.ToLower(a.CookieSameSite)
	default:
		return fmt.Errorf("config: auth.cookie_same_site must be one of lax, strict, none")
	}

	window, err := parseDurationAllowEmpty(a.LoginRateRaw)
	if err != nil {
		return fmt.Errorf("config: auth.login_rate_window: %w", err)
	}
	if window == 0 {
		window = time.Minute
	}
	a.LoginRateWindow = window
	if a.LoginRateLimit <= 0 {
		a.LoginRateLimit = 20
	}

	return nil
}

func parseDurationAllowEmpty(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	return d, nil
}

// DSN は pgx 用の接続文字列を返します。認証情報はエスケープされます。
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration for both processes.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logger   LoggerConfig
	OIDC     OIDCConfig
	Session  SessionConfig
	Web      WebConfig
}

// ServerConfig holds API server configuration.
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // seconds
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// OIDCConfig holds identity-provider configuration shared by both processes.
type OIDCConfig struct {
	Issuer                string
	ClientID              string
	ClientSecret          string
	Audiences             []string
	RedirectURL           string
	PostLogoutRedirectURL string
	Scopes                []string
}

// SessionConfig holds the web front-end session cookie configuration.
// AuthKey signs the cookie, EncryptionKey encrypts its contents.
type SessionConfig struct {
	CookieName    string
	AuthKey       string
	EncryptionKey string
	TTL           int // seconds
}

// WebConfig holds web front-end configuration.
type WebConfig struct {
	Host       string
	Port       int
	APIBaseURL string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "shopfront"),
			MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 25),
			MinConnections:  getEnvAsInt("DB_MIN_CONNECTIONS", 5),
			MaxConnLifetime: getEnvAsInt("DB_MAX_CONN_LIFETIME", 300),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		OIDC: OIDCConfig{
			Issuer:                getEnv("OIDC_ISSUER", "http://localhost:8090/realms/shopfront"),
			ClientID:              getEnv("OIDC_CLIENT_ID", "webapp"),
			ClientSecret:          getEnv("OIDC_CLIENT_SECRET", ""),
			Audiences:             getEnvAsSlice("OIDC_AUDIENCES", []string{"api", "account"}),
			RedirectURL:           getEnv("OIDC_REDIRECT_URL", "http://localhost:8081/auth/callback"),
			PostLogoutRedirectURL: getEnv("OIDC_POST_LOGOUT_REDIRECT_URL", "http://localhost:8081/"),
			Scopes:                getEnvAsSlice("OIDC_SCOPES", []string{"openid", "profile", "api"}),
		},
		Session: SessionConfig{
			CookieName:    getEnv("SESSION_COOKIE_NAME", "shopfront_session"),
			AuthKey:       getEnv("SESSION_AUTH_KEY", ""),
			EncryptionKey: getEnv("SESSION_ENCRYPTION_KEY", ""),
			TTL:           getEnvAsInt("SESSION_TTL", 3600),
		},
		Web: WebConfig{
			Host:       getEnv("WEB_HOST", "0.0.0.0"),
			Port:       getEnvAsInt("WEB_PORT", 8081),
			APIBaseURL: getEnv("API_BASE_URL", "http://localhost:8080"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration shared by both processes.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.OIDC.Issuer == "" {
		return fmt.Errorf("OIDC issuer is required")
	}

	if c.OIDC.ClientID == "" {
		return fmt.Errorf("OIDC client ID is required")
	}

	if len(c.OIDC.Audiences) == 0 {
		return fmt.Errorf("at least one OIDC audience is required")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	return nil
}

// ValidateAPI validates the configuration the API service needs.
func (c *Config) ValidateAPI() error {
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}

	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.Database.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	return nil
}

// ValidateWeb validates the configuration the web front-end needs.
func (c *Config) ValidateWeb() error {
	if c.Web.Port < 1 || c.Web.Port > 65535 {
		return fmt.Errorf("invalid web port: %d", c.Web.Port)
	}

	if c.Web.APIBaseURL == "" {
		return fmt.Errorf("API base URL is required")
	}

	if c.OIDC.ClientSecret == "" {
		return fmt.Errorf("OIDC client secret is required")
	}

	if c.OIDC.RedirectURL == "" {
		return fmt.Errorf("OIDC redirect URL is required")
	}

	if len(c.Session.AuthKey) < 32 {
		return fmt.Errorf("session auth key must be at least 32 bytes")
	}

	if l := len(c.Session.EncryptionKey); l != 16 && l != 24 && l != 32 {
		return fmt.Errorf("session encryption key must be 16, 24 or 32 bytes")
	}

	if c.Session.TTL < 1 {
		return fmt.Errorf("session TTL must be positive")
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the API server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Address returns the web server address.
func (c *WebConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsSlice retrieves a comma-separated environment variable or returns a default value.
func getEnvAsSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

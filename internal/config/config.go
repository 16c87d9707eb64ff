package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	AppMode  string
	Port     string
	Database DatabaseConfig
	JWT      JWTConfig
	Cookie   CookieConfig
	Lockout  LockoutConfig
	Auth     AuthConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	DBName       string
	QueryTimeout time.Duration
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	RefreshSecret    string
	AccessTokenHours int
	RefreshTokenDays int
}

// CookieConfig holds cookie configuration
type CookieConfig struct {
	Secure   bool
	SameSite string
	Domain   string
}

// LockoutConfig holds account lockout policy configuration
type LockoutConfig struct {
	MaxAttempts  int
	LockDuration time.Duration
}

// AuthConfig holds session middleware configuration
type AuthConfig struct {
	// Browser navigations under these prefixes redirect to /login on failure
	// instead of returning 401
	ProtectedPagePrefixes []string
	LoginPath             string
}

// Global config instance
var AppConfig *Config

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	// Get APP_MODE (default to "dev") - trim spaces for Windows compatibility
	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	// Build config based on APP_MODE
	config := &Config{
		AppMode:  appMode,
		Port:     getEnv("PORT", "3000"),
		Database: loadDatabaseConfig(appMode),
		JWT:      loadJWTConfig(appMode),
		Cookie:   loadCookieConfig(appMode),
		Lockout:  loadLockoutConfig(),
		Auth:     loadAuthConfig(),
	}

	// A missing signing secret is a fatal startup condition, never a
	// per-request error
	if appMode == "prod" {
		if config.JWT.Secret == "" || config.JWT.Secret == "default_secret" {
			return nil, fmt.Errorf("PROD_JWT_SECRET must be set in production")
		}
		if config.JWT.RefreshSecret == "" || config.JWT.RefreshSecret == "default_refresh_secret" {
			return nil, fmt.Errorf("PROD_JWT_REFRESH_SECRET must be set in production")
		}
	}

	// Set global config
	AppConfig = config

	log.Printf("✅ Configuration loaded successfully [MODE: %s]", appMode)
	return config, nil
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) DatabaseConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	timeoutSecs, _ := strconv.Atoi(getEnv("DB_QUERY_TIMEOUT_SECONDS", "5"))
	if timeoutSecs < 1 {
		timeoutSecs = 5
	}

	return DatabaseConfig{
		Host:         getEnv(prefix+"DB_HOST", "localhost"),
		Port:         getEnv(prefix+"DB_PORT", "3306"),
		User:         getEnv(prefix+"DB_USER", "root"),
		Password:     getEnv(prefix+"DB_PASS", ""),
		DBName:       getEnv(prefix+"DB_NAME", "transbus_fleetdesk"),
		QueryTimeout: time.Duration(timeoutSecs) * time.Second,
	}
}

// loadJWTConfig loads JWT config based on mode
func loadJWTConfig(mode string) JWTConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	accessHours, _ := strconv.Atoi(getEnv("ACCESS_TOKEN_HOURS", "24"))
	refreshDays, _ := strconv.Atoi(getEnv("REFRESH_TOKEN_DAYS", "7"))

	return JWTConfig{
		Secret:           getEnv(prefix+"JWT_SECRET", "default_secret"),
		RefreshSecret:    getEnv(prefix+"JWT_REFRESH_SECRET", "default_refresh_secret"),
		AccessTokenHours: accessHours,
		RefreshTokenDays: refreshDays,
	}
}

// loadCookieConfig loads cookie config based on mode
func loadCookieConfig(mode string) CookieConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	secure, _ := strconv.ParseBool(getEnv(prefix+"COOKIE_SECURE", "false"))

	return CookieConfig{
		Secure:   secure,
		SameSite: getEnv("COOKIE_SAMESITE", "Strict"),
		Domain:   getEnv("COOKIE_DOMAIN", ""),
	}
}

// loadLockoutConfig loads account lockout policy
func loadLockoutConfig() LockoutConfig {
	maxAttempts, _ := strconv.Atoi(getEnv("LOCKOUT_MAX_ATTEMPTS", "5"))
	if maxAttempts < 1 {
		maxAttempts = 5
	}

	lockMinutes, _ := strconv.Atoi(getEnv("LOCKOUT_MINUTES", "15"))
	if lockMinutes < 1 {
		lockMinutes = 15
	}

	return LockoutConfig{
		MaxAttempts:  maxAttempts,
		LockDuration: time.Duration(lockMinutes) * time.Minute,
	}
}

// loadAuthConfig loads session middleware config
func loadAuthConfig() AuthConfig {
	prefixes := strings.Split(getEnv("PROTECTED_PAGE_PREFIXES", "/dashboard,/admin"), ",")
	for i := range prefixes {
		prefixes[i] = strings.TrimSpace(prefixes[i])
	}

	return AuthConfig{
		ProtectedPagePrefixes: prefixes,
		LoginPath:             getEnv("LOGIN_PATH", "/login"),
	}
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		// Default production origins
		return "https://fleetdesk.transbus.example.com"
	}
	return origins
}

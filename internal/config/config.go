// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App      AppConfig
	Logger   LoggerConfig
	Server   ServerConfig
	Database DatabaseConfig
	AniList  AniListConfig
	Frontend FrontendConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string        // Server port (default: 8080)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 30s)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
}

// DatabaseConfig holds the snapshot store configuration.
type DatabaseConfig struct {
	Path string // SQLite database file path
}

// AniListConfig holds remote service and OAuth configuration.
type AniListConfig struct {
	// GraphQLURL is the remote GraphQL endpoint (overridable for tests).
	GraphQLURL string
	// AuthorizeURL and TokenURL are the OAuth endpoints.
	AuthorizeURL string
	TokenURL     string
	ClientID     string
	ClientSecret string
	RedirectURI  string
	// RequestTimeout bounds every outbound remote call.
	RequestTimeout time.Duration
	// RequestsPerMinute paces outbound calls below the remote API limit.
	RequestsPerMinute int
}

// FrontendConfig holds the browser frontend configuration.
type FrontendConfig struct {
	// BaseURL is where the OAuth callback redirects to.
	BaseURL string
	// CORSOrigins are the origins allowed to call the API with credentials.
	CORSOrigins []string
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	dbPath := flag.String("db-path", "", "Path to the SQLite database file")
	serverPort := flag.String("port", "", "Server port (default: 8080)")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 30s)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	anilistTimeout := flag.String("anilist-timeout", "", "Timeout for remote AniList calls (default: 15s)")
	frontendURL := flag.String("frontend-url", "", "Frontend base URL for post-auth redirects")
	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Port: getConfigValue(*serverPort, "SERVER_PORT", "8080"),
		},
		Database: DatabaseConfig{
			Path: getConfigValue(*dbPath, "DATABASE_PATH", "watchlist.db"),
		},
		AniList: AniListConfig{
			GraphQLURL:        getConfigValue("", "ANILIST_GRAPHQL_URL", "https://graphql.anilist.co"),
			AuthorizeURL:      getConfigValue("", "ANILIST_AUTHORIZE_URL", "https://anilist.co/api/v2/oauth/authorize"),
			TokenURL:          getConfigValue("", "ANILIST_TOKEN_URL", "https://anilist.co/api/v2/oauth/token"),
			ClientID:          getConfigValue("", "ANILIST_CLIENT_ID", ""),
			ClientSecret:      getConfigValue("", "ANILIST_CLIENT_SECRET", ""),
			RedirectURI:       getConfigValue("", "ANILIST_REDIRECT_URI", ""),
			RequestsPerMinute: getIntConfigValue("", "ANILIST_REQUESTS_PER_MINUTE", 60),
		},
		Frontend: FrontendConfig{
			BaseURL: getConfigValue(*frontendURL, "FRONTEND_URL", "http://localhost:3000"),
		},
	}

	// Parse durations.
	var err error
	if cfg.Server.ReadTimeout, err = parseDurationValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.WriteTimeout, err = parseDurationValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "30s"); err != nil {
		return nil, err
	}
	if cfg.Server.IdleTimeout, err = parseDurationValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"); err != nil {
		return nil, err
	}
	if cfg.AniList.RequestTimeout, err = parseDurationValue(*anilistTimeout, "ANILIST_TIMEOUT", "15s"); err != nil {
		return nil, err
	}

	// CORS origins default to the frontend URL.
	origins := getConfigValue("", "CORS_ORIGINS", cfg.Frontend.BaseURL)
	for _, origin := range strings.Split(origins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.Frontend.CORSOrigins = append(cfg.Frontend.CORSOrigins, origin)
		}
	}

	if err := cfg.expandDatabasePath(); err != nil {
		return nil, fmt.Errorf("invalid database path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Database.Path == "" {
		return errors.New("database path cannot be empty after expansion")
	}

	if c.AniList.GraphQLURL == "" {
		return errors.New("AniList GraphQL URL is required")
	}

	// OAuth credentials may be empty - the auth endpoints report the
	// missing configuration at request time, read paths work without them.

	return nil
}

// OAuthConfigured reports whether the OAuth client credentials are set.
func (c *Config) OAuthConfigured() bool {
	return c.AniList.ClientID != "" && c.AniList.RedirectURI != ""
}

// expandDatabasePath expands ~ and makes the path absolute.
func (c *Config) expandDatabasePath() error {
	path := c.Database.Path

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	c.Database.Path = filepath.Clean(path)
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// parseDurationValue resolves a duration from flag, env var, or default.
func parseDurationValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	raw := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", strings.ToLower(strings.ReplaceAll(envKey, "_", " ")), raw, err)
	}
	return d, nil
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.Trim(strings.TrimSpace(parts[1]), `"'`)

		// Env vars take precedence over .env file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}

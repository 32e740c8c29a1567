package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:      AppConfig{Environment: "development"},
		Logger:   LoggerConfig{Level: "info"},
		Database: DatabaseConfig{Path: "/data/watchlist.db"},
		AniList:  AniListConfig{GraphQLURL: "https://graphql.anilist.co"},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env
			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_LogLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "WARN"} {
		cfg := validConfig()
		cfg.Logger.Level = level
		assert.NoError(t, cfg.Validate(), "level %s should be valid", level)
	}

	cfg := validConfig()
	cfg.Logger.Level = "verbose"
	assert.Error(t, cfg.Validate())
}

func TestValidate_EmptyDatabasePath(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Path = ""
	assert.Error(t, cfg.Validate())
}

func TestValidate_MissingOAuthIsAllowed(t *testing.T) {
	// Read paths must work without OAuth credentials.
	cfg := validConfig()
	cfg.AniList.ClientID = ""
	cfg.AniList.RedirectURI = ""
	assert.NoError(t, cfg.Validate())
	assert.False(t, cfg.OAuthConfigured())

	cfg.AniList.ClientID = "1234"
	cfg.AniList.RedirectURI = "https://api.example.com/anilist/auth/callback"
	assert.True(t, cfg.OAuthConfigured())
}

func TestExpandDatabasePath(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Path = "relative/watchlist.db"
	require.NoError(t, cfg.expandDatabasePath())
	assert.True(t, filepath.IsAbs(cfg.Database.Path))
}

func TestGetConfigValue_Precedence(t *testing.T) {
	t.Setenv("WATCHLIST_TEST_KEY", "from-env")

	assert.Equal(t, "from-flag", getConfigValue("from-flag", "WATCHLIST_TEST_KEY", "default"))
	assert.Equal(t, "from-env", getConfigValue("", "WATCHLIST_TEST_KEY", "default"))
	assert.Equal(t, "default", getConfigValue("", "WATCHLIST_TEST_MISSING", "default"))
}

func TestParseDurationValue(t *testing.T) {
	d, err := parseDurationValue("", "WATCHLIST_TEST_TIMEOUT", "15s")
	require.NoError(t, err)
	assert.Equal(t, "15s", d.String())

	t.Setenv("WATCHLIST_TEST_TIMEOUT", "not-a-duration")
	_, err = parseDurationValue("", "WATCHLIST_TEST_TIMEOUT", "15s")
	assert.Error(t, err)
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# comment\nWATCHLIST_ENVFILE_KEY=hello\nWATCHLIST_ENVFILE_QUOTED=\"world\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("WATCHLIST_ENVFILE_KEY", "")
	t.Setenv("WATCHLIST_ENVFILE_QUOTED", "")
	os.Unsetenv("WATCHLIST_ENVFILE_KEY")
	os.Unsetenv("WATCHLIST_ENVFILE_QUOTED")

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "hello", os.Getenv("WATCHLIST_ENVFILE_KEY"))
	assert.Equal(t, "world", os.Getenv("WATCHLIST_ENVFILE_QUOTED"))
}

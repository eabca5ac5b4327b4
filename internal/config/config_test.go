package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{"BACKEND_API_URL_BASE", "EMPLOYEES_PER_PAGE", "SEARCH_DEBOUNCE", "HTTP_TIMEOUT", "LOG_LEVEL", "APP_ENV", "PORT", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8090/api/", cfg.BackendURL)
	assert.Equal(t, 20, cfg.PerPage)
	assert.Equal(t, 500*time.Millisecond, cfg.SearchDebounce)
	assert.Zero(t, cfg.HTTPTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.False(t, cfg.IsProduction())
	assert.NoError(t, cfg.Validate())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("BACKEND_API_URL_BASE", "https://records.example.com/api/")
	t.Setenv("EMPLOYEES_PER_PAGE", "50")
	t.Setenv("SEARCH_DEBOUNCE", "250ms")
	t.Setenv("HTTP_TIMEOUT", "5s")
	t.Setenv("APP_ENV", "production")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com,https://b.example.com")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "https://records.example.com/api/", cfg.BackendURL)
	assert.Equal(t, 50, cfg.PerPage)
	assert.Equal(t, 250*time.Millisecond, cfg.SearchDebounce)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.AllowedOrigins)
}

func TestFromEnv_InvalidValue(t *testing.T) {
	t.Setenv("EMPLOYEES_PER_PAGE", "twenty")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse environment")
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("EMPLOYEE_DIRECTORY_TEST_VALUE=from-file\n"), 0o644))
	t.Setenv("EMPLOYEE_DIRECTORY_TEST_VALUE", "")
	require.NoError(t, os.Unsetenv("EMPLOYEE_DIRECTORY_TEST_VALUE"))

	n, err := LoadEnv(envFile, filepath.Join(dir, ".env.local"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "from-file", os.Getenv("EMPLOYEE_DIRECTORY_TEST_VALUE"))

	n, err = LoadEnv(filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestLoadConfig_ValidJSON(t *testing.T) {
	content := `{
		"backend_url": "http://pb.internal:8090/api/",
		"per_page": 10,
		"search_debounce": "300ms",
		"http_timeout": "2s",
		"log_level": "debug"
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0o644))

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "http://pb.internal:8090/api/", cfg.BackendURL)
	assert.Equal(t, 10, cfg.PerPage)
	assert.Equal(t, 300*time.Millisecond, cfg.SearchDebounce)
	assert.Equal(t, 2*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(`{ invalid json }`), 0o644))

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_InvalidDuration(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(`{"search_debounce":"soon"}`), 0o644))

	_, err := LoadConfig(tmpFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search_debounce")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestValidate(t *testing.T) {
	valid := Config{
		BackendURL:     "http://127.0.0.1:8090/api/",
		PerPage:        20,
		SearchDebounce: 500 * time.Millisecond,
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name    string
		edit    func(*Config)
		wantErr string
	}{
		{"relative url", func(c *Config) { c.BackendURL = "/api/" }, "backend_url"},
		{"ftp url", func(c *Config) { c.BackendURL = "ftp://host/api/" }, "http or https"},
		{"zero per page", func(c *Config) { c.PerPage = 0 }, "per_page"},
		{"zero debounce", func(c *Config) { c.SearchDebounce = 0 }, "search_debounce"},
		{"negative timeout", func(c *Config) { c.HTTPTimeout = -time.Second }, "http_timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.edit(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	file := Config{
		PerPage:  10,
		LogLevel: "debug",
	}
	defaults := Config{
		BackendURL:     "http://127.0.0.1:8090/api/",
		PerPage:        20,
		SearchDebounce: 500 * time.Millisecond,
		LogLevel:       "info",
		Port:           "8080",
		AllowedOrigins: []string{"*"},
	}

	merged := file.MergeWithDefaults(defaults)

	assert.Equal(t, "http://127.0.0.1:8090/api/", merged.BackendURL)
	assert.Equal(t, 10, merged.PerPage)
	assert.Equal(t, "debug", merged.LogLevel)
	assert.Equal(t, 500*time.Millisecond, merged.SearchDebounce)
	assert.Equal(t, "8080", merged.Port)
	assert.Equal(t, []string{"*"}, merged.AllowedOrigins)
	assert.Equal(t, 10, file.PerPage, "receiver is not modified")
}

func TestMergeWithDefaults_EmptyDefaults(t *testing.T) {
	cfg := Config{BackendURL: "http://x/api/"}
	merged := cfg.MergeWithDefaults(Config{})
	assert.Equal(t, cfg, merged)
}

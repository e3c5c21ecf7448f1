/* config_test.go
 * Contains unit tests for config.go
 */

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(values map[string]string) func(string) string {
	return func(key string) string {
		return values[key]
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{"API_BASE_URL": "https://api.example.com/"}))

	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", cfg.APIBaseURL)
	assert.Equal(t, DefaultMongoDB, cfg.MongoDB)
	assert.Equal(t, DefaultHTTPAddr, cfg.HTTPAddr)
	assert.Equal(t, float64(DefaultRateLimit), cfg.RateLimit)
	assert.Equal(t, DefaultRequestTimeout, cfg.RequestTimeout)
	assert.Equal(t, DefaultSnapshotTTL, cfg.SnapshotTTL)
	assert.False(t, cfg.Debug)
}

func TestFromEnv_MissingBaseURL(t *testing.T) {
	_, err := FromEnv(envMap(map[string]string{}))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "API_BASE_URL")
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		"API_BASE_URL":     "http://localhost:3000",
		"MONGO_URI":        "mongodb://localhost:27017",
		"MONGO_DB":         "liga",
		"HTTP_ADDR":        ":9000",
		"API_RATE_LIMIT":   "2.5",
		"API_TIMEOUT":      "3s",
		"SNAPSHOT_TTL":     "1m",
		"DEBUG":            "TRUE",
		"ADMIN_CHANNEL_ID": "chan-1",
	}))

	require.NoError(t, err)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
	assert.Equal(t, "liga", cfg.MongoDB)
	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.Equal(t, 2.5, cfg.RateLimit)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.Equal(t, time.Minute, cfg.SnapshotTTL)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "chan-1", cfg.AdminChannelID)
}

func TestFromEnv_InvalidRateLimit(t *testing.T) {
	_, err := FromEnv(envMap(map[string]string{"API_BASE_URL": "http://x", "API_RATE_LIMIT": "-1"}))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "API_RATE_LIMIT")
}

func TestFromEnv_InvalidDebug(t *testing.T) {
	_, err := FromEnv(envMap(map[string]string{"API_BASE_URL": "http://x", "DEBUG": "yes"}))

	assert.Error(t, err)
}

func TestLoad_MissingEnvFileIsIgnored(t *testing.T) {
	t.Setenv("API_BASE_URL", "http://from-env")

	cfg, err := Load(t.TempDir() + "/does-not-exist.env")

	require.NoError(t, err)
	assert.Equal(t, "http://from-env", cfg.APIBaseURL)
}

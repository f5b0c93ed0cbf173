package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkieser/alexactl/internal/sync"
)

const globalTOML = `
DEBUG = false
SHOULD_SLEEP = true
DO_NOT_DELETE = true
ALEXA_HOST = "alexa.example.com"
COOKIE = "session-cookie"
CSRF = "csrf-token"
DELETE_SKILL = "SKILL_abc123"
HA_HOST = "ha.example.com"
HA_API_KEY = "long-lived-token"
IGNORED_HA_AREAS = ["Guest_Room", "  attic  "]
`

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_UserOverlaysGlobal(t *testing.T) {
	dir := t.TempDir()
	global := writeConfig(t, dir, "global_config.toml", globalTOML)
	user := writeConfig(t, dir, "user_config.toml", `
DO_NOT_DELETE = false
HA_HOST = "other.example.com"
`)

	cfg, err := Load(global, user)
	require.NoError(t, err)

	assert.False(t, cfg.DoNotDelete, "user value wins")
	assert.Equal(t, "other.example.com", cfg.HAHost)
	assert.Equal(t, "alexa.example.com", cfg.AlexaHost, "unset keys keep the global value")
	assert.True(t, cfg.ShouldSleep)
}

func TestLoad_SeedsUserConfigFromGlobal(t *testing.T) {
	dir := t.TempDir()
	global := writeConfig(t, dir, "global_config.toml", globalTOML)
	user := filepath.Join(dir, "nested", "user_config.toml")

	cfg, err := Load(global, user)
	require.NoError(t, err)
	assert.Equal(t, "alexa.example.com", cfg.AlexaHost)

	seeded, err := os.ReadFile(user)
	require.NoError(t, err)
	assert.Equal(t, globalTOML, string(seeded), "user file seeded verbatim from global")
}

func TestLoad_NormalizesIgnoredAreas(t *testing.T) {
	dir := t.TempDir()
	global := writeConfig(t, dir, "global_config.toml", globalTOML)
	user := writeConfig(t, dir, "user_config.toml", "")

	cfg, err := Load(global, user)
	require.NoError(t, err)

	assert.Equal(t, []string{"guest room", "attic"}, cfg.IgnoredHAAreas)
	assert.Equal(t, map[string]bool{"guest room": true, "attic": true}, cfg.IgnoredAreaSet())
}

func TestLoad_MissingRequiredSettingsFailBeforeAnyNetwork(t *testing.T) {
	dir := t.TempDir()
	global := writeConfig(t, dir, "global_config.toml", `ALEXA_HOST = "alexa.example.com"`)
	user := writeConfig(t, dir, "user_config.toml", "")

	_, err := Load(global, user)

	require.Error(t, err)
	assert.True(t, sync.IsConfiguration(err))
	assert.Contains(t, err.Error(), "COOKIE")
	assert.Contains(t, err.Error(), "CSRF")
}

func TestLoad_MissingGlobalFileIsConfigurationError(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "absent.toml"), filepath.Join(dir, "user.toml"))

	require.Error(t, err)
	assert.True(t, sync.IsConfiguration(err))
}

func TestLoad_MalformedTOMLIsConfigurationError(t *testing.T) {
	dir := t.TempDir()
	global := writeConfig(t, dir, "global_config.toml", `ALEXA_HOST = [unclosed`)

	_, err := Load(global, filepath.Join(dir, "user.toml"))

	require.Error(t, err)
	assert.True(t, sync.IsConfiguration(err))
}

func TestAlexaHeaders(t *testing.T) {
	cfg := Config{AlexaHost: "alexa.example.com", Cookie: "c", CSRF: "x"}

	h := cfg.AlexaHeaders()

	assert.Equal(t, "c", h["Cookie"])
	assert.Equal(t, "x", h["csrf"])
	assert.Equal(t, "Mozilla/5.0", h["User-Agent"], "default user agent when unset")

	cfg.UserAgent = "custom-agent"
	assert.Equal(t, "custom-agent", cfg.AlexaHeaders()["User-Agent"])
}

func TestHAHeaders(t *testing.T) {
	cfg := Config{HAAPIKey: "token"}

	h := cfg.HAHeaders()

	assert.Equal(t, "Bearer token", h["Authorization"])
	assert.Equal(t, "application/json", h["Content-Type"])
}

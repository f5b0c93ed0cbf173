// Package config loads and validates the TOML configuration. A global
// config file ships defaults; a user config file overlays it, and is
// seeded from the global file on first run so users always have a
// complete template to edit.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/mkieser/alexactl/internal/sync"
)

// Default config file locations, relative to the working directory.
const (
	DefaultGlobalPath = "config/global_config.toml"
	DefaultUserPath   = "config/user_config.toml"
)

// Config holds every runtime setting. Field names mirror the TOML keys.
type Config struct {
	// Debug raises the log level to debug.
	Debug bool `toml:"DEBUG"`

	// ShouldSleep enables rate limiting of remote calls.
	ShouldSleep bool `toml:"SHOULD_SLEEP"`

	// DoNotDelete makes every delete report success without a network
	// call. Protects production devices during testing.
	DoNotDelete bool `toml:"DO_NOT_DELETE"`

	// Voice-assistant API connection details.
	AlexaHost     string `toml:"ALEXA_HOST"`
	Cookie        string `toml:"COOKIE"`
	XAmznAlexaApp string `toml:"X_AMZN_ALEXA_APP"`
	CSRF          string `toml:"CSRF"`
	DeleteSkill   string `toml:"DELETE_SKILL"`
	UserAgent     string `toml:"USER_AGENT"`

	// Home-automation API connection details.
	HAHost   string `toml:"HA_HOST"`
	HAAPIKey string `toml:"HA_API_KEY"`

	// IgnoredHAAreas lists area names excluded from group creation.
	// Normalized at load time; the exclusion does not extend to entity
	// sync into existing groups of the same name.
	IgnoredHAAreas []string `toml:"IGNORED_HA_AREAS"`

	// DescriptionFilterText selects which entities delete actions
	// target (substring match on the description).
	DescriptionFilterText string `toml:"DESCRIPTION_FILTER_TEXT"`

	// Media player integration used to trigger device discovery.
	AlexaDeviceID string `toml:"ALEXA_DEVICE_ID"`
	AlexaEntityID string `toml:"ALEXA_ENTITY_ID"`

	// DiscoveryTimeoutSeconds bounds the discovery convergence wait.
	// Zero selects the 120s default.
	DiscoveryTimeoutSeconds int `toml:"DISCOVERY_TIMEOUT_SECONDS"`
}

// Load reads the global config, seeds the user config from it when
// missing, overlays the user config on top, and validates the result.
//
// Validation failures are configuration errors: fatal, and guaranteed to
// happen before any network activity.
func Load(globalPath, userPath string) (*Config, error) {
	if globalPath == "" {
		globalPath = DefaultGlobalPath
	}
	if userPath == "" {
		userPath = DefaultUserPath
	}

	var cfg Config
	if _, err := toml.DecodeFile(globalPath, &cfg); err != nil {
		return nil, sync.NewOpError(sync.CodeConfiguration, "load config", globalPath, err)
	}
	if err := ensureUserConfig(globalPath, userPath); err != nil {
		return nil, sync.NewOpError(sync.CodeConfiguration, "seed user config", userPath, err)
	}
	// Decoding into the same struct overlays only the keys the user
	// file actually sets.
	if _, err := toml.DecodeFile(userPath, &cfg); err != nil {
		return nil, sync.NewOpError(sync.CodeConfiguration, "load config", userPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	for i, name := range cfg.IgnoredHAAreas {
		cfg.IgnoredHAAreas[i] = sync.NormalizeAreaName(name)
	}
	return &cfg, nil
}

// Validate checks the fields every remote call depends on.
func (c *Config) Validate() error {
	var missing []string
	if c.AlexaHost == "" {
		missing = append(missing, "ALEXA_HOST")
	}
	if c.Cookie == "" {
		missing = append(missing, "COOKIE")
	}
	if c.CSRF == "" {
		missing = append(missing, "CSRF")
	}
	if len(missing) > 0 {
		return sync.NewOpError(sync.CodeConfiguration, "validate config", "",
			fmt.Errorf("missing required settings: %v", missing))
	}
	return nil
}

// IgnoredAreaSet returns the pre-normalized ignore list as a lookup set.
func (c *Config) IgnoredAreaSet() map[string]bool {
	set := make(map[string]bool, len(c.IgnoredHAAreas))
	for _, name := range c.IgnoredHAAreas {
		set[name] = true
	}
	return set
}

// AlexaHeaders builds the authentication headers for the voice-assistant
// API.
func (c *Config) AlexaHeaders() map[string]string {
	userAgent := c.UserAgent
	if userAgent == "" {
		userAgent = "Mozilla/5.0"
	}
	return map[string]string{
		"Host":             c.AlexaHost,
		"x-amzn-alexa-app": c.XAmznAlexaApp,
		"Connection":       "keep-alive",
		"Content-Type":     "application/json",
		"Accept":           "application/json; charset=utf-8",
		"User-Agent":       userAgent,
		"csrf":             c.CSRF,
		"Cookie":           c.Cookie,
	}
}

// HAHeaders builds the bearer-token headers for the home-automation API.
func (c *Config) HAHeaders() map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + c.HAAPIKey,
		"Content-Type":  "application/json",
	}
}

// ensureUserConfig copies the global config to the user path when the
// user file does not exist yet.
func ensureUserConfig(globalPath, userPath string) error {
	if _, err := os.Stat(userPath); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	data, err := os.ReadFile(globalPath)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(userPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(userPath, data, 0o644)
}

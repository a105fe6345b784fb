// Package config loads HabitChain settings from defaults, an optional TOML
// file and HABITCHAIN_* environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/marcus/habitchain/internal/identity"
	"github.com/marcus/habitchain/internal/session"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. HABITCHAIN_IDENTITY_API_KEY.
const EnvPrefix = "HABITCHAIN"

// EnvConfigFile names an explicit config file.
const EnvConfigFile = "HABITCHAIN_CONFIG"

// Config holds application configuration.
type Config struct {
	Identity IdentityConfig `mapstructure:"identity"`
	Google   GoogleConfig   `mapstructure:"google"`
	Splash   SplashConfig   `mapstructure:"splash"`
	Data     DataConfig     `mapstructure:"data"`
	Log      LogConfig      `mapstructure:"log"`
}

// IdentityConfig points at the identity provider.
type IdentityConfig struct {
	APIKey        string        `mapstructure:"api_key"`
	Endpoint      string        `mapstructure:"endpoint"`
	TokenEndpoint string        `mapstructure:"token_endpoint"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// GoogleConfig holds the OAuth client used for Google sign-in.
type GoogleConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
}

// SplashConfig controls the launch splash.
type SplashConfig struct {
	Delay time.Duration `mapstructure:"delay"`
}

// DataConfig locates local state.
type DataConfig struct {
	Dir string `mapstructure:"dir"`
}

// LogConfig controls the log file.
type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

const (
	DefaultTimeout  = 15 * time.Second
	DefaultLogLevel = "info"
)

// Dir returns ~/.config/habitchain.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", "habitchain"), nil
}

// Path returns the config file in use: HABITCHAIN_CONFIG when set,
// otherwise ~/.config/habitchain/config.toml.
func Path() (string, error) {
	if p := os.Getenv(EnvConfigFile); p != "" {
		return p, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "habitchain")
	}
	return filepath.Join(os.TempDir(), "habitchain")
}

// Load reads configuration. A missing config file is not an error; a
// malformed one is.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("identity.api_key", "")
	v.SetDefault("identity.endpoint", identity.DefaultEndpoint)
	v.SetDefault("identity.token_endpoint", identity.DefaultTokenEndpoint)
	v.SetDefault("identity.timeout", DefaultTimeout)
	v.SetDefault("google.client_id", "")
	v.SetDefault("google.client_secret", "")
	v.SetDefault("splash.delay", session.DefaultSplashDelay)
	v.SetDefault("data.dir", defaultDataDir())
	v.SetDefault("log.file", "")
	v.SetDefault("log.level", DefaultLogLevel)

	path, err := Path()
	if err != nil {
		return Config{}, err
	}
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.Log.File == "" {
		c.Log.File = filepath.Join(c.Data.Dir, "habitchain.log")
	}
	if c.Splash.Delay < 0 {
		return Config{}, errors.New("splash.delay must not be negative")
	}
	return c, nil
}

// Settings returns c as ordered key/value pairs for display. Secrets are
// masked.
func (c Config) Settings() [][2]string {
	return [][2]string{
		{"identity.api_key", mask(c.Identity.APIKey)},
		{"identity.endpoint", c.Identity.Endpoint},
		{"identity.token_endpoint", c.Identity.TokenEndpoint},
		{"identity.timeout", c.Identity.Timeout.String()},
		{"google.client_id", c.Google.ClientID},
		{"google.client_secret", mask(c.Google.ClientSecret)},
		{"splash.delay", c.Splash.Delay.String()},
		{"data.dir", c.Data.Dir},
		{"log.file", c.Log.File},
		{"log.level", c.Log.Level},
	}
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return s[:4] + strings.Repeat("*", 8)
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	API       APIConfig       `mapstructure:"api"`
	UI        UIConfig        `mapstructure:"ui"`
	Log       LogConfig       `mapstructure:"log"`
	Database  DatabaseConfig  `mapstructure:"database"`
	DevServer DevServerConfig `mapstructure:"devserver"`
}

// APIConfig holds backend connection settings.
type APIConfig struct {
	BaseURL  string        `mapstructure:"base_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Token    string        `mapstructure:"token"`
	TokenEnv string        `mapstructure:"token_env"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	PageSize           int           `mapstructure:"page_size"`
	Locale             string        `mapstructure:"locale"`
	PasswordCloseDelay time.Duration `mapstructure:"password_close_delay"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	Env   string `mapstructure:"env"`
	Path  string `mapstructure:"path"`
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type DevServerConfig struct {
	Addr      string `mapstructure:"addr"`
	JWTSecret string `mapstructure:"jwt_secret"`
}

const envPrefix = "WAREHOUSEDASH"

func home() string {
	if h, err := os.UserHomeDir(); err == nil {
		return h
	}
	return os.Getenv("HOME")
}

// Path is the config file location: $WAREHOUSEDASH_CONFIG or ~/.config/warehousedash/config.toml.
func Path() string {
	if p := os.Getenv(envPrefix + "_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(home(), ".config", "warehousedash", "config.toml")
}

func setDefaults(v *viper.Viper) {
	h := home()
	v.SetDefault("api.base_url", "http://localhost:8000")
	v.SetDefault("api.timeout", 15*time.Second)
	v.SetDefault("api.token", "")
	v.SetDefault("api.token_env", envPrefix+"_TOKEN")
	v.SetDefault("ui.page_size", 10)
	v.SetDefault("ui.locale", "en")
	v.SetDefault("ui.password_close_delay", 2*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.env", "production")
	v.SetDefault("log.path", filepath.Join(h, ".local", "state", "warehousedash", "warehousedash.log"))
	v.SetDefault("database.path", filepath.Join(h, ".local", "share", "warehousedash", "warehousedash.db"))
	v.SetDefault("devserver.addr", ":8000")
	v.SetDefault("devserver.jwt_secret", "dev-secret-change-me")
}

// Load reads configuration from file and env. Env var overrides use prefix WAREHOUSEDASH_.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")
	v.SetConfigFile(Path())

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	if _, err := os.Stat(Path()); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.UI.PageSize <= 0 {
		c.UI.PageSize = 10
	}
	return c, nil
}

// ResolveToken picks the bearer token: the env var named by api.token_env wins
// over api.token.
func (c Config) ResolveToken() string {
	if env := strings.TrimSpace(c.API.TokenEnv); env != "" {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return v
		}
	}
	return strings.TrimSpace(c.API.Token)
}

// Save writes the provided config to disk, creating the config directory if needed.
// The token and dev server secret are never written.
func Save(cfg Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("api.base_url", cfg.API.BaseURL)
	v.Set("api.timeout", cfg.API.Timeout.String())
	v.Set("api.token_env", cfg.API.TokenEnv)
	v.Set("ui.page_size", cfg.UI.PageSize)
	v.Set("ui.locale", cfg.UI.Locale)
	v.Set("ui.password_close_delay", cfg.UI.PasswordCloseDelay.String())
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.env", cfg.Log.Env)
	v.Set("log.path", cfg.Log.Path)
	v.Set("database.path", cfg.Database.Path)
	v.Set("devserver.addr", cfg.DevServer.Addr)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

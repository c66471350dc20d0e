// Package config loads the service configuration from defaults, an optional
// YAML file, PRALNICA_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/erazemk/pralnica/internal/auth"
)

// EnvPrefix prefixes every environment variable override.
const EnvPrefix = "PRALNICA"

// Config is the effective service configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Auth     AuthConfig     `mapstructure:"auth" yaml:"auth"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// DatabaseConfig locates the SQLite database file.
type DatabaseConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// AuthConfig configures sessions.
type AuthConfig struct {
	// Mode is "jwt" or "mock". Mock mode treats every request as an admin.
	Mode      string        `mapstructure:"mode" yaml:"mode"`
	TokenTTL  time.Duration `mapstructure:"token_ttl" yaml:"token_ttl"`
	AdminUser string        `mapstructure:"admin_user" yaml:"admin_user"`

	// JWTSecret overrides the secret persisted in the database.
	JWTSecret string `mapstructure:"jwt_secret" yaml:"jwt_secret,omitempty"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	Path   string `mapstructure:"path" yaml:"path,omitempty"`
}

var defaults = map[string]any{
	"server.addr":     ":8080",
	"database.path":   "pralnica.sqlite3",
	"auth.mode":       auth.ModeJWT,
	"auth.token_ttl":  auth.DefaultTTL,
	"auth.admin_user": "admin",
	"auth.jwt_secret": "",
	"log.level":       "info",
	"log.format":      "text",
	"log.path":        "",
}

// FlagKeys maps command-line flag names to the configuration keys they set.
var FlagKeys = map[string]string{
	"addr":       "server.addr",
	"db":         "database.path",
	"auth-mode":  "auth.mode",
	"token-ttl":  "auth.token_ttl",
	"admin-user": "auth.admin_user",
	"log":        "log.path",
	"log-level":  "log.level",
	"log-format": "log.format",
}

// Load builds the configuration. path names an optional YAML file. Flags
// listed in FlagKeys take precedence when they were set on the command line.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var pathErr *os.PathError
			if errors.As(err, &pathErr) {
				return nil, fmt.Errorf("config file %s not found", path)
			}
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	if flags != nil {
		for name, key := range FlagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration and normalises its enumerations.
func (c *Config) Validate() error {
	var errs []error

	mode, err := auth.ParseMode(c.Auth.Mode)
	if err != nil {
		errs = append(errs, err)
	}
	c.Auth.Mode = mode

	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr must not be empty"))
	}
	if c.Database.Path == "" {
		errs = append(errs, errors.New("database.path must not be empty"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("auth.token_ttl must be positive, got %s", c.Auth.TokenTTL))
	}
	if strings.TrimSpace(c.Auth.AdminUser) == "" {
		errs = append(errs, errors.New("auth.admin_user must not be empty"))
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	c.Log.Format = strings.ToLower(c.Log.Format)
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

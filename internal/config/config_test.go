package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/erazemk/pralnica/internal/auth"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Errorf("server.addr = %q", cfg.Server.Addr)
	}
	if cfg.Database.Path != "pralnica.sqlite3" {
		t.Errorf("database.path = %q", cfg.Database.Path)
	}
	if cfg.Auth.Mode != auth.ModeJWT {
		t.Errorf("auth.mode = %q", cfg.Auth.Mode)
	}
	if cfg.Auth.TokenTTL != 7*24*time.Hour {
		t.Errorf("auth.token_ttl = %s", cfg.Auth.TokenTTL)
	}
	if cfg.Auth.AdminUser != "admin" {
		t.Errorf("auth.admin_user = %q", cfg.Auth.AdminUser)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Errorf("log = %+v", cfg.Log)
	}
}

func TestLoadFileEnvAndFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pralnica.yaml")
	data := `
server:
  addr: ":9000"
database:
  path: /var/lib/pralnica/data.sqlite3
auth:
  token_ttl: 12h
log:
  level: debug
  format: JSON
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("PRALNICA_AUTH_MODE", "mock")
	t.Setenv("PRALNICA_SERVER_ADDR", ":9100")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("db", "", "")
	flags.String("unrelated", "", "")
	if err := flags.Parse([]string{"--db=override.sqlite3"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, flags)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Addr != ":9100" {
		t.Errorf("env should override file: server.addr = %q", cfg.Server.Addr)
	}
	if cfg.Database.Path != "override.sqlite3" {
		t.Errorf("flag should override file: database.path = %q", cfg.Database.Path)
	}
	if cfg.Auth.Mode != auth.ModeMock {
		t.Errorf("auth.mode = %q", cfg.Auth.Mode)
	}
	if cfg.Auth.TokenTTL != 12*time.Hour {
		t.Errorf("auth.token_ttl = %s", cfg.Auth.TokenTTL)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("log.format = %q, want normalised json", cfg.Log.Format)
	}
}

func TestLoadUnchangedFlagKeepsFileValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pralnica.yaml")
	if err := os.WriteFile(path, []byte("server:\n  addr: \":7000\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("addr", ":8080", "")

	cfg, err := Load(path, flags)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":7000" {
		t.Errorf("server.addr = %q, want file value", cfg.Server.Addr)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected not found error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server:   ServerConfig{Addr: ":8080"},
			Database: DatabaseConfig{Path: "db"},
			Auth:     AuthConfig{Mode: "jwt", TokenTTL: time.Hour, AdminUser: "admin"},
			Log:      LogConfig{Level: "info", Format: "text"},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"valid", func(*Config) {}, ""},
		{"empty mode means jwt", func(c *Config) { c.Auth.Mode = "" }, ""},
		{"bad mode", func(c *Config) { c.Auth.Mode = "oauth" }, "unknown auth mode"},
		{"zero ttl", func(c *Config) { c.Auth.TokenTTL = 0 }, "token_ttl"},
		{"no admin", func(c *Config) { c.Auth.AdminUser = " " }, "admin_user"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"no path", func(c *Config) { c.Database.Path = "" }, "database.path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.want == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

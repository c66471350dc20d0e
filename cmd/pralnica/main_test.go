package main

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/erazemk/pralnica/internal/config"
	"github.com/erazemk/pralnica/internal/db"
	"github.com/erazemk/pralnica/internal/model"
	"github.com/erazemk/pralnica/internal/store"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version command failed: %v", err)
	}
	if !strings.Contains(out, "pralnica dev") {
		t.Errorf("expected output to contain 'pralnica dev', got: %s", out)
	}
}

func TestInitCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.sqlite3")

	out, err := execute(t, "init", "--db", path, "--admin-user", "root")
	if err != nil {
		t.Fatalf("init failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Username: root") || !strings.Contains(out, "Password: ") {
		t.Errorf("unexpected init output: %s", out)
	}

	database, err := db.Open(path)
	if err != nil {
		t.Fatalf("opening initialized database: %v", err)
	}
	defer database.Close()

	u, err := store.GetUserByUsername(context.Background(), database, "root")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if u == nil || u.Role != model.RoleAdmin {
		t.Fatalf("admin user = %+v", u)
	}

	if _, err := execute(t, "init", "--db", path); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("second init: expected already exists error, got %v", err)
	}
}

func TestConfigCmd(t *testing.T) {
	t.Setenv("PRALNICA_AUTH_JWT_SECRET", "hunter2")

	out, err := execute(t, "config", "--addr", ":9999", "--log-format", "json")
	if err != nil {
		t.Fatalf("config failed: %v", err)
	}
	for _, want := range []string{`addr: :9999`, `format: json`, `token_ttl: 168h0m0s`, `<redacted>`} {
		if !strings.Contains(out, want) {
			t.Errorf("config output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "hunter2") {
		t.Errorf("config output leaks the jwt secret:\n%s", out)
	}
}

func TestInvalidConfigRejected(t *testing.T) {
	if _, err := execute(t, "config", "--auth-mode", "none"); err == nil {
		t.Error("expected error for unknown auth mode")
	}
}

func TestSetupLoggerRoutesErrors(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var stdout, stderr bytes.Buffer
	if _, err := setupLogger(config.LogConfig{Level: "warn", Format: "text"}, &stdout, &stderr); err != nil {
		t.Fatal(err)
	}

	slog.Info("hidden")
	slog.Warn("shown")
	slog.Error("failure")

	if strings.Contains(stdout.String(), "hidden") {
		t.Errorf("info record written below warn level: %s", stdout.String())
	}
	if !strings.Contains(stdout.String(), "shown") || strings.Contains(stdout.String(), "failure") {
		t.Errorf("stdout = %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "failure") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

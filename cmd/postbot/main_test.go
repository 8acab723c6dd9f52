package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCheckConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"http":{"addr":"127.0.0.1:8088"},"scheduler":{"timezone":"Asia/Jakarta"}}`), 0o600); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"check-config", "--env-file", filepath.Join(dir, "missing.env"), "--config", path})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "listen=127.0.0.1:8088") || !strings.Contains(got, "timezone=Asia/Jakarta") {
		t.Fatalf("unexpected output: %q", got)
	}
}

func TestCheckConfigRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"htp":{}}`), 0o600); err != nil {
		t.Fatal(err)
	}
	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"check-config", "--env-file", "", "--config", path})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("POSTBOT_TEST_VALUE=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("POSTBOT_TEST_VALUE", "")
	os.Unsetenv("POSTBOT_TEST_VALUE")

	if err := loadEnv(path); err != nil {
		t.Fatal(err)
	}
	if got := os.Getenv("POSTBOT_TEST_VALUE"); got != "from-file" {
		t.Fatalf("POSTBOT_TEST_VALUE = %q", got)
	}
	if err := loadEnv(filepath.Join(dir, "nope.env")); err != nil {
		t.Fatalf("missing file should be ignored: %v", err)
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"ARENA_API_URL", "ARENA_WS_URL", "ARENA_WEB_URL", "ARENA_TOKEN", "ARENA_TOKEN_FILE",
		"ARENA_LOG_FILE", "ARENA_LOG_LEVEL", "ARENA_POLL_INTERVAL", "ARENA_COMMAND_TIMEOUT",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	t.Setenv("HOME", t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.PollInterval != 2*time.Second {
		t.Errorf("PollInterval = %v, want 2s", c.PollInterval)
	}
	if c.CommandTimeout != 8*time.Second {
		t.Errorf("CommandTimeout = %v, want 8s", c.CommandTimeout)
	}
	if c.WSURL != "wss://api.arena.gg/room" {
		t.Errorf("WSURL = %q", c.WSURL)
	}
	if c.WebURL != "https://arena.gg" {
		t.Errorf("WebURL = %q", c.WebURL)
	}
	if filepath.Base(c.TokenFile) != "token" || filepath.Base(c.LogFile) != "arena.log" {
		t.Errorf("unexpected paths %q %q", c.TokenFile, c.LogFile)
	}
}

func TestLoadDerivesPlainWS(t *testing.T) {
	clearEnv(t)
	t.Setenv("ARENA_API_URL", "http://localhost:3000/api/")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.APIURL != "http://localhost:3000/api" {
		t.Errorf("APIURL = %q", c.APIURL)
	}
	if c.WSURL != "ws://localhost:3000/api/room" {
		t.Errorf("WSURL = %q", c.WSURL)
	}
	if c.WebURL != "http://localhost:3000" {
		t.Errorf("WebURL = %q", c.WebURL)
	}
	if got := c.RoomURL(42); got != "http://localhost:3000/rooms/42" {
		t.Errorf("RoomURL = %q", got)
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("ARENA_POLL_INTERVAL=5s\nARENA_LOG_LEVEL=debug\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ARENA_LOG_LEVEL", "warn")
	t.Cleanup(func() { os.Unsetenv("ARENA_POLL_INTERVAL") })

	c, err := Load(envFile, filepath.Join(dir, "missing.env"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.PollInterval != 5*time.Second {
		t.Errorf("PollInterval = %v, want 5s", c.PollInterval)
	}
	if c.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, environment should win", c.LogLevel)
	}
}

func TestLoadInvalidURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("ARENA_API_URL", "not a url")
	if _, err := Load(); err == nil {
		t.Fatal("expected error")
	}
}

func TestTokenPrecedence(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "token")
	if err := SaveToken(path, " file-token \n"); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ARENA_TOKEN_FILE", path)

	c, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if c.Token != "file-token" {
		t.Errorf("Token = %q, want file-token", c.Token)
	}

	t.Setenv("ARENA_TOKEN", "env-token")
	c, err = Load()
	if err != nil {
		t.Fatal(err)
	}
	if c.Token != "env-token" {
		t.Errorf("Token = %q, want env-token", c.Token)
	}
}

func TestSaveAndRemoveToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token")
	if err := SaveToken(path, "abc"); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("perm = %v, want 0600", info.Mode().Perm())
	}
	if got := ReadToken(path); got != "abc" {
		t.Errorf("ReadToken = %q", got)
	}

	removed, err := RemoveToken(path)
	if err != nil || !removed {
		t.Fatalf("RemoveToken = %v, %v", removed, err)
	}
	removed, err = RemoveToken(path)
	if err != nil || removed {
		t.Fatalf("second RemoveToken = %v, %v", removed, err)
	}
}

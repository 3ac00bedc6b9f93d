// Package config loads arena's settings from the environment and an optional
// .env file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	APIURL string `env:"ARENA_API_URL" envDefault:"https://api.arena.gg"`
	// WSURL is the room gateway. Derived from APIURL when unset.
	WSURL string `env:"ARENA_WS_URL"`
	// WebURL is the browser front-end. Derived from APIURL when unset.
	WebURL string `env:"ARENA_WEB_URL"`

	Token     string `env:"ARENA_TOKEN"`
	TokenFile string `env:"ARENA_TOKEN_FILE"`

	LogFile  string `env:"ARENA_LOG_FILE"`
	LogLevel string `env:"ARENA_LOG_LEVEL" envDefault:"info"`

	PollInterval   time.Duration `env:"ARENA_POLL_INTERVAL" envDefault:"2s"`
	CommandTimeout time.Duration `env:"ARENA_COMMAND_TIMEOUT" envDefault:"8s"`
	ReconnectMin   time.Duration `env:"ARENA_RECONNECT_MIN" envDefault:"500ms"`
	ReconnectMax   time.Duration `env:"ARENA_RECONNECT_MAX" envDefault:"15s"`
}

// Load reads envFiles (missing files are skipped), then the environment.
// Variables already set in the environment win over .env values.
func Load(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, fmt.Errorf("config.Load: %s: %w", f, err)
		}
	}

	c, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	if err := c.resolve(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &c, nil
}

func (c *Config) resolve() error {
	c.APIURL = strings.TrimRight(c.APIURL, "/")
	api, err := url.Parse(c.APIURL)
	if err != nil || api.Host == "" {
		return fmt.Errorf("invalid ARENA_API_URL %q", c.APIURL)
	}

	if c.WSURL == "" {
		ws := *api
		switch api.Scheme {
		case "https":
			ws.Scheme = "wss"
		default:
			ws.Scheme = "ws"
		}
		ws.Path = strings.TrimRight(api.Path, "/") + "/room"
		c.WSURL = ws.String()
	}

	// api.example.com serves the site at example.com.
	if c.WebURL == "" {
		web := *api
		web.Path = ""
		if host := web.Hostname(); strings.HasPrefix(host, "api.") {
			web.Host = strings.TrimPrefix(host, "api.")
			if port := api.Port(); port != "" {
				web.Host += ":" + port
			}
		}
		c.WebURL = web.String()
	}

	home, err := os.UserHomeDir()
	if err != nil && (c.TokenFile == "" || c.LogFile == "") {
		return fmt.Errorf("get home dir: %w", err)
	}
	if c.TokenFile == "" {
		c.TokenFile = filepath.Join(home, ".arena", "token")
	}
	if c.LogFile == "" {
		c.LogFile = filepath.Join(home, ".arena", "arena.log")
	}
	if c.Token == "" {
		c.Token = ReadToken(c.TokenFile)
	}
	return nil
}

// RoomURL is the browser page for roomID.
func (c *Config) RoomURL(roomID int64) string {
	return fmt.Sprintf("%s/rooms/%d", c.WebURL, roomID)
}

// ReadToken returns the trimmed token stored at path, or "".
func ReadToken(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// SaveToken writes tok to path with owner-only permissions.
func SaveToken(path, tok string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(strings.TrimSpace(tok)), 0600); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

// RemoveToken deletes the token file. It reports false if there was none.
func RemoveToken(path string) (bool, error) {
	err := os.Remove(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("remove token: %w", err)
	}
	return true, nil
}

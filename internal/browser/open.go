// Package browser hands room links to the desktop's browser.
package browser

import (
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// ErrUnsupportedOS is returned on platforms with no known opener.
var ErrUnsupportedOS = errors.New("no browser opener for this OS")

// Command builds the opener invocation for link on goos. Only absolute
// http(s) links are accepted.
func Command(goos, link string) (*exec.Cmd, error) {
	u, err := url.Parse(link)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("browser: refusing to open %q", link)
	}
	switch goos {
	case "darwin":
		return exec.Command("open", u.String()), nil
	case "linux", "freebsd", "openbsd":
		return exec.Command("xdg-open", u.String()), nil
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", u.String()), nil
	}
	return nil, fmt.Errorf("browser: %s: %w", goos, ErrUnsupportedOS)
}

// Open starts the platform opener for link without waiting for it.
func Open(link string) error {
	cmd, err := Command(runtime.GOOS, link)
	if err != nil {
		return err
	}
	return cmd.Start()
}

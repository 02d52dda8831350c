// Package config loads the line-oriented key=value configuration file that
// describes one mailbox mirror run.
package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config holds the validated, defaulted settings for a single run.
//
// Exactly one of Pass, XOAuth2AccessToken, XOAuth2RequestURL is set after
// Load returns successfully.
type Config struct {
	Server string
	Port   int
	SSL    bool
	User   string

	Pass string

	XOAuth2AccessToken string

	XOAuth2RequestURL   string
	XOAuth2ClientID     string
	XOAuth2ClientSecret string
	XOAuth2RefreshToken string

	Folder     string
	FolderFlag string

	Command string
}

// Load reads and validates "<dir>/config".
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, "config")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	raw, err := parse(f)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	cfg, err := build(raw)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// parse turns the raw "key=value" lines into a lower-cased-key map.
// Blank lines and lines whose first non-whitespace character is '#' are
// ignored. A line without '=' is a malformed-config error.
func parse(r io.Reader) (map[string]string, error) {
	out := make(map[string]string)
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		idx := strings.IndexByte(line, '=')
		if idx < 0 {
			return nil, fmt.Errorf("line %d: missing '=': %q", lineNo, line)
		}
		key := strings.ToLower(strings.TrimSpace(line[:idx]))
		val := strings.TrimSpace(line[idx+1:])
		out[key] = val
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func build(raw map[string]string) (*Config, error) {
	cfg := &Config{}

	cfg.Server = raw["server"]
	if cfg.Server == "" {
		return nil, fmt.Errorf("missing required key: server")
	}

	cfg.User = raw["user"]
	if cfg.User == "" {
		return nil, fmt.Errorf("missing required key: user")
	}

	cfg.SSL = truthy(raw["ssl"])

	if p, ok := raw["port"]; ok && p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid port %q: %w", p, err)
		}
		cfg.Port = port
	} else if cfg.SSL {
		cfg.Port = 993
	} else {
		cfg.Port = 143
	}

	cfg.Pass = raw["pass"]
	cfg.XOAuth2AccessToken = raw["xoauth2_access_token"]
	cfg.XOAuth2RequestURL = raw["xoauth2_request_url"]
	cfg.XOAuth2ClientID = raw["xoauth2_client_id"]
	cfg.XOAuth2ClientSecret = raw["xoauth2_client_secret"]
	cfg.XOAuth2RefreshToken = raw["xoauth2_refresh_token"]

	set := 0
	if cfg.Pass != "" {
		set++
	}
	if cfg.XOAuth2AccessToken != "" {
		set++
	}
	if cfg.XOAuth2RequestURL != "" {
		set++
	}
	if set != 1 {
		return nil, fmt.Errorf("exactly one of pass, xoauth2_access_token, xoauth2_request_url must be set (found %d)", set)
	}

	if cfg.XOAuth2RequestURL != "" {
		var missing []string
		if cfg.XOAuth2ClientID == "" {
			missing = append(missing, "xoauth2_client_id")
		}
		if cfg.XOAuth2ClientSecret == "" {
			missing = append(missing, "xoauth2_client_secret")
		}
		if cfg.XOAuth2RefreshToken == "" {
			missing = append(missing, "xoauth2_refresh_token")
		}
		if len(missing) > 0 {
			return nil, fmt.Errorf("xoauth2_request_url requires %s", strings.Join(missing, ", "))
		}
	}

	cfg.Folder = raw["folder"]
	cfg.FolderFlag = raw["folder_flag"]
	cfg.Command = raw["command"]

	return cfg, nil
}

// UsesXOAuth2 reports whether the configured auth path is XOAUTH2 (either
// with a pre-obtained token or a refreshable one), as opposed to LOGIN.
func (c *Config) UsesXOAuth2() bool {
	return c.XOAuth2AccessToken != "" || c.XOAuth2RequestURL != ""
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	// EnvironmentFileName is the marker file naming the environment to use
	EnvironmentFileName = ".esconfig.environment"
	// DefaultEnvironment is used when nothing else names an environment
	DefaultEnvironment = "DEVELOPMENT"
)

// ResolveEnvironment returns the uppercased environment name for an invocation.
// The first non-empty source wins: the explicit argument, the marker file in
// dir, the configured default environment, and finally DefaultEnvironment.
func ResolveEnvironment(arg, dir string, cfg *Config) string {
	if arg != "" {
		return strings.ToUpper(arg)
	}

	if env := ReadEnvironmentFile(dir); env != "" {
		return env
	}

	if cfg != nil {
		if env := strings.TrimSpace(cfg.DefaultEnvironment()); env != "" {
			return strings.ToUpper(env)
		}
	}

	return DefaultEnvironment
}

// ReadEnvironmentFile returns the trimmed, uppercased contents of the marker
// file in dir, or an empty string when it is absent or unreadable.
func ReadEnvironmentFile(dir string) string {
	data, err := os.ReadFile(filepath.Join(dir, EnvironmentFileName))
	if err != nil {
		return ""
	}
	return strings.ToUpper(strings.TrimSpace(string(data)))
}

// HostFor returns the cluster URL configured for env, without a trailing
// slash. A host without a scheme is taken to be plain http.
func (c *Config) HostFor(env string) (string, error) {
	var hosts map[string]string
	if err := c.decode(sectionHost, &hosts); err != nil {
		return "", err
	}

	host, ok := lookup(hosts, env)
	host = strings.TrimSpace(host)
	if !ok || host == "" {
		return "", fmt.Errorf("%w for environment %q", ErrHostUndefined, env)
	}

	if !strings.Contains(host, "://") {
		host = "http://" + host
	}

	u, err := url.Parse(host)
	if err != nil || u.Host == "" || validator.New().Var(host, "url") != nil {
		return "", fmt.Errorf("%w: host for environment %q is not a URL: %s", ErrConfigInvalid, env, host)
	}

	return strings.TrimRight(host, "/"), nil
}

// WarmFor returns the warm-up command template configured for env
func (c *Config) WarmFor(env string) (string, error) {
	var commands map[string]string
	if err := c.decode(sectionWarm, &commands); err != nil {
		return "", err
	}

	cmd, ok := lookup(commands, env)
	if !ok || strings.TrimSpace(cmd) == "" {
		return "", fmt.Errorf("%w for environment %q", ErrWarmUndefined, env)
	}
	return cmd, nil
}

// lookup matches env exactly first, then case-insensitively
func lookup(m map[string]string, env string) (string, bool) {
	if v, ok := m[env]; ok {
		return v, true
	}
	for k, v := range m {
		if strings.EqualFold(k, env) {
			return v, true
		}
	}
	return "", false
}

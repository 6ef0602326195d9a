package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// listenHosts are the accepted LISTEN_HOST values: loopback for local
// deployments, wildcard for containers fenced by their network.
var listenHosts = []string{"127.0.0.1", "::1", "localhost", "0.0.0.0", "::"}

// validate reports every problem at once so a misconfigured deployment is
// fixed in one round.
func (c *Config) validate() error {
	errs := []error{
		c.validateDatabase(),
		c.validateNetwork(),
		c.validateCORS(),
		c.validateAuth(),
	}

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL is invalid: %w", err))
	}

	if raw := c.RedisURL.Value(); raw != "" {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "redis" && u.Scheme != "rediss") {
			errs = append(errs, errors.New("REDIS_URL must be a redis:// or rediss:// URL"))
		}
	}

	return errors.Join(errs...)
}

func isLoopback(host string) bool {
	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}

func (c *Config) validateDatabase() error {
	raw := c.DatabaseURL.Value()
	if raw == "" {
		return errors.New("DATABASE_URL is required")
	}

	u, err := url.Parse(raw)
	if err != nil {
		// The parse error echoes the URL, password included.
		return errors.New("DATABASE_URL is not a valid URL")
	}

	switch {
	case u.Scheme != "postgres" && u.Scheme != "postgresql":
		return errors.New("DATABASE_URL scheme must be postgres:// or postgresql://")
	case u.Hostname() == "":
		return errors.New("DATABASE_URL must include a host")
	case !isLoopback(u.Hostname()) && u.Query().Get("sslmode") == "disable":
		return fmt.Errorf("DATABASE_URL sslmode=disable is not allowed for non-local host %q", u.Hostname())
	}

	return nil
}

func parsePort(name, value string) (int, error) {
	port, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", name, err)
	}

	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("%s must be between 1 and 65535", name)
	}

	return port, nil
}

func (c *Config) validateNetwork() error {
	var errs []error

	port, portErr := parsePort("PORT", c.Port)
	metricsPort, metricsErr := parsePort("METRICS_PORT", c.MetricsPort)
	errs = append(errs, portErr, metricsErr)

	if portErr == nil && metricsErr == nil && port == metricsPort {
		errs = append(errs, errors.New("METRICS_PORT must differ from PORT"))
	}

	if !slices.Contains(listenHosts, c.ListenHost) {
		errs = append(errs, fmt.Errorf("LISTEN_HOST must be a loopback address or 0.0.0.0/:: for containers (got %q)", c.ListenHost))
	}

	return errors.Join(errs...)
}

func (c *Config) validateCORS() error {
	for _, origin := range c.CORSOrigins {
		if origin == "*" {
			return errors.New("CORS_ORIGINS must not contain wildcard '*'")
		}

		if strings.ContainsAny(origin, "*?[]") {
			return fmt.Errorf("CORS_ORIGINS must not contain glob characters (*?[]), got %q", origin)
		}

		if u, err := url.Parse(origin); err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("CORS_ORIGINS contains invalid origin %q (must have scheme and host)", origin)
		}
	}

	return nil
}

// validateAuth checks the identity settings. A blank SYSTEM_IDENTITY would
// let unauthenticated commits write audit rows with no user.
func (c *Config) validateAuth() error {
	if strings.TrimSpace(c.SystemIdentity) == "" {
		return errors.New("SYSTEM_IDENTITY must not be blank")
	}

	if secret := c.JWTSecret.Value(); secret != "" && len(secret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 characters")
	}

	return nil
}

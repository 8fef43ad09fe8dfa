// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 KeyGate Contributors

// Package config loads server configuration from an optional YAML file and
// command-line flags. Flags win over the file; file values win over the
// built-in defaults. The database URL is deliberately excluded: it comes from
// the DATABASE_URL environment variable so credentials stay out of config
// files and process listings.
package config

import (
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Default values for server configuration.
const (
	DefaultListenAddr  = "127.0.0.1:8080"
	DefaultMetricsAddr = "127.0.0.1:9100"
	DefaultLogFormat   = "json"
	DefaultIssuer      = "keygate"
	DefaultAccessTTL   = 15 * time.Minute
	DefaultRefreshTTL  = 30 * 24 * time.Hour
	DefaultPasswordMin = 8
	DefaultPasswordMax = 20
)

// Config holds the serve command's configuration.
type Config struct {
	// ListenAddr is the public API listen address.
	ListenAddr string `koanf:"listen-addr"`
	// MetricsAddr is the metrics/health listen address. Empty disables the
	// observability server.
	MetricsAddr string `koanf:"metrics-addr"`
	// PrivateKeyPath is the path to the PEM-encoded RSA signing key.
	PrivateKeyPath string `koanf:"private-key"`
	// Issuer is the "iss" claim stamped on issued tokens.
	Issuer string `koanf:"issuer"`
	// AccessTTL is the access token lifetime.
	AccessTTL time.Duration `koanf:"access-ttl"`
	// RefreshTTL is the refresh token lifetime.
	RefreshTTL time.Duration `koanf:"refresh-ttl"`
	// PasswordMin and PasswordMax bound accepted password lengths.
	PasswordMin int `koanf:"password-min"`
	PasswordMax int `koanf:"password-max"`
	// CookieSecure marks token cookies Secure.
	CookieSecure bool `koanf:"cookie-secure"`
	// LogFormat is "json" or "text".
	LogFormat string `koanf:"log-format"`
}

// Default returns a Config populated with the built-in defaults.
func Default() Config {
	return Config{
		ListenAddr:  DefaultListenAddr,
		MetricsAddr: DefaultMetricsAddr,
		Issuer:      DefaultIssuer,
		AccessTTL:   DefaultAccessTTL,
		RefreshTTL:  DefaultRefreshTTL,
		PasswordMin: DefaultPasswordMin,
		PasswordMax: DefaultPasswordMax,
		LogFormat:   DefaultLogFormat,
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return oops.Code("CONFIG_INVALID").Errorf("listen-addr is required")
	}
	if c.PrivateKeyPath == "" {
		return oops.Code("CONFIG_INVALID").Errorf("private-key is required")
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return oops.Code("CONFIG_INVALID").Errorf("log-format must be 'json' or 'text', got %q", c.LogFormat)
	}
	if c.AccessTTL <= 0 || c.RefreshTTL <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("token lifetimes must be positive")
	}
	if c.PasswordMin <= 0 || c.PasswordMax < c.PasswordMin {
		return oops.Code("CONFIG_INVALID").Errorf("password bounds must satisfy 0 < min <= max")
	}
	return nil
}

// Load builds a Config by layering defaults, an optional YAML file, and the
// given flag set. filePath may be empty. Load does not validate; call
// Validate on the result.
func Load(filePath string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if filePath != "" {
		if err := k.Load(file.Provider(filePath), yaml.Parser()); err != nil {
			return Config{}, oops.Code("CONFIG_INVALID").
				With("path", filePath).
				Wrap(err)
		}
	}

	// Flags override the file; unchanged flags contribute their defaults
	// only where the file is silent.
	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return Config{}, oops.Code("CONFIG_INVALID").
				With("operation", "merge flags").
				Wrap(err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, oops.Code("CONFIG_INVALID").
			With("operation", "unmarshal config").
			Wrap(err)
	}

	return cfg, nil
}

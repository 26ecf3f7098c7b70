// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskTrack Contributors

// Package config loads TaskTrack settings from flags, a YAML file and the
// environment.
package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/tasktrack/tasktrack/internal/auth"
	"github.com/tasktrack/tasktrack/internal/logging"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "TASKTRACK_"

// Config is the effective process configuration.
type Config struct {
	HTTPAddr         string        `koanf:"http_addr" yaml:"http_addr"`
	MetricsAddr      string        `koanf:"metrics_addr" yaml:"metrics_addr"`
	DatabaseURL      string        `koanf:"database_url" yaml:"database_url"`
	JWTSecret        string        `koanf:"jwt_secret" yaml:"jwt_secret"`
	TokenTTL         time.Duration `koanf:"token_ttl" yaml:"token_ttl"`
	LogFormat        string        `koanf:"log_format" yaml:"log_format"`
	LogLevel         string        `koanf:"log_level" yaml:"log_level"`
	AvatarMaxBytes   int64         `koanf:"avatar_max_bytes" yaml:"avatar_max_bytes"`
	AvatarSize       int           `koanf:"avatar_size" yaml:"avatar_size"`
	SMTPHost         string        `koanf:"smtp_host" yaml:"smtp_host"`
	SMTPPort         int           `koanf:"smtp_port" yaml:"smtp_port"`
	SMTPUser         string        `koanf:"smtp_user" yaml:"smtp_user"`
	SMTPPass         string        `koanf:"smtp_pass" yaml:"smtp_pass"`
	MailFrom         string        `koanf:"mail_from" yaml:"mail_from"`
	ShutdownTimeout  time.Duration `koanf:"shutdown_timeout" yaml:"shutdown_timeout"`
	DBConnectTimeout time.Duration `koanf:"db_connect_timeout" yaml:"db_connect_timeout"`
	AutoMigrate      bool          `koanf:"auto_migrate" yaml:"auto_migrate"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		HTTPAddr:         ":8080",
		MetricsAddr:      "127.0.0.1:9100",
		TokenTTL:         time.Hour,
		LogFormat:        "json",
		LogLevel:         "info",
		AvatarMaxBytes:   1 << 20,
		AvatarSize:       500,
		SMTPPort:         587,
		ShutdownTimeout:  10 * time.Second,
		DBConnectTimeout: 30 * time.Second,
		AutoMigrate:      true,
	}
}

// RegisterFlags adds one flag per key to fs, defaulting to Default().
// Flag names use dashes where keys use underscores.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("http-addr", d.HTTPAddr, "HTTP API listen address")
	fs.String("metrics-addr", d.MetricsAddr, "metrics and health listen address (empty disables)")
	fs.String("database-url", d.DatabaseURL, "PostgreSQL connection URL")
	fs.String("jwt-secret", d.JWTSecret, "HMAC secret for session tokens")
	fs.Duration("token-ttl", d.TokenTTL, "session token lifetime")
	fs.String("log-format", d.LogFormat, "log format (json or text)")
	fs.String("log-level", d.LogLevel, "log level (debug, info, warn, error)")
	fs.Int64("avatar-max-bytes", d.AvatarMaxBytes, "largest accepted avatar upload")
	fs.Int("avatar-size", d.AvatarSize, "edge length of stored avatars in pixels")
	fs.String("smtp-host", d.SMTPHost, "SMTP host (empty logs notifications instead)")
	fs.Int("smtp-port", d.SMTPPort, "SMTP port")
	fs.String("smtp-user", d.SMTPUser, "SMTP user name")
	fs.String("smtp-pass", d.SMTPPass, "SMTP password")
	fs.String("mail-from", d.MailFrom, "sender address for notifications")
	fs.Duration("shutdown-timeout", d.ShutdownTimeout, "graceful shutdown timeout")
	fs.Duration("db-connect-timeout", d.DBConnectTimeout, "how long to wait for the database at startup")
	fs.Bool("auto-migrate", d.AutoMigrate, "apply pending migrations when the server starts")
}

// Load builds a Config from, in increasing precedence: flag defaults, the
// YAML file at path (if any), TASKTRACK_* environment variables and flags set
// on the command line. DATABASE_URL is used when database_url is still empty.
func Load(fs *pflag.FlagSet, path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_FILE_INVALID").With("path", path).Wrap(err)
		}
	}

	envKey := func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, oops.Code("CONFIG_ENV_INVALID").Wrap(err)
	}

	// unchanged flags only fill keys that no earlier layer set
	if fs != nil {
		flagKey := func(f *pflag.Flag) (string, any) {
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(fs, f)
		}
		if err := k.Load(posflag.ProviderWithFlag(fs, ".", k, flagKey), nil); err != nil {
			return nil, oops.Code("CONFIG_FLAGS_INVALID").Wrap(err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_DECODE_FAILED").Wrap(err)
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.HTTPAddr == "" {
		return oops.Code("CONFIG_INVALID").With("key", "http_addr").Errorf("http_addr is required")
	}
	if c.DatabaseURL == "" {
		return oops.Code("CONFIG_INVALID").With("key", "database_url").Errorf("database_url is required")
	}
	if len(c.JWTSecret) < auth.MinSecretLength {
		return oops.Code("CONFIG_INVALID").With("key", "jwt_secret").
			Errorf("jwt_secret must be at least %d bytes", auth.MinSecretLength)
	}
	if c.TokenTTL <= 0 {
		return oops.Code("CONFIG_INVALID").With("key", "token_ttl").Errorf("token_ttl must be positive")
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return oops.Code("CONFIG_INVALID").With("key", "log_format").
			Errorf("log_format must be json or text, got %q", c.LogFormat)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return oops.Code("CONFIG_INVALID").With("key", "log_level").Wrap(err)
	}
	if c.AvatarMaxBytes <= 0 {
		return oops.Code("CONFIG_INVALID").With("key", "avatar_max_bytes").Errorf("avatar_max_bytes must be positive")
	}
	if c.AvatarSize <= 0 || c.AvatarSize > 4096 {
		return oops.Code("CONFIG_INVALID").With("key", "avatar_size").Errorf("avatar_size must be between 1 and 4096")
	}
	if c.SMTPHost != "" {
		if c.MailFrom == "" {
			return oops.Code("CONFIG_INVALID").With("key", "mail_from").Errorf("mail_from is required when smtp_host is set")
		}
		if c.SMTPPort <= 0 || c.SMTPPort > 65535 {
			return oops.Code("CONFIG_INVALID").With("key", "smtp_port").Errorf("smtp_port must be between 1 and 65535")
		}
	}
	if c.ShutdownTimeout <= 0 {
		return oops.Code("CONFIG_INVALID").With("key", "shutdown_timeout").Errorf("shutdown_timeout must be positive")
	}
	if c.DBConnectTimeout <= 0 {
		return oops.Code("CONFIG_INVALID").With("key", "db_connect_timeout").Errorf("db_connect_timeout must be positive")
	}
	return nil
}

// Level returns the parsed log level, falling back to info.
func (c *Config) Level() slog.Level {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// Redacted returns a copy safe to print: secrets and the database password
// are masked.
func (c *Config) Redacted() Config {
	out := *c
	if out.JWTSecret != "" {
		out.JWTSecret = redactedValue
	}
	if out.SMTPPass != "" {
		out.SMTPPass = redactedValue
	}
	out.DatabaseURL = redactURL(out.DatabaseURL)
	return out
}

const redactedValue = "[REDACTED]"

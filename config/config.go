// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"

	"github.com/stacklok/toolhive-messaging/bindings"
	"github.com/stacklok/toolhive-messaging/channel"
	"github.com/stacklok/toolhive-messaging/logging"
	"github.com/stacklok/toolhive-messaging/nonce"
)

// EnvPrefix prefixes environment variable overrides.
const EnvPrefix = "MSGCTL"

// Nonce store backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config is the msgctl configuration.
type Config struct {
	Bindings BindingsConfig `mapstructure:"bindings" yaml:"bindings"`
	Nonce    NonceConfig    `mapstructure:"nonce" yaml:"nonce"`
	Channel  ChannelConfig  `mapstructure:"channel" yaml:"channel"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
}

// BindingsConfig selects the signing key and the freshness window.
// Exactly one of HMACSecret, SigningKeyFile and VerificationKeyFile is set.
type BindingsConfig struct {
	HMACSecret          string        `mapstructure:"hmac_secret" yaml:"hmac_secret,omitempty"`
	SigningKeyFile      string        `mapstructure:"signing_key_file" yaml:"signing_key_file,omitempty"`
	VerificationKeyFile string        `mapstructure:"verification_key_file" yaml:"verification_key_file,omitempty"`
	MaxAge              time.Duration `mapstructure:"max_age" yaml:"max_age"`
	MaxClockSkew        time.Duration `mapstructure:"max_clock_skew" yaml:"max_clock_skew"`
}

// NonceConfig selects the nonce store.
type NonceConfig struct {
	Backend string      `mapstructure:"backend" yaml:"backend"`
	Redis   RedisConfig `mapstructure:"redis" yaml:"redis,omitempty"`
}

// RedisConfig configures the Redis nonce store.
type RedisConfig struct {
	Addrs      []string `mapstructure:"addrs" yaml:"addrs,omitempty"`
	MasterName string   `mapstructure:"master_name" yaml:"master_name,omitempty"`
	Username   string   `mapstructure:"username" yaml:"username,omitempty"`
	Password   string   `mapstructure:"password" yaml:"password,omitempty"`
	DB         int      `mapstructure:"db" yaml:"db,omitempty"`
	KeyPrefix  string   `mapstructure:"key_prefix" yaml:"key_prefix,omitempty"`
}

// ChannelConfig tunes message encoding.
type ChannelConfig struct {
	MaxIndirectURLLength int `mapstructure:"max_indirect_url_length" yaml:"max_indirect_url_length"`
}

// LoggingConfig selects the slog format and level.
type LoggingConfig struct {
	Format string `mapstructure:"format" yaml:"format"`
	Level  string `mapstructure:"level" yaml:"level"`
}

// ServerConfig configures msgctl serve.
type ServerConfig struct {
	Address string `mapstructure:"address" yaml:"address"`
}

// DefaultPath returns $XDG_CONFIG_HOME/msgctl/config.yaml, creating the
// parent directory if needed.
func DefaultPath() (string, error) {
	return xdg.ConfigFile("msgctl/config.yaml")
}

// SetDefaults registers every key with its default value, which also makes
// every key overridable from the environment.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("bindings.hmac_secret", "")
	v.SetDefault("bindings.signing_key_file", "")
	v.SetDefault("bindings.verification_key_file", "")
	v.SetDefault("bindings.max_age", bindings.DefaultMaxAge)
	v.SetDefault("bindings.max_clock_skew", bindings.DefaultMaxClockSkew)
	v.SetDefault("nonce.backend", BackendMemory)
	v.SetDefault("nonce.redis.addrs", []string{})
	v.SetDefault("nonce.redis.master_name", "")
	v.SetDefault("nonce.redis.username", "")
	v.SetDefault("nonce.redis.password", "")
	v.SetDefault("nonce.redis.db", 0)
	v.SetDefault("nonce.redis.key_prefix", "msgctl:")
	v.SetDefault("channel.max_indirect_url_length", channel.DefaultMaxIndirectURLLength)
	v.SetDefault("logging.format", logging.FormatText.String())
	v.SetDefault("logging.level", "info")
	v.SetDefault("server.address", ":8080")
}

// Load reads the configuration into v and decodes it. An empty path selects
// DefaultPath, which may be absent; an explicit path must exist.
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := path != ""
	if !explicit {
		def, err := DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve default config path: %w", err)
		}
		path = def
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	var errs []error

	keys := 0
	for _, set := range []string{c.Bindings.HMACSecret, c.Bindings.SigningKeyFile, c.Bindings.VerificationKeyFile} {
		if set != "" {
			keys++
		}
	}
	if keys > 1 {
		errs = append(errs, errors.New("bindings: set only one of hmac_secret, signing_key_file and verification_key_file"))
	}
	if c.Bindings.HMACSecret != "" && len(c.Bindings.HMACSecret) < bindings.MinHMACSecretLength {
		errs = append(errs, fmt.Errorf("bindings.hmac_secret: must be at least %d bytes", bindings.MinHMACSecretLength))
	}
	if c.Bindings.MaxAge <= 0 {
		errs = append(errs, fmt.Errorf("bindings.max_age: must be positive, got %s", c.Bindings.MaxAge))
	}
	if c.Bindings.MaxClockSkew < 0 {
		errs = append(errs, fmt.Errorf("bindings.max_clock_skew: must not be negative, got %s", c.Bindings.MaxClockSkew))
	}

	switch c.Nonce.Backend {
	case BackendMemory:
	case BackendRedis:
		if len(c.Nonce.Redis.Addrs) == 0 {
			errs = append(errs, errors.New("nonce.redis.addrs: at least one address is required"))
		}
		if c.Nonce.Redis.KeyPrefix == "" {
			errs = append(errs, errors.New("nonce.redis.key_prefix: must not be empty"))
		}
	default:
		errs = append(errs, fmt.Errorf("nonce.backend: unknown backend %q", c.Nonce.Backend))
	}

	if c.Channel.MaxIndirectURLLength <= 0 {
		errs = append(errs, fmt.Errorf("channel.max_indirect_url_length: must be positive, got %d",
			c.Channel.MaxIndirectURLLength))
	}
	if _, err := logging.ParseFormat(c.Logging.Format); err != nil {
		errs = append(errs, fmt.Errorf("logging.format: %w", err))
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}
	return errors.Join(errs...)
}

// LoggingOptions returns the logging options the configuration selects.
func (c *Config) LoggingOptions() ([]logging.Option, error) {
	format, err := logging.ParseFormat(c.Logging.Format)
	if err != nil {
		return nil, err
	}
	level, err := logging.ParseLevel(c.Logging.Level)
	if err != nil {
		return nil, err
	}
	return []logging.Option{logging.WithFormat(format), logging.WithLevel(level)}, nil
}

// ChannelOptions returns the channel options the configuration selects.
func (c *Config) ChannelOptions() []channel.Option {
	return []channel.Option{channel.WithMaxIndirectURLLength(c.Channel.MaxIndirectURLLength)}
}

func (r RedisConfig) storeConfig(window time.Duration) nonce.RedisConfig {
	return nonce.RedisConfig{
		Addrs:      r.Addrs,
		MasterName: r.MasterName,
		Username:   r.Username,
		Password:   r.Password,
		DB:         r.DB,
		KeyPrefix:  r.KeyPrefix,
		Window:     window,
	}
}

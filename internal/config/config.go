// Package config loads server settings from flags, environment variables
// prefixed with TRIAGE_ and an optional config file.
package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds every runtime setting of the server.
type Config struct {
	Addr       string
	BookingURL string
	LogDev     bool

	Store   StoreConfig
	Session SessionConfig
	Notify  NotifyConfig
	OpenAI  OpenAIConfig
	Rate    RateConfig
}

// StoreConfig selects where screening results are kept.
type StoreConfig struct {
	Driver string // memory, sqlite or postgres
	DSN    string
}

type SessionConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
}

type NotifyConfig struct {
	Channel string
}

// OpenAIConfig enables generated replies when APIKey is set.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type RateConfig struct {
	PerSecond float64
	Burst     int
}

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("addr", ":8080")
	v.SetDefault("booking_url", "/counseling/book")
	v.SetDefault("log.dev", false)
	v.SetDefault("store.driver", DriverMemory)
	v.SetDefault("store.dsn", "triage.db")
	v.SetDefault("session.ttl", 24*time.Hour)
	v.SetDefault("session.sweep_interval", 10*time.Minute)
	v.SetDefault("notify.channel", "screening_escalations")
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("rate.per_second", 5.0)
	v.SetDefault("rate.burst", 10)

	v.SetEnvPrefix("triage")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// BindFlags exposes the most common settings as command-line flags.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	fs.String("addr", ":8080", "address to listen on")
	fs.String("store-driver", DriverMemory, "result store: memory, sqlite or postgres")
	fs.String("store-dsn", "triage.db", "sqlite path or postgres connection string")
	fs.Bool("dev", false, "human-readable debug logging")

	for key, flag := range map[string]string{
		"addr":         "addr",
		"store.driver": "store-driver",
		"store.dsn":    "store-dsn",
		"log.dev":      "dev",
	} {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return errors.Wrapf(err, "bind flag %s", flag)
		}
	}
	return nil
}

// Load reads file (if non-empty) and decodes the merged settings.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", file)
		}
	}

	cfg := &Config{
		Addr:       v.GetString("addr"),
		BookingURL: v.GetString("booking_url"),
		LogDev:     v.GetBool("log.dev"),
		Store: StoreConfig{
			Driver: strings.ToLower(v.GetString("store.driver")),
			DSN:    v.GetString("store.dsn"),
		},
		Session: SessionConfig{
			TTL:           v.GetDuration("session.ttl"),
			SweepInterval: v.GetDuration("session.sweep_interval"),
		},
		Notify: NotifyConfig{Channel: v.GetString("notify.channel")},
		OpenAI: OpenAIConfig{
			APIKey:  v.GetString("openai.api_key"),
			BaseURL: v.GetString("openai.base_url"),
			Model:   v.GetString("openai.model"),
		},
		Rate: RateConfig{
			PerSecond: v.GetFloat64("rate.per_second"),
			Burst:     v.GetInt("rate.burst"),
		},
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory:
	case DriverSQLite, DriverPostgres:
		if c.Store.DSN == "" {
			return errors.Errorf("store.dsn is required for driver %q", c.Store.Driver)
		}
	default:
		return errors.Errorf("unknown store.driver %q", c.Store.Driver)
	}
	if c.Addr == "" {
		return errors.New("addr must not be empty")
	}
	if c.Session.SweepInterval <= 0 {
		return errors.New("session.sweep_interval must be positive")
	}
	if c.Store.Driver == DriverPostgres && c.Notify.Channel == "" {
		return errors.New("notify.channel must not be empty")
	}
	return nil
}

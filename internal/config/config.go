package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// AppName is the base name of the config file searched for when no
	// explicit path is given.
	AppName = "vortex"

	// EnvPrefix is the prefix for environment variable overrides, e.g.
	// VORTEX_SERVER_ADDR.
	EnvPrefix = "VORTEX"
)

// Config holds the application configuration.
type Config struct {
	Server struct {
		Addr          string        `mapstructure:"addr"`
		ShutdownGrace time.Duration `mapstructure:"shutdown_grace"`
		ReadTimeout   time.Duration `mapstructure:"read_timeout"`
		WriteTimeout  time.Duration `mapstructure:"write_timeout"`
		SecureCookies bool          `mapstructure:"secure_cookies"`
	} `mapstructure:"server"`

	Log struct {
		Format string `mapstructure:"format"` // json or human
		Level  string `mapstructure:"level"`
		File   string `mapstructure:"file"`
	} `mapstructure:"log"`

	Theme struct {
		Name    string `mapstructure:"name"`
		Variant string `mapstructure:"variant"`
	} `mapstructure:"theme"`

	Auth struct {
		JWTSecret      string        `mapstructure:"jwt_secret"`
		SessionTTL     time.Duration `mapstructure:"session_ttl"`
		RequireSession bool          `mapstructure:"require_session"`
		AllowUnknown   bool          `mapstructure:"allow_unknown"`
		TwoFactor      struct {
			Code        string        `mapstructure:"code"`
			MaxAttempts int           `mapstructure:"max_attempts"`
			TTL         time.Duration `mapstructure:"ttl"`
		} `mapstructure:"two_factor"`
	} `mapstructure:"auth"`

	Storage struct {
		Driver string `mapstructure:"driver"` // memory or sqlite
		DSN    string `mapstructure:"dsn"`
	} `mapstructure:"storage"`

	Flows struct {
		Dir     string        `mapstructure:"dir"`
		IdleTTL time.Duration `mapstructure:"idle_ttl"`
	} `mapstructure:"flows"`

	// File is the config file that was read, empty when only defaults and
	// environment were used.
	File string `mapstructure:"-"`
}

// Load reads configuration from path (or the default search locations when
// path is empty), then applies VORTEX_* environment overrides. A missing
// config file is not an error.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(AppName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else {
		cfg.File = v.ConfigFileUsed()
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the configuration produced by defaults alone.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return cfg
}

// Validate checks values viper cannot type-check.
func (c Config) Validate() error {
	switch c.Log.Format {
	case "json", "human":
	default:
		return fmt.Errorf("config: log.format must be json or human, got %q", c.Log.Format)
	}
	switch c.Storage.Driver {
	case "memory":
	case "sqlite":
		if strings.TrimSpace(c.Storage.DSN) == "" {
			return fmt.Errorf("config: storage.dsn is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("config: storage.driver must be memory or sqlite, got %q", c.Storage.Driver)
	}
	if c.Auth.TwoFactor.MaxAttempts < 0 {
		return fmt.Errorf("config: auth.two_factor.max_attempts must not be negative")
	}
	if c.Auth.TwoFactor.TTL < 0 {
		return fmt.Errorf("config: auth.two_factor.ttl must not be negative")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.shutdown_grace", 10*time.Second)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.secure_cookies", false)

	v.SetDefault("log.format", "human")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")

	v.SetDefault("theme.name", "vortex")
	v.SetDefault("theme.variant", "dark")

	v.SetDefault("auth.jwt_secret", "vortex-dev-secret")
	v.SetDefault("auth.session_ttl", 24*time.Hour)
	v.SetDefault("auth.require_session", false)
	v.SetDefault("auth.allow_unknown", true)
	v.SetDefault("auth.two_factor.code", "")
	// 0 keeps the observed behaviour: unlimited attempts, no expiry.
	v.SetDefault("auth.two_factor.max_attempts", 0)
	v.SetDefault("auth.two_factor.ttl", time.Duration(0))

	v.SetDefault("storage.driver", "memory")
	v.SetDefault("storage.dsn", "")

	v.SetDefault("flows.dir", "")
	v.SetDefault("flows.idle_ttl", 30*time.Minute)
}

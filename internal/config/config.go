// Package config loads process configuration from defaults, an optional
// .tally.yaml, TALLY_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/dukerupert/tally/internal/blob"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

type VAPID struct {
	PublicKey  string `mapstructure:"public_key"`
	PrivateKey string `mapstructure:"private_key"`
	Subject    string `mapstructure:"subject"`
}

type S3 struct {
	Bucket     string `mapstructure:"bucket"`
	Region     string `mapstructure:"region"`
	Endpoint   string `mapstructure:"endpoint"`
	AccessKey  string `mapstructure:"access_key"`
	SecretKey  string `mapstructure:"secret_key"`
	Prefix     string `mapstructure:"prefix"`
	Passphrase string `mapstructure:"passphrase"`
}

type Config struct {
	DataDir   string `mapstructure:"data_dir"`
	Store     string `mapstructure:"store"`
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	Port      string `mapstructure:"port"`
	RelayURL  string `mapstructure:"relay_url"`

	// RemindInterval is the server reminder period in minutes; 0 disables it.
	RemindInterval int `mapstructure:"remind_interval"`

	VAPID VAPID `mapstructure:"vapid"`
	S3    S3    `mapstructure:"s3"`
}

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("data_dir", "~/.tally")
	v.SetDefault("store", blob.KindDisk)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("port", "3000")
	v.SetDefault("relay_url", "http://localhost:3000")
	v.SetDefault("remind_interval", 0)
	v.SetDefault("vapid.public_key", "")
	v.SetDefault("vapid.private_key", "")
	v.SetDefault("vapid.subject", "")
	for _, k := range []string{"bucket", "region", "endpoint", "access_key", "secret_key", "prefix", "passphrase"} {
		v.SetDefault("s3."+k, "")
	}

	v.SetConfigName(".tally") // .yaml is implicit
	v.SetEnvPrefix("TALLY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the optional config file and decodes v into a Config.
// TALLY_CONFIG_PATH names an extra directory to search first.
func Load(v *viper.Viper) (Config, error) {
	if override := os.Getenv("TALLY_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	dir, err := expandHome(cfg.DataDir)
	if err != nil {
		return Config{}, err
	}
	cfg.DataDir = dir

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values viper cannot type-check.
func (c Config) Validate() error {
	switch c.Store {
	case blob.KindDisk, blob.KindBolt, blob.KindSQLite:
	default:
		return fmt.Errorf("%w: store %q (want %s, %s or %s)", ErrInvalid, c.Store, blob.KindDisk, blob.KindBolt, blob.KindSQLite)
	}
	if n, err := strconv.Atoi(c.Port); err != nil || n < 1 || n > 65535 {
		return fmt.Errorf("%w: port %q", ErrInvalid, c.Port)
	}
	if c.RemindInterval < 0 {
		return fmt.Errorf("%w: remind_interval must not be negative", ErrInvalid)
	}
	if c.DataDir == "" {
		return fmt.Errorf("%w: data_dir is empty", ErrInvalid)
	}
	return nil
}

// ListenAddr returns the relay's listen address.
func (c Config) ListenAddr() string {
	return ":" + c.Port
}

// ConfigFileUsed reports which file, if any, v read.
func ConfigFileUsed(v *viper.Viper) string {
	return v.ConfigFileUsed()
}

func expandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}

// Package config loads the admin client configuration.
//
// Sources are applied in order: built-in defaults, a JSON file (named by the
// -config flag or the NEVERLAND_CONFIG environment variable), then any flags
// given explicitly on the command line.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// EnvConfig names the environment variable holding the config file path.
const EnvConfig = "NEVERLAND_CONFIG"

// Cache drivers.
const (
	CacheSQLite = "sqlite"
	CacheFile   = "file"
)

// Duration is a time.Duration read from JSON as "5s" or as whole seconds.
type Duration time.Duration

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case string:
		p, err := time.ParseDuration(x)
		if err != nil {
			return err
		}
		*d = Duration(p)
	case float64:
		*d = Duration(time.Duration(x * float64(time.Second)))
	default:
		return fmt.Errorf("duration: unsupported value %s", b)
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Config is the admin client configuration.
type Config struct {
	Addr        string   `json:"addr"`
	CACert      string   `json:"caCert,omitempty"`
	Insecure    bool     `json:"insecure,omitempty"`
	Plaintext   bool     `json:"plaintext,omitempty"`
	Token       string   `json:"token,omitempty"`
	TokenFile   string   `json:"tokenFile,omitempty"`
	CacheDriver string   `json:"cacheDriver"`
	CachePath   string   `json:"cachePath"`
	Timeout     Duration `json:"timeout"`
	LogLevel    string   `json:"logLevel"`
	LogFormat   string   `json:"logFormat"`
	Offline     bool     `json:"offline,omitempty"`
	VoucherSeed uint64   `json:"voucherSeed,omitempty"`
}

// Dir returns the per-user configuration directory.
func Dir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "neverland")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "neverland")
}

// Default returns the built-in configuration.
func Default() Config {
	dir := Dir()
	return Config{
		Addr:        "localhost:8443",
		TokenFile:   filepath.Join(dir, "token.json"),
		CacheDriver: CacheSQLite,
		CachePath:   filepath.Join(dir, "cache.db"),
		Timeout:     Duration(10 * time.Second),
		LogLevel:    "warn",
		LogFormat:   "console",
	}
}

// Validate checks field combinations.
func (c Config) Validate() error {
	if c.Addr == "" && !c.Offline {
		return errors.New("config: addr is required unless offline")
	}
	switch c.CacheDriver {
	case CacheSQLite, CacheFile:
	default:
		return fmt.Errorf("config: unknown cache driver %q", c.CacheDriver)
	}
	if c.CachePath == "" {
		return errors.New("config: cachePath is required")
	}
	if c.Timeout <= 0 {
		return errors.New("config: timeout must be positive")
	}
	if c.Insecure && c.Plaintext {
		return errors.New("config: insecure and plaintext are mutually exclusive")
	}
	return nil
}

// Load builds the configuration from args and the environment.
// It returns the positional arguments left after flag parsing.
func Load(args []string, getenv func(string) string, stderr io.Writer) (Config, []string, error) {
	var (
		path    string
		flagged = Default()
		timeout time.Duration
	)
	fs := flag.NewFlagSet("neverland", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&path, "config", "", "JSON config file (env "+EnvConfig+")")
	fs.StringVar(&flagged.Addr, "addr", flagged.Addr, "records service address")
	fs.StringVar(&flagged.CACert, "cacert", "", "CA certificate (PEM)")
	fs.BoolVar(&flagged.Insecure, "insecure", false, "skip certificate verification (dev)")
	fs.BoolVar(&flagged.Plaintext, "plaintext", false, "connect without TLS (dev)")
	fs.StringVar(&flagged.Token, "token", "", "bearer token")
	fs.StringVar(&flagged.TokenFile, "token-file", flagged.TokenFile, "saved token file")
	fs.StringVar(&flagged.CacheDriver, "cache", flagged.CacheDriver, "cache driver: sqlite|file")
	fs.StringVar(&flagged.CachePath, "cache-path", flagged.CachePath, "sqlite file or cache directory")
	fs.DurationVar(&timeout, "timeout", time.Duration(flagged.Timeout), "per-call remote timeout")
	fs.StringVar(&flagged.LogLevel, "log-level", flagged.LogLevel, "debug|info|warn|error")
	fs.StringVar(&flagged.LogFormat, "log-format", flagged.LogFormat, "json|console")
	fs.BoolVar(&flagged.Offline, "offline", false, "never contact the records service")
	fs.Uint64Var(&flagged.VoucherSeed, "voucher-seed", 0, "voucher generator seed (0 = time based)")
	if err := fs.Parse(args); err != nil {
		return Config{}, nil, err
	}
	flagged.Timeout = Duration(timeout)

	cfg := Default()
	if path == "" && getenv != nil {
		path = getenv(EnvConfig)
	}
	if path != "" {
		if err := readFile(path, &cfg); err != nil {
			return Config{}, nil, err
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Addr = flagged.Addr
		case "cacert":
			cfg.CACert = flagged.CACert
		case "insecure":
			cfg.Insecure = flagged.Insecure
		case "plaintext":
			cfg.Plaintext = flagged.Plaintext
		case "token":
			cfg.Token = flagged.Token
		case "token-file":
			cfg.TokenFile = flagged.TokenFile
		case "cache":
			cfg.CacheDriver = flagged.CacheDriver
		case "cache-path":
			cfg.CachePath = flagged.CachePath
		case "timeout":
			cfg.Timeout = flagged.Timeout
		case "log-level":
			cfg.LogLevel = flagged.LogLevel
		case "log-format":
			cfg.LogFormat = flagged.LogFormat
		case "offline":
			cfg.Offline = flagged.Offline
		case "voucher-seed":
			cfg.VoucherSeed = flagged.VoucherSeed
		}
	})

	if err := cfg.Validate(); err != nil {
		return Config{}, nil, err
	}
	return cfg, fs.Args(), nil
}

func readFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	return nil
}

// Package config resolves runtime settings from the config file, a .env
// file, and HABITUAL_* environment variables, in increasing precedence.
// Command-line flags are applied last by the caller.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/julianstephens/habitual/internal/calendar"
	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/keyring"
	"github.com/julianstephens/habitual/internal/models"
)

type Config struct {
	// Store is a SQLite path, a PostgreSQL URL, "memory", or "keyring".
	Store           string        `yaml:"store"`
	Timezone        string        `yaml:"timezone"`
	FirstWeekday    string        `yaml:"first_weekday"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	FetchRetries    int           `yaml:"fetch_retries"`
	JWTSecret       string        `yaml:"jwt_secret"`
	TokenTTL        time.Duration `yaml:"token_ttl"`
	Debug           bool          `yaml:"debug"`
}

func Default() Config {
	return Config{
		Store:           constants.DefaultStorePath,
		Timezone:        constants.DefaultTimezone,
		FirstWeekday:    constants.DefaultFirstWeekday.String(),
		RefreshInterval: constants.DefaultRefreshInterval,
		FetchRetries:    constants.DefaultFetchRetries,
		TokenTTL:        constants.DefaultTokenTTL,
	}
}

// DefaultPath returns the config file location under the user's home.
func DefaultPath() string {
	return ExpandHome(filepath.Join(constants.DefaultConfigDir, constants.DefaultConfigFile))
}

// Dir returns the directory that holds the config file and logs.
func Dir() string {
	return ExpandHome(constants.DefaultConfigDir)
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// Load builds a Config from defaults, then configFile, then dotEnvFile, then
// the process environment. Missing files are skipped.
func Load(configFile, dotEnvFile string) (Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := cfg.readFile(configFile); err != nil {
			return Config{}, err
		}
	}

	dotenv := map[string]string{}
	if dotEnvFile != "" {
		if _, err := os.Stat(dotEnvFile); err == nil {
			vals, err := godotenv.Read(dotEnvFile)
			if err != nil {
				return Config{}, fmt.Errorf("failed to read %s: %w", dotEnvFile, err)
			}
			dotenv = vals
		}
	}
	// lib/pq reads the password from the process environment only.
	if pw, ok := dotenv[constants.EnvDBPassword]; ok && os.Getenv(constants.EnvDBPassword) == "" {
		if err := os.Setenv(constants.EnvDBPassword, pw); err != nil {
			return Config{}, err
		}
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	f, err := os.Open(ExpandHome(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(constants.EnvStore); ok && v != "" {
		c.Store = v
	}
	if v, ok := lookup(constants.EnvTimezone); ok && v != "" {
		c.Timezone = v
	}
	if v, ok := lookup(constants.EnvFirstDay); ok && v != "" {
		c.FirstWeekday = v
	}
	if v, ok := lookup(constants.EnvJWTSecret); ok && v != "" {
		c.JWTSecret = v
	}
	if v, ok := lookup(constants.EnvRefresh); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", constants.EnvRefresh, err)
		}
		c.RefreshInterval = d
	}
	if v, ok := lookup(constants.EnvTokenTTL); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", constants.EnvTokenTTL, err)
		}
		c.TokenTTL = d
	}
	if v, ok := lookup(constants.EnvRetries); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", constants.EnvRetries, err)
		}
		c.FetchRetries = n
	}
	if v, ok := lookup(constants.EnvDebug); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", constants.EnvDebug, err)
		}
		c.Debug = b
	}
	return nil
}

// Validate checks value ranges and that the timezone and first weekday
// resolve.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Store) == "" {
		return errors.New("store cannot be empty")
	}
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("refresh_interval must be positive, got %s", c.RefreshInterval)
	}
	if c.FetchRetries < 1 {
		return fmt.Errorf("fetch_retries must be at least 1, got %d", c.FetchRetries)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("token_ttl must be positive, got %s", c.TokenTTL)
	}
	_, err := c.Calendar()
	return err
}

// Calendar builds the calendar for the configured timezone and first weekday.
func (c Config) Calendar() (calendar.Calendar, error) {
	loc, err := calendar.LoadLocation(c.Timezone)
	if err != nil {
		return calendar.Calendar{}, err
	}
	first := constants.DefaultFirstWeekday
	if c.FirstWeekday != "" {
		wd, ok := models.ParseWeekday(c.FirstWeekday)
		if !ok {
			return calendar.Calendar{}, fmt.Errorf("invalid first_weekday: %s", c.FirstWeekday)
		}
		first = wd.Std()
	}
	return calendar.New(loc, first), nil
}

// ResolveStore returns the store location with "~" expanded. For "keyring" it
// reads the connection string from the OS keyring and reports fromKeyring.
func (c Config) ResolveStore() (location string, fromKeyring bool, err error) {
	if c.Store != constants.StoreKeyring {
		return ExpandHome(c.Store), false, nil
	}
	connStr, err := keyring.GetConnectionString()
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", true, errors.New("no connection string in keyring; store one with 'habitual keyring set'")
		}
		return "", true, err
	}
	return connStr, true, nil
}

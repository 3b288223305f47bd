// Package config loads lockbox settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	yaml "gopkg.in/yaml.v3"

	cr "github.com/kimjosell/lockbox/internal/crypto"
)

const (
	EnvConfigFile     = "LOCKBOX_CONFIG"
	EnvVaultPath      = "LOCKBOX_VAULT"
	EnvSaltPath       = "LOCKBOX_SALT"
	EnvLogLevel       = "LOCKBOX_LOG_LEVEL"
	EnvCipher         = "LOCKBOX_CIPHER"
	EnvUnlockAttempts = "LOCKBOX_UNLOCK_ATTEMPTS"
	EnvUnlockInterval = "LOCKBOX_UNLOCK_INTERVAL"
)

type Config struct {
	VaultPath string `yaml:"vault"`
	SaltPath  string `yaml:"salt"`
	LogLevel  string `yaml:"log_level"`
	Cipher    string `yaml:"cipher"`

	// UnlockAttempts bounds master password prompts per run; UnlockInterval is
	// the minimum spacing between them.
	UnlockAttempts int           `yaml:"unlock_attempts"`
	UnlockInterval time.Duration `yaml:"unlock_interval"`
}

func (c *Config) setDefaults() {
	if c.VaultPath == "" {
		c.VaultPath = "passwords.enc"
	}
	if c.SaltPath == "" {
		c.SaltPath = "lockbox.salt"
	}
	if c.LogLevel == "" {
		c.LogLevel = "warn"
	}
	if c.Cipher == "" {
		c.Cipher = cr.AESGCM.String()
	}
	if c.UnlockAttempts <= 0 {
		c.UnlockAttempts = 3
	}
	if c.UnlockInterval <= 0 {
		c.UnlockInterval = time.Second
	}
}

// Validate checks the fields that have a closed set of values.
func (c *Config) Validate() error {
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}
	if _, err := cr.ParseCipher(c.Cipher); err != nil {
		return err
	}
	return nil
}

// LoadFile reads YAML settings from path into c. Keys missing from the file
// leave the current values alone; unknown keys are an error.
func (c *Config) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("config file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("config file %s: %w", path, err)
	}
	return nil
}

// Load builds the configuration from, in increasing precedence, built-in
// defaults, the YAML file named by LOCKBOX_CONFIG and the other LOCKBOX_*
// variables. The result is validated.
func Load() (*Config, error) {
	return LoadWithFile(os.Getenv(EnvConfigFile))
}

// LoadWithFile is Load with an explicit config file; "" means none.
func LoadWithFile(path string) (*Config, error) {
	c := &Config{}
	if path != "" {
		if err := c.LoadFile(path); err != nil {
			return nil, err
		}
	}
	for env, dst := range map[string]*string{
		EnvVaultPath: &c.VaultPath,
		EnvSaltPath:  &c.SaltPath,
		EnvLogLevel:  &c.LogLevel,
		EnvCipher:    &c.Cipher,
	} {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}
	if v := os.Getenv(EnvUnlockAttempts); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("%s must be a positive integer, got %q", EnvUnlockAttempts, v)
		}
		c.UnlockAttempts = n
	}
	if v := os.Getenv(EnvUnlockInterval); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("%s has invalid duration %q: %w", EnvUnlockInterval, v, err)
		}
		c.UnlockInterval = d
	}
	c.setDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

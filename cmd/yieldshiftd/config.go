package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/iov-one/yieldshift"
	"github.com/iov-one/yieldshift/errors"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds the daemon settings. Every value can be overwritten with a
// YIELDSHIFT_ prefixed environment variable, for example YIELDSHIFT_LISTEN.
type Config struct {
	Home      string `mapstructure:"home" yaml:"home"`
	Listen    string `mapstructure:"listen" yaml:"listen"`
	Heartbeat string `mapstructure:"heartbeat" yaml:"heartbeat"`
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	// Custody is the account holding all funds of the engine.
	Custody string `mapstructure:"custody" yaml:"custody"`
	// Roles maps a role name to the addresses holding it.
	Roles map[string][]string `mapstructure:"roles" yaml:"roles"`
}

func defaultConfig(home string) Config {
	return Config{
		Home:      home,
		Listen:    ":8480",
		Heartbeat: "@every 1m",
		LogLevel:  "info",
		Custody:   "seed:custody",
	}
}

// loadConfig reads the configuration file. An empty path reads the
// configuration from the environment only.
func loadConfig(path string) (*Config, error) {
	v := viper.New()
	def := defaultConfig(filepath.Join(os.Getenv("HOME"), ".yieldshiftd"))
	v.SetDefault("home", def.Home)
	v.SetDefault("listen", def.Listen)
	v.SetDefault("heartbeat", def.Heartbeat)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("custody", def.Custody)

	v.SetEnvPrefix("YIELDSHIFT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(errors.ErrInput, "read config: %s", err)
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "decode config: %s", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	var errs error
	if c.Home == "" {
		errs = errors.AppendField(errs, "Home", errors.ErrEmpty)
	}
	if c.Listen == "" {
		errs = errors.AppendField(errs, "Listen", errors.ErrEmpty)
	}
	if _, err := cron.ParseStandard(c.Heartbeat); err != nil {
		errs = errors.AppendField(errs, "Heartbeat", errors.Wrap(errors.ErrInput, err.Error()))
	}
	if _, err := yieldshift.ParseAddress(c.Custody); err != nil {
		errs = errors.AppendField(errs, "Custody", err)
	}
	if _, err := c.Authorizer(); err != nil {
		errs = errors.AppendField(errs, "Roles", err)
	}
	return errs
}

// Authorizer returns the role table of the configuration.
func (c *Config) Authorizer() (yieldshift.StaticRoles, error) {
	roles := make(yieldshift.StaticRoles)
	for name, encoded := range c.Roles {
		role, err := yieldshift.ParseRole(name)
		if err != nil {
			return nil, err
		}
		for _, enc := range encoded {
			addr, err := yieldshift.ParseAddress(enc)
			if err != nil {
				return nil, errors.Wrapf(err, "%s address %q", name, enc)
			}
			roles.Grant(role, addr)
		}
	}
	return roles, nil
}

// CustodyAddress returns the custody account.
func (c *Config) CustodyAddress() yieldshift.Address {
	addr, _ := yieldshift.ParseAddress(c.Custody)
	return addr
}

func (c *Config) genesisPath() string { return filepath.Join(c.Home, "genesis.json") }
func (c *Config) dataPath() string    { return filepath.Join(c.Home, "data") }

// writeConfig writes the configuration as a YAML file.
func writeConfig(path string, c Config) error {
	raw, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	if err := os.WriteFile(path, raw, 0600); err != nil {
		return errors.Wrapf(errors.ErrInput, "write config: %s", err)
	}
	return nil
}

package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance. A missing configuration file is
// an error: the rule tables and audit sinks cannot be defaulted, and the
// process must not connect to the mail store without them.
func New() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/mailsweep/")
	v.AddConfigPath("$HOME/.mailsweep")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	// Set defaults
	setDefaults(v)

	// Environment variables
	v.AutomaticEnv()
	v.SetEnvPrefix("MAILSWEEP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Mail store defaults
	v.SetDefault("mailstore.type", "imap")

	// IMAP defaults
	v.SetDefault("imap.address", "localhost:993")
	v.SetDefault("imap.tls", true)
	v.SetDefault("imap.store_name", "Online Archive")
	v.SetDefault("imap.root_mailbox", "")

	// Archive defaults
	v.SetDefault("archive.store_name", "Online Archive")
	v.SetDefault("archive.delete_destination", "ToDelete")

	// Cache defaults
	v.SetDefault("cache.type", "csv")
	v.SetDefault("cache.csv_path", "address_cache.csv")
	v.SetDefault("cache.sqlite_path", "address_cache.db")
	v.SetDefault("cache.mysql_dsn", "user:password@tcp(localhost:3306)/mailsweep")
	v.SetDefault("cache.save_interval", 500)

	// Audit log defaults
	v.SetDefault("audit.bulk_path", "mailsweep_bulk.log")
	v.SetDefault("audit.invalid_path", "mailsweep_invalid.log")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetStringMapString gets a string map value from the configuration
func (c *Config) GetStringMapString(key string) map[string]string {
	return c.v.GetStringMapString(key)
}

// UnmarshalKey decodes a configuration subtree into a struct
func (c *Config) UnmarshalKey(key string, out interface{}) error {
	return c.v.UnmarshalKey(key, out)
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}

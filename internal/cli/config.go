package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config holds settings shared by all commands. Values come from, in
// increasing priority: defaults, a config file, FROZEN_* environment
// variables and command-line flags.
type Config struct {
	KeyField  string      `mapstructure:"key_field"`
	Format    string      `mapstructure:"format"`
	Codec     string      `mapstructure:"codec"`
	LogLevel  string      `mapstructure:"log_level"`
	AWSRegion string      `mapstructure:"aws_region"`
	MinIO     MinIOConfig `mapstructure:"minio"`
}

// MinIOConfig holds connection settings for minio:// locations.
type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Region    string `mapstructure:"region"`
	Secure    bool   `mapstructure:"secure"`
}

var defaults = map[string]any{
	"key_field":        "id",
	"format":           "json",
	"codec":            "",
	"log_level":        "warn",
	"aws_region":       "",
	"minio.endpoint":   "localhost:9000",
	"minio.access_key": "",
	"minio.secret_key": "",
	"minio.region":     "",
	"minio.secure":     false,
}

// flagKeys maps persistent flags to config keys.
var flagKeys = map[string]string{
	"key-field": "key_field",
	"format":    "format",
	"codec":     "codec",
	"log-level": "log_level",
}

// LoadConfig reads path (or ./frozen.yaml if path is empty and the file
// exists), the environment and the flags of cmd.
func LoadConfig(path string, cmd *cobra.Command) (Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix("FROZEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("frozen")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	if cmd != nil {
		for name, key := range flagKeys {
			if f := cmd.Flags().Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, err
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

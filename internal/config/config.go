package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the inventory tool configuration.
type Config struct {
	TailscaleBinary string        `mapstructure:"tailscale_binary"`
	StatusTimeout   time.Duration `mapstructure:"status_timeout"`
	Listen          string        `mapstructure:"listen"`
	EnableSwagger   bool          `mapstructure:"enable_swagger"`
	ApiSecret       string        `mapstructure:"api_secret"`
	Logging         LoggingConfig `mapstructure:",squash"`
}

// LoggingConfig controls diagnostic output. Logs always go to stderr.
type LoggingConfig struct {
	Level  string `mapstructure:"log_level"`
	Format string `mapstructure:"log_format"`
}

// Load reads configuration from an optional .env file, the config file and
// the environment. A missing config file is not an error unless cfgFile
// names it explicitly.
func Load(cfgFile string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("tailscale-inventory")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/tailscale-inventory")
	}

	v.SetDefault("tailscale_binary", "")
	v.SetDefault("status_timeout", "30s")
	v.SetDefault("listen", ":9560")
	v.SetDefault("enable_swagger", true)
	v.SetDefault("api_secret", "")
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_format", "text")

	v.SetEnvPrefix("TS_INVENTORY")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.StatusTimeout <= 0 {
		return nil, fmt.Errorf("status_timeout must be positive, got %s", cfg.StatusTimeout)
	}

	return &cfg, nil
}

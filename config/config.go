package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Data      DataConfig
	Images    ImagesConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Environment     string        `mapstructure:"environment"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DataConfig locates the pipeline artifacts on disk
type DataConfig struct {
	Root       string `mapstructure:"root"`
	RunsLog    string `mapstructure:"runs_log"`
	ExportFile string `mapstructure:"export_file"`
}

// ImagesConfig holds the CDN rewrite origins
type ImagesConfig struct {
	DeadOrigin   string `mapstructure:"dead_origin"`
	MirrorOrigin string `mapstructure:"mirror_origin"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute, 0 disables
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/matchboard/")

	v.SetEnvPrefix("MATCHBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads a .env file from the working directory if one exists.
// Variables already present in the environment win.
func loadEnvFile() error {
	if _, err := os.Stat(".env"); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load(".env")
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("data.root", ".")
	v.SetDefault("data.runs_log", "runs_log.csv")
	v.SetDefault("data.export_file", "inventory_export.csv")

	v.SetDefault("images.dead_origin", "https://pic.qiqi2000.com/")
	v.SetDefault("images.mirror_origin", "https://bags.qiqiyg.com/")

	v.SetDefault("ratelimit.per_ip", 120)

	v.SetDefault("log.level", "info")
}

// validate validates the configuration
func validate(config *Config) error {
	if strings.TrimSpace(config.Data.Root) == "" {
		return fmt.Errorf("data root is required (set MATCHBOARD_DATA_ROOT)")
	}
	if config.Data.RunsLog == "" || config.Data.ExportFile == "" {
		return fmt.Errorf("runs log and export file names must not be empty")
	}

	for name, origin := range map[string]string{
		"images.dead_origin":   config.Images.DeadOrigin,
		"images.mirror_origin": config.Images.MirrorOrigin,
	} {
		u, err := url.Parse(origin)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%s must be an absolute http(s) URL, got: %q", name, origin)
		}
	}

	// A mirror under the dead origin would be rewritten again on every pass.
	if strings.HasPrefix(config.Images.MirrorOrigin, config.Images.DeadOrigin) {
		return fmt.Errorf("images.mirror_origin must not start with images.dead_origin")
	}

	if config.RateLimit.PerIP < 0 {
		return fmt.Errorf("ratelimit.per_ip must be >= 0, got: %d", config.RateLimit.PerIP)
	}

	if _, err := zapcore.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("log level %q is not valid: %w", config.Log.Level, err)
	}

	return nil
}

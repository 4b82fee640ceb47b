package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config holds application settings gathered from the environment, an optional .env file
// and an optional config file in the working directory.
type Config struct {
	Port         string        `mapstructure:"port"`
	DBPath       string        `mapstructure:"db_path"`
	TemplateDir  string        `mapstructure:"template_dir"`
	StaticDir    string        `mapstructure:"static_dir"`
	SecureCookie bool          `mapstructure:"secure_cookie"`
	SessionTTL   time.Duration `mapstructure:"session_ttl"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	// Seed account created at startup when the database has no users.
	AdminEmail    string `mapstructure:"admin_email"`
	AdminUser     string `mapstructure:"admin_user"`
	AdminPassword string `mapstructure:"admin_password"`
}

// Load reads configuration. Environment variables use the upper-case key names
// (PORT, DB_PATH, SESSION_TTL, ...).
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("port", "8080")
	v.SetDefault("db_path", "expenses.db")
	v.SetDefault("template_dir", "web/templates")
	v.SetDefault("static_dir", "web/static")
	v.SetDefault("secure_cookie", false)
	v.SetDefault("session_ttl", "720h")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("admin_email", "")
	v.SetDefault("admin_user", "")
	v.SetDefault("admin_password", "")

	v.SetConfigName("config")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// Validate reports every configuration problem at once.
func (c Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port %q: must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if strings.TrimSpace(c.DBPath) == "" {
		problems = append(problems, "database path cannot be empty")
	}
	if c.SessionTTL <= 0 {
		problems = append(problems, fmt.Sprintf("invalid session ttl %s: must be positive", c.SessionTTL))
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		problems = append(problems, fmt.Sprintf("invalid log level %q", c.LogLevel))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		problems = append(problems, fmt.Sprintf("invalid log format %q: must be text or json", c.LogFormat))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(problems, "; "))
	}
	return nil
}

// HasAdmin reports whether a seed account is configured.
func (c Config) HasAdmin() bool {
	return c.AdminUser != "" && c.AdminPassword != ""
}

// AdminLogin returns the seed account's email, falling back to the user name so that
// deployments configured with only ADMIN_USER still get a usable login.
func (c Config) AdminLogin() string {
	if c.AdminEmail != "" {
		return c.AdminEmail
	}
	return c.AdminUser
}

// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Game     GameConfig     `mapstructure:"game" validate:"required"`
	Daily    DailyConfig    `mapstructure:"daily" validate:"required"`
}

// ServerConfig contains HTTP settings.
type ServerConfig struct {
	Port           int           `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel       string        `mapstructure:"log_level" validate:"required,oneof=trace debug info warn error fatal"`
	ClientOrigin   string        `mapstructure:"client_origin" validate:"required"`
	HandlerTimeout time.Duration `mapstructure:"handler_timeout" validate:"gt=0"`
	Production     bool          `mapstructure:"production"`
}

// DatabaseConfig points at the SQLite file.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// AuthConfig contains account/token settings.
type AuthConfig struct {
	JWTSecret      string `mapstructure:"jwt_secret" validate:"required,min=8"`
	JWTExpiresDays int    `mapstructure:"jwt_expires_days" validate:"gt=0"`
	CookieName     string `mapstructure:"cookie_name" validate:"required"`
}

// GameConfig contains board defaults.
type GameConfig struct {
	Pairs       int           `mapstructure:"pairs" validate:"gt=0,lte=100"`
	MaxPairs    int           `mapstructure:"max_pairs" validate:"gtefield=Pairs,lte=100"`
	Theme       string        `mapstructure:"theme" validate:"required"`
	RevealDelay time.Duration `mapstructure:"reveal_delay" validate:"gt=0"`
	SymbolsFile string        `mapstructure:"symbols_file"`
}

// DailyConfig contains the deal-of-the-day settings.
type DailyConfig struct {
	Salt  string `mapstructure:"salt" validate:"required"`
	Pairs int    `mapstructure:"pairs" validate:"gt=0,lte=100"`
}

// JWTTTL is the token lifetime.
func (a AuthConfig) JWTTTL() time.Duration {
	return time.Duration(a.JWTExpiresDays) * 24 * time.Hour
}

// envBindings maps config keys to the environment variables that set them.
var envBindings = map[string]string{
	"server.port":            "PORT",
	"server.log_level":       "LOG_LEVEL",
	"server.client_origin":   "CLIENT_ORIGIN",
	"server.handler_timeout": "HANDLER_TIMEOUT",
	"database.path":          "DB_PATH",
	"auth.jwt_secret":        "JWT_SECRET",
	"auth.jwt_expires_days":  "JWT_EXPIRES_DAYS",
	"auth.cookie_name":       "COOKIE_NAME",
	"game.pairs":             "GAME_PAIRS",
	"game.max_pairs":         "GAME_MAX_PAIRS",
	"game.theme":             "GAME_THEME",
	"game.reveal_delay":      "REVEAL_DELAY",
	"game.symbols_file":      "SYMBOLS_FILE",
	"daily.salt":             "DAILY_SALT",
	"daily.pairs":            "DAILY_PAIRS",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5175)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.client_origin", "http://localhost:5173")
	v.SetDefault("server.handler_timeout", 10*time.Second)
	v.SetDefault("database.path", "./data/app.db")
	v.SetDefault("auth.jwt_secret", "dev_secret_change_me")
	v.SetDefault("auth.jwt_expires_days", 14)
	v.SetDefault("auth.cookie_name", "memory_token")
	v.SetDefault("game.pairs", 10)
	v.SetDefault("game.max_pairs", 20)
	v.SetDefault("game.theme", "emoticons")
	v.SetDefault("game.reveal_delay", time.Second)
	v.SetDefault("game.symbols_file", "")
	v.SetDefault("daily.salt", "local_dev_salt")
	v.SetDefault("daily.pairs", 10)
}

// Load reads defaults and environment variables into a validated Config.
// NODE_ENV=production switches cookies to Secure/SameSite=None.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("error binding environment variable %s: %w", env, err)
		}
	}
	if err := v.BindEnv("node_env", "NODE_ENV"); err != nil {
		return nil, fmt.Errorf("error binding environment variable NODE_ENV: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	cfg.Server.Production = v.GetString("node_env") == "production"

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrConfiguration wraps every error returned by Load.
var ErrConfiguration = errors.New("configuration error")

// envBindings maps configuration keys to the plain environment variable names
// the bot has always used. BOT_-prefixed names work for every key as well.
var envBindings = map[string][]string{
	"telegram.token":      {"TELEGRAM_TOKEN"},
	"telegram.admin_id":   {"ADMIN_USER_ID"},
	"ai.default_provider": {"AI_PROVIDER"},
	"ai.openai.api_key":   {"OPENAI_API_KEY"},
	"ai.deepseek.api_key": {"DEEPSEEK_API_KEY"},
	"ai.gemini.api_key":   {"GEMINI_API_KEY"},
	"ai.ollama.host":      {"OLLAMA_HOST"},
	"weather.api_key":     {"WEATHER_API_KEY"},
	"logger.level":        {"LOG_LEVEL"},
	"storage.backend":     {"STORAGE_BACKEND"},
	"metrics.addr":        {"METRICS_ADDR"},
}

// Load reads configuration in the following order, later sources overriding
// earlier ones:
//  1. Default values
//  2. The YAML file at path (optional, a missing file is not an error)
//  3. A .env file in the working directory (optional)
//  4. Environment variables
//
// The result is validated before it is returned.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range envBindings {
		args := append([]string{key}, names...)
		args = append(args, "BOT_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")))
		if err := v.BindEnv(args...); err != nil {
			return nil, fmt.Errorf("%w: bind env for %s: %v", ErrConfiguration, key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: read %s: %v", ErrConfiguration, path, err)
			}
			slog.Info("Configuration file not found, using defaults and environment", "path", path)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: unmarshal: %v", ErrConfiguration, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return cfg, nil
}

// Validate checks struct constraints.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

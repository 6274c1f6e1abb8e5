// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config resolves process configuration once at startup from .env
// files, the environment, an optional YAML file and credential files, into
// an immutable types.Config.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/pdiddy/script-engine/internal/logging"
	"github.com/pdiddy/script-engine/pkg/types"
)

// EnvPrefix prefixes every environment variable, e.g.
// SCRIPT_ENGINE_ANTHROPIC_API_KEY.
const EnvPrefix = "SCRIPT_ENGINE"

// FileName is the config file base name searched in . and
// ~/.config/script-engine.
const FileName = "script-engine"

// DotEnvFiles are loaded, when present, before the environment is read.
var DotEnvFiles = []string{".env", ".env.local"}

// credentialEnv lists the conventional variable names also accepted for
// each credential.
var credentialEnv = map[string]string{
	"anthropic.api_key": "ANTHROPIC_API_KEY",
	"openai.api_key":    "OPENAI_API_KEY",
	"tertiary.api_key":  "TERTIARY_API_KEY",
	"search.api_key":    "TAVILY_API_KEY",
}

// LoadDotEnv loads the .env files that exist. Variables already set in the
// environment keep their value. It returns the files loaded.
func LoadDotEnv(log *logrus.Logger, files ...string) []string {
	log = logging.OrDiscard(log)
	if len(files) == 0 {
		files = DotEnvFiles
	}
	var loaded []string
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			log.WithError(err).Warnf("failed to load %s", f)
			continue
		}
		loaded = append(loaded, f)
	}
	if len(loaded) == 0 {
		log.Debug("no env files loaded; relying on process environment")
	} else {
		log.Debugf("loaded env files: %s", strings.Join(loaded, ", "))
	}
	return loaded
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 8192)
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.max_tokens", 4096)
	v.SetDefault("tertiary.max_tokens", 4096)
	v.SetDefault("search.provider", "tavily")
	v.SetDefault("search.depth", "advanced")
	v.SetDefault("search.max_results", 5)
	v.SetDefault("adapter.timeout", 30*time.Second)
	v.SetDefault("adapter.max_attempts", 3)
	v.SetDefault("adapter.base_delay", time.Second)
	v.SetDefault("adapter.backoff", string(types.BackoffExponential))
	v.SetDefault("health.timeout", 2*time.Second)
	v.SetDefault("health.attempts", 2)
	v.SetDefault("archive.path", ".script-engine/archive.db")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Setup points v at the config file, the environment and the defaults. An
// empty file searches ./script-engine.yaml and
// ~/.config/script-engine/config.yaml. It returns the config file used, or
// "" when none was found.
func Setup(v *viper.Viper, file string) (string, error) {
	SetDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", FileName))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, alt := range credentialEnv {
		envKey := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, envKey, alt); err != nil {
			return "", fmt.Errorf("binding %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return "", nil
		}
		if file == "" && os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("reading config: %w", err)
	}
	return v.ConfigFileUsed(), nil
}

// Resolve reads every recognized key from v into a Config.
func Resolve(v *viper.Viper) (types.Config, error) {
	cfg := types.Config{
		Primary: types.LLMConfig{
			Provider:  "anthropic",
			Model:     v.GetString("anthropic.model"),
			APIKey:    v.GetString("anthropic.api_key"),
			APIURL:    v.GetString("anthropic.api_url"),
			MaxTokens: v.GetInt("anthropic.max_tokens"),
		},
		Secondary: types.LLMConfig{
			Provider:  "openai",
			Model:     v.GetString("openai.model"),
			APIKey:    v.GetString("openai.api_key"),
			APIURL:    v.GetString("openai.base_url"),
			MaxTokens: v.GetInt("openai.max_tokens"),
		},
		Tertiary: types.LLMConfig{
			Provider:  v.GetString("tertiary.provider"),
			Model:     v.GetString("tertiary.model"),
			APIKey:    v.GetString("tertiary.api_key"),
			APIURL:    v.GetString("tertiary.base_url"),
			MaxTokens: v.GetInt("tertiary.max_tokens"),
		},
		Search: types.SearchConfig{
			Provider:   strings.ToLower(v.GetString("search.provider")),
			APIKey:     v.GetString("search.api_key"),
			APIURL:     v.GetString("search.api_url"),
			Depth:      v.GetString("search.depth"),
			MaxResults: v.GetInt("search.max_results"),
		},
		Adapter: types.AdapterConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   v.GetDuration("adapter.timeout"),
				UserAgent: v.GetString("adapter.user_agent"),
			},
			RetryConfig: types.RetryConfig{
				MaxAttempts: v.GetInt("adapter.max_attempts"),
				BaseDelay:   v.GetDuration("adapter.base_delay"),
				Backoff:     types.BackoffKind(strings.ToLower(v.GetString("adapter.backoff"))),
			},
		},
		Health: types.HealthConfig{
			Timeout:  v.GetDuration("health.timeout"),
			Attempts: v.GetInt("health.attempts"),
		},
		Log: types.LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		FrontendBaseURL: v.GetString("frontend_base_url"),
		AutoInstallDeps: v.GetBool("auto_install_deps"),
		ArchivePath:     v.GetString("archive.path"),
		ServerAddr:      v.GetString("server.addr"),
	}

	// A tertiary host without a key is a local OpenAI-compatible server.
	if cfg.Tertiary.Provider == "" {
		cfg.Tertiary.Provider = "compatible"
		if cfg.Tertiary.APIKey == "" {
			cfg.Tertiary.Provider = "ollama"
		}
	}

	if err := Validate(cfg); err != nil {
		return types.Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings no adapter can run with.
func Validate(cfg types.Config) error {
	var errs []error
	switch cfg.Adapter.Backoff {
	case "", types.BackoffLinear, types.BackoffExponential:
	default:
		errs = append(errs, fmt.Errorf("adapter.backoff must be linear or exponential, got %q", cfg.Adapter.Backoff))
	}
	if cfg.Adapter.MaxAttempts < 0 {
		errs = append(errs, fmt.Errorf("adapter.max_attempts must not be negative"))
	}
	if cfg.Adapter.Timeout < 0 || cfg.Health.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeouts must not be negative"))
	}
	switch cfg.Search.Provider {
	case "", "tavily", "brave", "searxng":
	default:
		errs = append(errs, fmt.Errorf("search.provider must be tavily, brave or searxng, got %q", cfg.Search.Provider))
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "", "json", "text":
	default:
		errs = append(errs, fmt.Errorf("log.format must be json or text, got %q", cfg.Log.Format))
	}
	return errors.Join(errs...)
}

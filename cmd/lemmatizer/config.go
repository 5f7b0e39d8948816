package main

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds all settings of the lemmatizer binary.
type Config struct {
	Model        string        `mapstructure:"model"`
	ModelsDir    string        `mapstructure:"models_dir"`
	ModelURL     string        `mapstructure:"model_url"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
	Server       ServerConfig  `mapstructure:"server"`
	CORS         CORSConfig    `mapstructure:"cors"`
	Log          LogConfig     `mapstructure:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	Details         bool          `mapstructure:"details"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// CORSConfig holds cross-origin settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"` // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
}

const (
	defaultModel    = "en_core_web_sm"
	defaultModelURL = "https://github.com/cours-de-latin/lemmatizer-models/releases/latest/download"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("model", defaultModel)
	v.SetDefault("models_dir", "models")
	v.SetDefault("model_url", defaultModelURL)
	v.SetDefault("fetch_timeout", 2*time.Minute)
	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.details", true)
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// loadConfig reads defaults, the optional config file, LEMMATIZER_*
// environment variables and flags, in increasing order of precedence.
// The model may also be chosen with SPACY_MODEL.
func loadConfig(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("LEMMATIZER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("model", "LEMMATIZER_MODEL", "SPACY_MODEL"); err != nil {
		return nil, errors.Wrap(err, "bind model env")
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	}

	if flags != nil {
		for key, name := range map[string]string{
			"model":       "model",
			"models_dir":  "models-dir",
			"model_url":   "model-url",
			"server.addr": "addr",
			"log.level":   "log-level",
		} {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, errors.Wrapf(err, "bind flag %s", name)
				}
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("config: model must not be empty")
	}
	return cfg, nil
}

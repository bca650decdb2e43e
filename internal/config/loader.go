package config

import (
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	apperrors "github.com/trovesx/OncoPurpose/pkg/errors"
)

const envPrefix = "ONCO"

// Load resolves the full configuration.  path may be empty, in which case
// only defaults and environment variables apply; otherwise it names a YAML
// file that must exist and parse.
func Load(path string) (*Config, error) {
	v := viper.New()
	applyDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeConfiguration,
				"failed to read config file").WithDetail("path=" + path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeConfiguration,
			"failed to unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeConfiguration,
			"invalid configuration")
	}
	return &cfg, nil
}

// Watch reloads the configuration whenever the underlying file changes and
// invokes onChange with the freshly parsed Config.  Reload failures are
// swallowed after invoking onError; the previous configuration stays active.
// Watch returns immediately; callbacks fire on viper's watcher goroutine.
func Watch(path string, onChange func(*Config), onError func(error)) error {
	if path == "" {
		return apperrors.New(apperrors.ErrCodeConfiguration, "config watch requires a file path")
	}
	v := viper.New()
	applyDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeConfiguration,
			"failed to read config file").WithDetail("path=" + path)
	}

	v.OnConfigChange(func(_ fsnotify.Event) {
		var cfg Config
		if err := v.Unmarshal(&cfg); err != nil {
			if onError != nil {
				onError(apperrors.Wrap(err, apperrors.ErrCodeConfiguration, "config reload failed"))
			}
			return
		}
		if err := cfg.Validate(); err != nil {
			if onError != nil {
				onError(apperrors.Wrap(err, apperrors.ErrCodeConfiguration, "config reload invalid"))
			}
			return
		}
		if onChange != nil {
			onChange(&cfg)
		}
	})
	v.WatchConfig()
	return nil
}

// ABOUTME: Loads configuration with viper: defaults, global then project YAML, then ASYNCCONSOLE_ env
// ABOUTME: Expands ${VAR} in paths and writes a default YAML file for "config init"

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides, e.g. ASYNCCONSOLE_LOG_LEVEL.
const EnvPrefix = "ASYNCCONSOLE"

// Load reads configuration. With an explicit path only that file is read
// and it must exist; otherwise the global file is read and the project
// file in projectRoot is merged over it, both optional.
func Load(path, projectRoot string) (Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v, cfg)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if err := readFile(v, path, false); err != nil {
			return Config{}, err
		}
	} else {
		if err := readFile(v, GlobalConfigFile(), true); err != nil {
			return Config{}, err
		}
		if projectRoot != "" {
			if err := readFile(v, ProjectConfigFile(projectRoot), true); err != nil {
				return Config{}, err
			}
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	expandConfigEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("poll_interval", cfg.PollInterval)
	v.SetDefault("prompt_mode", cfg.PromptMode)
	v.SetDefault("keep_prompt", cfg.KeepPrompt)
	v.SetDefault("output.capacity", cfg.Output.Capacity)
	v.SetDefault("output.overflow", cfg.Output.Overflow)
	v.SetDefault("history.file", cfg.History.File)
	v.SetDefault("history.limit", cfg.History.Limit)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.file", cfg.Log.File)
	v.SetDefault("log.structured", cfg.Log.Structured)
}

// readFile merges path into v. A missing file is an error unless optional.
func readFile(v *viper.Viper, path string, optional bool) error {
	if _, err := os.Stat(path); err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

func expandConfigEnv(cfg *Config) {
	cfg.History.File = expandEnv(cfg.History.File)
	cfg.Log.File = expandEnv(cfg.Log.File)
}

// expandEnv replaces ${VAR} and $VAR. Unknown variables are left as
// written so the resulting path error names them.
func expandEnv(value string) string {
	if value == "" {
		return value
	}
	return os.Expand(value, func(key string) string {
		if key == "" {
			return ""
		}
		if key == "HOME" {
			if home, err := os.UserHomeDir(); err == nil {
				return home
			}
		}
		if val, ok := os.LookupEnv(key); ok {
			return val
		}
		return "$" + key
	})
}

// WriteDefault writes the default config to path, or to the global config
// file when path is empty, and returns the path written.
func WriteDefault(path string, overwrite bool) (string, error) {
	if path == "" {
		path = GlobalConfigFile()
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("config already exists at %s", path)
		}
	}

	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return "", fmt.Errorf("encoding default config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("writing config: %w", err)
	}
	return path, nil
}

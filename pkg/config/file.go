// ABOUTME: Optional YAML/JSON configuration file overlay
// ABOUTME: File values replace defaults; environment variables still win

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig is the on-disk configuration schema. Zero values mean "not set".
type FileConfig struct {
	Server struct {
		Port           string        `yaml:"port" json:"port"`
		RateLimit      int           `yaml:"rateLimit" json:"rateLimit"`
		RateWindow     time.Duration `yaml:"rateWindow" json:"rateWindow"`
		AllowedOrigins []string      `yaml:"allowedOrigins" json:"allowedOrigins"`
	} `yaml:"server" json:"server"`

	Storage struct {
		Type       string `yaml:"type" json:"type"`
		SQLitePath string `yaml:"sqlitePath" json:"sqlitePath"`
		Redis      struct {
			Address   string `yaml:"address" json:"address"`
			Password  string `yaml:"password" json:"password"`
			DB        int    `yaml:"db" json:"db"`
			KeyPrefix string `yaml:"keyPrefix" json:"keyPrefix"`
		} `yaml:"redis" json:"redis"`
	} `yaml:"storage" json:"storage"`

	Remote struct {
		BaseURL string        `yaml:"baseURL" json:"baseURL"`
		Timeout time.Duration `yaml:"timeout" json:"timeout"`
	} `yaml:"remote" json:"remote"`

	Polling struct {
		Interval           time.Duration `yaml:"interval" json:"interval"`
		MaxChecksPerSecond float64       `yaml:"maxChecksPerSecond" json:"maxChecksPerSecond"`
	} `yaml:"polling" json:"polling"`

	Log struct {
		Level  string `yaml:"level" json:"level"`
		Format string `yaml:"format" json:"format"`
	} `yaml:"log" json:"log"`
}

// LoadConfigFile reads YAML or JSON into FileConfig. Unknown extensions are
// tried as YAML first, then JSON.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}

	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyTo copies every set field onto cfg
func (fc FileConfig) ApplyTo(cfg *Config) {
	setString(&cfg.Server.Port, fc.Server.Port)
	setInt(&cfg.Server.RateLimit, fc.Server.RateLimit)
	setDuration(&cfg.Server.RateWindow, fc.Server.RateWindow)
	if len(fc.Server.AllowedOrigins) > 0 {
		cfg.Server.AllowedOrigins = fc.Server.AllowedOrigins
	}

	setString(&cfg.Storage.Type, fc.Storage.Type)
	setString(&cfg.Storage.SQLitePath, fc.Storage.SQLitePath)
	setString(&cfg.Storage.Redis.Address, fc.Storage.Redis.Address)
	setString(&cfg.Storage.Redis.Password, fc.Storage.Redis.Password)
	setInt(&cfg.Storage.Redis.DB, fc.Storage.Redis.DB)
	setString(&cfg.Storage.Redis.KeyPrefix, fc.Storage.Redis.KeyPrefix)

	setString(&cfg.Remote.BaseURL, fc.Remote.BaseURL)
	setDuration(&cfg.Remote.Timeout, fc.Remote.Timeout)

	setDuration(&cfg.Polling.Interval, fc.Polling.Interval)
	if fc.Polling.MaxChecksPerSecond > 0 {
		cfg.Polling.MaxChecksPerSecond = fc.Polling.MaxChecksPerSecond
	}

	setString(&cfg.Log.Level, fc.Log.Level)
	setString(&cfg.Log.Format, fc.Log.Format)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v time.Duration) {
	if v != 0 {
		*dst = v
	}
}

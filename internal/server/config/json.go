package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/dreamtracer/internal/flagx"
	"github.com/dmitrijs2005/dreamtracer/internal/timex"
)

// JsonConfig is the on-disk shape of the server config file. Durations
// accept both "1h" strings and integer nanoseconds.
type JsonConfig struct {
	ListenAddr                  string         `json:"listen_addr"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	DefaultPlan                 string         `json:"default_plan"`
	LogLevel                    string         `json:"log_level"`
	LogFormat                   string         `json:"log_format"`
}

// parseJson loads the file named by -c/-config, if any. Empty fields keep
// their current values.
func parseJson(config *Config, args []string) error {
	path := flagx.JsonConfigFlags(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if c.ListenAddr != "" {
		config.ListenAddr = c.ListenAddr
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.AccessTokenValidityDuration.Duration > 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.DefaultPlan != "" {
		config.DefaultPlan = c.DefaultPlan
	}
	if c.LogLevel != "" {
		config.LogLevel = c.LogLevel
	}
	if c.LogFormat != "" {
		config.LogFormat = c.LogFormat
	}
	return nil
}

package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/dreamtracer/internal/flagx"
	"github.com/dmitrijs2005/dreamtracer/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Pointer and zero
// values are left untouched so a partial file only overrides what it names.
type JsonConfig struct {
	APIBaseURL          string         `json:"api_base_url"`
	DatabasePath        string         `json:"database_path"`
	HealthCheckTimeout  timex.Duration `json:"health_check_timeout"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	PatternCacheTTL     timex.Duration `json:"pattern_cache_ttl"`
	RequestsPerSecond   float64        `json:"requests_per_second"`
	RequestBurst        int            `json:"request_burst"`
	LogLevel            string         `json:"log_level"`
	LogFormat           string         `json:"log_format"`
	S3Bucket            string         `json:"s3_bucket"`
	S3Region            string         `json:"s3_region"`
	S3BaseEndpoint      string         `json:"s3_base_endpoint"`
	S3AccessKey         string         `json:"s3_access_key"`
	S3SecretKey         string         `json:"s3_secret_key"`
}

// parseJson overlays cfg with the JSON file named by -c/--config, if any.
func parseJson(cfg *Config, args []string) error {
	path := flagx.JsonConfigFlags(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&cfg.APIBaseURL, jc.APIBaseURL)
	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogFormat, jc.LogFormat)
	setString(&cfg.S3Bucket, jc.S3Bucket)
	setString(&cfg.S3Region, jc.S3Region)
	setString(&cfg.S3BaseEndpoint, jc.S3BaseEndpoint)
	setString(&cfg.S3AccessKey, jc.S3AccessKey)
	setString(&cfg.S3SecretKey, jc.S3SecretKey)

	if jc.HealthCheckTimeout.Duration > 0 {
		cfg.HealthCheckTimeout = jc.HealthCheckTimeout.Duration
	}
	if jc.OnlineCheckInterval.Duration > 0 {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.PatternCacheTTL.Duration > 0 {
		cfg.PatternCacheTTL = jc.PatternCacheTTL.Duration
	}
	if jc.RequestsPerSecond > 0 {
		cfg.RequestsPerSecond = jc.RequestsPerSecond
	}
	if jc.RequestBurst > 0 {
		cfg.RequestBurst = jc.RequestBurst
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

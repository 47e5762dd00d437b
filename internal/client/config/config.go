package config

import (
	"time"
)

// Config holds runtime settings for the DreamTracer client.
type Config struct {
	APIBaseURL          string
	DatabasePath        string
	HealthCheckTimeout  time.Duration
	OnlineCheckInterval time.Duration
	PatternCacheTTL     time.Duration
	RequestsPerSecond   float64
	RequestBurst        int
	LogLevel            string
	LogFormat           string

	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string
	S3AccessKey    string
	S3SecretKey    string
}

// LoadDefaults populates c with development defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8000"
	c.DatabasePath = "dreamtracer.db"
	c.HealthCheckTimeout = 5 * time.Second
	c.OnlineCheckInterval = 30 * time.Second
	c.PatternCacheTTL = 24 * time.Hour
	c.RequestsPerSecond = 10
	c.RequestBurst = 20
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.S3Bucket = "dream-backups"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
}

// LoadConfig builds a Config from defaults, environment, an optional JSON
// file and finally the flags found in args. Later sources win.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseEnv(cfg, args); err != nil {
		return nil, err
	}
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}

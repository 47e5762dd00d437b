package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/dreamtracer/internal/flagx"
	"github.com/joho/godotenv"
)

const envPrefix = "DREAMTRACER_"

// parseEnv overlays cfg with DREAMTRACER_* variables. When --env-file is
// given that file is loaded first; variables already set in the process
// environment are not overwritten by it.
func parseEnv(cfg *Config, args []string) error {
	if path := flagx.EnvFileFlags(args); path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load env file %s: %w", path, err)
		}
	}

	lookupString("API_BASE_URL", &cfg.APIBaseURL)
	lookupString("DATABASE_PATH", &cfg.DatabasePath)
	lookupString("LOG_LEVEL", &cfg.LogLevel)
	lookupString("LOG_FORMAT", &cfg.LogFormat)
	lookupString("S3_BUCKET", &cfg.S3Bucket)
	lookupString("S3_REGION", &cfg.S3Region)
	lookupString("S3_BASE_ENDPOINT", &cfg.S3BaseEndpoint)
	lookupString("S3_ACCESS_KEY", &cfg.S3AccessKey)
	lookupString("S3_SECRET_KEY", &cfg.S3SecretKey)

	for name, dst := range map[string]*time.Duration{
		"HEALTH_CHECK_TIMEOUT":  &cfg.HealthCheckTimeout,
		"ONLINE_CHECK_INTERVAL": &cfg.OnlineCheckInterval,
		"PATTERN_CACHE_TTL":     &cfg.PatternCacheTTL,
	} {
		v, ok := os.LookupEnv(envPrefix + name)
		if !ok {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, name, err)
		}
		if d <= 0 {
			return fmt.Errorf("%s%s: must be positive, got %s", envPrefix, name, v)
		}
		*dst = d
	}

	if v, ok := os.LookupEnv(envPrefix + "REQUESTS_PER_SECOND"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%sREQUESTS_PER_SECOND: %w", envPrefix, err)
		}
		if !(f > 0) {
			return fmt.Errorf("%sREQUESTS_PER_SECOND: must be positive, got %s", envPrefix, v)
		}
		cfg.RequestsPerSecond = f
	}
	if v, ok := os.LookupEnv(envPrefix + "REQUEST_BURST"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sREQUEST_BURST: %w", envPrefix, err)
		}
		if n <= 0 {
			return fmt.Errorf("%sREQUEST_BURST: must be positive, got %s", envPrefix, v)
		}
		cfg.RequestBurst = n
	}

	return nil
}

func lookupString(name string, dst *string) {
	if v, ok := os.LookupEnv(envPrefix + name); ok {
		*dst = v
	}
}

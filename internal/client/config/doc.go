// Package config loads runtime configuration for the DreamTracer client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment variables prefixed DREAMTRACER_, optionally read from a
//     dotenv file selected with --env-file (see parseEnv).
//  3. Optional JSON file selected with -c or --config (see parseJson).
//  4. Command-line flags (see parseFlags), which override everything else.
//
// Supported flags
//
//	-a, --api string         base URL of the backend REST API
//	--db string              path of the local SQLite database
//	--log-level string       debug, info, warn or error
//	--log-format string      text or json
//
// # JSON schema
//
// Durations use timex.Duration, so "5s" and integer nanoseconds both work:
//
//	{
//	  "api_base_url": "http://127.0.0.1:8000",
//	  "database_path": "dreamtracer.db",
//	  "health_check_timeout": "5s",
//	  "pattern_cache_ttl": "24h",
//	  "s3_bucket": "dream-backups"
//	}
package config

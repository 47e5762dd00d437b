package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/dreamtracer/internal/flagx"
)

// Names of the flags handled here. The CLI registers the same names so the
// two parsers agree on what belongs to whom.
const (
	FlagAPI       = "api"
	FlagAPIShort  = "a"
	FlagDB        = "db"
	FlagLogLevel  = "log-level"
	FlagLogFormat = "log-format"
	FlagConfig    = "config"
	FlagEnvFile   = "env-file"
)

// parseFlags overlays cfg with the subset of args this package owns. Other
// arguments (subcommands, their flags) are filtered out beforehand.
func parseFlags(cfg *Config, args []string) error {
	var allowed []string
	for _, n := range []string{FlagAPI, FlagAPIShort, FlagDB, FlagLogLevel, FlagLogFormat} {
		allowed = append(allowed, "-"+n, "--"+n)
	}

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIBaseURL, FlagAPI, cfg.APIBaseURL, "backend API base URL")
	fs.StringVar(&cfg.APIBaseURL, FlagAPIShort, cfg.APIBaseURL, "backend API base URL (shorthand)")
	fs.StringVar(&cfg.DatabasePath, FlagDB, cfg.DatabasePath, "local database path")
	fs.StringVar(&cfg.LogLevel, FlagLogLevel, cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogFormat, FlagLogFormat, cfg.LogFormat, "log format")

	return fs.Parse(flagx.FilterArgs(args, allowed))
}

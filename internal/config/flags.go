package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/medigenie/internal/flagx"
)

var knownFlags = []string{"-s", "-d", "-p", "-r", "-b", "-e", "-u", "-m", "-k", "-t", "-a", "-l"}

// parseFlags overlays cfg with command-line flags.
//
//	-s string   storage backend: sqlite|postgres|redis|s3|memory
//	-d string   SQLite database file
//	-p string   PostgreSQL DSN
//	-r string   Redis address
//	-b string   S3 bucket
//	-e string   S3 endpoint
//	-u string   inference base URL
//	-m string   inference model
//	-k string   inference API key
//	-t int      inference timeout, seconds
//	-a string   local API listen address
//	-l string   log level
//
// Unknown flags are filtered out first so other loaders can share args.
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, knownFlags)

	fs := flag.NewFlagSet("medigenie", flag.ContinueOnError)

	fs.StringVar(&cfg.StorageBackend, "s", cfg.StorageBackend, "storage backend")
	fs.StringVar(&cfg.SQLitePath, "d", cfg.SQLitePath, "SQLite database file")
	fs.StringVar(&cfg.PostgresDSN, "p", cfg.PostgresDSN, "PostgreSQL DSN")
	fs.StringVar(&cfg.RedisAddr, "r", cfg.RedisAddr, "Redis address")
	fs.StringVar(&cfg.S3Bucket, "b", cfg.S3Bucket, "S3 bucket")
	fs.StringVar(&cfg.S3Endpoint, "e", cfg.S3Endpoint, "S3 endpoint")
	fs.StringVar(&cfg.InferenceBaseURL, "u", cfg.InferenceBaseURL, "inference base URL")
	fs.StringVar(&cfg.Model, "m", cfg.Model, "inference model")
	fs.StringVar(&cfg.APIKey, "k", cfg.APIKey, "inference API key")
	timeout := fs.Int("t", int(cfg.InferenceTimeout.Seconds()), "inference timeout (in seconds)")
	fs.StringVar(&cfg.APIAddr, "a", cfg.APIAddr, "local API listen address")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.InferenceTimeout = time.Duration(*timeout) * time.Second
}

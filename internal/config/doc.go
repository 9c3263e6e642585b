// Package config loads runtime configuration for the MediGenie CLI and the
// local API server.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file chosen with -c/-config, or $MEDIGENIE_CONFIG.
//  3. Command-line flags (see parseFlags).
//  4. $GEMINI_API_KEY and $MEDIGENIE_PASSPHRASE, only for fields still empty.
//
// # JSON schema
//
// Durations use timex.Duration, so "45s" and integer nanoseconds both work:
//
//	{
//	  "storage_backend": "redis",
//	  "redis_addr": "127.0.0.1:6379",
//	  "model": "gemini-3-pro-preview",
//	  "inference_timeout": "45s",
//	  "log_backend": "zap",
//	  "log_format": "json"
//	}
package config

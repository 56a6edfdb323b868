// Package config loads runtime configuration for the filedrop CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file passed with --config.
//  3. Environment: FILEDROP_SERVER and FILEDROP_TIMEOUT.
//  4. Command-line flags (--server, --timeout), applied by the cli package.
//
// # JSON schema
//
// The timeout uses timex.Duration, so it can be a string like "30s" or
// integer nanoseconds:
//
//	{
//	  "server": "http://localhost:3000",
//	  "timeout": "30s"
//	}
package config

// Package config loads runtime configuration for the liftaudit CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Environment variables, optionally loaded from a .env file (see parseEnv).
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the audit backend
//	-d string   path to the local SQLite database file
//	-i int      online status check interval (seconds)
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "3s" or integer nanoseconds:
//
//	{
//	  "server_base_url": "https://audits.example.com",
//	  "database_file": "audits.db",
//	  "max_attachments_per_question": 10,
//	  "max_attachment_bytes": 8388608,
//	  "online_check_interval": "3s"
//	}
package config

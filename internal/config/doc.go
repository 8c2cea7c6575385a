// Package config provides centralized configuration management for the
// datawash server. It handles loading configuration from multiple sources,
// validation, and a type-safe API for the rest of the application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. A YAML configuration file
//	3. Built-in defaults from Default (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern DATAWASH_* for namespacing:
//
//	DATAWASH_SERVER_PORT=8080
//	DATAWASH_UPLOAD_MAX_SIZE_MB=25
//	DATAWASH_LOGGING_LEVEL=info
//	DATAWASH_CORS_ALLOWED_ORIGINS=http://localhost:3000
//	DATAWASH_RATE_LIMIT_RPS=100
//
// # Configuration File
//
// DATAWASH_CONFIG names an explicit YAML file; otherwise config.yaml and
// configs/config.yaml are tried. A missing file is not an error, the
// environment and defaults cover everything.
//
// # Usage
//
// Load configuration at application startup:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config

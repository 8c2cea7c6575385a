package config

// Application constants
const (
	AppName = "datawash"

	// DefaultMaxUploadMB caps uploads unless overridden by configuration.
	DefaultMaxUploadMB = 25
)

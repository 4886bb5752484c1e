// Package config loads and validates application settings from defaults, an
// optional config.yaml and SCAFFOLD_* environment variables.
package config

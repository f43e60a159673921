// Package config loads the server settings from defaults, an optional YAML
// file and TAKTPLAN_-prefixed environment variables, and validates them
// before anything else starts.
package config

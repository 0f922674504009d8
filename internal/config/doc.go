// Package config loads and validates monitor configuration from YAML files,
// with environment variable expansion and layered defaults.
package config

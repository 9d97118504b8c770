// Package config loads the host configuration. Values are layered with viper:
// built-in defaults, then an optional YAML file, then LAMPHOST_* environment
// variables, then command-line flags.
package config

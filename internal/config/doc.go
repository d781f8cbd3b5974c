// Package config holds the settings of a sitescope run: defaults, the
// optional YAML config file and validation.
package config

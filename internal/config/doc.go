// Package config provides configuration structures and utilities for comet.
// It defines the addresses of the control endpoint, the bridge and the Tor
// SOCKS port, the data directory, and the optional .comet YAML file.
package config

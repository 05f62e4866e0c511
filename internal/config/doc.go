// Package config provides configuration structures and utilities for certcheck.
// It defines the run options for probing domains, the YAML configuration file
// and the domain list file format.
package config

// Package config loads runtime configuration from multiple sources (YAML files,
// environment variables, CLI flags) with precedence: CLI flags > YAML config >
// Environment variables > Defaults. Besides the HTTP server settings it carries
// the packing defaults (weight ceiling, strategy, unit limit), the catalog
// storage driver and an optional initial box catalog.
package config

// Package config handles YAML configuration loading with environment variable substitution.
//
// Configuration files support ${VAR} syntax for environment variable interpolation.
// Variables may come from the process environment or from a .env file loaded
// with LoadDotEnv. Every field is optional: an empty path yields Default(),
// the live Sports markets pipeline.
package config

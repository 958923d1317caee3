// Package config handles application configuration loading and validation.
//
// Configuration is read from an optional YAML file over built-in defaults,
// then overridden by a .env file and MTR_* environment variables. The
// result is validated using struct tags.
package config

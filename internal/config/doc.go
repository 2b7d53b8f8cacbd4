// Package config loads, normalizes, and validates tonielib configuration data.
//
// The configuration lives as a TOML document at a fixed path on the mounted
// /config volume. It is created by the setup wizard (internal/setup) and read
// at startup by every other component. A missing file is a supported state:
// Load returns repository defaults plus an existence flag so the readiness
// evaluator can decide whether the wizard has to run.
//
// Always obtain settings through this package so downstream code receives
// trimmed URLs, canonical log levels, and clear validation errors.
package config

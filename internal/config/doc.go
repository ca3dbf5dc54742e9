// Package config loads, normalizes, and validates audiopilot configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// AUDIOPILOT_STATE_DIR. The Config type centralizes every threshold and
// path the autopilot cycle and CLI need, so the classification core receives
// explicit policies instead of reading globals.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config

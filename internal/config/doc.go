// Package config loads, normalizes, and validates mediasig configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML or YAML files, and honours environment fallbacks such
// as OPENAI_API_KEY. The Config type centralizes every knob the CLI, the
// analysis pipeline and the daemon need: tool locations, per-kind size
// limits, sampling cadence, model providers and job store selection.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical provider names, and clear validation errors.
package config

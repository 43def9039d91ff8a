// Package config loads, normalizes, and validates articast configuration.
//
// Configuration comes from a TOML file merged over built-in defaults, with
// command-line overrides applied last. The override precedence (flags beat
// file values beat defaults) is part of the pipeline contract, not a CLI
// convenience: the effective config participates in task identity hashing,
// so the same inputs must always produce the same effective config.
package config

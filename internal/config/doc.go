// Package config loads, validates, and normalizes inkwell configuration from
// TOML. Configuration errors are fatal: every other component assumes a valid
// Config and treats an unrecognized value reaching it as a caller bug.
package config

// Package config loads the persimq command-line configuration.
//
// Configuration is read from a TOML file (by default
// ~/.config/persimq/config.toml, or persimq.toml in the working directory)
// and layered over Default(). Command-line flags are applied on top by the
// caller. PERSIMQ_FILE overrides queue.file when the file leaves it empty.
package config

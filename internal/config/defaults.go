package config

import "github.com/vnykmshr/persimq/internal/logging"

const (
	defaultConfigPath = "~/.config/persimq/config.toml"
	projectConfigName = "persimq.toml"
	defaultLogFormat  = "console"
	defaultMaxSizeMB  = 10
	defaultMaxBackups = 3
	defaultMaxAgeDays = 28
	defaultFileMode   = "0660"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Queue: Queue{
			FileMode: defaultFileMode,
		},
		Logging: Logging{
			Verbosity:  logging.DefaultVerbosity.String(),
			Format:     defaultLogFormat,
			MaxSizeMB:  defaultMaxSizeMB,
			MaxBackups: defaultMaxBackups,
			MaxAgeDays: defaultMaxAgeDays,
		},
	}
}

package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/vnykmshr/persimq/internal/queue"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateQueue(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateQueue() error {
	// zero keeps the size of an existing file
	if c.Queue.Size != 0 && c.Queue.Size < queue.MinFileSize {
		return fmt.Errorf("queue.size must be 0 or at least %d bytes", queue.MinFileSize)
	}
	mode, err := c.Mode()
	if err != nil {
		return err
	}
	if mode&^os.ModePerm != 0 {
		return fmt.Errorf("queue.file_mode %s has non-permission bits", c.Queue.FileMode)
	}
	return nil
}

func (c *Config) validateLogging() error {
	if _, err := c.VerbosityLevel(); err != nil {
		return fmt.Errorf("logging.verbosity: %w", err)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	if c.Logging.MaxSizeMB < 0 || c.Logging.MaxBackups < 0 || c.Logging.MaxAgeDays < 0 {
		return errors.New("logging rotation limits must not be negative")
	}
	return nil
}

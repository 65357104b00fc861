package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vnykmshr/persimq/internal/config"
	"github.com/vnykmshr/persimq/internal/logging"
	"github.com/vnykmshr/persimq/internal/queue"
)

type commandContext struct {
	file       string
	size       int64
	configPath string
	verbosity  string
	logFile    string
	noWait     bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	logger *zap.Logger
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(strings.TrimSpace(c.configPath))
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// queueOptions merges configuration and flags into open parameters.
// Flags win over the configuration file.
func (c *commandContext) queueOptions(cmd *cobra.Command) (string, int64, *queue.Options, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", 0, nil, err
	}

	path := c.file
	if path == "" {
		path = cfg.Queue.File
	}
	if path == "" {
		return "", 0, nil, errors.New("queue file required: use --file or set queue.file")
	}

	size := cfg.Queue.Size
	if cmd.Flags().Changed("size") {
		size = c.size
	}
	if size == 0 {
		info, err := os.Stat(path)
		if errors.Is(err, fs.ErrNotExist) {
			return "", 0, nil, fmt.Errorf("%s does not exist: use --size to create it", path)
		}
		if err != nil {
			return "", 0, nil, fmt.Errorf("stat queue file: %w", err)
		}
		size = info.Size()
	}

	verbosity, err := cfg.VerbosityLevel()
	if err != nil {
		return "", 0, nil, err
	}
	if c.verbosity != "" {
		if verbosity, err = logging.ParseVerbosity(c.verbosity); err != nil {
			return "", 0, nil, err
		}
	}

	mode, err := cfg.Mode()
	if err != nil {
		return "", 0, nil, err
	}

	zapOpts := cfg.ZapOptions()
	if c.logFile != "" {
		if zapOpts.File, err = config.ExpandPath(c.logFile); err != nil {
			return "", 0, nil, err
		}
	}
	logger, err := logging.NewZap(zapOpts)
	if err != nil {
		return "", 0, nil, err
	}
	c.logger = logger.Named("persimq")

	opts := queue.DefaultOptions()
	opts.Logger = logging.NewZapLogger(c.logger)
	opts.Verbosity = verbosity
	opts.AutoSync = cfg.Queue.AutoSync
	opts.FileMode = mode
	if c.noWait || cfg.Queue.NoWait {
		opts.LockMode = queue.LockNonBlocking
	}

	return path, size, opts, nil
}

func (c *commandContext) openQueue(cmd *cobra.Command) (*queue.Queue, error) {
	path, size, opts, err := c.queueOptions(cmd)
	if err != nil {
		return nil, err
	}
	return queue.Open(path, size, opts)
}

// withQueue runs fn against an open queue and commits its changes with Close.
func (c *commandContext) withQueue(cmd *cobra.Command, fn func(*queue.Queue) error) error {
	return c.runQueue(cmd, true, fn)
}

// inspectQueue runs a read-only fn and releases the queue with Drop, so the
// header is neither rewritten nor flushed.
func (c *commandContext) inspectQueue(cmd *cobra.Command, fn func(*queue.Queue) error) error {
	return c.runQueue(cmd, false, fn)
}

func (c *commandContext) runQueue(cmd *cobra.Command, commit bool, fn func(*queue.Queue) error) error {
	q, err := c.openQueue(cmd)
	if err != nil {
		c.flushLog()
		return err
	}

	err = fn(q)
	release := q.Drop
	if commit {
		release = q.Close
	}
	if rerr := release(); err == nil {
		err = rerr
	}
	c.flushLog()
	return err
}

func (c *commandContext) flushLog() {
	if c.logger != nil {
		// stderr cannot be synced on every platform
		_ = c.logger.Sync()
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"audiopilot/internal/config"
	"audiopilot/internal/logging"
	"audiopilot/internal/services"
	"audiopilot/internal/snapshot"
	"audiopilot/internal/store"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) configFlagValue() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, _, err := config.Load(c.configFlagValue())
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = path
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

func (c *commandContext) logger() (*slog.Logger, error) {
	return logging.NewFromConfig(c.configValue())
}

func (c *commandContext) withStore(fn func(*config.Config, *store.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	st, err := store.Open(cfg)
	if err != nil {
		return fmt.Errorf("open state database: %w", err)
	}
	defer st.Close()
	return fn(cfg, st)
}

func (c *commandContext) loadSnapshot(ctx context.Context, st *store.Store) (snapshot.Snapshot, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return snapshot.Snapshot{}, err
	}
	logger, err := c.logger()
	if err != nil {
		return snapshot.Snapshot{}, err
	}
	var source snapshot.LedgerSource
	if st != nil {
		source = st
	}
	return snapshot.NewLoader(cfg, source, logger).Load(ctx)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

// formatError appends the marker hint, when one applies, to err.
func formatError(err error) string {
	if hint := services.Hint(err); hint != "" {
		return fmt.Sprintf("%v\nhint: %s", err, hint)
	}
	return err.Error()
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

package main

import (
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/maauso/adwizard/internal/bootstrap"
	"github.com/maauso/adwizard/internal/config"
)

const defaultEnvFile = config.DefaultEnvFile

type commandContext struct {
	envFileFlag *string
	jsonFlag    *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	depsOnce sync.Once
	deps     *bootstrap.Dependencies
	depsErr  error
}

func newCommandContext(envFileFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		envFileFlag: envFileFlag,
		jsonFlag:    jsonFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.envFileFlag != nil {
			path = strings.TrimSpace(*c.envFileFlag)
		}
		c.config, c.configErr = config.LoadWithEnvFile(path)
	})
	return c.config, c.configErr
}

// dependencies bootstraps the session, client and storage once per run.
// Logs go to the command's stderr.
func (c *commandContext) dependencies(cmd *cobra.Command) (*bootstrap.Dependencies, error) {
	c.depsOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.depsErr = err
			return
		}
		logger := cfg.NewLoggerTo(cmd.ErrOrStderr())
		c.deps, c.depsErr = bootstrap.NewDependencies(cmd.Context(), cfg, logger)
	})
	return c.deps, c.depsErr
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

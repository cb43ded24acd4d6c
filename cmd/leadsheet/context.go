package main

import (
	"strings"
	"sync"

	"github.com/vanderheijden86/leadsheet/pkg/config"
	"github.com/vanderheijden86/leadsheet/pkg/engine"
	"github.com/vanderheijden86/leadsheet/pkg/library"
)

// commandContext carries state shared by every subcommand: the resolved
// configuration and the lazily opened library.
type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     config.Config
	configErr  error

	lib *library.Library
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) configPath() string {
	if c.configFlag != nil {
		if p := strings.TrimSpace(*c.configFlag); p != "" {
			return p
		}
	}
	return config.ConfigPath()
}

func (c *commandContext) ensureConfig() (config.Config, error) {
	c.configOnce.Do(func() {
		path := c.configPath()
		if path == "" {
			c.config = config.DefaultConfig()
			return
		}
		c.config, c.configErr = config.LoadFrom(path)
	})
	return c.config, c.configErr
}

// library opens the library database when enabled. A nil library with a nil
// error means the library is switched off.
func (c *commandContext) library() (*library.Library, error) {
	if c.lib != nil {
		return c.lib, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.Library.Enabled || cfg.LibraryPath() == "" {
		return nil, nil
	}
	lib, err := library.Open(cfg.LibraryPath())
	if err != nil {
		return nil, err
	}
	c.lib = lib
	return lib, nil
}

// engineOptions returns the Local engine options implied by the config.
func (c *commandContext) engineOptions() ([]engine.LocalOption, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	opts := []engine.LocalOption{
		engine.WithStartDir(cfg.Files.DefaultDir),
		engine.WithExportFormat(cfg.Export.Format),
	}
	lib, err := c.library()
	if err != nil {
		return nil, err
	}
	if lib != nil {
		opts = append(opts, engine.WithLibrary(lib))
	}
	return opts, nil
}

func (c *commandContext) close() {
	if c.lib != nil {
		c.lib.Close()
		c.lib = nil
	}
}

package main

import (
	"path/filepath"
	"strings"
	"sync"

	"inkwell/internal/config"
	"inkwell/internal/logging"
	"inkwell/internal/newsfetch"
	"inkwell/internal/pipeline"
	"inkwell/internal/queue"
	"inkwell/internal/services/imagegen"
	"inkwell/internal/services/publisher"
	"inkwell/internal/services/textgen"
	"inkwell/internal/store"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) openStore() (*store.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return store.Open(cfg)
}

func (c *commandContext) openQueue() (*queue.FileStore, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return queue.NewFileStore(filepath.Join(cfg.Paths.DataDir, "pending_tasks.json")), nil
}

// newOrchestrator builds a pipeline orchestrator with every collaborator the
// configuration has credentials for. Missing credentials leave the matching
// step on its degradation path rather than failing construction.
func (c *commandContext) newOrchestrator() (*pipeline.Orchestrator, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	records, err := c.openStore()
	if err != nil {
		return nil, err
	}
	tasks, err := c.openQueue()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		return nil, err
	}

	opts := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithFetcher(newsfetch.New()),
	}
	if text, err := textgen.NewClient(cfg.TextGen); err == nil {
		opts = append(opts, pipeline.WithTextGenerator(text))
	}
	if images, err := imagegen.NewClient(cfg.ImageGen); err == nil {
		opts = append(opts, pipeline.WithImageGenerator(images))
	}
	if uploader, err := publisher.NewClient(cfg.Publisher); err == nil {
		opts = append(opts, pipeline.WithUploader(uploader))
	}
	return pipeline.New(cfg, records, tasks, opts...), nil
}
